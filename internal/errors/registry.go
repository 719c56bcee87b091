package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

// registry maps error codes to their templates, grouped per the §7 error
// handling table: config (E0xx), route (E1xx), transform (E2xx), handler
// (E3xx), watcher (E4xx).
var registry = map[string]ErrorTemplate{
	"E001": {
		Category: CategoryConfig,
		Message:  "project config file malformed",
		Detail:   "The operator-owned config file could not be parsed as JSON.",
		DocURL:   "https://nextlite.dev/docs/errors/E001",
	},
	"E002": {
		Category: CategoryConfig,
		Message:  "project config listen address invalid",
		Detail:   "The configured listen address/port is out of range.",
		DocURL:   "https://nextlite.dev/docs/errors/E002",
	},
	"E010": {
		Category: CategoryConfig,
		Message:  "in-VFS framework config parse error",
		Detail:   "A recognized framework config file could not be parsed; defaults are used instead.",
		DocURL:   "https://nextlite.dev/docs/errors/E010",
	},
	"E100": {
		Category: CategoryRoute,
		Message:  "route not found",
		Detail:   "No page, layout, or route handler resolved for this path.",
		DocURL:   "https://nextlite.dev/docs/errors/E100",
	},
	"E101": {
		Category: CategoryRoute,
		Message:  "duplicate route",
		Detail:   "Multiple files resolve to the same URL pattern.",
		DocURL:   "https://nextlite.dev/docs/errors/E101",
	},
	"E102": {
		Category: CategoryRoute,
		Message:  "conflicting param types",
		Detail:   "The same dynamic segment is typed inconsistently across sibling route files.",
		DocURL:   "https://nextlite.dev/docs/errors/E102",
	},
	"E200": {
		Category: CategoryTransform,
		Message:  "transform backend error",
		Detail:   "The injected transform backend returned an error compiling a source module.",
		DocURL:   "https://nextlite.dev/docs/errors/E200",
	},
	"E201": {
		Category: CategoryTransform,
		Message:  "css module parse error",
		Detail:   "The CSS module file could not be parsed by the tokenizer; regex fallback was attempted.",
		DocURL:   "https://nextlite.dev/docs/errors/E201",
	},
	"E300": {
		Category: CategoryHandler,
		Message:  "handler threw",
		Detail:   "The invoked request handler returned or threw an error.",
		DocURL:   "https://nextlite.dev/docs/errors/E300",
	},
	"E301": {
		Category: CategoryHandler,
		Message:  "method not allowed",
		Detail:   "The route handler module does not export a function for the request method.",
		DocURL:   "https://nextlite.dev/docs/errors/E301",
	},
	"E302": {
		Category: CategoryHandler,
		Message:  "handler timed out",
		Detail:   "The handler did not end its response within the hard execution timeout.",
		DocURL:   "https://nextlite.dev/docs/errors/E302",
	},
	"E303": {
		Category: CategoryHandler,
		Message:  "disallowed require target",
		Detail:   "The handler attempted to require a module outside the evaluator's whitelist.",
		DocURL:   "https://nextlite.dev/docs/errors/E303",
	},
	"E400": {
		Category: CategoryWatcher,
		Message:  "failed to watch directory",
		Detail:   "The HMR notifier could not establish a filesystem watch on a routed directory.",
		DocURL:   "https://nextlite.dev/docs/errors/E400",
	},
}
