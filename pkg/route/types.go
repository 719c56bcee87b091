package route

// Mode selects which file-based routing convention a Resolver walks.
type Mode int

const (
	// ModePages is the flat pages/ directory convention.
	ModePages Mode = iota
	// ModeApp is the nested app/ directory convention with layouts,
	// route groups, and convention files.
	ModeApp
)

// extensions is the fixed try order for resolvable source extensions (§4.B).
var extensions = []string{".jsx", ".tsx", ".js", ".ts"}

// ParamValue is either a single bound segment or an ordered sequence of
// segments bound by a catch-all (§3 invariant 3).
type ParamValue struct {
	Single  string
	Multi   []string
	IsMulti bool
}

// Conventions are the nearest ancestor loading/error/not-found files for a
// resolved app-mode route.
type Conventions struct {
	Loading  string
	Error    string
	NotFound string
}

// Entry is the result of resolving a pathname (§3 "Route entry").
type Entry struct {
	// HandlerFile is the VirtualPath of the resolved page/handler module.
	HandlerFile string

	// Layouts are ordered outermost-first (§3 invariant 2). Empty in Pages
	// mode, which has no nested layout convention.
	Layouts []string

	// Params maps dynamic segment name to its bound value.
	Params map[string]ParamValue

	// Conventions are populated only for app-mode page resolution.
	Conventions Conventions
}
