package transform

import (
	"fmt"
	"regexp"
	"strings"
)

// componentBindingRe detects top-level function/const bindings whose name
// begins with an uppercase letter — the component heuristic of §4.C step 7.
var componentBindingRe = regexp.MustCompile(
	`(?m)^(?:export\s+)?(?:default\s+)?(?:function\s+([A-Z]\w*)|const\s+([A-Z]\w*)\s*=)`,
)

// InjectReactRefresh appends, for every component-heuristic binding found
// in code, registration + post-update refresh calls, per §4.C step 7.
// Only meaningful for JSX/TSX sources; callers gate on file extension.
func InjectReactRefresh(code string) string {
	names := map[string]struct{}{}
	for _, m := range componentBindingRe.FindAllStringSubmatch(code, -1) {
		name := m[1]
		if name == "" {
			name = m[2]
		}
		names[name] = struct{}{}
	}
	if len(names) == 0 {
		return code
	}

	var b strings.Builder
	b.WriteString(code)
	b.WriteString("\n// react-refresh registration\n")
	for name := range names {
		fmt.Fprintf(&b, "globalThis.$RefreshReg$ && globalThis.$RefreshReg$(%s, %q);\n", name, name)
	}
	b.WriteString("globalThis.$RefreshRuntime$ && globalThis.$RefreshRuntime$.performReactRefresh();\n")
	return b.String()
}
