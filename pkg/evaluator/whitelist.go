package evaluator

import (
	"fmt"
	"strings"
)

// validateImports rejects any import in source that isn't in whitelist,
// mirroring the pack's sandboxed-interpreter import check. contextPkgPath
// is always allowed: it's the injected runtime every handler body needs
// to reference Context/Request/Response/JSON, not a user require.
func validateImports(source string, whitelist map[string]bool) error {
	var forbidden []string
	inBlock := false

	for _, line := range strings.Split(source, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "import (") {
			inBlock = true
			continue
		}
		if inBlock && strings.HasPrefix(trimmed, ")") {
			inBlock = false
			continue
		}

		var pkg string
		switch {
		case inBlock:
			pkg = strings.Trim(trimmed, `"`)
		case strings.HasPrefix(trimmed, "import "):
			pkg = strings.Trim(strings.TrimPrefix(trimmed, "import "), `"`)
		default:
			continue
		}
		pkg = strings.TrimSpace(pkg)
		if pkg == "" {
			continue
		}
		if alias := strings.Fields(pkg); len(alias) == 2 {
			pkg = strings.Trim(alias[1], `"`)
		}
		if pkg != contextPkgPath && !whitelist[pkg] {
			forbidden = append(forbidden, pkg)
		}
	}

	if len(forbidden) > 0 {
		return fmt.Errorf("disallowed import(s): %s", strings.Join(forbidden, ", "))
	}
	return nil
}
