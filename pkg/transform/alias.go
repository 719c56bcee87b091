package transform

import (
	"regexp"
	"strings"
)

// importSpecifierRe matches the string literal inside static import/export
// and dynamic import() specifier positions. It intentionally only matches
// these three shapes, not arbitrary string literals (§4.C step 4/6). It is
// a regex, not a parser: the same shapes inside comments also match.
var importSpecifierRe = regexp.MustCompile(
	`(from\s*['"])([^'"]+)(['"])|(import\s*\(\s*['"])([^'"]+)(['"]\s*\))`,
)

// RewriteAliases rewrites every import/dynamic-import specifier whose value
// begins with a configured alias prefix to an absolute URL rooted at
// virtualPrefix + alias target + remainder (§4.C step 4).
func RewriteAliases(code string, aliasMap map[string]string, virtualPrefix string) string {
	if len(aliasMap) == 0 {
		return code
	}
	return replaceSpecifiers(code, func(spec string) string {
		for prefix, target := range aliasMap {
			if strings.HasPrefix(spec, prefix) {
				rest := strings.TrimPrefix(spec, prefix)
				return virtualPrefix + target + rest
			}
		}
		return spec
	})
}

// replaceSpecifiers applies rewrite to the specifier captured by either
// alternative of importSpecifierRe, reassembling the surrounding syntax.
func replaceSpecifiers(code string, rewrite func(string) string) string {
	return importSpecifierRe.ReplaceAllStringFunc(code, func(match string) string {
		sub := importSpecifierRe.FindStringSubmatch(match)
		if sub[2] != "" {
			return sub[1] + rewrite(sub[2]) + sub[3]
		}
		return sub[4] + rewrite(sub[5]) + sub[6]
	})
}
