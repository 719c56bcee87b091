package transform

import "strings"

// DefaultCDN is the specifier-rewrite target for bare imports (§4.C step 6).
const DefaultCDN = "https://esm.sh/"

// reservedPrefixes are specifiers left untouched by the bare-import rewrite:
// relative/absolute paths and the framework-internal shim namespace.
var reservedPrefixes = []string{".", "/", "next/"}

// RewriteBareImports redirects bare specifiers (neither relative, absolute,
// nor in the reserved next/ family) to a CDN. No JS parser exists in this
// port (see DESIGN.md), so the same targeted specifier-position regex used
// by RewriteAliases is reused here instead of a full AST rewrite. It only
// matches `from "..."` and `import("...")` shapes, so ordinary string
// literals are left alone; those same shapes inside comments or string
// contents are still rewritten.
func RewriteBareImports(code string) string {
	return replaceSpecifiers(code, func(spec string) string {
		if isBareSpecifier(spec) {
			return DefaultCDN + spec
		}
		return spec
	})
}

func isBareSpecifier(spec string) bool {
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(spec, prefix) {
			return false
		}
	}
	return true
}
