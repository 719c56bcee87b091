// Package route implements the Config Resolver (§4.A) and the Route
// Resolver (§4.B): scanning in-VFS framework config for basePath/
// assetPrefix/aliases, and walking the routed directory tree to resolve a
// pathname to a page/handler file plus its enclosing layouts and
// convention files.
package route

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/nextlite/nextlite/pkg/vfs"
)

// Config holds the values the Config Resolver extracts from the VFS.
type Config struct {
	BasePath    string
	AssetPrefix string
	AliasMap    map[string]string // alias prefix (without trailing "*") -> VFS target prefix
}

// configFiles is the fixed scan order for framework config files. These
// are ordinary JS/TS modules, not JSON, so values are extracted with a
// targeted regex rather than a full JS parse (no JS parser exists in this
// port — see DESIGN.md).
var configFiles = []string{
	"/next.config.js",
	"/next.config.mjs",
	"/next.config.ts",
	"/nextlite.config.js",
}

// tsconfigFiles is the scan order for the TypeScript-style path-alias file.
var tsconfigFiles = []string{
	"/tsconfig.json",
	"/jsconfig.json",
}

var (
	basePathRe    = regexp.MustCompile(`basePath\s*:\s*['"]([^'"]*)['"]`)
	assetPrefixRe = regexp.MustCompile(`assetPrefix\s*:\s*['"]([^'"]*)['"]`)
)

// ResolveConfig scans fs for recognized framework config files and returns
// the extracted Config. Parse errors are non-fatal: they are silently
// ignored and the defaults are kept (§4.A / ConfigParseError in §7).
func ResolveConfig(fs vfs.FS) *Config {
	cfg := &Config{AliasMap: map[string]string{}}

	for _, name := range configFiles {
		if !fs.Exists(name) {
			continue
		}
		data, err := fs.ReadFile(name)
		if err != nil {
			continue
		}
		src := string(data)
		if m := basePathRe.FindStringSubmatch(src); m != nil {
			cfg.BasePath = normalizePrefix(m[1])
		}
		if m := assetPrefixRe.FindStringSubmatch(src); m != nil {
			cfg.AssetPrefix = normalizePrefix(m[1])
		}
		break
	}

	for _, name := range tsconfigFiles {
		if !fs.Exists(name) {
			continue
		}
		data, err := fs.ReadFile(name)
		if err != nil {
			continue
		}
		parseTSConfigAliases(data, cfg.AliasMap)
		break
	}

	return cfg
}

// normalizePrefix forces a leading "/" and removes a trailing "/".
func normalizePrefix(p string) string {
	if p == "" {
		return ""
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

type tsconfig struct {
	CompilerOptions struct {
		Paths map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

// parseTSConfigAliases reads compilerOptions.paths and, for every alias
// pattern ending in "*", registers a prefix mapping from alias-without-star
// to target-without-star. The first target entry wins.
func parseTSConfigAliases(data []byte, out map[string]string) {
	var tc tsconfig
	if err := json.Unmarshal(data, &tc); err != nil {
		return
	}
	for alias, targets := range tc.CompilerOptions.Paths {
		if len(targets) == 0 || !strings.HasSuffix(alias, "*") {
			continue
		}
		aliasPrefix := strings.TrimSuffix(alias, "*")
		target := strings.TrimSuffix(targets[0], "*")
		target = strings.TrimPrefix(target, "./")
		if !strings.HasPrefix(target, "/") {
			target = "/" + target
		}
		if _, exists := out[aliasPrefix]; !exists {
			out[aliasPrefix] = target
		}
	}
}
