// Package config loads the operator-owned devserver.json (§4.I). This is
// distinct from the in-VFS framework config scanned by the Config Resolver
// (pkg/route) — that one is project-owned and silently ignored when
// malformed; this one is operator-owned and a malformed file is a hard
// ConfigError at CLI startup.
//
//	{
//	  "listen": "localhost:3000",
//	  "hmrDebounce": "100ms",
//	  "watchIgnore": ["node_modules", ".git"],
//	  "evaluatorWhitelist": ["strings", "strconv", "fmt"]
//	}
package config
