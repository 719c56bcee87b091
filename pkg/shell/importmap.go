package shell

import (
	"fmt"
	"io"
	"sort"
)

// frameworkShims are the internal specifiers §4.D step 7 requires to
// resolve to server-served shim modules, mirroring next/link, next/router,
// etc.
var frameworkShims = []string{
	"link", "router", "head", "navigation", "image", "dynamic", "script",
}

// frameworkRuntime are the specifiers resolved against the runtime CDN
// instead of a local shim.
var frameworkRuntime = []string{"react", "react-dom", "react-dom/client"}

// writeImportMap implements §4.D step 7.
func (s *Synthesizer) writeImportMap(w io.Writer, data Data) error {
	imports := map[string]string{}

	for _, name := range frameworkShims {
		imports["next/"+name] = fmt.Sprintf("%s/_next/shims/%s.js", data.VirtualPrefix, name)
	}
	imports["next/font/"] = fmt.Sprintf("%s/_next/shims/font/", data.VirtualPrefix)

	for _, name := range frameworkRuntime {
		imports[name] = s.cfg.RuntimeCDN + name
	}

	keys := make([]string, 0, len(imports))
	for k := range imports {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if _, err := w.Write([]byte("  <script type=\"importmap\">\n  {\"imports\":{")); err != nil {
		return err
	}
	for i, k := range keys {
		if i > 0 {
			if _, err := w.Write([]byte(",")); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s:%s", jsString(k), jsString(imports[k])); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte("}}\n  </script>\n"))
	return err
}
