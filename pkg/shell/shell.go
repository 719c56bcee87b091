package shell

import (
	"fmt"
	"io"
	"sort"

	"github.com/nextlite/nextlite/pkg/route"
)

// Config carries the synthesizer-wide settings that don't vary per request:
// the env filter, the style framework discovery result, and the import map
// base. Per-request specifics live in Data.
type Config struct {
	// PublicEnvPrefix is the prefix that marks an env var as safe to expose
	// to the browser (e.g. "NEXT_PUBLIC_").
	PublicEnvPrefix string

	// Env is the full server-side environment; only keys matching
	// PublicEnvPrefix are written into the document (§4.D step 2).
	Env map[string]string

	// StyleCDN, when non-empty, is injected as a <link> before the user's
	// style-framework config script (§4.D step 3).
	StyleCDN string

	// StyleFrameworkScript is an optional VFS-discovered config script
	// (e.g. a Tailwind CDN config) inlined verbatim.
	StyleFrameworkScript string

	// GlobalStylesheets are href values for discovered global CSS files
	// (§4.D step 5).
	GlobalStylesheets []string

	// HMRChannelTag tags postMessage events so the client only reacts to
	// messages from this server instance (§4.D step 8).
	HMRChannelTag string

	// RuntimeCDN is the base URL framework-runtime specifiers (react,
	// react-dom) resolve to, e.g. "https://esm.sh/".
	RuntimeCDN string
}

// Data is the per-request shell payload.
type Data struct {
	Mode route.Mode

	// VirtualPrefix roots every server-relative URL written into the
	// document, e.g. "/__virtual__/3000".
	VirtualPrefix string

	// BasePath is written into the env script as __NEXT_BASE_PATH__ and
	// bound in the mount script; the mount script does not prepend it to
	// navigation URLs.
	BasePath string

	// Pathname is the resolved request path (prefixes already stripped).
	Pathname string

	// HandlerFile is the VFS path of the resolved page module.
	HandlerFile string

	// LogicalPath is the logical pages-mode path used to build the
	// /_next/pages/<logical-path>.js lazy-load URL.
	LogicalPath string

	// Layouts are app-mode layout VFS paths, outermost first.
	Layouts []string
}

// Synthesizer renders the bootstrap document described by §4.D.
type Synthesizer struct {
	cfg Config
}

// NewSynthesizer constructs a Synthesizer bound to cfg.
func NewSynthesizer(cfg Config) *Synthesizer {
	if cfg.RuntimeCDN == "" {
		cfg.RuntimeCDN = "https://esm.sh/"
	}
	if cfg.HMRChannelTag == "" {
		cfg.HMRChannelTag = "nextlite-hmr"
	}
	return &Synthesizer{cfg: cfg}
}

// Synthesize writes the full bootstrap document to w, in the ten steps of
// §4.D, in order.
func (s *Synthesizer) Synthesize(w io.Writer, data Data) error {
	if _, err := w.Write([]byte("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n  <meta charset=\"utf-8\">\n")); err != nil {
		return err
	}

	// Step 1: base tag rooted at the virtual prefix.
	if _, err := fmt.Fprintf(w, "  <base href=\"%s/\">\n", escapeAttr(data.VirtualPrefix)); err != nil {
		return err
	}

	// Step 2: environment-injection script.
	if err := s.writeEnvScript(w, data); err != nil {
		return err
	}

	// Step 3: optional style CDN + style-framework config script.
	if s.cfg.StyleCDN != "" {
		if _, err := fmt.Fprintf(w, "  <link rel=\"stylesheet\" href=\"%s\">\n", escapeAttr(s.cfg.StyleCDN)); err != nil {
			return err
		}
	}
	if s.cfg.StyleFrameworkScript != "" {
		if _, err := fmt.Fprintf(w, "  <script>%s</script>\n", s.cfg.StyleFrameworkScript); err != nil {
			return err
		}
	}

	// Step 4: CORS-proxy helpers.
	if _, err := w.Write([]byte(corsProxyScript)); err != nil {
		return err
	}

	// Step 5: global CSS links.
	for _, href := range s.cfg.GlobalStylesheets {
		if _, err := fmt.Fprintf(w, "  <link rel=\"stylesheet\" href=\"%s\">\n", escapeAttr(href)); err != nil {
			return err
		}
	}

	// Step 6: React Refresh preamble, must precede the module graph.
	if _, err := fmt.Fprintf(w, reactRefreshPreamble, jsString(s.cfg.RuntimeCDN+"react-refresh/runtime")); err != nil {
		return err
	}

	// Step 7: import map.
	if err := s.writeImportMap(w, data); err != nil {
		return err
	}

	if _, err := w.Write([]byte("</head>\n<body>\n  <div id=\"__next\"></div>\n")); err != nil {
		return err
	}

	// Step 8: HMR client script.
	if err := s.writeHMRClient(w); err != nil {
		return err
	}

	// Step 9: mount script.
	if err := s.writeMountScript(w, data); err != nil {
		return err
	}

	// Step 10: init timestamp marker, used by tests.
	if _, err := w.Write([]byte("  <script>window.__NEXTLITE_INIT__ = Date.now();</script>\n")); err != nil {
		return err
	}

	_, err := w.Write([]byte("</body>\n</html>\n"))
	return err
}

// writeEnvScript implements §4.D step 2: only public-prefixed keys, plus
// the base-path constant, ever reach the document.
func (s *Synthesizer) writeEnvScript(w io.Writer, data Data) error {
	public := map[string]string{}
	for k, v := range s.cfg.Env {
		if s.cfg.PublicEnvPrefix != "" && hasPrefix(k, s.cfg.PublicEnvPrefix) {
			public[k] = v
		}
	}
	keys := make([]string, 0, len(public))
	for k := range public {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	if _, err := w.Write([]byte("  <script>\n    window.process = window.process || {};\n    process.env = {")); err != nil {
		return err
	}
	for i, k := range keys {
		if i > 0 {
			if _, err := w.Write([]byte(",")); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s:%s", jsString(k), jsString(public[k])); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "};\n    window.__NEXT_BASE_PATH__ = %s;\n  </script>\n", jsString(data.BasePath)); err != nil {
		return err
	}
	return nil
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

const corsProxyScript = `  <script>
    window.__nextliteFetchProxy = function (input, init) {
      return window.fetch(input, init);
    };
  </script>
`
