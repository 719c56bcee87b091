package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/nextlite/nextlite/pkg/route"
)

// writeMountScript implements §4.D step 9: the client-side router that
// lazy-loads the page module (and, in app mode, its layouts). The page and
// layout URLs are fixed when the document is synthesized: on popstate it
// re-imports those same modules and refetches only the route params for
// the new pathname; it does not resolve a different page or layout chain.
func (s *Synthesizer) writeMountScript(w io.Writer, data Data) error {
	pageURL := pagesLazyLoadURL(data)
	layoutURLs := make([]string, 0, len(data.Layouts))
	for _, l := range data.Layouts {
		layoutURLs = append(layoutURLs, appLazyLoadURL(data.VirtualPrefix, l))
	}

	layoutsLiteral := "["
	for i, u := range layoutURLs {
		if i > 0 {
			layoutsLiteral += ","
		}
		layoutsLiteral += jsString(u)
	}
	layoutsLiteral += "]"

	_, err := fmt.Fprintf(w, mountTemplate,
		jsString(data.BasePath),
		layoutsLiteral,
		jsString(pageURL),
		jsString(data.VirtualPrefix),
		jsString(data.Pathname),
	)
	return err
}

// pagesLazyLoadURL builds the pages-mode or app-mode module URL per §4.D
// step 9's two URL shapes.
func pagesLazyLoadURL(data Data) string {
	if data.Mode == route.ModeApp {
		return appLazyLoadURL(data.VirtualPrefix, data.HandlerFile)
	}
	logical := strings.TrimSuffix(data.LogicalPath, "/")
	return fmt.Sprintf("%s/_next/pages%s.js", data.VirtualPrefix, logical)
}

// appLazyLoadURL maps a VFS source path to its /_next/app lazy-load URL,
// replacing the real extension with .js.
func appLazyLoadURL(virtualPrefix, vfsPath string) string {
	ext := extOf(vfsPath)
	trimmed := strings.TrimSuffix(vfsPath, ext)
	return fmt.Sprintf("%s/_next/app%s.js", virtualPrefix, trimmed)
}

func extOf(p string) string {
	i := strings.LastIndex(p, ".")
	if i < 0 {
		return ""
	}
	return p[i:]
}

const mountTemplate = `  <script type="module">
    (async function () {
      const NOT_FOUND = Symbol.for("nextlite.notFound");
      const basePath = %s;

      async function importModule(url) {
        const mod = await import(url);
        return mod.default || mod;
      }

      async function renderAsync(factory, props) {
        try {
          const result = factory(props);
          if (result && typeof result.then === "function") {
            return await result;
          }
          return result;
        } catch (err) {
          if (err === NOT_FOUND) throw NOT_FOUND;
          throw err;
        }
      }

      async function mount(pathname) {
        const root = document.getElementById("__next");
        try {
          const layoutUrls = %s;
          const layouts = await Promise.all(layoutUrls.map(importModule));
          const Page = await importModule(%s);

          const routeInfo = await fetch(
            %s + "/_next/route-info?pathname=" + encodeURIComponent(pathname)
          ).then((r) => r.json());
          window.__NEXTLITE_PARAMS__ = routeInfo.params || {};

          let tree = await renderAsync(Page, { params: routeInfo.params });
          for (let i = layouts.length - 1; i >= 0; i--) {
            tree = await renderAsync(layouts[i], { children: tree, params: routeInfo.params });
          }
          root.__nextliteTree = tree;
        } catch (err) {
          console.error("nextlite: mount failed", err);
        }
      }

      window.addEventListener("popstate", function () {
        mount(window.location.pathname);
      });

      await mount(%s);
    })();
  </script>
`
