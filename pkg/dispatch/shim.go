package dispatch

import (
	"fmt"
	"strings"
)

// shimSources holds the synthetic ESM module body served for each
// framework-internal specifier named in the import map (§4.D step 7,
// §4.E step 4).
var shimSources = map[string]string{
	"link": `export default function Link(props) {
  const a = document.createElement("a");
  a.href = props.href;
  a.textContent = props.children;
  a.addEventListener("click", function (e) {
    e.preventDefault();
    window.history.pushState({}, "", props.href);
    window.dispatchEvent(new PopStateEvent("popstate"));
  });
  return a;
}`,
	"router": `export function useRouter() {
  return {
    push: function (href) {
      window.history.pushState({}, "", href);
      window.dispatchEvent(new PopStateEvent("popstate"));
    },
    replace: function (href) {
      window.history.replaceState({}, "", href);
      window.dispatchEvent(new PopStateEvent("popstate"));
    },
    back: function () { window.history.back(); },
  };
}`,
	"head": `export default function Head(props) {
  return props.children;
}`,
	"navigation": `export function usePathname() { return window.location.pathname; }
export function useSearchParams() { return new URLSearchParams(window.location.search); }`,
	"image": `export default function Image(props) {
  const img = document.createElement("img");
  img.src = props.src;
  img.alt = props.alt || "";
  return img;
}`,
	"dynamic": `export default function dynamic(loader) {
  return function DynamicComponent(props) {
    return loader().then(function (mod) { return (mod.default || mod)(props); });
  };
}`,
	"script": `export default function Script(props) {
  const s = document.createElement("script");
  if (props.src) s.src = props.src;
  document.head.appendChild(s);
  return null;
}`,
}

// serveShim implements §4.E step 4: a path under the shim root serves a
// synthetic module, or 404 for an unrecognized name.
func (d *Dispatcher) serveShim(name string) *Response {
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimSuffix(name, ".js")

	if strings.HasPrefix(name, "font/") {
		family := strings.TrimPrefix(name, "font/")
		return jsResponse(fontShimSource(family), nil)
	}

	src, ok := shimSources[name]
	if !ok {
		return textResponse(404, "unknown shim: "+name)
	}
	return jsResponse(src, nil)
}

func fontShimSource(family string) string {
	return fmt.Sprintf(`export default function font() {
  return { className: %q, style: { fontFamily: %q } };
}`, "font-"+family, family)
}
