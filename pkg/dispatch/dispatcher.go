package dispatch

import (
	"context"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/nextlite/nextlite/pkg/evaluator"
	"github.com/nextlite/nextlite/pkg/route"
	"github.com/nextlite/nextlite/pkg/routepath"
	"github.com/nextlite/nextlite/pkg/shell"
	"github.com/nextlite/nextlite/pkg/transform"
	"github.com/nextlite/nextlite/pkg/vfs"
)

// Reserved URL roots served synthetically (§6).
const (
	ShimRoot      = "/_next/shims"
	RouteInfoPath = "/_next/route-info"
	PagesLazyRoot = "/_next/pages"
	AppLazyRoot   = "/_next/app"
	StaticRoot    = "/_next/static"
)

var virtualPrefixRe = regexp.MustCompile(`^/__virtual__/\d+`)

// Dispatcher implements §4.E's decision order over a VFS, a route
// Resolver, a Transformer, a shell Synthesizer, and a Module Evaluator.
type Dispatcher struct {
	FS          vfs.FS
	Resolver    *route.Resolver
	Transformer *transform.Transformer
	Shell       *shell.Synthesizer
	Evaluator   evaluator.Evaluator

	Config        *route.Config
	PagesDir      string
	AppDir        string
	PublicDir     string
	VirtualPrefix string

	Env             map[string]string
	HandlerTimeout  time.Duration
	RequireWhitelist map[string]bool

	logger *slog.Logger
}

// New constructs a Dispatcher. Defaults are applied for PagesDir/AppDir/
// PublicDir if empty, matching §6's config-surface defaults.
func New(d Dispatcher) *Dispatcher {
	if d.PagesDir == "" {
		d.PagesDir = "/pages"
	}
	if d.AppDir == "" {
		d.AppDir = "/app"
	}
	if d.PublicDir == "" {
		d.PublicDir = "/public"
	}
	if d.HandlerTimeout <= 0 {
		d.HandlerTimeout = 30 * time.Second
	}
	d.logger = slog.Default().With("component", "dispatcher")
	return &d
}

// HandleRequest is the unary top-level entry point (§4.E).
func (d *Dispatcher) HandleRequest(ctx context.Context, req Request) *Response {
	resp, err := d.route(ctx, req)
	if err != nil {
		d.logger.Debug("dispatch error", "url", req.URL, "error", err)
		return textResponse(500, "Internal Server Error")
	}
	d.logger.Debug("dispatched", "url", req.URL, "status", resp.Status)
	return resp
}

// HandleStreamingRequest drives cb.OnStart exactly once before any
// cb.OnChunk, and cb.OnEnd exactly once after the last chunk (§8
// invariant 5). Only legacy-style (§4.E.2) handlers produce more than a
// single chunk; everything else, app-router (§4.E.1) handlers included,
// degrades to one start + one chunk + one end.
func (d *Dispatcher) HandleStreamingRequest(ctx context.Context, req Request, cb StreamCallbacks) {
	pathname, ok := d.stripPrefixes(req.URL)
	if ok && strings.HasPrefix(pathname, "/api/") {
		// App-router route handlers take precedence over legacy /api/
		// handlers, as in route's decision order (step 8 before step 9).
		appHandler := false
		if d.Resolver.Mode() == route.ModeApp {
			_, appHandler = d.Resolver.ResolveRouteHandler(pathname)
		}
		if !appHandler {
			d.streamLegacyHandler(ctx, req, pathname, cb)
			return
		}
	}

	resp := d.HandleRequest(ctx, req)
	cb.OnStart(resp.Status, resp.Headers)
	cb.OnChunk(resp.Body)
	cb.OnEnd()
}

// route implements the fourteen-step decision order.
func (d *Dispatcher) route(ctx context.Context, req Request) (*Response, error) {
	pathname, ok := d.stripPrefixes(req.URL)
	if !ok {
		return htmlResponse(404, notFoundHTML), nil
	}

	// 4. Shim root.
	if strings.HasPrefix(pathname, ShimRoot) {
		return d.serveShim(strings.TrimPrefix(pathname, ShimRoot)), nil
	}

	// 5. Route-info endpoint.
	if pathname == RouteInfoPath {
		return d.serveRouteInfo(req.URL), nil
	}

	// 6. Pages/app lazy-load roots.
	if strings.HasPrefix(pathname, PagesLazyRoot) {
		return d.serveLazyPages(ctx, strings.TrimPrefix(pathname, PagesLazyRoot))
	}
	if strings.HasPrefix(pathname, AppLazyRoot) {
		return d.serveLazyApp(ctx, strings.TrimPrefix(pathname, AppLazyRoot))
	}

	// 7. Static-asset root.
	if strings.HasPrefix(pathname, StaticRoot) {
		if resp := d.servePublicFile(strings.TrimPrefix(pathname, StaticRoot)); resp != nil {
			return resp, nil
		}
		return htmlResponse(404, notFoundHTML), nil
	}

	// 8. App-router route.<ext> handler.
	if d.Resolver.Mode() == route.ModeApp {
		if entry, found := d.Resolver.ResolveRouteHandler(pathname); found {
			return d.handleWebStyle(ctx, req, entry)
		}
	}

	// 9. Legacy /api/ handler.
	if strings.HasPrefix(pathname, "/api/") {
		return d.handleLegacy(ctx, req, pathname)
	}

	// 10. Public asset passthrough.
	if resp := d.servePublicFile(pathname); resp != nil {
		return resp, nil
	}

	// 11/12. Direct or extensionless transformable module.
	if resp, handled, err := d.serveTransformableFile(ctx, pathname); handled {
		return resp, err
	}

	// 13. Raw file.
	if d.FS.Exists(pathname) && !d.FS.IsDir(pathname) {
		data, err := d.FS.ReadFile(pathname)
		if err != nil {
			return nil, err
		}
		return &Response{Status: 200, StatusMessage: "OK", Headers: map[string]string{}, Body: data}, nil
	}

	// 14. Page route.
	return d.handlePageRoute(pathname)
}

// stripPrefixes implements decision-order steps 1-3: virtual prefix,
// asset prefix (tolerating a doubled slash from concatenation), then
// base path. The raw URL is canonicalized first so that the prefix
// strings being compared are never fooled by ".."/"//" noise.
func (d *Dispatcher) stripPrefixes(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	path := rawURL
	if err == nil && u.Path != "" {
		path = u.Path
	}

	result, err := routepath.CanonicalizePath(path)
	if err != nil {
		return "", false
	}
	pathname := result.Path

	if m := virtualPrefixRe.FindString(pathname); m != "" {
		pathname = strings.TrimPrefix(pathname, m)
		if pathname == "" {
			pathname = "/"
		}
	}

	if d.Config != nil && d.Config.AssetPrefix != "" {
		pathname = stripPrefixTolerant(pathname, d.Config.AssetPrefix)
	}
	if d.Config != nil && d.Config.BasePath != "" {
		pathname = stripPrefixTolerant(pathname, d.Config.BasePath)
	}

	if pathname == "" {
		pathname = "/"
	}
	return pathname, true
}

// stripPrefixTolerant removes prefix from p, collapsing the doubled slash
// left behind when assetPrefix and basePath concatenate (§4.E step 2).
func stripPrefixTolerant(p, prefix string) string {
	if !strings.HasPrefix(p, prefix) {
		return p
	}
	rest := strings.TrimPrefix(p, prefix)
	rest = "/" + strings.TrimPrefix(rest, "/")
	return rest
}

const notFoundHTML = `<!DOCTYPE html><html><body><h1>404</h1><p>Not found.</p></body></html>`
