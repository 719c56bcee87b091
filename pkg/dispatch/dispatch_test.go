package dispatch

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nextlite/nextlite/pkg/evaluator"
	"github.com/nextlite/nextlite/pkg/route"
	"github.com/nextlite/nextlite/pkg/shell"
	"github.com/nextlite/nextlite/pkg/transform"
	"github.com/nextlite/nextlite/pkg/vfs"
)

// stubEvaluator lets tests drive modCtx.Exports directly, without paying
// for a real interpreted-source round trip.
type stubEvaluator struct {
	fn func(ctx context.Context, source string, modCtx *evaluator.Context) error
}

func (s *stubEvaluator) Evaluate(ctx context.Context, source string, modCtx *evaluator.Context) error {
	return s.fn(ctx, source, modCtx)
}

// testFS is the narrower write-capable VFS contract the in-memory
// implementation satisfies; vfs.FS itself exposes no write operations.
type testFS interface {
	vfs.FS
	WriteFile(path string, data []byte) error
	MkdirAll(path string) error
}

func newTestDispatcher(t *testing.T, fs testFS, mode route.Mode, ev evaluator.Evaluator) *Dispatcher {
	t.Helper()
	resolver := route.NewResolver(fs, "/pages", "/app", &mode)
	tr := transform.NewTransformer(transform.PassthroughBackend{}, map[string]string{}, "/__virtual__/3000")
	sh := shell.NewSynthesizer(shell.Config{PublicEnvPrefix: "NEXT_PUBLIC_"})
	if ev == nil {
		ev = &stubEvaluator{fn: func(_ context.Context, _ string, _ *evaluator.Context) error { return nil }}
	}
	return New(Dispatcher{
		FS:            fs,
		Resolver:      resolver,
		Transformer:   tr,
		Shell:         sh,
		Evaluator:     ev,
		Config:        &route.Config{AliasMap: map[string]string{}},
		VirtualPrefix: "/__virtual__/3000",
	})
}

func writeFile(t *testing.T, fs testFS, p, content string) {
	t.Helper()
	dir := p[:strings.LastIndex(p, "/")]
	if dir != "" {
		if err := fs.MkdirAll(dir); err != nil {
			t.Fatalf("MkdirAll(%q): %v", dir, err)
		}
	}
	if err := fs.WriteFile(p, []byte(content)); err != nil {
		t.Fatalf("WriteFile(%q): %v", p, err)
	}
}

func TestShimRouteServesSyntheticModule(t *testing.T) {
	fs := vfs.NewMemory()
	d := newTestDispatcher(t, fs, route.ModePages, nil)

	resp := d.HandleRequest(context.Background(), Request{Method: "GET", URL: "/_next/shims/router.js"})
	if resp.Status != 200 {
		t.Fatalf("status = %d, want 200", resp.Status)
	}
	if !strings.Contains(string(resp.Body), "useRouter") {
		t.Fatalf("body missing useRouter: %s", resp.Body)
	}
}

func TestRouteInfoReportsDynamicParams(t *testing.T) {
	fs := vfs.NewMemory()
	writeFile(t, fs, "/pages/posts/[id].jsx", "export default function Post() {}")
	d := newTestDispatcher(t, fs, route.ModePages, nil)

	resp := d.HandleRequest(context.Background(), Request{
		Method: "GET",
		URL:    "/_next/route-info?pathname=/posts/42",
	})
	if resp.Status != 200 {
		t.Fatalf("status = %d, want 200", resp.Status)
	}
	if !strings.Contains(string(resp.Body), `"id":"42"`) {
		t.Fatalf("body missing bound param: %s", resp.Body)
	}
}

func TestLazyPagesServesTransformedModule(t *testing.T) {
	fs := vfs.NewMemory()
	writeFile(t, fs, "/pages/index.jsx", "export default function Home() { return null; }")
	d := newTestDispatcher(t, fs, route.ModePages, nil)

	resp := d.HandleRequest(context.Background(), Request{Method: "GET", URL: "/_next/pages/index.js"})
	if resp.Status != 200 {
		t.Fatalf("status = %d, want 200", resp.Status)
	}
	if resp.Headers["Content-Type"] != "application/javascript; charset=utf-8" {
		t.Fatalf("unexpected content type: %v", resp.Headers)
	}
	if !strings.Contains(string(resp.Body), "Home") {
		t.Fatalf("body missing Home: %s", resp.Body)
	}
}

func TestPublicAssetPassthrough(t *testing.T) {
	fs := vfs.NewMemory()
	writeFile(t, fs, "/public/robots.txt", "User-agent: *\n")
	d := newTestDispatcher(t, fs, route.ModePages, nil)

	resp := d.HandleRequest(context.Background(), Request{Method: "GET", URL: "/robots.txt"})
	if resp.Status != 200 {
		t.Fatalf("status = %d, want 200", resp.Status)
	}
	if string(resp.Body) != "User-agent: *\n" {
		t.Fatalf("unexpected body: %s", resp.Body)
	}
}

func TestPageRouteSynthesizesShell(t *testing.T) {
	fs := vfs.NewMemory()
	writeFile(t, fs, "/pages/about.jsx", "export default function About() {}")
	d := newTestDispatcher(t, fs, route.ModePages, nil)

	resp := d.HandleRequest(context.Background(), Request{Method: "GET", URL: "/about"})
	if resp.Status != 200 {
		t.Fatalf("status = %d, want 200", resp.Status)
	}
	if !strings.Contains(string(resp.Body), `id="__next"`) {
		t.Fatalf("body missing mount point: %s", resp.Body)
	}
}

func TestUnknownRouteFallsBackToBuiltin404(t *testing.T) {
	fs := vfs.NewMemory()
	d := newTestDispatcher(t, fs, route.ModePages, nil)

	resp := d.HandleRequest(context.Background(), Request{Method: "GET", URL: "/nothing-here"})
	if resp.Status != 404 {
		t.Fatalf("status = %d, want 404", resp.Status)
	}
}

func TestCustom404PageIsSynthesized(t *testing.T) {
	fs := vfs.NewMemory()
	writeFile(t, fs, "/pages/404.jsx", "export default function NotFound() {}")
	d := newTestDispatcher(t, fs, route.ModePages, nil)

	resp := d.HandleRequest(context.Background(), Request{Method: "GET", URL: "/nothing-here"})
	if resp.Status != 404 {
		t.Fatalf("status = %d, want 404", resp.Status)
	}
	if !strings.Contains(string(resp.Body), `id="__next"`) {
		t.Fatalf("body missing mount point: %s", resp.Body)
	}
}

func TestWebStyleHandlerInvokesMatchingMethodExport(t *testing.T) {
	fs := vfs.NewMemory()
	writeFile(t, fs, "/app/api/ping/route.jsx", "export function GET() {}")
	ev := &stubEvaluator{fn: func(_ context.Context, _ string, modCtx *evaluator.Context) error {
		modCtx.Exports["GET"] = func(req *evaluator.Request) *evaluator.Response {
			return evaluator.JSON(200, []byte(`{"ok":true}`))
		}
		return nil
	}}
	d := newTestDispatcher(t, fs, route.ModeApp, ev)

	resp := d.HandleRequest(context.Background(), Request{Method: "GET", URL: "/api/ping"})
	if resp.Status != 200 {
		t.Fatalf("status = %d, want 200", resp.Status)
	}
	if !strings.Contains(string(resp.Body), `"ok":true`) {
		t.Fatalf("unexpected body: %s", resp.Body)
	}
}

func TestWebStyleHandlerRejectsUnhandledMethod(t *testing.T) {
	fs := vfs.NewMemory()
	writeFile(t, fs, "/app/api/ping/route.jsx", "export function GET() {}")
	ev := &stubEvaluator{fn: func(_ context.Context, _ string, modCtx *evaluator.Context) error {
		modCtx.Exports["GET"] = func(req *evaluator.Request) *evaluator.Response {
			return evaluator.JSON(200, []byte(`{}`))
		}
		return nil
	}}
	d := newTestDispatcher(t, fs, route.ModeApp, ev)

	resp := d.HandleRequest(context.Background(), Request{Method: "POST", URL: "/api/ping"})
	if resp.Status != 405 {
		t.Fatalf("status = %d, want 405", resp.Status)
	}
}

func TestLegacyHandlerWritesJSONResponse(t *testing.T) {
	fs := vfs.NewMemory()
	writeFile(t, fs, "/pages/api/hello.jsx", "export default function handler(req, res) {}")
	ev := &stubEvaluator{fn: func(_ context.Context, _ string, modCtx *evaluator.Context) error {
		modCtx.Exports["default"] = legacyHandlerFunc(func(req *LegacyRequest, res *ResSink) {
			res.Status(200).JSON(map[string]string{"name": req.Query.Get("name")})
		})
		return nil
	}}
	d := newTestDispatcher(t, fs, route.ModePages, ev)

	resp := d.HandleRequest(context.Background(), Request{Method: "GET", URL: "/api/hello?name=ada"})
	if resp.Status != 200 {
		t.Fatalf("status = %d, want 200", resp.Status)
	}
	if !strings.Contains(string(resp.Body), `"name":"ada"`) {
		t.Fatalf("unexpected body: %s", resp.Body)
	}
}

func TestLegacyHandlerThatNeverEndsTimesOut(t *testing.T) {
	fs := vfs.NewMemory()
	writeFile(t, fs, "/pages/api/hang.jsx", "export default function handler(req, res) {}")
	ev := &stubEvaluator{fn: func(_ context.Context, _ string, modCtx *evaluator.Context) error {
		modCtx.Exports["default"] = legacyHandlerFunc(func(req *LegacyRequest, res *ResSink) {
			// never calls res.End
		})
		return nil
	}}
	d := newTestDispatcher(t, fs, route.ModePages, ev)
	d.HandlerTimeout = 10 * time.Millisecond

	resp := d.HandleRequest(context.Background(), Request{Method: "GET", URL: "/api/hang"})
	if resp.Status != 500 {
		t.Fatalf("status = %d, want 500", resp.Status)
	}
}

func TestStreamingRequestDeliversStartChunkEndOrder(t *testing.T) {
	fs := vfs.NewMemory()
	writeFile(t, fs, "/pages/api/stream.jsx", "export default function handler(req, res) {}")
	ev := &stubEvaluator{fn: func(_ context.Context, _ string, modCtx *evaluator.Context) error {
		modCtx.Exports["default"] = legacyHandlerFunc(func(req *LegacyRequest, res *ResSink) {
			res.SetHeader("Content-Type", "text/plain")
			res.Write([]byte("a"))
			res.Write([]byte("b"))
			res.End()
		})
		return nil
	}}
	d := newTestDispatcher(t, fs, route.ModePages, ev)

	var events []string
	cb := StreamCallbacks{
		OnStart: func(status int, headers map[string]string) { events = append(events, "start") },
		OnChunk: func(chunk []byte) { events = append(events, "chunk:"+string(chunk)) },
		OnEnd:   func() { events = append(events, "end") },
	}
	d.HandleStreamingRequest(context.Background(), Request{Method: "GET", URL: "/api/stream"}, cb)

	want := []string{"start", "chunk:a", "chunk:b", "end"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
}

func TestStripPrefixesCollapsesDoubledSlash(t *testing.T) {
	fs := vfs.NewMemory()
	d := newTestDispatcher(t, fs, route.ModePages, nil)
	d.Config = &route.Config{BasePath: "/docs", AssetPrefix: "/cdn"}

	pathname, ok := d.stripPrefixes("/cdn/docs//about")
	if !ok {
		t.Fatalf("stripPrefixes reported unresolved")
	}
	if pathname != "/about" {
		t.Fatalf("pathname = %q, want /about", pathname)
	}
}
