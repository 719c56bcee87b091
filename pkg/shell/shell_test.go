package shell

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nextlite/nextlite/pkg/route"
)

func testConfig() Config {
	return Config{
		PublicEnvPrefix: "NEXT_PUBLIC_",
		Env: map[string]string{
			"NEXT_PUBLIC_API_URL": "https://api.example.com",
			"DATABASE_PASSWORD":   "super-secret",
		},
		GlobalStylesheets: []string{"/global.css"},
	}
}

func TestSynthesizeOnlyExposesPublicEnv(t *testing.T) {
	s := NewSynthesizer(testConfig())
	var buf bytes.Buffer
	err := s.Synthesize(&buf, Data{
		Mode:          route.ModePages,
		VirtualPrefix: "/__virtual__/3000",
		LogicalPath:   "/index",
		HandlerFile:   "/pages/index.jsx",
		Pathname:      "/",
	})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "NEXT_PUBLIC_API_URL") {
		t.Fatal("expected public env var in document")
	}
	if strings.Contains(out, "super-secret") || strings.Contains(out, "DATABASE_PASSWORD") {
		t.Fatal("confidential env var leaked into document")
	}
}

func TestSynthesizeIncludesImportMapAndMountPoint(t *testing.T) {
	s := NewSynthesizer(testConfig())
	var buf bytes.Buffer
	err := s.Synthesize(&buf, Data{
		Mode:          route.ModePages,
		VirtualPrefix: "/__virtual__/3000",
		LogicalPath:   "/index",
		HandlerFile:   "/pages/index.jsx",
		Pathname:      "/",
	})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, `id="__next"`) {
		t.Fatal("missing mount point div")
	}
	if !strings.Contains(out, "importmap") {
		t.Fatal("missing import map script")
	}
	if !strings.Contains(out, "/_next/shims/link.js") {
		t.Fatal("missing framework shim entry")
	}
	if !strings.Contains(out, "https://esm.sh/react") {
		t.Fatal("missing runtime CDN entry for react")
	}
	if !strings.Contains(out, "/_next/pages/index.js") {
		t.Fatal("missing pages lazy-load URL")
	}
}

func TestSynthesizeAppModeUsesLayoutChain(t *testing.T) {
	s := NewSynthesizer(testConfig())
	var buf bytes.Buffer
	err := s.Synthesize(&buf, Data{
		Mode:          route.ModeApp,
		VirtualPrefix: "/__virtual__/3000",
		HandlerFile:   "/app/dashboard/page.tsx",
		Layouts:       []string{"/app/layout.tsx", "/app/dashboard/layout.tsx"},
		Pathname:      "/dashboard",
	})
	if err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "/_next/app/app/dashboard/page.js") {
		t.Fatal("missing app-mode page lazy-load URL")
	}
	if !strings.Contains(out, "/_next/app/app/layout.js") {
		t.Fatal("missing root layout lazy-load URL")
	}
	if !strings.Contains(out, "/_next/app/app/dashboard/layout.js") {
		t.Fatal("missing nested layout lazy-load URL")
	}
}

func TestSynthesizeBasePathPropagatesToClient(t *testing.T) {
	s := NewSynthesizer(testConfig())
	var buf bytes.Buffer
	err := s.Synthesize(&buf, Data{
		Mode:          route.ModePages,
		VirtualPrefix: "/__virtual__/3000",
		BasePath:      "/docs",
		LogicalPath:   "/index",
		HandlerFile:   "/pages/index.jsx",
		Pathname:      "/",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `__NEXT_BASE_PATH__ = "/docs"`) {
		t.Fatal("expected base path constant in env script")
	}
}
