package route

import (
	"testing"

	"github.com/nextlite/nextlite/pkg/vfs"
)

func TestPagesIndexResolution(t *testing.T) {
	fs := vfs.NewMemory()
	fs.MkdirAll("/pages")
	fs.WriteFile("/pages/index.jsx", []byte("x"))

	r := NewResolver(fs, "/pages", "/app", modePtr(ModePages))
	entry, ok := r.ResolvePage("/")
	if !ok {
		t.Fatal("expected index page to resolve")
	}
	if entry.HandlerFile != "/pages/index.jsx" {
		t.Fatalf("handler = %q", entry.HandlerFile)
	}
}

func TestPagesDynamicSegment(t *testing.T) {
	fs := vfs.NewMemory()
	fs.MkdirAll("/pages/users")
	fs.WriteFile("/pages/users/[id].jsx", []byte("x"))

	r := NewResolver(fs, "/pages", "/app", modePtr(ModePages))
	entry, ok := r.ResolvePage("/users/42")
	if !ok {
		t.Fatal("expected dynamic segment to resolve")
	}
	if entry.Params["id"].Single != "42" {
		t.Fatalf("params = %+v", entry.Params)
	}
}

func TestAppRouteGroupWithLayout(t *testing.T) {
	fs := vfs.NewMemory()
	fs.MkdirAll("/app/(marketing)/about")
	fs.WriteFile("/app/layout.tsx", []byte("x"))
	fs.WriteFile("/app/(marketing)/layout.tsx", []byte("x"))
	fs.WriteFile("/app/(marketing)/about/page.tsx", []byte("x"))

	r := NewResolver(fs, "/pages", "/app", modePtr(ModeApp))
	entry, ok := r.ResolvePage("/about")
	if !ok {
		t.Fatal("expected page to resolve through route group")
	}
	if entry.HandlerFile != "/app/(marketing)/about/page.tsx" {
		t.Fatalf("handler = %q", entry.HandlerFile)
	}
	want := []string{"/app/layout.tsx", "/app/(marketing)/layout.tsx"}
	if len(entry.Layouts) != len(want) {
		t.Fatalf("layouts = %+v", entry.Layouts)
	}
	for i, l := range want {
		if entry.Layouts[i] != l {
			t.Fatalf("layouts[%d] = %q, want %q", i, entry.Layouts[i], l)
		}
	}
}

func TestAppCatchAll(t *testing.T) {
	fs := vfs.NewMemory()
	fs.MkdirAll("/app/docs/[...slug]")
	fs.WriteFile("/app/docs/[...slug]/page.tsx", []byte("x"))

	r := NewResolver(fs, "/pages", "/app", modePtr(ModeApp))
	entry, ok := r.ResolvePage("/docs/a/b/c")
	if !ok {
		t.Fatal("expected catch-all to resolve")
	}
	if !entry.Params["slug"].IsMulti {
		t.Fatal("expected multi param")
	}
	want := []string{"a", "b", "c"}
	got := entry.Params["slug"].Multi
	if len(got) != len(want) {
		t.Fatalf("slug = %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("slug[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestAppConventionsNearestAncestor(t *testing.T) {
	fs := vfs.NewMemory()
	fs.MkdirAll("/app/users/[id]")
	fs.WriteFile("/app/error.tsx", []byte("x"))
	fs.WriteFile("/app/users/not-found.tsx", []byte("x"))
	fs.WriteFile("/app/users/[id]/page.tsx", []byte("x"))

	r := NewResolver(fs, "/pages", "/app", modePtr(ModeApp))
	entry, ok := r.ResolvePage("/users/42")
	if !ok {
		t.Fatal("expected page to resolve")
	}
	if entry.Conventions.Error != "/app/error.tsx" {
		t.Fatalf("error convention = %q", entry.Conventions.Error)
	}
	if entry.Conventions.NotFound != "/app/users/not-found.tsx" {
		t.Fatalf("not-found convention = %q", entry.Conventions.NotFound)
	}
}

func TestResolveNotFound(t *testing.T) {
	fs := vfs.NewMemory()
	fs.MkdirAll("/pages")

	r := NewResolver(fs, "/pages", "/app", modePtr(ModePages))
	if _, ok := r.ResolvePage("/missing"); ok {
		t.Fatal("expected resolution to fail")
	}
}

func modePtr(m Mode) *Mode { return &m }
