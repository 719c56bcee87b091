package vfs

import "testing"

func TestMemoryReadWrite(t *testing.T) {
	fs := NewMemory()
	if err := fs.MkdirAll("/pages"); err != nil {
		t.Fatal(err)
	}
	if err := fs.WriteFile("/pages/index.jsx", []byte("export default function(){}")); err != nil {
		t.Fatal(err)
	}
	if !fs.Exists("/pages/index.jsx") {
		t.Fatal("expected file to exist")
	}
	if fs.IsDir("/pages/index.jsx") {
		t.Fatal("file should not be a directory")
	}
	entries, err := fs.ReadDir("/pages")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name != "index.jsx" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestMemoryWatchNotifiesOnWrite(t *testing.T) {
	fs := NewMemory()
	fs.MkdirAll("/pages")

	var got []Event
	cancel, err := fs.Watch("/pages", true, func(e Event) { got = append(got, e) })
	if err != nil {
		t.Fatal(err)
	}
	defer cancel()

	fs.WriteFile("/pages/index.jsx", []byte("a"))
	fs.WriteFile("/pages/index.jsx", []byte("b"))

	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Type != EventCreate {
		t.Fatalf("first event should be create, got %v", got[0].Type)
	}
	if got[1].Type != EventWrite {
		t.Fatalf("second event should be write, got %v", got[1].Type)
	}
}

func TestWatchCancelStopsDelivery(t *testing.T) {
	fs := NewMemory()
	fs.MkdirAll("/pages")

	var n int
	cancel, _ := fs.Watch("/pages", true, func(e Event) { n++ })
	cancel()
	fs.WriteFile("/pages/a.jsx", []byte("x"))

	if n != 0 {
		t.Fatalf("expected no events after cancel, got %d", n)
	}
}
