package hmr

import (
	"sync"
	"testing"
	"time"

	"github.com/nextlite/nextlite/pkg/vfs"
)

func TestClassifyExtensions(t *testing.T) {
	cases := map[string]EventType{
		"/pages/styles.css":   EventUpdate,
		"/pages/index.jsx":    EventUpdate,
		"/app/layout.tsx":     EventUpdate,
		"/public/favicon.ico": EventFullReload,
		"/public/logo.png":    EventFullReload,
	}
	for path, want := range cases {
		if got := classify(path); got != want {
			t.Errorf("classify(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestNotifierDebouncesBurstToOneEventPerPath(t *testing.T) {
	fs := vfs.NewMemory()
	fs.MkdirAll("/pages")

	emitter := NewEmitter()
	var mu sync.Mutex
	var events []Event
	emitter.Subscribe(func(e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	n := NewNotifier(emitter, 20*time.Millisecond)
	if errs := n.Watch(fs, "/pages"); len(errs) != 0 {
		t.Fatalf("unexpected watch errors: %v", errs)
	}

	fs.WriteFile("/pages/index.jsx", []byte("a"))
	fs.WriteFile("/pages/index.jsx", []byte("ab"))
	fs.WriteFile("/pages/index.jsx", []byte("abc"))

	time.Sleep(80 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 1 {
		t.Fatalf("expected exactly one collapsed event, got %d: %+v", len(events), events)
	}
	if events[0].Path != "/pages/index.jsx" || events[0].Type != EventUpdate {
		t.Fatalf("unexpected event: %+v", events[0])
	}
}

func TestNotifierCloseStopsDelivery(t *testing.T) {
	fs := vfs.NewMemory()
	fs.MkdirAll("/pages")

	emitter := NewEmitter()
	var mu sync.Mutex
	count := 0
	emitter.Subscribe(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	n := NewNotifier(emitter, 10*time.Millisecond)
	n.Watch(fs, "/pages")
	n.Close()

	fs.WriteFile("/pages/index.jsx", []byte("a"))
	time.Sleep(40 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if count != 0 {
		t.Fatalf("expected no events after Close, got %d", count)
	}
}
