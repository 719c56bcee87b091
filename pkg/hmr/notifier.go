package hmr

import (
	"sync"
	"time"

	"github.com/nextlite/nextlite/pkg/vfs"
)

// Notifier watches a set of VFS roots and emits classified §4.F events,
// one per changed path, once a burst of changes has settled. A single
// debounce timer is shared by all paths, following the debounce-then-flush
// pattern.
type Notifier struct {
	emitter  *Emitter
	debounce time.Duration
	now      func() time.Time

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	cancels []vfs.Cancel
}

// NewNotifier constructs a Notifier that batches changes within debounce
// before classifying and emitting them via emitter.
func NewNotifier(emitter *Emitter, debounce time.Duration) *Notifier {
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	return &Notifier{
		emitter:  emitter,
		debounce: debounce,
		now:      time.Now,
		pending:  make(map[string]struct{}),
	}
}

// Watch begins watching every root recursively on fs. Failure to watch one
// root is a WatcherError (§7): it's logged by the caller and the remaining
// roots still get watched.
func (n *Notifier) Watch(fs vfs.FS, roots ...string) []error {
	var errs []error
	for _, root := range roots {
		cancel, err := fs.Watch(root, true, n.onFSEvent)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		n.mu.Lock()
		n.cancels = append(n.cancels, cancel)
		n.mu.Unlock()
	}
	return errs
}

func (n *Notifier) onFSEvent(evt vfs.Event) {
	n.mu.Lock()
	n.pending[evt.Path] = struct{}{}
	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(n.debounce, n.flush)
	n.mu.Unlock()
}

func (n *Notifier) flush() {
	n.mu.Lock()
	paths := make([]string, 0, len(n.pending))
	for p := range n.pending {
		paths = append(paths, p)
	}
	n.pending = make(map[string]struct{})
	n.mu.Unlock()

	ts := n.now().UnixMilli()
	for _, p := range paths {
		n.emitter.Emit(Event{Type: classify(p), Path: p, Timestamp: ts})
	}
}

// Close cancels every active watch and stops any pending debounce timer.
func (n *Notifier) Close() {
	n.mu.Lock()
	if n.timer != nil {
		n.timer.Stop()
	}
	cancels := n.cancels
	n.cancels = nil
	n.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}
