package vfs

import (
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/nextlite/nextlite/internal/errors"
)

// osFS is an OS-rooted VFS. Watch is backed by a real fsnotify.Watcher;
// WatcherError (§7) is logged and watching on that tree is skipped rather
// than failing construction.
type osFS struct {
	*aferoFS
	root    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher
}

// NewOS roots a VFS at an absolute directory on the real filesystem; a
// relative root is made absolute first.
func NewOS(root string) (*osFS, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.New("E400").Wrap(err)
	}
	root = absRoot
	base := afero.NewBasePathFs(afero.NewOsFs(), root)
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.New("E400").Wrap(err)
	}
	o := &osFS{
		aferoFS: newAferoFS(base),
		root:    root,
		logger:  slog.Default().With("component", "vfs"),
		watcher: fsw,
	}
	go o.loop()
	return o, nil
}

func (o *osFS) loop() {
	for {
		select {
		case ev, ok := <-o.watcher.Events:
			if !ok {
				return
			}
			rel, err := filepath.Rel(o.root, ev.Name)
			if err != nil {
				continue
			}
			vp := "/" + filepath.ToSlash(rel)
			o.notify(Event{Type: classify(ev.Op), Path: vp})
		case err, ok := <-o.watcher.Errors:
			if !ok {
				return
			}
			o.logger.Warn("watch error", "error", err)
		}
	}
}

func classify(op fsnotify.Op) EventType {
	switch {
	case op&fsnotify.Create != 0:
		return EventCreate
	case op&fsnotify.Remove != 0:
		return EventRemove
	case op&fsnotify.Rename != 0:
		return EventRename
	default:
		return EventWrite
	}
}

// Watch registers a path with fsnotify (recursively walking subdirectories
// when recursive is true) and fans matching events to onEvent.
func (o *osFS) Watch(p string, recursive bool, onEvent func(Event)) (Cancel, error) {
	abs := filepath.Join(o.root, p)
	if err := o.addRecursive(abs, recursive); err != nil {
		o.logger.Warn("failed to watch directory", "path", p, "error", err)
		return func() {}, errors.New("E400").WithDetail(p).Wrap(err)
	}
	return o.registerWatch(p, recursive, onEvent), nil
}

func (o *osFS) addRecursive(abs string, recursive bool) error {
	if err := o.watcher.Add(abs); err != nil {
		return err
	}
	if !recursive {
		return nil
	}
	entries, err := afero.ReadDir(o.aferoFS.fs, relPath(o.root, abs))
	if err != nil {
		return nil
	}
	for _, e := range entries {
		if e.IsDir() {
			_ = o.addRecursive(filepath.Join(abs, e.Name()), true)
		}
	}
	return nil
}

func relPath(root, abs string) string {
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "/"
	}
	return "/" + filepath.ToSlash(rel)
}

// Close stops the underlying fsnotify watcher.
func (o *osFS) Close() error {
	return o.watcher.Close()
}
