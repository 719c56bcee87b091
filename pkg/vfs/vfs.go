// Package vfs implements the virtual filesystem interface consumed by the
// dev server (§6): existsSync, isDirectorySync, readdirSync, readFileSync,
// and watch. Two backings are provided — an OS-rooted filesystem for real
// projects, and an in-memory filesystem for tests and fixture projects —
// both built on afero so the dispatcher never has to know which one it has.
package vfs

import (
	"path"
	"sort"
	"sync"

	"github.com/spf13/afero"
)

// EventType classifies a filesystem change delivered to a Watch callback.
type EventType int

const (
	EventCreate EventType = iota
	EventWrite
	EventRemove
	EventRename
)

// Event is a single filesystem change.
type Event struct {
	Type EventType
	Path string
}

// Cancel stops a watch registered with Watch.
type Cancel func()

// DirEntry describes one entry returned by ReadDir.
type DirEntry struct {
	Name  string
	IsDir bool
}

// FS is the virtual filesystem contract every dev-server component depends
// on. It never exposes write operations — handlers that need to write go
// through a narrower capability, not this interface.
type FS interface {
	Exists(path string) bool
	IsDir(path string) bool
	ReadDir(path string) ([]DirEntry, error)
	ReadFile(path string) ([]byte, error)
	Watch(path string, recursive bool, onEvent func(Event)) (Cancel, error)
}

// aferoFS adapts an afero.Fs to the FS contract. All paths are VFS-absolute,
// '/'-rooted VirtualPath strings per §3.
type aferoFS struct {
	fs afero.Fs

	mu       sync.Mutex
	watchers []*watchEntry
}

type watchEntry struct {
	root      string
	recursive bool
	onEvent   func(Event)
	closed    bool
}

func newAferoFS(fs afero.Fs) *aferoFS {
	return &aferoFS{fs: fs}
}

func (v *aferoFS) Exists(p string) bool {
	_, err := v.fs.Stat(p)
	return err == nil
}

func (v *aferoFS) IsDir(p string) bool {
	info, err := v.fs.Stat(p)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func (v *aferoFS) ReadDir(p string) ([]DirEntry, error) {
	infos, err := afero.ReadDir(v.fs, p)
	if err != nil {
		return nil, err
	}
	entries := make([]DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, DirEntry{Name: info.Name(), IsDir: info.IsDir()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (v *aferoFS) ReadFile(p string) ([]byte, error) {
	return afero.ReadFile(v.fs, p)
}

// notify delivers an event to every watcher whose root contains path.
func (v *aferoFS) notify(evt Event) {
	v.mu.Lock()
	watchers := make([]*watchEntry, len(v.watchers))
	copy(watchers, v.watchers)
	v.mu.Unlock()

	for _, w := range watchers {
		if w.closed {
			continue
		}
		if !underRoot(w.root, evt.Path, w.recursive) {
			continue
		}
		w.onEvent(evt)
	}
}

func underRoot(root, p string, recursive bool) bool {
	root = path.Clean(root)
	p = path.Clean(p)
	if root == "/" {
		if recursive {
			return true
		}
		return path.Dir(p) == "/"
	}
	if p == root {
		return true
	}
	rel := root + "/"
	if len(p) <= len(rel) || p[:len(rel)] != rel {
		return false
	}
	if recursive {
		return true
	}
	return path.Dir(p) == root
}

func (v *aferoFS) registerWatch(root string, recursive bool, onEvent func(Event)) Cancel {
	entry := &watchEntry{root: root, recursive: recursive, onEvent: onEvent}
	v.mu.Lock()
	v.watchers = append(v.watchers, entry)
	v.mu.Unlock()
	return func() {
		v.mu.Lock()
		entry.closed = true
		v.mu.Unlock()
	}
}
