package vfs

import (
	"github.com/spf13/afero"
)

// memFS is an in-memory VFS used by tests. It has no OS to deliver
// filesystem events, so changes are only observed through explicit calls
// to WriteFile/Remove (§4.F).
type memFS struct {
	*aferoFS
	raw afero.Fs
}

// NewMemory creates an empty in-memory VFS.
func NewMemory() *memFS {
	raw := afero.NewMemMapFs()
	return &memFS{aferoFS: newAferoFS(raw), raw: raw}
}

// WriteFile creates or overwrites a file and notifies any matching watchers.
func (m *memFS) WriteFile(path string, data []byte) error {
	existed := m.Exists(path)
	if err := afero.WriteFile(m.raw, path, data, 0o644); err != nil {
		return err
	}
	evt := EventWrite
	if !existed {
		evt = EventCreate
	}
	m.notify(Event{Type: evt, Path: path})
	return nil
}

// MkdirAll creates a directory and its parents without notifying watchers
// (directories themselves are not a watched change type).
func (m *memFS) MkdirAll(path string) error {
	return m.raw.MkdirAll(path, 0o755)
}

// Remove deletes a file and notifies matching watchers.
func (m *memFS) Remove(path string) error {
	if err := m.raw.Remove(path); err != nil {
		return err
	}
	m.notify(Event{Type: EventRemove, Path: path})
	return nil
}

// Watch registers an in-process watch; delivery happens only through
// WriteFile/Remove calls on this same instance, never from OS events.
func (m *memFS) Watch(path string, recursive bool, onEvent func(Event)) (Cancel, error) {
	return m.registerWatch(path, recursive, onEvent), nil
}
