package hmr

import "path"

// EventType is the postMessage-shaped event kind emitted per §4.F.
type EventType string

const (
	EventUpdate     EventType = "update"
	EventFullReload EventType = "full-reload"
)

// Event is the notifier's fanout payload: emitted on the in-process
// emitter and, shaped identically, as the websocket postMessage body.
type Event struct {
	Type      EventType `json:"type"`
	Path      string    `json:"path,omitempty"`
	Timestamp int64     `json:"timestamp"`
}

var jsxFamily = map[string]bool{
	".jsx": true,
	".tsx": true,
	".js":  true,
	".ts":  true,
}

// classify implements §4.F's per-extension decision: css and JSX/TS family
// extensions are updates, everything else forces a full reload.
func classify(p string) EventType {
	ext := path.Ext(p)
	if ext == ".css" {
		return EventUpdate
	}
	if jsxFamily[ext] {
		return EventUpdate
	}
	return EventFullReload
}
