package dispatch

import (
	"context"
	"time"
)

// streamLegacyHandler is the streaming variant of handleLegacy: res
// forwards headers to cb.OnStart on the first write/json/send/end/
// redirect, each write becomes a cb.OnChunk, and cb.OnEnd fires once the
// handler ends the response (§8 invariant 5).
func (d *Dispatcher) streamLegacyHandler(ctx context.Context, req Request, pathname string, cb StreamCallbacks) {
	file, ok := d.findSource(d.PagesDir + pathname)
	if !ok {
		resp := textResponse(404, "API route not found")
		cb.OnStart(resp.Status, resp.Headers)
		cb.OnChunk(resp.Body)
		cb.OnEnd()
		return
	}

	export, err := d.evaluateLegacyHandler(ctx, file)
	if err != nil {
		resp := jsonResponse(500, mustJSON(map[string]string{"error": err.Error()}))
		cb.OnStart(resp.Status, resp.Headers)
		cb.OnChunk(resp.Body)
		cb.OnEnd()
		return
	}

	sink := newResSink(cb.OnStart, cb.OnChunk, cb.OnEnd)
	lreq := newLegacyRequest(req)

	go invokeLegacyExport(export, lreq, sink)

	select {
	case <-sink.WaitForEnd():
	case <-time.After(d.HandlerTimeout):
		headersSent := sink.HeadersSent()
		sink.Detach()
		if !headersSent {
			cb.OnStart(500, map[string]string{"Content-Type": "application/json; charset=utf-8"})
		}
		cb.OnChunk(mustJSON(map[string]string{"error": "handler timed out without ending the response"}))
		cb.OnEnd()
	case <-ctx.Done():
		headersSent := sink.HeadersSent()
		sink.Detach()
		if !headersSent {
			cb.OnStart(500, map[string]string{"Content-Type": "application/json; charset=utf-8"})
		}
		cb.OnChunk(mustJSON(map[string]string{"error": "request canceled"}))
		cb.OnEnd()
	}
}
