package dispatch

import (
	"context"
	"fmt"
	"time"

	deverrors "github.com/nextlite/nextlite/internal/errors"
)

// handleLegacy implements §4.E.2: legacy pages/api-style handler
// execution. A mock req/res pair is built, the handler's default export
// is invoked, and the dispatcher waits up to HandlerTimeout for res.End
// to have been called.
func (d *Dispatcher) handleLegacy(ctx context.Context, req Request, pathname string) (*Response, error) {
	file, ok := d.findSource(d.PagesDir + pathname)
	if !ok {
		return textResponse(404, "API route not found"), nil
	}

	export, err := d.evaluateLegacyHandler(ctx, file)
	if err != nil {
		de := deverrors.FromError(err, "E300")
		return jsonResponse(500, mustJSON(map[string]string{"error": de.Message})), nil
	}

	var status int
	var headers map[string]string
	var body []byte

	sink := newResSink(
		func(s int, h map[string]string) { status, headers = s, h },
		func(chunk []byte) { body = append(body, chunk...) },
		func() {},
	)

	lreq := newLegacyRequest(req)

	go invokeLegacyExport(export, lreq, sink)

	select {
	case <-sink.WaitForEnd():
	case <-time.After(d.HandlerTimeout):
		sink.Detach()
		return jsonResponse(500, mustJSON(map[string]string{"error": "handler timed out without ending the response"})), nil
	case <-ctx.Done():
		sink.Detach()
		return jsonResponse(500, mustJSON(map[string]string{"error": "request canceled"})), nil
	}

	if headers == nil {
		headers = map[string]string{}
	}
	if status == 0 {
		status = 200
	}
	return &Response{Status: status, StatusMessage: statusMessage(status), Headers: headers, Body: body}, nil
}

// evaluateLegacyHandler transforms, evaluates, and unwraps a legacy
// handler module's default export, tolerating one level of nested
// default (§4.E.2 "unwrap one level if it itself has a default").
func (d *Dispatcher) evaluateLegacyHandler(ctx context.Context, file string) (any, error) {
	src, err := d.FS.ReadFile(file)
	if err != nil {
		return nil, err
	}
	cjs, _, err := d.Transformer.TransformCJS(ctx, file, src)
	if err != nil {
		return nil, err
	}

	modCtx := d.newModuleContext()
	if err := d.Evaluator.Evaluate(ctx, cjs, modCtx); err != nil {
		return nil, err
	}

	export, ok := modCtx.Exports["default"]
	if !ok {
		return nil, errNoDefaultExport
	}
	return unwrapDefault(export), nil
}

func unwrapDefault(export any) any {
	if m, ok := export.(map[string]any); ok {
		if inner, ok := m["default"]; ok {
			return inner
		}
	}
	return export
}

var errNoDefaultExport = &noDefaultExportError{}

type noDefaultExportError struct{}

func (*noDefaultExportError) Error() string { return "handler module has no default export" }

// legacyHandlerFunc is the signature a legacy handler export must
// satisfy under the Go-syntax shim convention: func(req, res).
type legacyHandlerFunc = func(*LegacyRequest, *ResSink)

// invokeLegacyExport calls export, ending the sink with a 500 if export
// isn't callable or if it panics before ending the response. A handler
// that returns without ever calling res.End leaves the sink open; the
// caller's select/timeout handles that "never responded" case.
func invokeLegacyExport(export any, req *LegacyRequest, res *ResSink) {
	defer func() {
		if r := recover(); r != nil && !res.IsEnded() {
			res.Status(500).JSON(map[string]string{"error": fmt.Sprintf("handler panicked: %v", r)})
		}
	}()
	fn, ok := export.(legacyHandlerFunc)
	if !ok {
		res.Status(500).JSON(map[string]string{"error": "handler export has an unexpected signature"})
		return
	}
	fn(req, res)
}
