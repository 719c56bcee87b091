package dispatch

import (
	"context"
	"fmt"
	"strings"

	deverrors "github.com/nextlite/nextlite/internal/errors"
	"github.com/nextlite/nextlite/pkg/evaluator"
	"github.com/nextlite/nextlite/pkg/route"
)

// handleWebStyle implements §4.E.1: app-router route.<ext> handler
// execution.
//
// The source language this port executes handler bodies in is the
// small Go-syntax CJS-shim convention described in SPEC_FULL.md, not
// JavaScript — so unlike the original contract, a handler can only ever
// return a typed *evaluator.Response, never an arbitrary plain object or
// bare string. evaluator.JSON is the shim's equivalent of "return a
// plain object and let the dispatcher JSON-encode it".
func (d *Dispatcher) handleWebStyle(ctx context.Context, req Request, entry *route.Entry) (*Response, error) {
	src, err := d.FS.ReadFile(entry.HandlerFile)
	if err != nil {
		return textResponse(404, "route handler not found"), nil
	}

	cjs, _, err := d.Transformer.TransformCJS(ctx, entry.HandlerFile, src)
	if err != nil {
		return jsonResponse(500, mustJSON(map[string]string{"error": err.Error()})), nil
	}

	modCtx := d.newModuleContext()
	if err := d.Evaluator.Evaluate(ctx, cjs, modCtx); err != nil {
		return jsonResponse(500, mustJSON(map[string]string{"error": err.Error()})), nil
	}

	export, ok := lookupMethodExport(modCtx.Exports, req.Method)
	if !ok {
		return jsonResponse(405, mustJSON(map[string]string{"error": "Method " + req.Method + " not allowed"})), nil
	}

	params := make(map[string]any, len(entry.Params))
	for name, v := range entry.Params {
		if v.IsMulti {
			params[name] = v.Multi
		} else {
			params[name] = v.Single
		}
	}

	webReq := &evaluator.Request{
		Method:  req.Method,
		URL:     req.URL,
		Headers: req.Headers,
		Body:    req.Body,
	}

	resp, err := invokeHandlerExport(export, webReq, params)
	if err != nil {
		de := deverrors.FromError(err, "E300")
		return jsonResponse(500, mustJSON(map[string]string{"error": de.Message})), nil
	}

	return &Response{
		Status:        resp.Status,
		StatusMessage: statusMessage(resp.Status),
		Headers:       resp.Headers,
		Body:          resp.Body,
	}, nil
}

// lookupMethodExport finds the export named by the request method,
// tolerating either case (§4.E.1).
func lookupMethodExport(exports map[string]any, method string) (any, bool) {
	if v, ok := exports[strings.ToUpper(method)]; ok {
		return v, true
	}
	if v, ok := exports[strings.ToLower(method)]; ok {
		return v, true
	}
	return nil, false
}

// invokeHandlerExport calls export with either of the two handler
// signatures the evaluator package exposes. A panicking handler is
// recovered and reported as an error.
func invokeHandlerExport(export any, req *evaluator.Request, params map[string]any) (resp *evaluator.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp, err = nil, fmt.Errorf("handler panicked: %v", r)
		}
	}()
	switch fn := export.(type) {
	case func(*evaluator.Request, map[string]any) *evaluator.Response:
		return fn(req, params), nil
	case func(*evaluator.Request) *evaluator.Response:
		return fn(req), nil
	default:
		return nil, &exportTypeError{}
	}
}

type exportTypeError struct{}

func (*exportTypeError) Error() string {
	return "route handler export has an unexpected signature"
}

func (d *Dispatcher) newModuleContext() *evaluator.Context {
	require := func(id string) (any, error) {
		if !d.RequireWhitelist[id] {
			return nil, evaluator.ErrDisallowedRequire
		}
		return nil, nil
	}
	return evaluator.NewContext(require, d.Env)
}
