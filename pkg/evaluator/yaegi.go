package evaluator

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// ErrDisallowedRequire is returned by a Context.Require implementation
// when asked for an id outside the evaluator's whitelist (E303).
var ErrDisallowedRequire = errors.New("disallowed require target")

// contextPkgPath is the synthetic import path handler sources use to
// reference the injected Context/Request/Response types.
const contextPkgPath = "github.com/nextlite/nextlite/pkg/evaluator"

// Evaluator invokes a transformed module body once, populating modCtx's
// Exports (§4.E "invoke the module body").
type Evaluator interface {
	Evaluate(ctx context.Context, source string, modCtx *Context) error
}

// YaegiEvaluator runs handler bodies through an embedded Go interpreter,
// sandboxed to Whitelist. It expects source to declare a package with an
// exported `func Init(ctx *evaluator.Context)` entry point — the small
// Go-syntax CJS-shim convention this port's transformer emits in place of
// a real JS module body.
type YaegiEvaluator struct {
	Whitelist map[string]bool
	Timeout   time.Duration
}

// NewYaegiEvaluator constructs a YaegiEvaluator restricted to whitelist.
func NewYaegiEvaluator(whitelist []string, timeout time.Duration) *YaegiEvaluator {
	set := make(map[string]bool, len(whitelist))
	for _, pkg := range whitelist {
		set[pkg] = true
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YaegiEvaluator{Whitelist: set, Timeout: timeout}
}

// Evaluate implements Evaluator. On timeout it returns an error but does
// not attempt to interrupt the interpreter goroutine — per §5, the
// handler continues to completion harmlessly in the background.
func (y *YaegiEvaluator) Evaluate(ctx context.Context, source string, modCtx *Context) error {
	if err := validateImports(source, y.Whitelist); err != nil {
		return fmt.Errorf("%w: %w", ErrDisallowedRequire, err)
	}

	i := interp.New(interp.Options{})
	if err := i.Use(stdlib.Symbols); err != nil {
		return fmt.Errorf("loading stdlib symbols: %w", err)
	}
	if err := i.Use(contextSymbols()); err != nil {
		return fmt.Errorf("loading runtime symbols: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("handler panicked: %v", r)
			}
		}()
		done <- y.run(i, source, modCtx)
	}()

	timeoutCtx, cancel := context.WithTimeout(ctx, y.Timeout)
	defer cancel()

	select {
	case err := <-done:
		return err
	case <-timeoutCtx.Done():
		return fmt.Errorf("handler evaluation timed out after %s", y.Timeout)
	}
}

func (y *YaegiEvaluator) run(i *interp.Interpreter, source string, modCtx *Context) error {
	if _, err := i.Eval(source); err != nil {
		return fmt.Errorf("evaluating module: %w", err)
	}

	entry, err := i.Eval("handler.Init")
	if err != nil {
		return fmt.Errorf("module does not export Init: %w", err)
	}

	initFn, ok := entry.Interface().(func(*Context))
	if !ok {
		return fmt.Errorf("handler.Init has unexpected signature %s", entry.Type())
	}
	initFn(modCtx)
	return nil
}

// contextSymbols exposes Context, Request, Response, and JSON to
// interpreted code under the synthetic "evaluator" package name.
func contextSymbols() interp.Exports {
	return interp.Exports{
		contextPkgPath + "/evaluator": map[string]reflect.Value{
			"Context":  reflect.ValueOf((*Context)(nil)),
			"Request":  reflect.ValueOf((*Request)(nil)),
			"Response": reflect.ValueOf((*Response)(nil)),
			"JSON":     reflect.ValueOf(JSON),
		},
	}
}
