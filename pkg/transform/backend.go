// Package transform implements the Module Transformer (§4.C): ESM output
// for the browser router, a secondary CJS output for in-process handler
// execution, CSS module class extraction, path-alias rewriting, bare-import
// CDN redirection, React Refresh injection, and a content-hash cache.
package transform

import "context"

// Format selects the transform target.
type Format string

const (
	FormatESM Format = "esm"
	FormatCJS Format = "cjs"
)

// Options mirrors the consumed transformer interface of §6.
type Options struct {
	Loader          string // extension-derived loader hint: "jsx", "tsx", "js", "ts"
	Format          Format
	Target          string
	JSX             string // "automatic"
	JSXImportSource string
	SourceFile      string
}

// Output is the transformer's result for one source file.
type Output struct {
	Code string
}

// Backend is the injected "opaque transformer" of §1/§6 — the real JSX/TS
// compiler is explicitly out of scope; this interface is the only contract
// the rest of the package depends on.
type Backend interface {
	Transform(ctx context.Context, code string, opts Options) (Output, error)
}

// PassthroughBackend returns its input unchanged. It is sufficient to
// exercise the CSS-handling, alias-rewrite, and cache steps (§4.C steps
// 3/4/8) without a real JSX compiler. It is not used for a nil Backend
// (§4.C "transformer unavailable"): that path returns the alias-rewritten
// source without the bare-import or React Refresh steps.
type PassthroughBackend struct{}

func (PassthroughBackend) Transform(_ context.Context, code string, _ Options) (Output, error) {
	return Output{Code: code}, nil
}
