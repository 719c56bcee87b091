package dispatch

import (
	"context"
	"mime"
	"path"
	"strings"
)

// resolvableExtensions mirrors the fixed try-order of §4.B.
var resolvableExtensions = []string{".jsx", ".tsx", ".js", ".ts"}

var transformableExtensions = map[string]bool{
	".js": true, ".jsx": true, ".ts": true, ".tsx": true, ".css": true,
}

// serveLazyPages implements §4.E step 6 for the pages lazy-load root.
func (d *Dispatcher) serveLazyPages(ctx context.Context, logical string) (*Response, error) {
	logical = strings.TrimSuffix(logical, ".js")
	file, ok := d.findSource(d.PagesDir + logical)
	if !ok {
		return textResponse(404, "module not found"), nil
	}
	return d.transformAndServe(ctx, file)
}

// serveLazyApp implements §4.E step 6 for the app lazy-load root. The
// path segment after the root already carries the VFS-relative file path
// (including its "app/" or similar prefix), sans extension.
func (d *Dispatcher) serveLazyApp(ctx context.Context, filePath string) (*Response, error) {
	filePath = strings.TrimSuffix(filePath, ".js")
	file, ok := d.findSource(filePath)
	if !ok {
		return textResponse(404, "module not found"), nil
	}
	return d.transformAndServe(ctx, file)
}

// findSource tries base+ext for every resolvable extension, in order.
func (d *Dispatcher) findSource(base string) (string, bool) {
	for _, ext := range resolvableExtensions {
		candidate := base + ext
		if d.FS.Exists(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// transformAndServe runs the ESM transform pipeline and annotates the
// response with the cache-hit marker (§4.C step 2, §8 invariant 2/3).
func (d *Dispatcher) transformAndServe(ctx context.Context, file string) (*Response, error) {
	src, err := d.FS.ReadFile(file)
	if err != nil {
		return textResponse(404, "module not found"), nil
	}

	output, hit, err := d.Transformer.TransformESM(ctx, file, src)
	if err != nil {
		// TransformError (§7): degrade to a 200 JS body that logs the
		// error client-side instead of failing the import.
		d.logger.Warn("transform error", "file", file, "error", err)
		body := "console.error(" + quoteJS(err.Error()) + ");\nexport default function () { return null; };"
		return jsResponse(body, map[string]string{"X-Transform-Error": "true"}), nil
	}

	headers := map[string]string{}
	if hit {
		headers["X-Cache"] = "hit"
	} else {
		headers["X-Cache"] = "miss"
	}
	return jsResponse(output, headers), nil
}

func quoteJS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// servePublicFile implements §4.E steps 7/10: map p to a file under the
// public-assets directory, or return nil if it isn't one.
func (d *Dispatcher) servePublicFile(p string) *Response {
	full := d.PublicDir + p
	if !d.FS.Exists(full) || d.FS.IsDir(full) {
		return nil
	}
	data, err := d.FS.ReadFile(full)
	if err != nil {
		return nil
	}
	headers := map[string]string{}
	if ct := mime.TypeByExtension(path.Ext(full)); ct != "" {
		headers["Content-Type"] = ct
	}
	return &Response{Status: 200, StatusMessage: "OK", Headers: headers, Body: data}
}

// serveTransformableFile implements §4.E steps 11/12.
func (d *Dispatcher) serveTransformableFile(ctx context.Context, pathname string) (*Response, bool, error) {
	ext := path.Ext(pathname)

	if ext != "" {
		if !transformableExtensions[ext] || !d.FS.Exists(pathname) {
			return nil, false, nil
		}
		resp, err := d.transformAndServe(ctx, pathname)
		return resp, true, err
	}

	if file, ok := d.findSource(pathname); ok {
		resp, err := d.transformAndServe(ctx, file)
		return resp, true, err
	}
	if file, ok := d.findSource(pathname + "/index"); ok {
		resp, err := d.transformAndServe(ctx, file)
		return resp, true, err
	}
	return nil, false, nil
}
