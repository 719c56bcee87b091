package dispatch

import (
	"bytes"

	"github.com/nextlite/nextlite/pkg/route"
	"github.com/nextlite/nextlite/pkg/shell"
)

// handlePageRoute implements §4.E.3: synthesize the bootstrap document
// for a resolved page, or fall back to the nearest not-found convention,
// or the built-in 404 body.
func (d *Dispatcher) handlePageRoute(pathname string) (*Response, error) {
	entry, found := d.Resolver.ResolvePage(pathname)
	if found {
		return d.synthesizeShell(pathname, entry, 200)
	}

	if notFound := d.resolveNotFound(); notFound != nil {
		return d.synthesizeShell(pathname, notFound, 404)
	}

	return htmlResponse(404, notFoundHTML), nil
}

// resolveNotFound finds the project's custom not-found page, if any: the
// root not-found convention in App mode, or the /404 page in Pages mode.
func (d *Dispatcher) resolveNotFound() *route.Entry {
	if d.Resolver.Mode() == route.ModeApp {
		if file, ok := d.findSource(d.AppDir + "/not-found"); ok {
			return &route.Entry{HandlerFile: file}
		}
		return nil
	}
	if file, ok := d.findSource(d.PagesDir + "/404"); ok {
		return &route.Entry{HandlerFile: file}
	}
	return nil
}

func (d *Dispatcher) synthesizeShell(pathname string, entry *route.Entry, status int) (*Response, error) {
	data := shell.Data{
		Mode:          d.Resolver.Mode(),
		VirtualPrefix: d.VirtualPrefix,
		Pathname:      pathname,
		HandlerFile:   entry.HandlerFile,
		Layouts:       entry.Layouts,
	}
	if d.Config != nil {
		data.BasePath = d.Config.BasePath
	}
	if d.Resolver.Mode() != route.ModeApp {
		data.LogicalPath = pagesLogicalPath(d.PagesDir, entry.HandlerFile)
	}

	var buf bytes.Buffer
	if err := d.Shell.Synthesize(&buf, data); err != nil {
		return nil, err
	}
	return &Response{
		Status:        status,
		StatusMessage: statusMessage(status),
		Headers:       map[string]string{"Content-Type": "text/html; charset=utf-8"},
		Body:          buf.Bytes(),
	}, nil
}

// pagesLogicalPath strips the pages directory and the resolved
// extension from a handler's VFS path, leaving the logical path the
// client's lazy-load URL is built from (§4.D step 9).
func pagesLogicalPath(pagesDir, handlerFile string) string {
	logical := handlerFile
	if len(logical) >= len(pagesDir) && logical[:len(pagesDir)] == pagesDir {
		logical = logical[len(pagesDir):]
	}
	if idx := lastDot(logical); idx >= 0 {
		logical = logical[:idx]
	}
	if logical == "" {
		logical = "/"
	}
	return logical
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
		if s[i] == '/' {
			break
		}
	}
	return -1
}
