package route

import (
	"regexp"
	"strings"

	"github.com/nextlite/nextlite/pkg/vfs"
)

// Resolver implements the two directory-walking conventions of §4.B. It
// holds no per-request state: resolution is stateless, invoked fresh for
// every request (§3 Lifecycles).
type Resolver struct {
	fs       vfs.FS
	pagesDir string
	appDir   string
	mode     Mode
}

// DetectMode auto-selects App mode when a root page or layout file exists
// directly under appDir, otherwise falls back to Pages mode (§4.B).
func DetectMode(fs vfs.FS, appDir string) Mode {
	for _, ext := range extensions {
		if fs.Exists(appDir+"/page"+ext) || fs.Exists(appDir+"/layout"+ext) {
			return ModeApp
		}
	}
	return ModePages
}

// NewResolver constructs a Resolver. If forced is non-nil it overrides
// auto-detection (the "user can force" clause of §4.B).
func NewResolver(fs vfs.FS, pagesDir, appDir string, forced *Mode) *Resolver {
	mode := ModePages
	if forced != nil {
		mode = *forced
	} else {
		mode = DetectMode(fs, appDir)
	}
	return &Resolver{fs: fs, pagesDir: pagesDir, appDir: appDir, mode: mode}
}

// Mode returns the resolver's active routing mode.
func (r *Resolver) Mode() Mode { return r.mode }

// ResolvePage resolves a pathname to a page route entry.
func (r *Resolver) ResolvePage(p string) (*Entry, bool) {
	if r.mode == ModeApp {
		return r.resolveAppPage(p)
	}
	return r.resolvePages(p)
}

// ResolveRouteHandler resolves a pathname to a non-page route.<ext> handler.
// Only meaningful in App mode; Pages mode has no analogous concept.
func (r *Resolver) ResolveRouteHandler(p string) (*Entry, bool) {
	if r.mode != ModeApp {
		return nil, false
	}
	segments := splitSegments(p)
	params := map[string]ParamValue{}
	file, ok := r.walkApp(r.appDir, segments, params, nil, r.findRouteFile, false)
	if !ok {
		return nil, false
	}
	return &Entry{HandlerFile: file, Params: params}, true
}

// --- Pages mode ---------------------------------------------------------

func (r *Resolver) resolvePages(p string) (*Entry, bool) {
	if p == "/" {
		p = "/index"
	}

	for _, ext := range extensions {
		f := r.pagesDir + p + ext
		if r.fs.Exists(f) && !r.fs.IsDir(f) {
			return &Entry{HandlerFile: f, Params: map[string]ParamValue{}}, true
		}
	}
	for _, ext := range extensions {
		f := r.pagesDir + p + "/index" + ext
		if r.fs.Exists(f) {
			return &Entry{HandlerFile: f, Params: map[string]ParamValue{}}, true
		}
	}

	params := map[string]ParamValue{}
	segments := splitSegments(p)
	file, ok := r.matchPagesDynamic(r.pagesDir, segments, params)
	if !ok {
		return nil, false
	}
	return &Entry{HandlerFile: file, Params: params}, true
}

// matchPagesDynamic implements §4.B step 4: at each level, try exact child,
// dynamic single-segment directory, dynamic single-segment file, catch-all
// file, in that order. First success wins.
func (r *Resolver) matchPagesDynamic(dir string, segments []string, params map[string]ParamValue) (string, bool) {
	if len(segments) == 0 {
		for _, ext := range extensions {
			f := dir + "/index" + ext
			if r.fs.Exists(f) {
				return f, true
			}
		}
		return "", false
	}

	seg := segments[0]
	rest := segments[1:]

	if len(rest) == 0 {
		for _, ext := range extensions {
			f := dir + "/" + seg + ext
			if r.fs.Exists(f) && !r.fs.IsDir(f) {
				return f, true
			}
		}
	}

	childDir := dir + "/" + seg
	if r.fs.IsDir(childDir) {
		if f, ok := r.matchPagesDynamic(childDir, rest, params); ok {
			return f, true
		}
	}

	if name, dynDir, ok := r.findDynamicDir(dir); ok {
		params[name] = ParamValue{Single: seg}
		if f, ok2 := r.matchPagesDynamic(dynDir, rest, params); ok2 {
			return f, true
		}
		delete(params, name)
	}

	if len(rest) == 0 {
		if name, f, ok := r.findDynamicFile(dir); ok {
			params[name] = ParamValue{Single: seg}
			return f, true
		}
	}

	if name, f, ok := r.findCatchAllFile(dir); ok {
		all := append([]string{seg}, rest...)
		params[name] = ParamValue{Multi: all, IsMulti: true}
		return f, true
	}

	return "", false
}

// --- App mode ------------------------------------------------------------

func (r *Resolver) resolveAppPage(p string) (*Entry, bool) {
	segments := splitSegments(p)
	params := map[string]ParamValue{}
	var layouts []string
	file, ok := r.walkApp(r.appDir, segments, params, &layouts, r.findPageFile, true)
	if !ok {
		return nil, false
	}
	entry := &Entry{HandlerFile: file, Params: params, Layouts: layouts}
	entry.Conventions = r.collectConventions(dirOf(file))
	return entry, true
}

// walkApp walks the app-routed tree consuming segments one at a time,
// collecting layouts along the way, per §4.B tie-break order: exact,
// group-traversal, single-dynamic, catch-all, optional-catch-all.
func (r *Resolver) walkApp(dir string, segments []string, params map[string]ParamValue, layouts *[]string, findFile func(string) (string, bool), collectLayouts bool) (string, bool) {
	if collectLayouts {
		r.appendLayout(dir, layouts)
	}

	if len(segments) == 0 {
		if f, ok := findFile(dir); ok {
			return f, true
		}
		for _, g := range r.groupChildren(dir) {
			snap := snapshotParams(params)
			lsnap := layoutsLen(layouts)
			if f, ok := r.walkApp(g, nil, params, layouts, findFile, collectLayouts); ok {
				return f, true
			}
			restoreParams(params, snap)
			truncateLayouts(layouts, lsnap)
		}
		if name, childDir, ok := r.findOptionalCatchAllDir(dir); ok {
			if f, ok2 := findFile(childDir); ok2 {
				if collectLayouts {
					r.appendLayout(childDir, layouts)
				}
				params[name] = ParamValue{Multi: nil, IsMulti: true}
				return f, true
			}
		}
		return "", false
	}

	seg := segments[0]
	rest := segments[1:]

	if childDir := dir + "/" + seg; r.fs.IsDir(childDir) {
		snap := snapshotParams(params)
		lsnap := layoutsLen(layouts)
		if f, ok := r.walkApp(childDir, rest, params, layouts, findFile, collectLayouts); ok {
			return f, true
		}
		restoreParams(params, snap)
		truncateLayouts(layouts, lsnap)
	}

	for _, g := range r.groupChildren(dir) {
		snap := snapshotParams(params)
		lsnap := layoutsLen(layouts)
		if f, ok := r.walkApp(g, segments, params, layouts, findFile, collectLayouts); ok {
			return f, true
		}
		restoreParams(params, snap)
		truncateLayouts(layouts, lsnap)
	}

	if name, childDir, ok := r.findDynamicDirApp(dir); ok {
		params[name] = ParamValue{Single: seg}
		snap := snapshotParams(params)
		lsnap := layoutsLen(layouts)
		if f, ok2 := r.walkApp(childDir, rest, params, layouts, findFile, collectLayouts); ok2 {
			return f, true
		}
		restoreParams(params, snap)
		truncateLayouts(layouts, lsnap)
		delete(params, name)
	}

	all := append([]string{seg}, rest...)

	if name, childDir, ok := r.findCatchAllDirApp(dir); ok {
		if f, ok2 := findFile(childDir); ok2 {
			if collectLayouts {
				r.appendLayout(childDir, layouts)
			}
			params[name] = ParamValue{Multi: all, IsMulti: true}
			return f, true
		}
	}

	if name, childDir, ok := r.findOptionalCatchAllDir(dir); ok {
		if f, ok2 := findFile(childDir); ok2 {
			if collectLayouts {
				r.appendLayout(childDir, layouts)
			}
			params[name] = ParamValue{Multi: all, IsMulti: true}
			return f, true
		}
	}

	return "", false
}

func (r *Resolver) collectConventions(dir string) Conventions {
	var c Conventions
	for {
		if c.Loading == "" {
			if f, ok := r.findNamed(dir, "loading"); ok {
				c.Loading = f
			}
		}
		if c.Error == "" {
			if f, ok := r.findNamed(dir, "error"); ok {
				c.Error = f
			}
		}
		if c.NotFound == "" {
			if f, ok := r.findNamed(dir, "not-found"); ok {
				c.NotFound = f
			}
		}
		if dir == r.appDir || dir == "" || dir == "/" {
			break
		}
		dir = parentDir(dir)
	}
	return c
}

// --- directory scanning helpers -----------------------------------------

var (
	dynamicDirRe         = regexp.MustCompile(`^\[[^.\]]+\]$`)
	catchAllDirRe        = regexp.MustCompile(`^\[\.\.\.([^\]]+)\]$`)
	optionalCatchAllRe   = regexp.MustCompile(`^\[\[\.\.\.([^\]]+)\]\]$`)
	groupDirRe           = regexp.MustCompile(`^\(.+\)$`)
)

func (r *Resolver) findPageFile(dir string) (string, bool) { return r.findNamed(dir, "page") }
func (r *Resolver) findRouteFile(dir string) (string, bool) { return r.findNamed(dir, "route") }

func (r *Resolver) findNamed(dir, base string) (string, bool) {
	for _, ext := range extensions {
		f := dir + "/" + base + ext
		if r.fs.Exists(f) {
			return f, true
		}
	}
	return "", false
}

func (r *Resolver) appendLayout(dir string, layouts *[]string) {
	if layouts == nil {
		return
	}
	f, ok := r.findNamed(dir, "layout")
	if !ok {
		return
	}
	for _, existing := range *layouts {
		if existing == f {
			return
		}
	}
	*layouts = append(*layouts, f)
}

func (r *Resolver) groupChildren(dir string) []string {
	entries, err := r.fs.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.IsDir && groupDirRe.MatchString(e.Name) {
			out = append(out, dir+"/"+e.Name)
		}
	}
	return out
}

func (r *Resolver) findDynamicDirApp(dir string) (name, childDir string, ok bool) {
	entries, err := r.fs.ReadDir(dir)
	if err != nil {
		return "", "", false
	}
	for _, e := range entries {
		if e.IsDir && dynamicDirRe.MatchString(e.Name) {
			return e.Name[1 : len(e.Name)-1], dir + "/" + e.Name, true
		}
	}
	return "", "", false
}

func (r *Resolver) findCatchAllDirApp(dir string) (name, childDir string, ok bool) {
	entries, err := r.fs.ReadDir(dir)
	if err != nil {
		return "", "", false
	}
	for _, e := range entries {
		if e.IsDir {
			if m := catchAllDirRe.FindStringSubmatch(e.Name); m != nil {
				return m[1], dir + "/" + e.Name, true
			}
		}
	}
	return "", "", false
}

func (r *Resolver) findOptionalCatchAllDir(dir string) (name, childDir string, ok bool) {
	entries, err := r.fs.ReadDir(dir)
	if err != nil {
		return "", "", false
	}
	for _, e := range entries {
		if e.IsDir {
			if m := optionalCatchAllRe.FindStringSubmatch(e.Name); m != nil {
				return m[1], dir + "/" + e.Name, true
			}
		}
	}
	return "", "", false
}

// findDynamicDir/File/CatchAllFile mirror the App-mode finders for Pages
// mode, which has no route groups or app-style layouts.
func (r *Resolver) findDynamicDir(dir string) (name, childDir string, ok bool) {
	return r.findDynamicDirApp(dir)
}

func (r *Resolver) findDynamicFile(dir string) (name, file string, ok bool) {
	entries, err := r.fs.ReadDir(dir)
	if err != nil {
		return "", "", false
	}
	for _, ext := range extensions {
		for _, e := range entries {
			if e.IsDir {
				continue
			}
			if !strings.HasSuffix(e.Name, ext) {
				continue
			}
			base := strings.TrimSuffix(e.Name, ext)
			if dynamicDirRe.MatchString(base) {
				return base[1 : len(base)-1], dir + "/" + e.Name, true
			}
		}
	}
	return "", "", false
}

func (r *Resolver) findCatchAllFile(dir string) (name, file string, ok bool) {
	entries, err := r.fs.ReadDir(dir)
	if err != nil {
		return "", "", false
	}
	for _, ext := range extensions {
		for _, e := range entries {
			if e.IsDir || !strings.HasSuffix(e.Name, ext) {
				continue
			}
			base := strings.TrimSuffix(e.Name, ext)
			if m := catchAllDirRe.FindStringSubmatch(base); m != nil {
				return m[1], dir + "/" + e.Name, true
			}
		}
	}
	return "", "", false
}

// --- path/backtrack helpers ----------------------------------------------

func splitSegments(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func dirOf(file string) string {
	idx := strings.LastIndex(file, "/")
	if idx <= 0 {
		return "/"
	}
	return file[:idx]
}

func parentDir(dir string) string {
	idx := strings.LastIndex(dir, "/")
	if idx <= 0 {
		return "/"
	}
	return dir[:idx]
}

func snapshotParams(params map[string]ParamValue) map[string]ParamValue {
	snap := make(map[string]ParamValue, len(params))
	for k, v := range params {
		snap[k] = v
	}
	return snap
}

func restoreParams(params map[string]ParamValue, snap map[string]ParamValue) {
	for k := range params {
		if _, ok := snap[k]; !ok {
			delete(params, k)
		}
	}
	for k, v := range snap {
		params[k] = v
	}
}

func layoutsLen(layouts *[]string) int {
	if layouts == nil {
		return 0
	}
	return len(*layouts)
}

func truncateLayouts(layouts *[]string, n int) {
	if layouts == nil {
		return
	}
	*layouts = (*layouts)[:n]
}
