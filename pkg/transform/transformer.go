package transform

import (
	"context"
	"path"
	"strings"
)

// Transformer orchestrates the full §4.C pipeline over a Backend, a
// content-hash Cache, and the CSS/alias/CDN/refresh stages.
type Transformer struct {
	Backend       Backend // nil means "transformer backend unavailable" (§4.C)
	Cache         *Cache
	AliasMap      map[string]string
	VirtualPrefix string
}

// NewTransformer constructs a Transformer with a bounded transform cache.
func NewTransformer(backend Backend, aliasMap map[string]string, virtualPrefix string) *Transformer {
	return &Transformer{
		Backend:       backend,
		Cache:         NewCache(512),
		AliasMap:      aliasMap,
		VirtualPrefix: virtualPrefix,
	}
}

// TransformESM produces browser-ready ESM for a page/layout/component
// module (§4.C "Browser ESM path").
func (t *Transformer) TransformESM(ctx context.Context, filePath string, src []byte) (string, bool, error) {
	return t.transform(ctx, filePath, src, FormatESM)
}

// TransformCJS produces CJS for in-process handler execution (§4.C
// "Handler CJS path").
func (t *Transformer) TransformCJS(ctx context.Context, filePath string, src []byte) (string, bool, error) {
	return t.transform(ctx, filePath, src, FormatCJS)
}

func (t *Transformer) transform(ctx context.Context, filePath string, src []byte, format Format) (output string, cacheHit bool, err error) {
	hash := HashSource(src)
	if cached, ok := t.Cache.Lookup(filePath, format, hash); ok {
		return cached, true, nil
	}

	code := string(src)

	if strings.HasSuffix(filePath, ".css") {
		code = t.transformCSS(filePath, code)
		t.Cache.Store(filePath, format, hash, code)
		return code, false, nil
	}

	code = RewriteAliases(code, t.AliasMap, t.VirtualPrefix)

	if t.Backend == nil {
		t.Cache.Store(filePath, format, hash, code)
		return code, false, nil
	}

	out, err := t.Backend.Transform(ctx, code, Options{
		Loader:          loaderFor(filePath),
		Format:          format,
		JSX:             "automatic",
		JSXImportSource: "react",
		SourceFile:      filePath,
	})
	if err != nil {
		return "", false, err
	}
	code = out.Code

	if format == FormatESM {
		code = RewriteBareImports(code)
		if isJSXFile(filePath) {
			code = InjectReactRefresh(code)
		}
	}

	t.Cache.Store(filePath, format, hash, code)
	return code, false, nil
}

// transformCSS implements §4.C step 3.
func (t *Transformer) transformCSS(filePath, css string) string {
	if strings.HasSuffix(filePath, ".module.css") {
		scoped := ExtractCSSModuleClasses(css, filePath)
		rules := RewriteCSSModuleRules(css, scoped)
		var b strings.Builder
		b.WriteString("const __classes = ")
		b.WriteString(ClassMapLiteral(scoped))
		b.WriteString(";\n")
		b.WriteString("const __style = document.createElement('style');\n")
		b.WriteString("__style.textContent = ")
		b.WriteString(jsStringLiteral(rules))
		b.WriteString(";\ndocument.head.appendChild(__style);\n")
		b.WriteString("export default __classes;\n")
		return b.String()
	}
	return "export default {};\n"
}

func jsStringLiteral(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "`", "\\`")
	return "`" + s + "`"
}

func loaderFor(filePath string) string {
	switch path.Ext(filePath) {
	case ".tsx":
		return "tsx"
	case ".ts":
		return "ts"
	case ".jsx":
		return "jsx"
	default:
		return "js"
	}
}

func isJSXFile(filePath string) bool {
	ext := path.Ext(filePath)
	return ext == ".jsx" || ext == ".tsx"
}
