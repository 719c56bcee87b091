package transform

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"sort"
	"strings"

	"github.com/gorilla/css/scanner"
)

// ScopedClasses maps original CSS class names to their scoped names
// (<origName>__<hash>) for one module.css file.
type ScopedClasses map[string]string

// classSelectorFallbackRe is the regex fallback permitted by §4.C step 3
// when the real tokenizer errors.
var classSelectorFallbackRe = regexp.MustCompile(`\.([a-zA-Z_][a-zA-Z0-9_-]*)`)

// ExtractCSSModuleClasses tokenizes css with a real CSS scanner and returns
// every class selector found, scoped by a short fingerprint of filePath.
// It never returns an error: when the tokenizer yields no class at all
// (including when it stops at an error before finding one), a regex pass
// over the raw text is used instead of failing the whole transform.
func ExtractCSSModuleClasses(css, filePath string) ScopedClasses {
	classes := scanClassesWithTokenizer(css)
	if classes == nil {
		classes = scanClassesWithRegex(css)
	}

	suffix := fileFingerprint(filePath)
	scoped := make(ScopedClasses, len(classes))
	for name := range classes {
		scoped[name] = fmt.Sprintf("%s__%s", name, suffix)
	}
	return scoped
}

func scanClassesWithTokenizer(css string) map[string]struct{} {
	s := scanner.New(css)
	classes := map[string]struct{}{}
	prevWasDot := false

	for {
		tok := s.Next()
		if tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError {
			break
		}
		switch tok.Type {
		case scanner.TokenChar:
			prevWasDot = tok.Value == "."
		case scanner.TokenIdent:
			if prevWasDot {
				classes[tok.Value] = struct{}{}
			}
			prevWasDot = false
		default:
			prevWasDot = false
		}
	}
	if len(classes) == 0 {
		return nil
	}
	return classes
}

func scanClassesWithRegex(css string) map[string]struct{} {
	classes := map[string]struct{}{}
	for _, m := range classSelectorFallbackRe.FindAllStringSubmatch(css, -1) {
		classes[m[1]] = struct{}{}
	}
	return classes
}

// RewriteCSSModuleRules replaces every ".origName" selector in css with its
// scoped equivalent, producing the rules injected into the document's
// <style> tag at module execution time. Names are rewritten longest-first
// and each match is boundary-checked against a trailing identifier
// character, so replacing ".btn" can't also corrupt ".btn-primary".
func RewriteCSSModuleRules(css string, scoped ScopedClasses) string {
	names := make([]string, 0, len(scoped))
	for orig := range scoped {
		names = append(names, orig)
	}
	sort.Slice(names, func(i, j int) bool { return len(names[i]) > len(names[j]) })

	out := css
	for _, orig := range names {
		scopedName := scoped[orig]
		re := regexp.MustCompile(`\.` + regexp.QuoteMeta(orig) + `([a-zA-Z0-9_-]?)`)
		out = re.ReplaceAllStringFunc(out, func(match string) string {
			if m := re.FindStringSubmatch(match); len(m) > 1 && m[1] != "" {
				return match
			}
			return "." + scopedName
		})
	}
	return out
}

func fileFingerprint(path string) string {
	h := fnv.New32a()
	h.Write([]byte(path))
	return fmt.Sprintf("%06x", h.Sum32())[:6]
}

// ClassMapLiteral renders scoped as the JavaScript object literal bound to
// the default import of a *.module.css file.
func ClassMapLiteral(scoped ScopedClasses) string {
	var b strings.Builder
	b.WriteString("{")
	first := true
	for orig, name := range scoped {
		if !first {
			b.WriteString(",")
		}
		first = false
		fmt.Fprintf(&b, "%q:%q", orig, name)
	}
	b.WriteString("}")
	return b.String()
}
