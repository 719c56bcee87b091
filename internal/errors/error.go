package errors

import (
	"bufio"
	"fmt"
	"os"
)

// Category groups errors by the component that raised them.
type Category string

const (
	CategoryConfig    Category = "config"
	CategoryRoute     Category = "route"
	CategoryTransform Category = "transform"
	CategoryHandler   Category = "handler"
	CategoryWatcher   Category = "watcher"
	CategoryCLI       Category = "cli"
)

// Location represents a source code location, used when an error can be
// attributed to a specific line in a virtual source file.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// DevError is a structured error carrying a code, category, human message,
// and optional suggestion/wrapped-error context.
type DevError struct {
	Code       string
	Category   Category
	Message    string
	Detail     string
	Location   *Location
	Context    []string
	Suggestion string
	Example    string
	DocURL     string
	Wrapped    error
}

func (e *DevError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *DevError) Unwrap() error {
	return e.Wrapped
}

func (e *DevError) WithLocation(file string, line, column int) *DevError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Context = readContextLines(file, line, 5)
	return e
}

func (e *DevError) WithSuggestion(s string) *DevError {
	e.Suggestion = s
	return e
}

func (e *DevError) WithDetail(d string) *DevError {
	e.Detail = d
	return e
}

func (e *DevError) WithContext(lines []string) *DevError {
	e.Context = lines
	return e
}

func (e *DevError) Wrap(err error) *DevError {
	e.Wrapped = err
	return e
}

func readContextLines(filename string, targetLine, contextSize int) []string {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	lineNum := 0
	startLine := targetLine - contextSize/2
	endLine := targetLine + contextSize/2

	for scanner.Scan() {
		lineNum++
		if lineNum >= startLine && lineNum <= endLine {
			lines = append(lines, scanner.Text())
		}
		if lineNum > endLine {
			break
		}
	}
	return lines
}

// New creates a DevError from a registered error code.
func New(code string) *DevError {
	template, ok := registry[code]
	if !ok {
		return &DevError{Code: code, Message: "unknown error"}
	}
	return &DevError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates an uncoded DevError with a formatted message.
func Newf(category Category, format string, args ...any) *DevError {
	return &DevError{Category: category, Message: fmt.Sprintf(format, args...)}
}

// FromError wraps a standard error in a DevError using the given code,
// or returns it unchanged if it is already a *DevError.
func FromError(err error, code string) *DevError {
	if err == nil {
		return nil
	}
	if de, ok := err.(*DevError); ok {
		return de
	}
	return New(code).Wrap(err)
}
