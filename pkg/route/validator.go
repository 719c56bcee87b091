package route

import (
	"fmt"
	"strings"

	"github.com/nextlite/nextlite/pkg/vfs"
)

// ValidationError reports a single conflict detected by Validate.
type ValidationError struct {
	Type    ValidationErrorType
	Message string
	Files   []string
}

func (e ValidationError) Error() string { return e.Message }

// ValidationErrorType categorizes a ValidationError.
type ValidationErrorType string

const (
	ErrorDuplicateRoute          ValidationErrorType = "DUPLICATE_ROUTE"
	ErrorParamConstraintConflict ValidationErrorType = "PARAM_CONSTRAINT_CONFLICT"
)

// MultiValidationError wraps every ValidationError found by a Validate pass.
type MultiValidationError struct {
	Errors []ValidationError
}

func (e *MultiValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d route validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Validate walks the routed tree looking for duplicate route files that
// would resolve to the same URL pattern, and sibling single-dynamic
// directories ([a] next to [b]) that bind differently named params at the
// same tree position. This is a lint-time aid; resolution proceeds per
// §4.B regardless of findings.
func Validate(fs vfs.FS, root string) error {
	v := &validation{fs: fs}
	v.walk(root, "/")
	if len(v.errors) == 0 {
		return nil
	}
	return &MultiValidationError{Errors: v.errors}
}

type validation struct {
	fs     vfs.FS
	errors []ValidationError
}

func (v *validation) walk(dir, urlPath string) {
	entries, err := v.fs.ReadDir(dir)
	if err != nil {
		return
	}

	var dynamicNames []string
	seenPageExts := 0
	var pageFiles []string

	for _, e := range entries {
		if e.IsDir {
			if dynamicDirRe.MatchString(e.Name) {
				dynamicNames = append(dynamicNames, e.Name[1:len(e.Name)-1])
			}
			v.walk(dir+"/"+e.Name, urlPath+e.Name+"/")
			continue
		}
		for _, ext := range extensions {
			if e.Name == "page"+ext || e.Name == "route"+ext {
				seenPageExts++
				pageFiles = append(pageFiles, dir+"/"+e.Name)
			}
		}
	}

	if seenPageExts > 1 {
		v.errors = append(v.errors, ValidationError{
			Type:    ErrorDuplicateRoute,
			Message: fmt.Sprintf("duplicate route/page files at %s", urlPath),
			Files:   pageFiles,
		})
	}

	// Sibling directory names are unique, so more than one [name] child
	// means differently named dynamic segments at the same position.
	if len(dynamicNames) > 1 {
		v.errors = append(v.errors, ValidationError{
			Type:    ErrorParamConstraintConflict,
			Message: fmt.Sprintf("conflicting dynamic segment names at %s: %s", urlPath, strings.Join(dynamicNames, ", ")),
		})
	}
}
