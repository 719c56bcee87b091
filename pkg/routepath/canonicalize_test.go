package routepath

import (
	"testing"
)

func TestCanonicalizePath(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantPath    string
		wantQuery   string
		wantChanged bool
		wantErr     error
	}{
		{
			name:        "root",
			input:       "/",
			wantPath:    "/",
			wantChanged: false,
		},
		{
			name:        "empty string",
			input:       "",
			wantPath:    "/",
			wantChanged: true,
		},
		{
			name:        "no leading slash",
			input:       "about",
			wantPath:    "/about",
			wantChanged: true,
		},
		{
			name:        "collapse slashes",
			input:       "/blog//post",
			wantPath:    "/blog/post",
			wantChanged: true,
		},
		{
			name:        "single dot",
			input:       "/blog/./post",
			wantPath:    "/blog/post",
			wantChanged: true,
		},
		{
			name:        "double dot",
			input:       "/blog/posts/../other",
			wantPath:    "/blog/other",
			wantChanged: true,
		},
		{
			name:        "double dot to root",
			input:       "/blog/../",
			wantPath:    "/",
			wantChanged: true,
		},
		{
			name:        "query preserved",
			input:       "/projects/123?tab=details",
			wantPath:    "/projects/123",
			wantQuery:   "tab=details",
			wantChanged: false,
		},
		{
			name:        "normalized path with query",
			input:       "/projects/123/?tab=details",
			wantPath:    "/projects/123",
			wantQuery:   "tab=details",
			wantChanged: true,
		},
		{
			name:        "query percent escapes not validated",
			input:       "/projects?bad=%GG",
			wantPath:    "/projects",
			wantQuery:   "bad=%GG",
			wantChanged: false,
		},
		{
			name:        "valid percent escapes",
			input:       "/path/%2Fok",
			wantPath:    "/path/%2Fok",
			wantChanged: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result, err := CanonicalizePath(tc.input)
			if tc.wantErr != nil {
				if err != tc.wantErr {
					t.Errorf("CanonicalizePath(%q) error = %v, want %v", tc.input, err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Errorf("CanonicalizePath(%q) unexpected error = %v", tc.input, err)
				return
			}
			if result.Path != tc.wantPath {
				t.Errorf("CanonicalizePath(%q).Path = %q, want %q", tc.input, result.Path, tc.wantPath)
			}
			if result.Query != tc.wantQuery {
				t.Errorf("CanonicalizePath(%q).Query = %q, want %q", tc.input, result.Query, tc.wantQuery)
			}
			if result.Changed != tc.wantChanged {
				t.Errorf("CanonicalizePath(%q).Changed = %v, want %v", tc.input, result.Changed, tc.wantChanged)
			}
		})
	}
}

func TestCanonicalizePathErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{
			name:    "backslash",
			input:   "/path\\with\\backslash",
			wantErr: ErrBackslashInPath,
		},
		{
			name:    "null byte literal",
			input:   "/path/\x00/null",
			wantErr: ErrNullByteInPath,
		},
		{
			name:    "null byte encoded",
			input:   "/path/%00/null",
			wantErr: ErrNullByteInPath,
		},
		{
			name:    "invalid percent escape incomplete",
			input:   "/path/%2",
			wantErr: ErrInvalidPercentEscape,
		},
		{
			name:    "invalid percent escape bad chars",
			input:   "/path/%GG",
			wantErr: ErrInvalidPercentEscape,
		},
		{
			name:    "invalid percent literal",
			input:   "/path/100%",
			wantErr: ErrInvalidPercentEscape,
		},
		{
			name:    "escape root",
			input:   "/../secret",
			wantErr: ErrPathEscapesRoot,
		},
		{
			name:    "deep escape root",
			input:   "/a/../../secret",
			wantErr: ErrPathEscapesRoot,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CanonicalizePath(tc.input)
			if err != tc.wantErr {
				t.Errorf("CanonicalizePath(%q) error = %v, want %v", tc.input, err, tc.wantErr)
			}
		})
	}
}
