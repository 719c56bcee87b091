package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nextlite/nextlite/internal/errors"
)

const (
	// FileName is the name of the operator config file.
	FileName = "devserver.json"

	// DefaultListen is the default listen address.
	DefaultListen = "localhost:3000"

	// DefaultHMRDebounce is the default HMR batching delay.
	DefaultHMRDebounce = 100 * time.Millisecond

	// DefaultHandlerTimeout is the hard handler execution timeout (§5).
	DefaultHandlerTimeout = 30 * time.Second
)

// DefaultEvaluatorWhitelist is the stdlib packages the default Yaegi-backed
// module evaluator permits handler code to require.
var DefaultEvaluatorWhitelist = []string{
	"strings", "strconv", "fmt", "math", "regexp",
	"encoding/json", "encoding/base64", "time", "sort", "bytes",
}

// ProjectConfig is the operator-owned process-level configuration, loaded
// once at CLI startup. It is independent of the in-VFS framework config
// scanned by the Config Resolver.
type ProjectConfig struct {
	// Listen is the address the HTTP front door binds to.
	Listen string `json:"listen,omitempty"`

	// PagesDir, AppDir, PublicDir override the routed directory roots.
	PagesDir  string `json:"pagesDir,omitempty"`
	AppDir    string `json:"appDir,omitempty"`
	PublicDir string `json:"publicDir,omitempty"`

	// PreferAppRouter forces app-mode (true), pages-mode (false), or leaves
	// auto-detection (nil) per §4.B.
	PreferAppRouter *bool `json:"preferAppRouter,omitempty"`

	// HMRDebounce is the HMR batching window (§9: non-normative, tunable).
	HMRDebounce Duration `json:"hmrDebounce,omitempty"`

	// HandlerTimeout overrides the §5 hard handler execution timeout.
	HandlerTimeout Duration `json:"handlerTimeout,omitempty"`

	// WatchIgnore lists path substrings (e.g. "node_modules", ".git"): HMR
	// events whose path contains one are not broadcast to clients. The
	// watched trees themselves are not narrowed.
	WatchIgnore []string `json:"watchIgnore,omitempty"`

	// EvaluatorWhitelist lists the stdlib packages the module evaluator may
	// require (§4.J).
	EvaluatorWhitelist []string `json:"evaluatorWhitelist,omitempty"`

	configPath string
}

// Duration is a time.Duration that marshals to/from JSON as a Go duration
// string ("100ms") instead of an integer count of nanoseconds.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// New returns a ProjectConfig with every field at its default.
func New() *ProjectConfig {
	return &ProjectConfig{
		Listen:             DefaultListen,
		PagesDir:           "/pages",
		AppDir:             "/app",
		PublicDir:          "/public",
		HMRDebounce:        Duration(DefaultHMRDebounce),
		HandlerTimeout:     Duration(DefaultHandlerTimeout),
		WatchIgnore:        []string{"node_modules", ".git"},
		EvaluatorWhitelist: append([]string(nil), DefaultEvaluatorWhitelist...),
	}
}

// Load reads devserver.json from dir, falling back to defaults if absent.
// A malformed file is a hard error per §4.I (operator-owned, not silently
// ignored the way in-VFS framework config is).
func Load(dir string) (*ProjectConfig, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, errors.New("E001").Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E001").
			WithDetail("failed to parse " + FileName + ": " + err.Error()).
			WithSuggestion("check that " + FileName + " is valid JSON")
	}
	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

func (c *ProjectConfig) applyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.PagesDir == "" {
		c.PagesDir = "/pages"
	}
	if c.AppDir == "" {
		c.AppDir = "/app"
	}
	if c.PublicDir == "" {
		c.PublicDir = "/public"
	}
	if c.HMRDebounce == 0 {
		c.HMRDebounce = Duration(DefaultHMRDebounce)
	}
	if c.HandlerTimeout == 0 {
		c.HandlerTimeout = Duration(DefaultHandlerTimeout)
	}
	if len(c.EvaluatorWhitelist) == 0 {
		c.EvaluatorWhitelist = append([]string(nil), DefaultEvaluatorWhitelist...)
	}
}

// Validate checks the configuration for CLI-level errors.
func (c *ProjectConfig) Validate() error {
	_, portStr, err := splitHostPort(c.Listen)
	if err != nil {
		return errors.New("E002").WithDetail("invalid listen address: " + c.Listen)
	}
	if portStr == "" {
		return nil
	}
	if port, err := strconv.Atoi(portStr); err != nil || port < 0 || port > 65535 {
		return errors.New("E002").WithDetail("invalid listen port: " + c.Listen)
	}
	return nil
}

func splitHostPort(addr string) (host, port string, err error) {
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			return addr[:i], addr[i+1:], nil
		}
	}
	return addr, "", nil
}

// Path returns the path devserver.json was loaded from, or "" if defaults
// were used.
func (c *ProjectConfig) Path() string {
	return c.configPath
}
