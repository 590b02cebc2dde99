package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings represents the top-level ljson.yaml configuration.
type Settings struct {
	Limits  Limits  `yaml:"limits"`
	Library Library `yaml:"library"`
	Store   Store   `yaml:"store"`
	Server  Server  `yaml:"server"`
}

// Limits bounds the work a single parse or evaluation may do.
// Deeply nested terms can otherwise exhaust the goroutine stack.
type Limits struct {
	// MaxDepth is the maximum nesting of terms accepted by the parser.
	MaxDepth int `yaml:"max_depth,omitempty"`

	// MaxEvalDepth is the maximum evaluation nesting of a single call.
	MaxEvalDepth int `yaml:"max_eval_depth,omitempty"`

	// MaxInputBytes rejects term texts larger than this before parsing.
	MaxInputBytes int `yaml:"max_input_bytes,omitempty"`
}

// Library selects the primitives exposed through the accessor argument.
type Library struct {
	// Std enables the standard primitive set. Defaults to true.
	Std *bool `yaml:"std,omitempty"`

	// Allow is an optional whitelist of std primitive names.
	// If empty, every std primitive is available.
	Allow []string `yaml:"allow,omitempty"`

	// LoopLimit caps the iteration count of the "loop" primitive.
	LoopLimit int `yaml:"loop_limit,omitempty"`
}

// Store configures the SQLite term store.
type Store struct {
	// Path is the database file, relative to the config file.
	Path string `yaml:"path,omitempty"`
}

// Server configures the gRPC term service.
type Server struct {
	Addr string `yaml:"addr,omitempty"`
}

// Default returns settings with every default applied.
func Default() *Settings {
	s := &Settings{}
	s.setDefaults("")
	return s
}

// UseStd reports whether the std library is enabled.
func (l Library) UseStd() bool {
	return l.Std == nil || *l.Std
}

// LoadSettings reads and parses an ljson.yaml file.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseSettings(data, path)
}

// ParseSettings parses ljson.yaml content from bytes.
// The path argument is used for error messages and to resolve the store path.
func ParseSettings(data []byte, path string) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := s.validate(path); err != nil {
		return nil, err
	}
	s.setDefaults(filepath.Dir(path))
	return &s, nil
}

// FindConfig searches for ljson.yaml starting from dir and walking up
// to parent directories.
// Returns the path to the config file and nil error if found,
// or empty string and nil error if not found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Discover loads the nearest ljson.yaml above dir, or the defaults if none exists.
func Discover(dir string) (*Settings, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return Default(), nil
	}
	return LoadSettings(path)
}

// validate checks the configuration for semantic errors.
func (s *Settings) validate(path string) error {
	if s.Limits.MaxDepth < 0 {
		return fmt.Errorf("%s: limits.max_depth must not be negative", path)
	}
	if s.Limits.MaxEvalDepth < 0 {
		return fmt.Errorf("%s: limits.max_eval_depth must not be negative", path)
	}
	if s.Limits.MaxInputBytes < 0 {
		return fmt.Errorf("%s: limits.max_input_bytes must not be negative", path)
	}
	if s.Library.LoopLimit < 0 {
		return fmt.Errorf("%s: library.loop_limit must not be negative", path)
	}
	if len(s.Library.Allow) > 0 && !s.Library.UseStd() {
		return fmt.Errorf("%s: library.allow requires library.std", path)
	}

	known := make(map[string]bool, len(StdPrimitives))
	for _, name := range StdPrimitives {
		known[name] = true
	}
	seen := make(map[string]bool)
	for i, name := range s.Library.Allow {
		if !known[name] {
			return fmt.Errorf("%s: library.allow[%d]: unknown primitive %q", path, i, name)
		}
		if seen[name] {
			return fmt.Errorf("%s: library.allow[%d]: duplicate primitive %q", path, i, name)
		}
		seen[name] = true
	}

	if s.Server.Addr != "" {
		if _, _, err := net.SplitHostPort(s.Server.Addr); err != nil {
			return fmt.Errorf("%s: server.addr: %w", path, err)
		}
	}
	return nil
}

// setDefaults fills in zero values. baseDir anchors a relative store path.
func (s *Settings) setDefaults(baseDir string) {
	if s.Limits.MaxDepth == 0 {
		s.Limits.MaxDepth = DefaultMaxDepth
	}
	if s.Limits.MaxEvalDepth == 0 {
		s.Limits.MaxEvalDepth = DefaultMaxEvalDepth
	}
	if s.Limits.MaxInputBytes == 0 {
		s.Limits.MaxInputBytes = DefaultMaxInputBytes
	}
	if s.Library.LoopLimit == 0 {
		s.Library.LoopLimit = DefaultLoopLimit
	}
	if s.Store.Path == "" {
		s.Store.Path = DefaultStorePath
	}
	if baseDir != "" && !filepath.IsAbs(s.Store.Path) {
		s.Store.Path = filepath.Join(baseDir, s.Store.Path)
	}
	if s.Server.Addr == "" {
		s.Server.Addr = DefaultServerAddr
	}
}

// StdPrimitives lists every primitive of the std library.
var StdPrimitives = []string{
	PrimAdd, PrimSub, PrimMul, PrimDiv, PrimMod, PrimSqrt,
	PrimEq, PrimNeq, PrimLt, PrimLte, PrimGt, PrimGte,
	PrimNot, PrimNeg, PrimLength, PrimGet, PrimConcat,
	PrimIf, PrimLoop,
}
