package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/docfront/java/parser"
)

// ConfigFile is the name of the configuration file looked up in the
// working directory.
const ConfigFile = "docfront.yaml"

// Config controls a batch run. Patterns use doublestar syntax and match
// slash-separated paths relative to the root being walked.
type Config struct {
	Roots   []string `yaml:"roots"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`

	// Jobs bounds the number of units parsed at once.
	Jobs int `yaml:"jobs"`

	MaxDepth    int           `yaml:"max_depth"`
	MaxSize     int           `yaml:"max_size"`
	Comments    bool          `yaml:"comments"`
	UnitTimeout time.Duration `yaml:"unit_timeout"`
}

func DefaultConfig() Config {
	return Config{
		Roots:    []string{"."},
		Include:  []string{"**/*.java"},
		Jobs:     runtime.GOMAXPROCS(0),
		MaxDepth: parser.DefaultMaxDepth,
		MaxSize:  parser.DefaultMaxSize,
	}
}

// LoadConfig reads path on top of DefaultConfig. Unknown keys are an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.decode(data); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FindConfig loads ConfigFile from dir if it exists, and returns
// DefaultConfig otherwise.
func FindConfig(dir string) (Config, error) {
	path := filepath.Join(dir, ConfigFile)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	if len(c.Roots) == 0 {
		return errors.New("no roots given")
	}
	if c.Jobs < 1 {
		return fmt.Errorf("jobs must be at least 1, got %d", c.Jobs)
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be at least 1, got %d", c.MaxDepth)
	}
	for _, pattern := range append(append([]string(nil), c.Include...), c.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid pattern %q", pattern)
		}
	}
	return nil
}

func (c *Config) parserOptions(path string) []parser.Option {
	opts := []parser.Option{
		parser.WithFile(path),
		parser.WithMaxDepth(c.MaxDepth),
		parser.WithMaxSize(c.MaxSize),
	}
	if c.Comments {
		opts = append(opts, parser.WithComments())
	}
	return opts
}
