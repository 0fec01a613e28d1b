package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/ftsi/internal/db"
	"github.com/kailas-cloud/ftsi/internal/domain/entity"
	"github.com/kailas-cloud/ftsi/internal/domain/search/highlight"
	"github.com/kailas-cloud/ftsi/internal/domain/search/request"
)

// Config holds the ftsi configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Highlight HighlightConfig `yaml:"highlight"`
	Search    SearchConfig    `yaml:"search"`
	Logging   LoggingConfig   `yaml:"logging"`
	Entities  []EntityConfig  `yaml:"entities"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// StorageConfig holds catalog storage settings.
type StorageConfig struct {
	Path     string `yaml:"path"`     // root directory, one subdirectory per catalog; empty keeps catalogs in memory
	Analyzer string `yaml:"analyzer"` // text analyzer of new catalogs (default: standard)
}

// HighlightConfig holds result highlighting settings. Highlighting is off unless both tags are set.
type HighlightConfig struct {
	PreTag       string `yaml:"pre_tag"`
	PostTag      string `yaml:"post_tag"`
	FragmentSize int    `yaml:"fragment_size"`
}

// SearchConfig holds pagination settings.
type SearchConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// EntityConfig declares one entity type registered at startup.
type EntityConfig struct {
	Name    string             `yaml:"name"`
	Catalog string             `yaml:"catalog"` // default: entity name
	Fields  []entity.FieldSpec `yaml:"fields"`
}

// Load reads <env>.yaml, expands environment references, applies defaults
// and validates the result.
func Load(env string) (Config, error) {
	path := findConfigPath(env)
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expandEnvVars(raw), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Highlight.FragmentSize <= 0 {
		c.Highlight.FragmentSize = highlight.DefaultFragmentSize
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = request.DefaultPageSize
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
	if c.Storage.Analyzer == "" {
		c.Storage.Analyzer = db.DefaultAnalyzer
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if (c.Highlight.PreTag == "") != (c.Highlight.PostTag == "") {
		return fmt.Errorf("highlight.pre_tag and highlight.post_tag must be set together")
	}
	if !db.IsTextAnalyzer(c.Storage.Analyzer) {
		return fmt.Errorf("storage.analyzer %q is not one of %v", c.Storage.Analyzer, db.TextAnalyzers)
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size %d exceeds search.max_page_size %d",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	for i, e := range c.Entities {
		if e.Name == "" {
			return fmt.Errorf("entities[%d].name is required", i)
		}
		if len(e.Fields) == 0 {
			return fmt.Errorf("entities.%s.fields is required", e.Name)
		}
	}
	// Dry run against a scratch registry catches bad fields and catalog conflicts.
	if err := c.Register(entity.NewRegistry()); err != nil {
		return fmt.Errorf("entities: %w", err)
	}
	return nil
}

// StorageMode returns the catalog storage the config selects.
func (c *Config) StorageMode() db.Storage {
	return db.OnDisk(c.Storage.Path)
}

// HighlightMode returns the highlighting settings.
func (c *Config) HighlightMode() highlight.Config {
	return highlight.Config{
		PreTag:       c.Highlight.PreTag,
		PostTag:      c.Highlight.PostTag,
		FragmentSize: c.Highlight.FragmentSize,
	}
}

// Register builds every configured entity and adds it to reg.
func (c *Config) Register(reg *entity.Registry) error {
	for _, ec := range c.Entities {
		var opts []entity.Option
		if ec.Catalog != "" {
			opts = append(opts, entity.InCatalog(ec.Catalog))
		}
		e, err := entity.New(ec.Name, ec.Fields, opts...)
		if err != nil {
			return fmt.Errorf("entity %s: %w", ec.Name, err)
		}
		if err := reg.Register(e); err != nil {
			return fmt.Errorf("register %s: %w", ec.Name, err)
		}
	}
	return nil
}

// ConfigDirEnv overrides where <env>.yaml is looked up.
const ConfigDirEnv = "FTSI_CONFIG_DIR"

// findConfigPath returns the first existing <env>.yaml among $FTSI_CONFIG_DIR,
// ./config and the config directory of the source tree. When none exists the
// ./config path is returned so the read error names it.
func findConfigPath(env string) string {
	name := env + ".yaml"
	local := filepath.Join("config", name)

	var dirs []string
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		dirs = append(dirs, dir)
	}
	dirs = append(dirs, "config")
	if _, src, _, ok := runtime.Caller(0); ok {
		// internal/config/config.go -> <root>/config
		dirs = append(dirs, filepath.Join(filepath.Dir(src), "..", "..", "config"))
	}
	for _, dir := range dirs {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return local
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars substitutes ${VAR} and ${VAR:-fallback}. An unset or empty
// VAR without a fallback expands to nothing.
func expandEnvVars(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		name, fallback, ok := strings.Cut(string(envRef.FindSubmatch(ref)[1]), ":-")
		if v := os.Getenv(name); v != "" || !ok {
			return []byte(v)
		}
		return []byte(fallback)
	})
}
