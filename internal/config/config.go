// Package config resolves vibewrite settings from defaults, an optional
// vibewrite.toml or vibewrite.yaml file, and the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/csheth/vibewrite/internal/cache"
	"github.com/csheth/vibewrite/internal/llm"
	"github.com/csheth/vibewrite/internal/revise"
)

const (
	DefaultMaxDocumentBytes = 10 << 20
	maxConcurrency          = 64
)

// FileNames are the config files discovered in the working directory, in
// order of preference.
var FileNames = []string{"vibewrite.toml", "vibewrite.yaml", "vibewrite.yml"}

// Duration accepts Go duration strings ("45s", "2m") in config files.
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the merged runtime configuration.
type Config struct {
	Provider         string   `toml:"provider" yaml:"provider"`
	Endpoint         string   `toml:"endpoint" yaml:"endpoint"`
	Model            string   `toml:"model" yaml:"model"`
	APIKey           string   `toml:"api_key" yaml:"apiKey"`
	Temperature      *float64 `toml:"temperature" yaml:"temperature"`
	Instruction      string   `toml:"instruction" yaml:"instruction"`
	Timeout          Duration `toml:"timeout" yaml:"timeout"`
	Concurrency      int      `toml:"concurrency" yaml:"concurrency"`
	MinLength        int      `toml:"min_length" yaml:"minLength"`
	MaxDocumentBytes int64    `toml:"max_document_bytes" yaml:"maxDocumentBytes"`
	CacheDir         string   `toml:"cache_dir" yaml:"cacheDir"`
	CacheTTL         Duration `toml:"cache_ttl" yaml:"cacheTTL"`
	DisableCache     bool     `toml:"disable_cache" yaml:"disableCache"`

	// Source is the file the values were read from, empty for defaults only.
	Source string `toml:"-" yaml:"-"`

	// Provider-specific environment values, kept so ResolveProvider can
	// pick the right endpoint after a late provider change.
	envOllamaHost  string
	envOllamaModel string
	envOpenAIBase  string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Provider:         llm.ProviderOllama,
		Endpoint:         llm.DefaultOllamaHost,
		Model:            llm.DefaultOllamaModel,
		Timeout:          Duration(revise.DefaultTimeout),
		Concurrency:      revise.DefaultConcurrency,
		MinLength:        revise.DefaultMinLength,
		MaxDocumentBytes: DefaultMaxDocumentBytes,
		CacheTTL:         Duration(cache.DefaultTTL),
	}
}

// Load merges defaults, the config file and the environment. When path is
// empty the FileNames are looked up in dir; a missing file is not an error.
func Load(path, dir string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = Discover(dir)
	}
	if path != "" {
		if err := decodeFile(path, &cfg); err != nil {
			return Config{}, err
		}
		cfg.Source = path
	}
	cfg.ApplyEnv(os.Getenv)
	return cfg, nil
}

// Discover returns the first config file present in dir.
func Discover(dir string) string {
	for _, name := range FileNames {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

func decodeFile(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		return fmt.Errorf("%s: unsupported config format (want .toml, .yaml or .yml)", path)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables read through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv("VIBEWRITE_PROVIDER")); v != "" {
		c.Provider = strings.ToLower(v)
	}
	if v := strings.TrimSpace(getenv("OLLAMA_HOST")); v != "" {
		c.envOllamaHost = normalizeHost(v)
	}
	c.envOllamaModel = strings.TrimSpace(getenv("OLLAMA_MODEL"))
	c.envOpenAIBase = strings.TrimRight(strings.TrimSpace(getenv("OPENAI_BASE_URL")), "/")

	if c.isOpenAI() {
		if c.envOpenAIBase != "" {
			c.Endpoint = c.envOpenAIBase
		}
	} else {
		if c.envOllamaHost != "" {
			c.Endpoint = c.envOllamaHost
		}
		if c.envOllamaModel != "" {
			c.Model = c.envOllamaModel
		}
	}
	if v := strings.TrimSpace(getenv("OPENAI_API_KEY")); v != "" && c.APIKey == "" {
		c.APIKey = v
	}
	if v := strings.TrimSpace(getenv(cache.EnvDir)); v != "" && c.CacheDir == "" {
		c.CacheDir = v
	}
	c.ResolveProvider()
}

// ResolveProvider swaps the endpoint and model over to the provider's own
// defaults when they still hold the other provider's. Callers that change
// Provider after Load, such as a --provider flag, must call it again.
func (c *Config) ResolveProvider() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.isOpenAI() {
		if c.Endpoint == "" || c.Endpoint == llm.DefaultOllamaHost || (c.envOllamaHost != "" && c.Endpoint == c.envOllamaHost) {
			c.Endpoint = firstNonEmpty(c.envOpenAIBase, llm.DefaultOpenAIBase)
		}
		if c.Model == llm.DefaultOllamaModel || (c.envOllamaModel != "" && c.Model == c.envOllamaModel) {
			c.Model = ""
		}
		return
	}
	if c.Provider != "" && c.Provider != llm.ProviderOllama {
		return
	}
	if c.Endpoint == "" || c.Endpoint == llm.DefaultOpenAIBase || (c.envOpenAIBase != "" && c.Endpoint == c.envOpenAIBase) {
		c.Endpoint = firstNonEmpty(c.envOllamaHost, llm.DefaultOllamaHost)
	}
	if c.Model == "" {
		c.Model = firstNonEmpty(c.envOllamaModel, llm.DefaultOllamaModel)
	}
}

func (c *Config) isOpenAI() bool {
	return strings.EqualFold(c.Provider, llm.ProviderOpenAI)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// normalizeHost accepts the bare host:port form OLLAMA_HOST allows.
func normalizeHost(host string) string {
	if strings.Contains(host, "://") {
		return strings.TrimRight(host, "/")
	}
	return "http://" + strings.TrimRight(host, "/")
}

// Validate rejects values no component can run with.
func (c Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Provider) {
	case llm.ProviderOllama:
	case llm.ProviderOpenAI:
		if c.APIKey == "" {
			errs = append(errs, errors.New("provider openai requires OPENAI_API_KEY or api_key"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q", c.Provider))
	}
	if c.Endpoint != "" {
		u, err := url.Parse(c.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("endpoint %q must be an http(s) URL", c.Endpoint))
		}
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if c.Concurrency < 1 || c.Concurrency > maxConcurrency {
		errs = append(errs, fmt.Errorf("concurrency must be between 1 and %d", maxConcurrency))
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		errs = append(errs, errors.New("temperature must be between 0 and 2"))
	}
	if c.MaxDocumentBytes <= 0 {
		errs = append(errs, errors.New("max_document_bytes must be positive"))
	}
	return errors.Join(errs...)
}

// LLM returns the client settings.
func (c Config) LLM() llm.Config {
	return llm.Config{
		Provider:    c.Provider,
		Model:       c.Model,
		Endpoint:    c.Endpoint,
		APIKey:      c.APIKey,
		Temperature: c.Temperature,
		Instruction: c.Instruction,
		Timeout:     time.Duration(c.Timeout),
	}
}

// Options returns the per-pass engine options.
func (c Config) Options() revise.Options {
	return revise.Options{
		Concurrency: c.Concurrency,
		Timeout:     time.Duration(c.Timeout),
		MinLength:   c.MinLength,
	}
}

// CacheSalt identifies every setting that changes a service reply.
func (c Config) CacheSalt() string {
	temp := "default"
	if c.Temperature != nil {
		temp = strconv.FormatFloat(*c.Temperature, 'f', -1, 64)
	}
	return strings.Join([]string{strings.ToLower(c.Provider), c.Endpoint, c.Model, temp, c.Instruction}, "|")
}
