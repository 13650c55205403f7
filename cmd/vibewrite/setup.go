package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/csheth/vibewrite/internal/cache"
	"github.com/csheth/vibewrite/internal/config"
	"github.com/csheth/vibewrite/internal/llm"
	"github.com/csheth/vibewrite/internal/revise"
	"github.com/csheth/vibewrite/internal/suggest"
)

// loadConfig merges the config file, the environment and any flags the user
// set explicitly, then validates the result.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	wd, err := os.Getwd()
	if err != nil {
		return config.Config{}, fmt.Errorf("resolve working directory: %w", err)
	}
	cfg, err := config.Load(path, wd)
	if err != nil {
		return config.Config{}, err
	}
	if err := applyOverrides(&cfg, cmd); err != nil {
		return config.Config{}, err
	}
	cfg.ResolveProvider()
	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config, cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	var errs []error
	str := func(name string, dst *string) {
		if !flags.Changed(name) {
			return
		}
		v, err := flags.GetString(name)
		if err != nil {
			errs = append(errs, err)
			return
		}
		*dst = v
	}
	str("provider", &cfg.Provider)
	str("model", &cfg.Model)
	str("endpoint", &cfg.Endpoint)
	str("cache-dir", &cfg.CacheDir)

	if flags.Changed("concurrency") {
		v, err := flags.GetInt("concurrency")
		errs = append(errs, err)
		cfg.Concurrency = v
	}
	if flags.Changed("timeout") {
		v, err := flags.GetDuration("timeout")
		errs = append(errs, err)
		cfg.Timeout = config.Duration(v)
	}
	if flags.Changed("temperature") {
		v, err := flags.GetFloat64("temperature")
		errs = append(errs, err)
		cfg.Temperature = &v
	}
	if flags.Changed("no-cache") {
		v, err := flags.GetBool("no-cache")
		errs = append(errs, err)
		cfg.DisableCache = v
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// buildEngine wires the configured client, optionally behind the disk cache,
// into a fresh engine.
func buildEngine(cfg config.Config, ids suggest.IDSource) (*revise.Engine, error) {
	client, err := llm.New(cfg.LLM())
	if err != nil {
		return nil, err
	}
	if !cfg.DisableCache {
		dc, err := cache.Open(cache.Dir(cfg.CacheDir), time.Duration(cfg.CacheTTL))
		if err != nil {
			log.Printf("[cache] disabled: %v", err)
		} else {
			client = llm.NewCached(client, dc, cfg.CacheSalt())
		}
	}
	return revise.NewEngine(client, suggest.NewStore(ids)), nil
}

// openLogFile redirects the standard logger when --log-file is set. The
// returned closer is never nil.
func openLogFile(cmd *cobra.Command, fallback io.Writer) (io.Closer, error) {
	path, err := cmd.Root().PersistentFlags().GetString("log-file")
	if err != nil {
		return nil, err
	}
	if path == "" {
		log.SetOutput(fallback)
		return io.NopCloser(nil), nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return f, nil
}

// colorMode resolves --color against whether f is a terminal.
func colorMode(cmd *cobra.Command, f *os.File) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, err
	}
	switch mode {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto", "":
		return isTerminal(f), nil
	default:
		return false, fmt.Errorf("unknown --color value %q (want auto, on or off)", mode)
	}
}
