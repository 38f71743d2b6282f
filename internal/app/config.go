package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/fxgraph/internal/render"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ModulesPath string // extra node manifests (*.hcl)

	LogFormat  string
	LogLevel   string
	Workers    int
	Output     string
	ListenAddr string
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		LogFormat:  "text",
		LogLevel:   "info",
		Workers:    1,
		Output:     string(render.FormatText),
		ListenAddr: ":8080",
	}
}

// NewConfig validates cfg and returns a normalised copy.
func NewConfig(cfg Config) (*Config, error) {
	var errs *multierror.Error

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		errs = multierror.Append(errs, errors.New("invalid log-format: must be 'text' or 'json'"))
	}

	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if _, ok := parseLevel(cfg.LogLevel); !ok {
		errs = multierror.Append(errs, errors.New("invalid log-level: must be 'debug', 'info', 'warn', or 'error'"))
	}

	if cfg.Workers < 1 {
		errs = multierror.Append(errs, fmt.Errorf("invalid workers: must be at least 1, got %d", cfg.Workers))
	}

	f, err := render.ParseFormat(cfg.Output)
	if err != nil {
		errs = multierror.Append(errs, err)
	}
	cfg.Output = string(f)

	if errs != nil {
		errs.ErrorFormat = func(es []error) string {
			lines := make([]string, len(es))
			for i, e := range es {
				lines[i] = e.Error()
			}
			return strings.Join(lines, "; ")
		}
		return nil, errs
	}
	return &cfg, nil
}

// fileConfig is the shape of an fxgraph.hcl configuration file. Every
// attribute is optional; absent ones leave the existing value alone.
type fileConfig struct {
	ModulesPath *string `hcl:"modules_path,optional"`
	LogFormat   *string `hcl:"log_format,optional"`
	LogLevel    *string `hcl:"log_level,optional"`
	Workers     *int    `hcl:"workers,optional"`
	Output      *string `hcl:"output,optional"`
	ListenAddr  *string `hcl:"listen,optional"`
}

// DecodeConfigFile overlays the attributes set in an HCL configuration file
// onto cfg.
func DecodeConfigFile(filename string, src []byte, cfg *Config) error {
	file, diags := hclparse.NewParser().ParseHCL(src, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse config file: %w", diags)
	}

	var fc fileConfig
	if diags := gohcl.DecodeBody(file.Body, nil, &fc); diags.HasErrors() {
		return fmt.Errorf("failed to decode config file: %w", diags)
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&cfg.ModulesPath, fc.ModulesPath)
	set(&cfg.LogFormat, fc.LogFormat)
	set(&cfg.LogLevel, fc.LogLevel)
	set(&cfg.Output, fc.Output)
	set(&cfg.ListenAddr, fc.ListenAddr)
	if fc.Workers != nil {
		cfg.Workers = *fc.Workers
	}
	return nil
}
