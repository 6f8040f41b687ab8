// Package config loads the runtime configuration from an HCL or dotenv file
// and RELAY_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"
	"github.com/zclconf/go-cty/cty"

	"github.com/toyz/relay/internal/errors"
)

// Adapters lists the accepted values of Server.Adapter.
var Adapters = []string{"http", "echo", "gin", "fiber"}

// Config is the typed runtime configuration.
type Config struct {
	Scan   ScanConfig
	Server ServerConfig
	Log    LogConfig
}

// ScanConfig selects what the runtime discovers.
type ScanConfig struct {
	// Namespace is an import path or a dotted path below the module.
	Namespace string
	// Source walks the package sources instead of the compiled-in catalog.
	Source bool
}

type ServerConfig struct {
	Host            string
	Port            int
	ContextPath     string
	Adapter         string
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Adapter:         "http",
			ShutdownTimeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Environment keys. Dotenv files use the same names.
const (
	EnvNamespace       = "RELAY_SCAN_NAMESPACE"
	EnvSource          = "RELAY_SCAN_SOURCE"
	EnvHost            = "RELAY_SERVER_HOST"
	EnvPort            = "RELAY_SERVER_PORT"
	EnvContextPath     = "RELAY_SERVER_CONTEXT_PATH"
	EnvAdapter         = "RELAY_SERVER_ADAPTER"
	EnvShutdownTimeout = "RELAY_SERVER_SHUTDOWN_TIMEOUT"
	EnvLogLevel        = "RELAY_LOG_LEVEL"
	EnvLogFormat       = "RELAY_LOG_FORMAT"
)

// propertiesNamespaceKeys are the scan keys of application.properties
// files, in precedence order. The misspelled key is still found in older
// files.
var propertiesNamespaceKeys = []string{"scanPackage", "scanPackge"}

// Load builds a Config from defaults, the file at path (if path is not
// empty) and the environment, in that order, and validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		var err error
		if strings.EqualFold(filepath.Ext(path), ".hcl") {
			err = loadHCL(path, cfg)
		} else {
			err = loadDotenv(path, cfg)
		}
		if err != nil {
			return nil, errors.WrapConfigurationError(path, err)
		}
	}

	if err := apply(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Scan.Namespace) == "" {
		return errors.NewConfigurationError("scan.namespace", "scan namespace must not be empty")
	}
	if !slices.Contains(Adapters, c.Server.Adapter) {
		err := errors.NewConfigurationError("server.adapter", fmt.Sprintf("unknown adapter '%s'", c.Server.Adapter))
		err.WithSuggestions("valid adapters: " + strings.Join(Adapters, ", "))
		return err
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.NewConfigurationError("server.port", fmt.Sprintf("port %d out of range", c.Server.Port))
	}
	if c.Server.ShutdownTimeout < 0 {
		return errors.NewConfigurationError("server.shutdown_timeout", "shutdown timeout must not be negative")
	}
	return nil
}

type hclFile struct {
	Scan   *hclScan   `hcl:"scan,block"`
	Server *hclServer `hcl:"server,block"`
	Log    *hclLog    `hcl:"log,block"`
}

type hclScan struct {
	Namespace *string `hcl:"namespace,optional"`
	Source    *bool   `hcl:"source,optional"`
}

type hclServer struct {
	Host            *string `hcl:"host,optional"`
	Port            *int    `hcl:"port,optional"`
	ContextPath     *string `hcl:"context_path,optional"`
	Adapter         *string `hcl:"adapter,optional"`
	ShutdownTimeout *string `hcl:"shutdown_timeout,optional"`
}

type hclLog struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

// loadHCL decodes path. Expressions may read the process environment
// through the env object, e.g. port = env.PORT.
func loadHCL(path string, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %w", path, diags)
	}

	var parsed hclFile
	diags = gohcl.DecodeBody(file.Body, evalContext(os.Environ()), &parsed)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %w", path, diags)
	}

	if s := parsed.Scan; s != nil {
		setString(&cfg.Scan.Namespace, s.Namespace)
		if s.Source != nil {
			cfg.Scan.Source = *s.Source
		}
	}
	if s := parsed.Server; s != nil {
		setString(&cfg.Server.Host, s.Host)
		setString(&cfg.Server.ContextPath, s.ContextPath)
		setString(&cfg.Server.Adapter, s.Adapter)
		if s.Port != nil {
			cfg.Server.Port = *s.Port
		}
		if s.ShutdownTimeout != nil {
			d, err := parseDuration("server.shutdown_timeout", *s.ShutdownTimeout)
			if err != nil {
				return err
			}
			cfg.Server.ShutdownTimeout = d
		}
	}
	if l := parsed.Log; l != nil {
		setString(&cfg.Log.Level, l.Level)
		setString(&cfg.Log.Format, l.Format)
	}
	return nil
}

func evalContext(environ []string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			vars[k] = cty.StringVal(v)
		}
	}
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{"env": cty.ObjectVal(vars)},
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// loadDotenv reads a KEY=value file without modifying the process
// environment.
func loadDotenv(path string, cfg *Config) error {
	values, err := godotenv.Read(path)
	if err != nil {
		return err
	}
	for _, key := range propertiesNamespaceKeys {
		if ns, ok := values[key]; ok {
			cfg.Scan.Namespace = ns
			break
		}
	}
	return apply(cfg, func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	})
}

type lookupFunc func(string) (string, bool)

func apply(cfg *Config, lookup lookupFunc) error {
	if v, ok := lookup(EnvNamespace); ok {
		cfg.Scan.Namespace = v
	}
	if v, ok := lookup(EnvSource); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.NewConfigurationError(EnvSource, fmt.Sprintf("invalid boolean '%s'", v))
		}
		cfg.Scan.Source = b
	}
	if v, ok := lookup(EnvHost); ok {
		cfg.Server.Host = v
	}
	if v, ok := lookup(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewConfigurationError(EnvPort, fmt.Sprintf("invalid port '%s'", v))
		}
		cfg.Server.Port = port
	}
	if v, ok := lookup(EnvContextPath); ok {
		cfg.Server.ContextPath = v
	}
	if v, ok := lookup(EnvAdapter); ok {
		cfg.Server.Adapter = v
	}
	if v, ok := lookup(EnvShutdownTimeout); ok {
		d, err := parseDuration(EnvShutdownTimeout, v)
		if err != nil {
			return err
		}
		cfg.Server.ShutdownTimeout = d
	}
	if v, ok := lookup(EnvLogLevel); ok {
		cfg.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok {
		cfg.Log.Format = v
	}
	return nil
}

func parseDuration(key, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		cerr := errors.NewConfigurationError(key, fmt.Sprintf("invalid duration '%s'", v))
		cerr.WithCause(err)
		return 0, cerr
	}
	return d, nil
}
