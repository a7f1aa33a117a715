package siteconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	derrors "github.com/ertis-research/opentwins-docsite/internal/foundation/errors"
	"github.com/ertis-research/opentwins-docsite/internal/logfields"
)

// Format is a serialization format of the configuration record.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(p string) (Format, error) {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", derrors.ConfigError("unsupported configuration file extension").
			WithContext("path", p).
			WithContext("supported", ".yaml, .yml, .json").
			Build()
	}
}

// Load reads a configuration file, expanding ${VAR} references from the
// environment and from a .env file next to it, then applies defaults.
func Load(configPath string) (*SiteConfig, error) {
	format, err := FormatFromPath(configPath)
	if err != nil {
		return nil, err
	}

	loadEnvFile(filepath.Dir(configPath))

	// #nosec G304 -- the path is supplied by the operator.
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, derrors.NotFoundError("configuration file not found").
				WithContext("path", configPath).
				Build()
		}
		return nil, derrors.FileSystemError("failed to read config file").WithCause(err).
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse([]byte(os.ExpandEnv(string(data))), format)
	if err != nil {
		if c, ok := derrors.AsClassified(err); ok {
			return nil, c.WithContext("path", configPath)
		}
		return nil, err
	}
	slog.Debug("Loaded site configuration", logfields.Path(configPath), logfields.Format(string(format)))
	return cfg, nil
}

// Parse decodes a configuration record and applies defaults. Unknown keys are
// rejected so that typos do not silently fall back to defaults.
func Parse(data []byte, format Format) (*SiteConfig, error) {
	var cfg SiteConfig
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, derrors.WrapError(err, derrors.CategoryConfig, "failed to decode YAML configuration").Fatal().Build()
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return nil, derrors.WrapError(err, derrors.CategoryConfig, "failed to decode JSON configuration").Fatal().Build()
		}
	default:
		return nil, derrors.ConfigError(fmt.Sprintf("unknown configuration format %q", format)).Build()
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Marshal encodes the record. Re-parsing the output yields an equal record.
func Marshal(cfg *SiteConfig, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return nil, fmt.Errorf("encode YAML: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode YAML: %w", err)
		}
		return buf.Bytes(), nil
	case FormatJSON:
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode JSON: %w", err)
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown configuration format %q", format)
	}
}

// Init writes the default configuration to configPath. An existing file is
// only replaced with force.
func Init(configPath string, cfg *SiteConfig, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return derrors.AlreadyExistsError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			Build()
	}
	format, err := FormatFromPath(configPath)
	if err != nil {
		return err
	}
	data, err := Marshal(cfg, format)
	if err != nil {
		return derrors.WrapError(err, derrors.CategoryInternal, "failed to encode configuration").Build()
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return derrors.FileSystemError("failed to create config directory").WithCause(err).
				WithContext("path", dir).
				Build()
		}
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return derrors.FileSystemError("failed to write configuration").WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return nil
}

// loadEnvFile loads .env from the config directory and then from the working
// directory. Variables already set in the process environment win.
func loadEnvFile(dir string) {
	candidates := []string{filepath.Join(dir, ".env")}
	if dir != "." {
		candidates = append(candidates, ".env")
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			slog.Warn("Failed to load .env file", logfields.Path(p), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.Path(p))
	}
}
