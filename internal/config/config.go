package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/nconklindev/er2view/internal/loader"
	"github.com/nconklindev/er2view/internal/moderator"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable, e.g. ER2_DATA_PATH.
const EnvPrefix = "ER2"

// DefaultFile is read from the working directory when no file is given.
const DefaultFile = "er2view.yaml"

// Config represents the complete application configuration.
// Variables are named from the field path, e.g. ER2_LOGGING_LEVEL. Fields
// must not carry envconfig tags: an unset ER2_DATA_PATH would fall back to $PATH.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	View    ViewConfig    `yaml:"view"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig locates the moderator data file
type DataConfig struct {
	Path   string `yaml:"path"`
	Format string `yaml:"format"`
}

// ViewConfig holds the initial view state and front end
type ViewConfig struct {
	Frontend string   `yaml:"frontend"`
	Sort     string   `yaml:"sort"`
	Mods     []string `yaml:"mods"`
}

// ExportConfig contains the default export target
type ExportConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Output string `yaml:"output"`
	File   string `yaml:"file"`
}

const (
	FrontendTUI = "tui"
	FrontendGUI = "gui"

	OutputFile    = "file"
	OutputConsole = "console"
	OutputNone    = "none"
)

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Data: DataConfig{
			Path: "reactor_moderator_data.json",
		},
		View: ViewConfig{
			Frontend: FrontendTUI,
		},
		Export: ExportConfig{
			Path: "moderators.xlsx",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: OutputFile,
			File:   filepath.Join(os.TempDir(), "er2view.log"),
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (or DefaultFile if path is empty and it exists), then ER2_* variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	file := path
	if file == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			file = DefaultFile
		}
	}
	if file != "" {
		if err := loadFromFile(file, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Variables that are not set leave the file/default values in place.
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration for unsupported values
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Data.Path) == "" {
		errs = append(errs, errors.New("data path is required"))
	}
	switch loader.Format(c.Data.Format) {
	case loader.FormatAuto, loader.FormatJSON, loader.FormatYAML:
	default:
		errs = append(errs, fmt.Errorf("unsupported data format %q", c.Data.Format))
	}

	if !slices.Contains([]string{FrontendTUI, FrontendGUI}, c.View.Frontend) {
		errs = append(errs, fmt.Errorf("unsupported frontend %q", c.View.Frontend))
	}
	if c.View.Sort != "" && !moderator.IsField(c.View.Sort) {
		errs = append(errs, fmt.Errorf("%w: %q", moderator.ErrUnknownField, c.View.Sort))
	}

	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Logging.Level))
	}
	switch c.Logging.Output {
	case OutputFile:
		if c.Logging.File == "" {
			errs = append(errs, errors.New("log file is required for file output"))
		}
	case OutputConsole, OutputNone:
	default:
		errs = append(errs, fmt.Errorf("unsupported log output %q", c.Logging.Output))
	}

	return errors.Join(errs...)
}
