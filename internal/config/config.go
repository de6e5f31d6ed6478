package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/agriassist-cli/internal/dataset"
	"github.com/KaramelBytes/agriassist-cli/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Dataset locations
	DatasetDir    string `mapstructure:"dataset_dir" yaml:"dataset_dir" validate:"required"`
	OutputDir     string `mapstructure:"output_dir" yaml:"output_dir" validate:"required"`
	CropImagesDir string `mapstructure:"crop_images_dir" yaml:"crop_images_dir"`
	XLSXSheet     string `mapstructure:"xlsx_sheet" yaml:"xlsx_sheet"`
	EDADir        string `mapstructure:"eda_dir" yaml:"eda_dir"`

	// Farm/advisory store
	DatabaseDriver string `mapstructure:"database_driver" yaml:"database_driver" validate:"oneof=sqlite postgres"`
	DatabaseDSN    string `mapstructure:"database_dsn" yaml:"database_dsn" validate:"required"`

	// HTTP server and scheduled cleaning
	HTTPAddr      string `mapstructure:"http_addr" yaml:"http_addr" validate:"required,hostname_port"`
	CleanSchedule string `mapstructure:"clean_schedule" yaml:"clean_schedule"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=debug info warn warning error"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=json text"`
	LogFile   string `mapstructure:"log_file" yaml:"log_file"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"dataset_dir", "output_dir", "crop_images_dir", "xlsx_sheet", "eda_dir",
	"database_driver", "database_dsn", "http_addr", "clean_schedule",
	"log_level", "log_format", "log_file",
}

var validate = validator.New()

// Validate checks enum and required fields.
func (c *Global) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// DatasetConfig derives the cleaner configuration.
func (c *Global) DatasetConfig() dataset.Config {
	return dataset.Config{
		DatasetDir:    c.DatasetDir,
		OutputDir:     c.OutputDir,
		CropImagesDir: c.CropImagesDir,
		Sheet:         c.XLSXSheet,
	}
}

// Get returns the value of key as text.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "dataset_dir":
		return c.DatasetDir, nil
	case "output_dir":
		return c.OutputDir, nil
	case "crop_images_dir":
		return c.CropImagesDir, nil
	case "xlsx_sheet":
		return c.XLSXSheet, nil
	case "eda_dir":
		return c.EDADir, nil
	case "database_driver":
		return c.DatabaseDriver, nil
	case "database_dsn":
		return c.DatabaseDSN, nil
	case "http_addr":
		return c.HTTPAddr, nil
	case "clean_schedule":
		return c.CleanSchedule, nil
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "log_file":
		return c.LogFile, nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set assigns key and re-validates the result. On failure c is unchanged.
func (c *Global) Set(key, val string) error {
	next := *c
	switch key {
	case "dataset_dir":
		next.DatasetDir = val
	case "output_dir":
		next.OutputDir = val
	case "crop_images_dir":
		next.CropImagesDir = val
	case "xlsx_sheet":
		next.XLSXSheet = val
	case "eda_dir":
		next.EDADir = val
	case "database_driver":
		switch strings.ToLower(val) {
		case "sqlite", "sqlite3":
			next.DatabaseDriver = "sqlite"
		case "postgres", "postgresql", "pg":
			next.DatabaseDriver = "postgres"
		default:
			return fmt.Errorf("invalid database_driver: %s (use sqlite or postgres)", val)
		}
	case "database_dsn":
		next.DatabaseDSN = val
	case "http_addr":
		next.HTTPAddr = val
	case "clean_schedule":
		next.CleanSchedule = val
	case "log_level":
		next.LogLevel = strings.ToLower(val)
	case "log_format":
		next.LogFormat = strings.ToLower(val)
	case "log_file":
		next.LogFile = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

// HomeDir returns ~/.agriassist.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".agriassist"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.agriassist/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := HomeDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("AGRIASSIST")
	v.AutomaticEnv()

	home, err := HomeDir()
	if err != nil {
		return nil, err
	}

	v.SetDefault("dataset_dir", "datasets")
	v.SetDefault("output_dir", filepath.Join("datasets", "clean"))
	v.SetDefault("crop_images_dir", filepath.Join("datasets", "crop_images"))
	v.SetDefault("xlsx_sheet", "")
	v.SetDefault("eda_dir", filepath.Join("datasets", "eda"))
	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_dsn", filepath.Join(home, "agriassist.db"))
	v.SetDefault("http_addr", "127.0.0.1:8000")
	v.SetDefault("clean_schedule", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(home)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
