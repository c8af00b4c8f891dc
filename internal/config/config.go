// Package config loads sheetsync settings from defaults, an optional config
// file, SHEETSYNC_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/nconklindev/sheetsync/internal/infer"
	"github.com/nconklindev/sheetsync/internal/logging"
	"github.com/nconklindev/sheetsync/internal/pathfind"
	"github.com/nconklindev/sheetsync/internal/store"
)

const EnvPrefix = "SHEETSYNC"

// Store kinds.
const (
	StoreSheets  = "sheets"
	StoreXLSX    = "xlsx"
	StoreCSV     = "csv"
	StoreSQL     = "sql"
	StoreFeather = "feather"
	StoreParquet = "parquet"
)

type StoreConfig struct {
	Kind string `mapstructure:"kind"`
	// Path is the workbook file for xlsx and the directory for csv, feather and parquet.
	Path string `mapstructure:"path"`
}

type SheetsConfig struct {
	Credentials   string `mapstructure:"credentials"`
	SpreadsheetID string `mapstructure:"spreadsheet_id"`
}

type SQLConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type InferConfig struct {
	Policy       string `mapstructure:"policy"`
	infer.Config `mapstructure:",squash"`
}

type Config struct {
	Log    logging.Config    `mapstructure:"log"`
	Store  StoreConfig       `mapstructure:"store"`
	Sheets SheetsConfig      `mapstructure:"sheets"`
	SQL    SQLConfig         `mapstructure:"sql"`
	Infer  InferConfig       `mapstructure:"infer"`
	Read   store.ReadOptions `mapstructure:"read"`
}

// SetDefaults registers every key so environment variables can override it.
func SetDefaults(v *viper.Viper) {
	def := infer.DefaultConfig()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", string(logging.FormatText))
	v.SetDefault("store.kind", StoreSheets)
	v.SetDefault("store.path", "")
	v.SetDefault("sheets.credentials", "service_account.json")
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sql.driver", "sqlite")
	v.SetDefault("sql.dsn", "")
	v.SetDefault("infer.policy", string(infer.PolicyFast))
	v.SetDefault("infer.threshold", def.ConfidenceThreshold)
	v.SetDefault("infer.date_formats", def.DateFormats)
	v.SetDefault("infer.mode", string(def.Mode))
	v.SetDefault("read.header_row", 0)
	v.SetDefault("read.index_col", "")
}

// Load reads configuration into v. When configFile is empty, sheetsync.yaml
// (or .json/.toml) is looked up in the working directory and in
// $HOME/.config/sheetsync; a missing file is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("sheetsync")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "sheetsync"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings every command relies on. Store settings are
// checked by ValidateStore when a store is opened.
func (c *Config) Validate() error {
	if _, err := infer.ParsePolicy(c.Infer.Policy); err != nil {
		return err
	}
	if err := c.Infer.Config.Validate(); err != nil {
		return fmt.Errorf("invalid inference settings: %w", err)
	}
	if c.Read.HeaderRow < store.AutoHeader {
		return fmt.Errorf("read.header_row must be %d (auto) or a 0-based row, got %d", store.AutoHeader, c.Read.HeaderRow)
	}
	return nil
}

func (c *Config) ValidateStore() error {
	switch c.Store.Kind {
	case StoreSheets:
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("sheets.spreadsheet_id is required for the sheets store")
		}
	case StoreSQL:
		if c.SQL.DSN == "" {
			return errors.New("sql.dsn is required for the sql store")
		}
	case StoreXLSX:
		if c.Store.Path == "" {
			return errors.New("store.path is required for the xlsx store")
		}
	case StoreCSV, StoreFeather, StoreParquet:
	default:
		return fmt.Errorf("unsupported store kind: %s", c.Store.Kind)
	}
	return nil
}

// Inferer builds the configured inference policy.
func (c *Config) Inferer() (infer.Inferer, error) {
	p, err := infer.ParsePolicy(c.Infer.Policy)
	if err != nil {
		return nil, err
	}
	return infer.New(p, c.Infer.Config)
}

// CredentialsPath resolves a relative credentials file inside the nearest
// credentials directory above start.
func (c *Config) CredentialsPath(f *pathfind.Finder, start string) (string, error) {
	if filepath.IsAbs(c.Sheets.Credentials) {
		return c.Sheets.Credentials, nil
	}
	dir, err := f.CredentialsDir(start)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Sheets.Credentials), nil
}

// StorePath returns store.path, falling back to the nearest feather
// directory for the feather and parquet stores and to the working
// directory for csv.
func (c *Config) StorePath(f *pathfind.Finder, start string) (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	switch c.Store.Kind {
	case StoreFeather, StoreParquet:
		return f.FeatherDir(start)
	default:
		return start, nil
	}
}
