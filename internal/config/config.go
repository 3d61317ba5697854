// Package config loads workhub settings from .workhub/config.yaml and WORKHUB_* environment
// variables. Precedence is flags > env > file > defaults; flags are bound by the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DirName is the per-project configuration directory.
	DirName = ".workhub"
	// FileName is the configuration file inside DirName.
	FileName = "config.yaml"
	// EnvPrefix prefixes every environment override (WORKHUB_DB_PATH, ...).
	EnvPrefix = "WORKHUB"
)

// Keys understood by Load.
const (
	KeyDBPath           = "db.path"
	KeyLogLevel         = "log.level"
	KeyLogFormat        = "log.format"
	KeyTelemetryEnabled = "telemetry.enabled"
	KeyTelemetryStdout  = "telemetry.stdout"
	KeyActorUserID      = "actor.user_id"
	KeyActorRole        = "actor.role"
	KeyActorWorkspaceID = "actor.workspace_id"
)

// Config is the resolved workhub configuration.
type Config struct {
	DB        DBConfig        `mapstructure:"db"`
	Log       LogConfig       `mapstructure:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Actor     ActorConfig     `mapstructure:"actor"`
}

// DBConfig locates the SQLite database.
type DBConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Stdout  bool `mapstructure:"stdout"`
}

// ActorConfig is the identity the CLI acts as.
type ActorConfig struct {
	UserID      string `mapstructure:"user_id"`
	Role        string `mapstructure:"role"`
	WorkspaceID string `mapstructure:"workspace_id"`
}

// New returns a viper instance with workhub defaults and env bindings, reading
// dir/.workhub/config.yaml when it exists.
func New(dir string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := Path(dir)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}
	return v, nil
}

// Load resolves the configuration for dir. A missing file is not an error.
func Load(dir string) (*Config, error) {
	v, err := New(dir)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper decodes and validates a populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyDBPath, defaultDBPath())
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyTelemetryEnabled, false)
	v.SetDefault(KeyTelemetryStdout, false)
	v.SetDefault(KeyActorUserID, "")
	v.SetDefault(KeyActorRole, "member")
	v.SetDefault(KeyActorWorkspaceID, "")
}

// Validate rejects values the rest of the program cannot interpret.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q (expected debug, info, warn or error)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (expected text or json)", c.Log.Format)
	}
	if c.DB.Path == "" {
		return errors.New("db.path must not be empty")
	}
	return nil
}

// Path returns the config file location for dir.
func Path(dir string) string {
	return filepath.Join(dir, DirName, FileName)
}

// Save writes cfg to dir/.workhub/config.yaml.
func Save(dir string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(dir, DirName), 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", DirName, err)
	}

	v := viper.New()
	v.Set(KeyDBPath, cfg.DB.Path)
	v.Set(KeyLogLevel, cfg.Log.Level)
	v.Set(KeyLogFormat, cfg.Log.Format)
	v.Set(KeyTelemetryEnabled, cfg.Telemetry.Enabled)
	v.Set(KeyTelemetryStdout, cfg.Telemetry.Stdout)
	v.Set(KeyActorUserID, cfg.Actor.UserID)
	v.Set(KeyActorRole, cfg.Actor.Role)
	v.Set(KeyActorWorkspaceID, cfg.Actor.WorkspaceID)

	if err := v.WriteConfigAs(Path(dir)); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(DirName, "workhub.db")
	}
	return filepath.Join(home, DirName, "workhub.db")
}
