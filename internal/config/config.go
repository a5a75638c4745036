// Package config provides Viper-based configuration loading for the Pyphoria backend.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// CountConfig is the base probability table for the number of dropped items.
// Weights[i] is the relative weight of dropping exactly i items.
type CountConfig struct {
	Weights []float64 `mapstructure:"weights"`
}

// ExplosionConfig controls the rare drop-count multiplier.
type ExplosionConfig struct {
	// Odds is N in a 1-in-N chance per generation.
	Odds          int     `mapstructure:"odds"`
	MinMultiplier float64 `mapstructure:"min_multiplier"`
	MaxMultiplier float64 `mapstructure:"max_multiplier"`
}

// ModifierBounds are the clamp bounds applied to character loot modifiers.
type ModifierBounds struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

// LootConfig holds the tunable loot-generation settings and content locations.
type LootConfig struct {
	PoolsDir  string `mapstructure:"pools_dir"`
	TiersFile string `mapstructure:"tiers_file"`
	ItemsDir  string `mapstructure:"items_dir"`
	// Seed fixes the random stream when non-zero; zero selects crypto/rand.
	Seed      int64           `mapstructure:"seed"`
	TierSkew  float64         `mapstructure:"tier_skew"`
	Count     CountConfig     `mapstructure:"count"`
	Explosion ExplosionConfig `mapstructure:"explosion"`
	Modifiers ModifierBounds  `mapstructure:"modifiers"`
}

// Config is the top-level application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Loot     LootConfig     `mapstructure:"loot"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLoot(c.Loot); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateLoot(l LootConfig) error {
	var errs []string
	if len(l.Count.Weights) == 0 {
		errs = append(errs, "loot.count.weights must not be empty")
	}
	var total float64
	for i, w := range l.Count.Weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			errs = append(errs, fmt.Sprintf("loot.count.weights[%d] must be a finite value >= 0, got %v", i, w))
			continue
		}
		total += w
	}
	if len(l.Count.Weights) > 0 && total <= 0 {
		errs = append(errs, "loot.count.weights must have a positive total")
	}
	if l.Explosion.Odds < 1 {
		errs = append(errs, fmt.Sprintf("loot.explosion.odds must be >= 1, got %d", l.Explosion.Odds))
	}
	if l.Explosion.MinMultiplier < 1 {
		errs = append(errs, fmt.Sprintf("loot.explosion.min_multiplier must be >= 1, got %v", l.Explosion.MinMultiplier))
	}
	if l.Explosion.MaxMultiplier < l.Explosion.MinMultiplier {
		errs = append(errs, "loot.explosion.max_multiplier must not be below min_multiplier")
	}
	if l.Modifiers.Min < -1 {
		errs = append(errs, fmt.Sprintf("loot.modifiers.min must be >= -1, got %v", l.Modifiers.Min))
	}
	if l.Modifiers.Max < l.Modifiers.Min {
		errs = append(errs, "loot.modifiers.max must not be below loot.modifiers.min")
	}
	if l.TierSkew < 0 {
		errs = append(errs, fmt.Sprintf("loot.tier_skew must be >= 0, got %v", l.TierSkew))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with PYPHORIA_ prefix
	v.SetEnvPrefix("PYPHORIA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Defaults returns a Viper instance populated only with default values.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "pyphoria")
	v.SetDefault("database.password", "pyphoria")
	v.SetDefault("database.name", "pyphoria")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("loot.pools_dir", "content/loot/pools")
	v.SetDefault("loot.tiers_file", "content/loot/tiers.yaml")
	v.SetDefault("loot.items_dir", "content/items")
	v.SetDefault("loot.seed", 0)
	v.SetDefault("loot.tier_skew", 1.0)
	v.SetDefault("loot.count.weights", []float64{1, 2.5, 4, 4, 2.5, 1})
	v.SetDefault("loot.explosion.odds", 100)
	v.SetDefault("loot.explosion.min_multiplier", 2.0)
	v.SetDefault("loot.explosion.max_multiplier", 4.0)
	v.SetDefault("loot.modifiers.min", -1.0)
	v.SetDefault("loot.modifiers.max", 10.0)
}
