// Package config provides Viper-based configuration loading for the battle
// simulator binaries.
package config

import (
	"errors"
	"fmt"
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

// EngineConfig describes the authoritative child engine.
type EngineConfig struct {
	// Dir is the child's working directory.
	Dir string `mapstructure:"dir"`
	// Command is the argv that starts a battle stream.
	Command []string `mapstructure:"command"`
	// PackCommand is the argv that converts an exported team to packed form.
	PackCommand []string `mapstructure:"pack_command"`
	// Format is the battle format identifier sent in the start directive.
	Format string `mapstructure:"format"`
	// ReadTimeout bounds a single block read.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// StartupBudget is the number of empty reads tolerated before the
	// opening requests.
	StartupBudget int `mapstructure:"startup_budget"`
	// StepBudget is the number of empty reads tolerated per turn.
	StepBudget int `mapstructure:"step_budget"`
	// CloseGrace is the wait between SIGTERM and SIGKILL.
	CloseGrace time.Duration `mapstructure:"close_grace"`
	// StderrLines is the size of the stderr ring kept for diagnostics.
	StderrLines int `mapstructure:"stderr_lines"`
	MaxTurns    int `mapstructure:"max_turns"`
	// Teams lists one team file per side; empty generates random teams.
	Teams []string `mapstructure:"teams"`
}

// SimulationConfig configures the deterministic in-process simulator.
type SimulationConfig struct {
	// Seed makes runs reproducible; 0 draws from crypto/rand.
	Seed             int64    `mapstructure:"seed"`
	Level            int      `mapstructure:"level"`
	TeamSize         int      `mapstructure:"team_size"`
	DexDir           string   `mapstructure:"dex_dir"`
	ScriptDir        string   `mapstructure:"script_dir"`
	InstructionLimit int      `mapstructure:"instruction_limit"`
	MaxTurns         int      `mapstructure:"max_turns"`
	Teams            []string `mapstructure:"teams"`
}

// AgentConfig selects the chooser that plays one side.
type AgentConfig struct {
	// Kind is "random", "heuristic" or "claude".
	Kind      string `mapstructure:"kind"`
	Name      string `mapstructure:"name"`
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// AgentsConfig holds one agent per side.
type AgentsConfig struct {
	P1 AgentConfig `mapstructure:"p1"`
	P2 AgentConfig `mapstructure:"p2"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Engine     EngineConfig     `mapstructure:"engine"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Agents     AgentsConfig     `mapstructure:"agents"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateDatabase(c.Database); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateEngine(c.Engine); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateAgent("agents.p1", c.Agents.P1); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateAgent("agents.p2", c.Agents.P2); err != nil {
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

func validateEngine(e EngineConfig) error {
	var errs []string
	if len(e.Command) == 0 {
		errs = append(errs, "engine.command must not be empty")
	}
	if e.Format == "" {
		errs = append(errs, "engine.format must not be empty")
	}
	if e.ReadTimeout <= 0 {
		errs = append(errs, "engine.read_timeout must be positive")
	}
	if e.StartupBudget < 1 {
		errs = append(errs, fmt.Sprintf("engine.startup_budget must be >= 1, got %d", e.StartupBudget))
	}
	if e.StepBudget < 1 {
		errs = append(errs, fmt.Sprintf("engine.step_budget must be >= 1, got %d", e.StepBudget))
	}
	if e.CloseGrace < 0 {
		errs = append(errs, "engine.close_grace must not be negative")
	}
	if e.StderrLines < 1 {
		errs = append(errs, fmt.Sprintf("engine.stderr_lines must be >= 1, got %d", e.StderrLines))
	}
	if e.MaxTurns < 1 {
		errs = append(errs, fmt.Sprintf("engine.max_turns must be >= 1, got %d", e.MaxTurns))
	}
	if n := len(e.Teams); n != 0 && n != 2 {
		errs = append(errs, fmt.Sprintf("engine.teams must list 0 or 2 files, got %d", n))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.Level < 1 || s.Level > 100 {
		errs = append(errs, fmt.Sprintf("simulation.level must be 1-100, got %d", s.Level))
	}
	if s.TeamSize < 1 || s.TeamSize > 6 {
		errs = append(errs, fmt.Sprintf("simulation.team_size must be 1-6, got %d", s.TeamSize))
	}
	if s.DexDir == "" {
		errs = append(errs, "simulation.dex_dir must not be empty")
	}
	if s.InstructionLimit < 0 {
		errs = append(errs, "simulation.instruction_limit must not be negative")
	}
	if s.MaxTurns < 1 {
		errs = append(errs, fmt.Sprintf("simulation.max_turns must be >= 1, got %d", s.MaxTurns))
	}
	if n := len(s.Teams); n != 0 && n != 2 {
		errs = append(errs, fmt.Sprintf("simulation.teams must list 0 or 2 files, got %d", n))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateAgent(prefix string, a AgentConfig) error {
	switch a.Kind {
	case "random", "heuristic":
		return nil
	case "claude":
		var errs []string
		if a.APIKey == "" {
			errs = append(errs, prefix+".api_key must not be empty for kind claude")
		}
		if a.Model == "" {
			errs = append(errs, prefix+".model must not be empty for kind claude")
		}
		if a.MaxTokens < 1 {
			errs = append(errs, fmt.Sprintf("%s.max_tokens must be >= 1, got %d", prefix, a.MaxTokens))
		}
		if len(errs) > 0 {
			return errors.New(strings.Join(errs, "; "))
		}
		return nil
	}
	return fmt.Errorf("%s.kind must be one of [random, heuristic, claude], got %q", prefix, a.Kind)
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

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with BATTLESIM_ prefix
	v.SetEnvPrefix("BATTLESIM")
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

// SetDefaults installs every default on v, for callers that build their own
// Viper instance.
func SetDefaults(v *viper.Viper) { setDefaults(v) }

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "battlesim")
	v.SetDefault("database.password", "battlesim")
	v.SetDefault("database.name", "battlesim")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("engine.command", []string{"node", "pokemon-showdown", "simulate-battle"})
	v.SetDefault("engine.pack_command", []string{"node", "pokemon-showdown", "pack-team"})
	v.SetDefault("engine.format", "gen9customgame")
	v.SetDefault("engine.read_timeout", "1s")
	v.SetDefault("engine.startup_budget", 10)
	v.SetDefault("engine.step_budget", 30)
	v.SetDefault("engine.close_grace", "2s")
	v.SetDefault("engine.stderr_lines", 50)
	v.SetDefault("engine.max_turns", 200)

	v.SetDefault("simulation.level", 50)
	v.SetDefault("simulation.team_size", 3)
	v.SetDefault("simulation.dex_dir", "content/dex")
	v.SetDefault("simulation.script_dir", "content/scripts/abilities")
	v.SetDefault("simulation.instruction_limit", 100000)
	v.SetDefault("simulation.max_turns", 200)

	v.SetDefault("agents.p1.kind", "heuristic")
	v.SetDefault("agents.p1.name", "Player 1")
	v.SetDefault("agents.p1.max_tokens", 64)
	v.SetDefault("agents.p2.kind", "random")
	v.SetDefault("agents.p2.name", "Player 2")
	v.SetDefault("agents.p2.max_tokens", 64)
}
