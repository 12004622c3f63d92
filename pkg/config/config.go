// Package config loads the kernel's process-level configuration: the
// event log backend, logging, and the SafetyPolicy numeric set,
// layered file-then-environment the way the teacher stack does it
// (yaml file defaults, envdecode overrides, godotenv for local .env
// files).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/symbolic-labs-pub/freedom-that-lasts/domain/governance/policy"
)

// EventLogConfig selects and configures the append-only event log.
type EventLogConfig struct {
	Driver          string `json:"driver" env:"KERNEL_EVENTLOG_DRIVER"`
	PostgresDSN     string `json:"postgres_dsn" env:"KERNEL_EVENTLOG_DSN"`
	MaxOpenConns    int    `json:"max_open_conns" env:"KERNEL_EVENTLOG_MAX_OPEN_CONNS"`
	MaxIdleConns    int    `json:"max_idle_conns" env:"KERNEL_EVENTLOG_MAX_IDLE_CONNS"`
	MigrateOnStart  bool   `json:"migrate_on_start" yaml:"migrate_on_start" env:"KERNEL_EVENTLOG_MIGRATE_ON_START"`
}

// LoggingConfig controls structured logging (infrastructure/logging).
type LoggingConfig struct {
	Level  string `json:"level" env:"LOG_LEVEL"`
	Format string `json:"format" env:"LOG_FORMAT"`
}

// SafetyConfig mirrors policy.SafetyPolicy's scalar fields so operators
// can tune concentration thresholds without a code change. Map-valued
// fields (BudgetFlexLimits, CheckpointDefaults) are not environment-
// overridable and always come from policy.Default().
type SafetyConfig struct {
	MaxDelegationTTLDays   int     `json:"max_delegation_ttl_days" env:"KERNEL_MAX_DELEGATION_TTL_DAYS"`
	DelegationGiniWarn     float64 `json:"delegation_gini_warn" env:"KERNEL_DELEGATION_GINI_WARN"`
	DelegationGiniHalt     float64 `json:"delegation_gini_halt" env:"KERNEL_DELEGATION_GINI_HALT"`
	DelegationInDegreeWarn int     `json:"delegation_in_degree_warn" env:"KERNEL_DELEGATION_IN_DEGREE_WARN"`
	DelegationInDegreeHalt int     `json:"delegation_in_degree_halt" env:"KERNEL_DELEGATION_IN_DEGREE_HALT"`
	SupplierGiniWarn       float64 `json:"supplier_gini_warn" env:"KERNEL_SUPPLIER_GINI_WARN"`
	SupplierGiniHalt       float64 `json:"supplier_gini_halt" env:"KERNEL_SUPPLIER_GINI_HALT"`
}

// Config is the kernel process's top-level configuration.
type Config struct {
	EventLog EventLogConfig `json:"eventlog"`
	Logging  LoggingConfig  `json:"logging"`
	Safety   SafetyConfig   `json:"safety"`
}

// New returns a configuration populated with the kernel's defaults.
func New() *Config {
	d := policy.Default()
	return &Config{
		EventLog: EventLogConfig{
			Driver:         "memory",
			MaxOpenConns:   10,
			MaxIdleConns:   5,
			MigrateOnStart: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Safety: SafetyConfig{
			MaxDelegationTTLDays:   d.MaxDelegationTTLDays,
			DelegationGiniWarn:     d.DelegationGiniWarn,
			DelegationGiniHalt:     d.DelegationGiniHalt,
			DelegationInDegreeWarn: d.DelegationInDegreeWarn,
			DelegationInDegreeHalt: d.DelegationInDegreeHalt,
			SupplierGiniWarn:       d.SupplierGiniWarn,
			SupplierGiniHalt:       d.SupplierGiniHalt,
		},
	}
}

// Load reads config/kernel.yaml (or $KERNEL_CONFIG_FILE) if present,
// then applies environment overrides via envdecode.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := New()

	path := strings.TrimSpace(os.Getenv("KERNEL_CONFIG_FILE"))
	if path == "" {
		path = filepath.Join("config", "kernel.yaml")
	}
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	if err := envdecode.Decode(cfg); err != nil {
		if !strings.Contains(err.Error(), "none of the target fields were set") {
			return nil, fmt.Errorf("decode env: %w", err)
		}
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	expanded, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// SafetyPolicy builds a policy.SafetyPolicy from the loaded scalars,
// keeping the map-valued fields at their package defaults.
func (c *Config) SafetyPolicy() policy.SafetyPolicy {
	p := policy.Default()
	p.MaxDelegationTTLDays = c.Safety.MaxDelegationTTLDays
	p.DelegationGiniWarn = c.Safety.DelegationGiniWarn
	p.DelegationGiniHalt = c.Safety.DelegationGiniHalt
	p.DelegationInDegreeWarn = c.Safety.DelegationInDegreeWarn
	p.DelegationInDegreeHalt = c.Safety.DelegationInDegreeHalt
	p.SupplierGiniWarn = c.Safety.SupplierGiniWarn
	p.SupplierGiniHalt = c.Safety.SupplierGiniHalt
	return p
}
