package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level tillbook.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Fiscal   FiscalConfig   `yaml:"fiscal"`
	Reports  ReportsConfig  `yaml:"reports"`
	Budgets  []BudgetLine   `yaml:"budgets,omitempty"`
	Git      GitConfig      `yaml:"git"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"` // ISO 4217 code, e.g. "LKR"
}

// FiscalConfig defines the fiscal year boundaries.
type FiscalConfig struct {
	YearStart string `yaml:"year_start"` // "MM-DD" format, e.g. "04-01"
}

// ReportsConfig controls report computation.
type ReportsConfig struct {
	// COGSAccounts lists expense account codes (subtrees included)
	// summed as cost of goods sold in the P&L.
	COGSAccounts []string `yaml:"cogs_accounts"`
}

// BudgetLine sets the monthly budget for one account, in major units
// as written by the user ("45000.00").
type BudgetLine struct {
	AccountCode string `yaml:"account_code"`
	Monthly     string `yaml:"monthly"`
}

// GitConfig controls git integration for the books directory.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a tillbook.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new books dir.
func Default(businessName, currency string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:     businessName,
			Currency: currency,
		},
		Fiscal: FiscalConfig{
			YearStart: "01-01",
		},
		Reports: ReportsConfig{
			COGSAccounts: []string{"5000"},
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Tillbook",
			AuthorEmail: "books@tillbook.dev",
		},
	}
}
