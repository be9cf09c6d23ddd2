// Package rules loads the per-institution rules file and enriches
// transactions with payee, comment, and account labels.
package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Config is the rules file for one institution's CSV export format.
// Exactly one of Transformers or TxRules must be set.
type Config struct {
	Locale       string        `json:"locale"`
	Currency     string        `json:"currency"`
	DateFormat   string        `json:"dateFormat"`
	TimeZone     string        `json:"timeZone,omitempty"`
	Fields       []string      `json:"fields"`
	Account1     string        `json:"account1"`
	Account2     string        `json:"account2"`
	Transformers []Transformer `json:"transformers,omitempty"`
	TxRules      []PatternRule `json:"txRules,omitempty"`
}

// Transformer pairs a predicate expression with the field values to set when
// it matches.
type Transformer struct {
	Rule      json.RawMessage   `json:"rule"`
	NewValues map[string]string `json:"newValues"`
}

// PatternRule tests a regular expression against the transaction description
// and sets the fields it carries on match. Absent fields leave the current
// value untouched.
type PatternRule struct {
	Pattern  string  `json:"pattern"`
	Payee    *string `json:"payee,omitempty"`
	Comment  *string `json:"comment,omitempty"`
	Account1 *string `json:"account1,omitempty"`
	Account2 *string `json:"account2,omitempty"`
}

// Load reads a rules file from disk. JSON is the native format; .yaml/.yml
// files are accepted by decoding generically and normalizing through JSON, so
// one struct definition serves both.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing rules: %w", err)
		}
		if data, err = json.Marshal(doc); err != nil {
			return nil, fmt.Errorf("normalizing rules: %w", err)
		}
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes a rules file, as JSON or (by extension) YAML. YAML goes through
// the same JSON normalization as Load so both formats stay interchangeable.
func Save(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	data = append(data, '\n')

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("normalizing rules: %w", err)
		}
		if data, err = yaml.Marshal(doc); err != nil {
			return fmt.Errorf("marshaling rules: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}

// Validate checks the fields the import pipeline depends on. Rule semantics
// beyond that are checked where they are applied.
func (c *Config) Validate() error {
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("locale %q: %w", c.Locale, err)
	}
	if c.Currency == "" {
		return fmt.Errorf("currency is required")
	}
	if c.DateFormat == "" {
		return fmt.Errorf("dateFormat is required")
	}
	if len(c.Fields) == 0 {
		return fmt.Errorf("fields is required")
	}
	if c.Account1 == "" || c.Account2 == "" {
		return fmt.Errorf("account1 and account2 are required")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("timeZone %q: %w", c.TimeZone, err)
	}
	if len(c.Transformers) > 0 && len(c.TxRules) > 0 {
		return fmt.Errorf("transformers and txRules are mutually exclusive")
	}
	if len(c.Transformers) == 0 && len(c.TxRules) == 0 {
		return fmt.Errorf("either transformers or txRules must be set")
	}
	return nil
}

// LanguageTag returns the parsed locale.
func (c *Config) LanguageTag() (language.Tag, error) {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Tag{}, fmt.Errorf("locale %q: %w", c.Locale, err)
	}
	return tag, nil
}

// Location resolves the configured time zone. Absent or "utc" means UTC.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" || strings.EqualFold(c.TimeZone, "utc") {
		return time.UTC, nil
	}
	return time.LoadLocation(c.TimeZone)
}

// Starter returns a minimal valid rules file for a new institution, used by
// the init command.
func Starter(account1, account2 string) *Config {
	comment := "example: tag every coffee purchase"
	coffee := "Expenses:Coffee"
	return &Config{
		Locale:     "en-US",
		Currency:   "USD",
		DateFormat: "MM/DD/YYYY",
		TimeZone:   "utc",
		Fields:     []string{"date", "description", "amount", "balance"},
		Account1:   account1,
		Account2:   account2,
		TxRules: []PatternRule{
			{Pattern: "COFFEE", Account2: &coffee, Comment: &comment},
		},
	}
}
