package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/rvustats/internal/model"
	"github.com/gyeh/rvustats/internal/normalize"
	"github.com/gyeh/rvustats/internal/schema"
	"github.com/gyeh/rvustats/internal/source"
)

// Mean policies for unknown durations.
const (
	PolicyZero    = "zero"
	PolicyExclude = "exclude"
)

// Config holds all runtime configuration for a rvustats run.
type Config struct {
	DSN        string
	FilePath   string
	Sheet      string // spreadsheet sheet name; first sheet when empty
	Query      string // SQLite query; "SELECT * FROM exams" when empty
	LogFormat  string // "text" or "json"
	Profile    string // required-column profile, see model.AllProfiles
	MeanPolicy string // PolicyZero or PolicyExclude
	DeriveTAT  bool   // fill unknown TAT from finalized_at - created_at
	Force      bool
	KeepFailed bool // keep rows copied by a failed ingest batch
	FromDB     bool
	BatchID    string // ingest batch to read with --from-db; latest when empty

	Columns          map[string][]string // canonical field -> extra header aliases
	DurationSynonyms normalize.Synonyms  // nil means normalize.DefaultSynonyms
}

// yamlConfig is the on-disk YAML structure.
type yamlConfig struct {
	Profile          string              `yaml:"profile"`
	MeanPolicy       string              `yaml:"mean_policy"`
	DeriveTAT        *bool               `yaml:"derive_tat"`
	Columns          map[string][]string `yaml:"columns"`
	DurationSynonyms map[string]float64  `yaml:"duration_synonyms"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
// Values already set from flags win over the file.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if c.Profile == "" {
		c.Profile = yc.Profile
	}
	if c.MeanPolicy == "" {
		c.MeanPolicy = yc.MeanPolicy
	}
	if yc.DeriveTAT != nil && !c.DeriveTAT {
		c.DeriveTAT = *yc.DeriveTAT
	}
	if err := c.setColumns(yc.Columns); err != nil {
		return err
	}
	if err := c.setSynonyms(yc.DurationSynonyms); err != nil {
		return err
	}
	return c.ApplyDefaults()
}

// setColumns checks that every key in cols is a canonical field name.
func (c *Config) setColumns(cols map[string][]string) error {
	if len(cols) == 0 {
		return nil
	}
	c.Columns = make(map[string][]string, len(cols))
	for name, aliases := range cols {
		if _, ok := model.FieldByName(name); !ok {
			return fmt.Errorf("unknown column %q in config", name)
		}
		c.Columns[name] = aliases
	}
	return nil
}

// setSynonyms normalizes phrase keys and rejects negative minutes.
func (c *Config) setSynonyms(syn map[string]float64) error {
	if syn == nil {
		return nil
	}
	c.DurationSynonyms = make(normalize.Synonyms, len(syn))
	for phrase, minutes := range syn {
		key := normalize.SynonymKey(phrase)
		if key == "" {
			return fmt.Errorf("empty duration synonym in config")
		}
		if minutes < 0 {
			return fmt.Errorf("duration synonym %q: negative minutes %v", phrase, minutes)
		}
		c.DurationSynonyms[key] = minutes
	}
	return nil
}

// ApplyDefaults fills unset fields and validates enumerations.
func (c *Config) ApplyDefaults() error {
	if c.Profile == "" {
		c.Profile = model.DefaultProfile
	}
	if _, ok := model.ProfileByName(c.Profile); !ok {
		names := make([]string, len(model.AllProfiles))
		for i, p := range model.AllProfiles {
			names[i] = p.Name
		}
		return fmt.Errorf("unknown profile %q; want one of: %s", c.Profile, strings.Join(names, ", "))
	}
	if c.MeanPolicy == "" {
		c.MeanPolicy = PolicyZero
	}
	if c.MeanPolicy != PolicyZero && c.MeanPolicy != PolicyExclude {
		return fmt.Errorf("unknown mean policy %q; want %s or %s", c.MeanPolicy, PolicyZero, PolicyExclude)
	}
	return nil
}

// Synonyms returns the configured duration synonym table.
func (c *Config) Synonyms() normalize.Synonyms {
	if c.DurationSynonyms == nil {
		return normalize.DefaultSynonyms()
	}
	return c.DurationSynonyms
}

// SchemaOptions returns the mapping options for this run.
func (c *Config) SchemaOptions() schema.Options {
	return schema.Options{
		Profile:   c.Profile,
		Aliases:   c.Columns,
		Synonyms:  c.Synonyms(),
		DeriveTAT: c.DeriveTAT,
	}
}

// Validate checks required fields and returns an error if the config is invalid.
func (c *Config) Validate() error {
	if err := c.ApplyDefaults(); err != nil {
		return err
	}
	if c.FromDB {
		if c.DSN == "" {
			return fmt.Errorf("--from-db requires --dsn or RVUSTATS_DB_URL")
		}
		return nil
	}
	if c.FilePath == "" {
		return fmt.Errorf("--file is required")
	}
	if _, err := os.Stat(c.FilePath); err != nil {
		return &source.SourceError{Ref: source.Ref{Path: c.FilePath}, Err: err}
	}
	return nil
}

// ValidateWithDSN checks both file and DSN fields.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or RVUSTATS_DB_URL is required")
	}
	return nil
}
