package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gyeh/rvustats/internal/source"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromFile_Valid(t *testing.T) {
	path := writeConfig(t, `profile: productivity
mean_policy: exclude
derive_tat: true
columns:
  provider: ["Reading Rad"]
duration_synonyms:
  "An Hour": 60
  "half a day": 720
`)

	var c Config
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if c.Profile != "productivity" {
		t.Errorf("Profile: got %q, want productivity", c.Profile)
	}
	if c.MeanPolicy != PolicyExclude {
		t.Errorf("MeanPolicy: got %q, want %q", c.MeanPolicy, PolicyExclude)
	}
	if !c.DeriveTAT {
		t.Error("DeriveTAT: got false, want true")
	}
	if got := c.Columns["provider"]; len(got) != 1 || got[0] != "Reading Rad" {
		t.Errorf("Columns[provider]: got %v", got)
	}
	syn := c.Synonyms()
	if len(syn) != 2 || syn["an hour"] != 60 || syn["half a day"] != 720 {
		t.Errorf("unexpected synonyms: %v", syn)
	}
}

func TestLoadFromFile_FlagsWin(t *testing.T) {
	path := writeConfig(t, "profile: rvu\nmean_policy: exclude\n")

	c := Config{Profile: "tat", MeanPolicy: PolicyZero}
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if c.Profile != "tat" || c.MeanPolicy != PolicyZero {
		t.Errorf("flags overridden by file: %+v", c)
	}
}

func TestLoadFromFile_UnknownColumn(t *testing.T) {
	path := writeConfig(t, "columns:\n  bogus: [x]\n")

	var c Config
	if err := c.LoadFromFile(path); err == nil {
		t.Fatal("expected error for unknown column")
	}
}

func TestLoadFromFile_NegativeSynonym(t *testing.T) {
	path := writeConfig(t, "duration_synonyms:\n  soon: -5\n")

	var c Config
	if err := c.LoadFromFile(path); err == nil {
		t.Fatal("expected error for negative synonym")
	}
}

func TestLoadFromFile_UnknownProfile(t *testing.T) {
	path := writeConfig(t, "profile: billing\n")

	var c Config
	if err := c.LoadFromFile(path); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestLoadFromFile_EmptySynonymsDisablesDefaults(t *testing.T) {
	path := writeConfig(t, "duration_synonyms: {}\n")

	var c Config
	if err := c.LoadFromFile(path); err != nil {
		t.Fatalf("LoadFromFile: %v", err)
	}
	if len(c.Synonyms()) != 0 {
		t.Errorf("expected empty synonym table, got %v", c.Synonyms())
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	var c Config
	if err := c.LoadFromFile("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSynonyms_Defaults(t *testing.T) {
	var c Config
	if got := c.Synonyms(); got["an hour"] != 60 || got["a day"] != 1440 {
		t.Errorf("unexpected defaults: %v", got)
	}
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "exams.csv")
	os.WriteFile(file, []byte("provider\n"), 0644)

	c := Config{FilePath: file}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if c.Profile != "tat" || c.MeanPolicy != PolicyZero {
		t.Errorf("defaults not applied: %+v", c)
	}

	if err := (&Config{}).Validate(); err == nil {
		t.Error("expected error when --file is missing")
	}
	err := (&Config{FilePath: filepath.Join(dir, "nope.csv")}).Validate()
	var se *source.SourceError
	if !errors.As(err, &se) {
		t.Errorf("missing file: expected SourceError, got %v", err)
	}
	if err := (&Config{FilePath: file, MeanPolicy: "median"}).Validate(); err == nil {
		t.Error("expected error for unknown policy")
	}
	if err := (&Config{FromDB: true}).Validate(); err == nil {
		t.Error("expected error for --from-db without DSN")
	}
	if err := (&Config{FilePath: file}).ValidateWithDSN(); err == nil {
		t.Error("expected error for missing DSN")
	}
}

func TestSchemaOptions(t *testing.T) {
	c := Config{
		Profile:   "rvu",
		DeriveTAT: true,
		Columns:   map[string][]string{"provider": {"reading rad"}},
	}
	opts := c.SchemaOptions()
	if opts.Profile != "rvu" || !opts.DeriveTAT {
		t.Errorf("got %+v", opts)
	}
	if got := opts.Aliases["provider"]; len(got) != 1 || got[0] != "reading rad" {
		t.Errorf("aliases: got %v", got)
	}
	if opts.Synonyms["an hour"] != 60 {
		t.Errorf("default synonyms not carried: %v", opts.Synonyms)
	}
}
