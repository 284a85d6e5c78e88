// Package config holds runtime configuration: defaults, the axon.yaml file,
// CLI flag binding, and validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// --- Enum types for validated string fields ---

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// ConflictPolicy names how colliding rename targets are settled.
type ConflictPolicy string

const (
	ConflictFail   ConflictPolicy = "fail"   // Abort the plan (default).
	ConflictSkip   ConflictPolicy = "skip"   // Leave colliding files alone.
	ConflictSuffix ConflictPolicy = "suffix" // Append -2, -3, ... in source order.
)

// JournalBackend selects where executed batches are recorded.
type JournalBackend string

const (
	JournalFile   JournalBackend = "file"   // JSON file in the notes directory (default).
	JournalBadger JournalBackend = "badger" // Embedded badger database.
)

// DefaultPattern is the convention used when neither axon.yaml nor
// --pattern names one.
const DefaultPattern = "{repo}.feat.{feature}.{type}.{variant}.v{version:integer}.md"

// Journal configures the batch journal.
type Journal struct {
	Backend JournalBackend `yaml:"backend" validate:"oneof=file badger"`
	// Path is relative to the notes directory unless absolute. Empty picks
	// a per-backend default.
	Path string `yaml:"path"`
}

// Config holds all runtime settings. It is built from [DefaultConfig], then
// axon.yaml via [Load], then command-line flags via [Flags.Apply].
type Config struct {
	// Corpus.
	NotesDir   string   `yaml:"notes_dir" validate:"required"`
	Recursive  bool     `yaml:"recursive"`
	Extensions []string `yaml:"extensions" validate:"dive,required,alphanum"` // Files considered; empty means all.

	// Convention.
	Pattern          string              `yaml:"pattern" validate:"required"`
	CaseInsensitive  bool                `yaml:"case_insensitive"`
	DateFormat       string              `yaml:"date_format" validate:"required"` // Go reference layout. Default: 2006-01-02.
	DefaultExtension string              `yaml:"default_extension" validate:"omitempty,alphanum"`
	Tags             []string            `yaml:"tags" validate:"dive,required"`
	Enums            map[string][]string `yaml:"enums" validate:"dive,min=1,dive,required"`
	Exempt           map[string]string   `yaml:"exempt"` // File name or glob → reason, on top of the built-in list.

	// Refactoring.
	OnConflict    ConflictPolicy    `yaml:"on_conflict" validate:"oneof=fail skip suffix"`
	Defaults      map[string]string `yaml:"defaults"`        // Field → value used for missing fields.
	DropStrayText bool              `yaml:"drop_stray_text"` // Let repairs discard text the pattern has no place for.
	Journal       Journal           `yaml:"journal"`

	// Display and logging.
	ColorMode ColorMode `yaml:"color" validate:"oneof=auto always never"`
	LogFile   string    `yaml:"log_file"`
	Verbose   bool      `yaml:"verbose"`

	// MetricsFile receives executor metrics in Prometheus text format after
	// each batch (node_exporter textfile collector).
	MetricsFile string `yaml:"metrics_file"`

	// Per-invocation switches, set only from flags.
	ConfigFile string `yaml:"-"`
	DryRun     bool   `yaml:"-"`
	Yes        bool   `yaml:"-"`
	Retry      bool   `yaml:"-"`
	Strict     bool   `yaml:"-"`
	JSON       bool   `yaml:"-"`
	Quiet      bool   `yaml:"-"`

	// From and To switch refactor to pattern migration.
	From  string            `yaml:"-"`
	To    string            `yaml:"-"`
	Where map[string]string `yaml:"-"` // list filters, field → value
}

// DefaultConfig returns a Config for the current directory with the
// built-in convention.
func DefaultConfig() Config {
	return Config{
		NotesDir:   ".",
		Extensions: []string{"md"},
		Pattern:    DefaultPattern,
		DateFormat: "2006-01-02",
		OnConflict: ConflictFail,
		Journal:    Journal{Backend: JournalFile},
		ColorMode:  ColorAuto,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" {
		return "."
	}
	return trimmed
}

var validate = newValidator()

// newValidator reports fields by their axon.yaml key.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	return v
}

// Validate checks field constraints and normalizes extensions.
func (c *Config) Validate() error {
	for i, ext := range c.Extensions {
		c.Extensions[i] = strings.ToLower(strings.TrimPrefix(ext, "."))
	}
	c.DefaultExtension = strings.TrimPrefix(c.DefaultExtension, ".")
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return fieldError(verrs[0])
		}
		return err
	}
	if c.Retry && c.DryRun {
		return errors.New("--retry cannot be combined with --dry-run")
	}
	if (c.From == "") != (c.To == "") {
		return errors.New("--from and --to must be given together")
	}
	if c.From != "" && c.Retry {
		return errors.New("--retry cannot be combined with --from/--to")
	}
	if c.JSON && c.Quiet {
		return errors.New("--json and --quiet are mutually exclusive")
	}
	return nil
}

// fieldError turns a validator failure into a message naming the yaml key.
func fieldError(fe validator.FieldError) error {
	_, name, _ := strings.Cut(fe.Namespace(), ".")
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s must not be empty", name)
	case "oneof":
		return fmt.Errorf("invalid %s %q (use %s)", name, fe.Value(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "alphanum":
		return fmt.Errorf("invalid %s %q (letters and digits only)", name, fe.Value())
	case "min":
		return fmt.Errorf("%s needs at least %s value(s)", name, fe.Param())
	}
	return fmt.Errorf("invalid %s: failed %q", name, fe.Tag())
}

// JournalPath resolves the journal location against the notes directory.
func (c *Config) JournalPath() string {
	p := c.Journal.Path
	if p == "" {
		if c.Journal.Backend == JournalBadger {
			p = ".axon-journal"
		} else {
			p = ".axon-rollback.json"
		}
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.NotesDir, p)
}

// ExtensionAllowed reports whether a file named name is considered by
// discovery.
func (c *Config) ExtensionAllowed(name string) bool {
	if len(c.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, e := range c.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
