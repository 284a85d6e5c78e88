package config

// This file binds CLI flags. Flag values are collected separately and
// applied after axon.yaml is loaded, so a flag only overrides the file when
// the user actually passed it.

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Version is shown by --version; override at build time with
// -ldflags "-X github.com/backmassage/axon/internal/config.Version=...".
var Version = "0.1.0-dev"

// binding ties one flag to the Config field it overrides.
type binding struct {
	fs    *pflag.FlagSet
	name  string
	apply func(dst, src *Config)
}

// Flags holds parsed flag values until they are applied.
type Flags struct {
	v        Config
	bindings []binding
}

// NewFlags returns an empty flag set seeded with defaults for help text.
func NewFlags() *Flags {
	return &Flags{v: DefaultConfig()}
}

func (f *Flags) bind(fs *pflag.FlagSet, name string, apply func(dst, src *Config)) {
	f.bindings = append(f.bindings, binding{fs: fs, name: name, apply: apply})
}

// Global registers flags shared by every command.
func (f *Flags) Global(fs *pflag.FlagSet) {
	fs.StringVarP(&f.v.ConfigFile, "config", "C", "", "Config file (default: <notes-dir>/axon.yaml)")
	fs.StringVarP(&f.v.NotesDir, "dir", "d", f.v.NotesDir, "Notes directory")
	fs.StringVarP(&f.v.Pattern, "pattern", "p", "", "Naming convention pattern")
	fs.BoolVarP(&f.v.Recursive, "recursive", "r", false, "Descend into subdirectories")
	fs.BoolVarP(&f.v.CaseInsensitive, "ignore-case", "i", false, "Match literals case-insensitively")
	fs.StringSliceVar(&f.v.Tags, "tags", nil, "Known tags for tag-list fields")
	fs.StringSliceVar(&f.v.Extensions, "ext", nil, "File extensions to consider (default: md)")
	fs.Var(&enumValue[ColorMode]{&f.v.ColorMode, []ColorMode{ColorAuto, ColorAlways, ColorNever}}, "color", "Color output: auto | always | never")
	fs.BoolVarP(&f.v.Verbose, "verbose", "v", false, "Verbose output")
	fs.StringVarP(&f.v.LogFile, "log", "l", "", "Append JSON logs to file")
	fs.StringVar(&f.v.MetricsFile, "metrics-file", "", "Write executor metrics to file (Prometheus text format)")

	f.bind(fs, "dir", func(d, s *Config) { d.NotesDir = NormalizeDirArg(s.NotesDir) })
	f.bind(fs, "pattern", func(d, s *Config) { d.Pattern = s.Pattern })
	f.bind(fs, "recursive", func(d, s *Config) { d.Recursive = s.Recursive })
	f.bind(fs, "ignore-case", func(d, s *Config) { d.CaseInsensitive = s.CaseInsensitive })
	f.bind(fs, "tags", func(d, s *Config) { d.Tags = s.Tags })
	f.bind(fs, "ext", func(d, s *Config) { d.Extensions = s.Extensions })
	f.bind(fs, "color", func(d, s *Config) { d.ColorMode = s.ColorMode })
	f.bind(fs, "verbose", func(d, s *Config) { d.Verbose = s.Verbose })
	f.bind(fs, "log", func(d, s *Config) { d.LogFile = s.LogFile })
	f.bind(fs, "metrics-file", func(d, s *Config) { d.MetricsFile = s.MetricsFile })
}

// Health registers flags of the health command.
func (f *Flags) Health(fs *pflag.FlagSet) {
	fs.BoolVar(&f.v.Strict, "strict", false, "Count exempt files as invalid")
	fs.BoolVar(&f.v.JSON, "json", false, "Output as JSON")
	fs.BoolVarP(&f.v.Quiet, "quiet", "q", false, "Only list failures")

	f.bind(fs, "strict", func(d, s *Config) { d.Strict = s.Strict })
	f.bind(fs, "json", func(d, s *Config) { d.JSON = s.JSON })
	f.bind(fs, "quiet", func(d, s *Config) { d.Quiet = s.Quiet })
}

// Validate registers flags of the validate command.
func (f *Flags) Validate(fs *pflag.FlagSet) {
	fs.BoolVar(&f.v.JSON, "json", false, "Output results as JSON")
	f.bind(fs, "json", func(d, s *Config) { d.JSON = s.JSON })
}

// Refactor registers flags of the refactor command.
func (f *Flags) Refactor(fs *pflag.FlagSet) {
	fs.BoolVarP(&f.v.DryRun, "dry-run", "n", false, "Show the rename plan and exit")
	fs.BoolVarP(&f.v.Yes, "yes", "y", false, "Skip the confirmation prompt")
	fs.BoolVar(&f.v.Retry, "retry", false, "Re-run the last failed batch")
	fs.Var(&enumValue[ConflictPolicy]{&f.v.OnConflict, []ConflictPolicy{ConflictFail, ConflictSkip, ConflictSuffix}}, "on-conflict", "Conflict policy: fail | skip | suffix")
	fs.StringToStringVar(&f.v.Defaults, "default", nil, "Value for a missing field, as field=value (repeatable)")
	fs.BoolVar(&f.v.DropStrayText, "drop-stray-text", false, "Discard text the pattern has no place for instead of skipping the file")
	fs.StringVar(&f.v.From, "from", "", "Migrate files following this pattern (requires --to)")
	fs.StringVar(&f.v.To, "to", "", "Pattern to migrate files to (requires --from)")

	f.bind(fs, "dry-run", func(d, s *Config) { d.DryRun = s.DryRun })
	f.bind(fs, "yes", func(d, s *Config) { d.Yes = s.Yes })
	f.bind(fs, "retry", func(d, s *Config) { d.Retry = s.Retry })
	f.bind(fs, "on-conflict", func(d, s *Config) { d.OnConflict = s.OnConflict })
	f.bind(fs, "drop-stray-text", func(d, s *Config) { d.DropStrayText = s.DropStrayText })
	f.bind(fs, "from", func(d, s *Config) { d.From = s.From })
	f.bind(fs, "to", func(d, s *Config) { d.To = s.To })
	f.bind(fs, "default", func(d, s *Config) {
		if d.Defaults == nil {
			d.Defaults = make(map[string]string, len(s.Defaults))
		}
		for k, v := range s.Defaults {
			d.Defaults[k] = v
		}
	})
}

// Parse registers flags of the parse command.
func (f *Flags) Parse(fs *pflag.FlagSet) {
	fs.BoolVar(&f.v.JSON, "json", false, "Output fields as JSON")
	f.bind(fs, "json", func(d, s *Config) { d.JSON = s.JSON })
}

// List registers flags of the list command.
func (f *Flags) List(fs *pflag.FlagSet) {
	fs.StringToStringVarP(&f.v.Where, "where", "w", nil, "Only files whose field equals value, as field=value (repeatable)")
	fs.BoolVar(&f.v.JSON, "json", false, "Output names as JSON")

	f.bind(fs, "where", func(d, s *Config) { d.Where = s.Where })
	f.bind(fs, "json", func(d, s *Config) { d.JSON = s.JSON })
}

// Rollback registers flags of the rollback command.
func (f *Flags) Rollback(fs *pflag.FlagSet) {
	fs.BoolVarP(&f.v.Yes, "yes", "y", false, "Skip the confirmation prompt")
	f.bind(fs, "yes", func(d, s *Config) { d.Yes = s.Yes })
}

// ConfigFile returns the --config value and the --dir value, which decide
// where axon.yaml is looked up before anything else is applied.
func (f *Flags) ConfigFile() (file, notesDir string) {
	return f.v.ConfigFile, NormalizeDirArg(f.v.NotesDir)
}

// Apply copies every flag the user set into cfg.
func (f *Flags) Apply(cfg *Config) {
	for _, b := range f.bindings {
		if fl := b.fs.Lookup(b.name); fl != nil && fl.Changed {
			b.apply(cfg, &f.v)
		}
	}
}

// enumValue adapts a string enum to pflag.Value.
type enumValue[T ~string] struct {
	p       *T
	allowed []T
}

func (e *enumValue[T]) String() string { return string(*e.p) }
func (e *enumValue[T]) Type() string   { return "string" }

func (e *enumValue[T]) Set(s string) error {
	for _, a := range e.allowed {
		if strings.EqualFold(s, string(a)) {
			*e.p = a
			return nil
		}
	}
	names := make([]string, len(e.allowed))
	for i, a := range e.allowed {
		names[i] = "'" + string(a) + "'"
	}
	return fmt.Errorf("invalid value %q (use %s)", s, strings.Join(names, " or "))
}
