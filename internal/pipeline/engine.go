package pipeline

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/backmassage/axon/internal/config"
	"github.com/backmassage/axon/internal/executor"
	"github.com/backmassage/axon/internal/journal"
	"github.com/backmassage/axon/internal/logging"
	"github.com/backmassage/axon/internal/naming"
	"github.com/backmassage/axon/internal/pattern"
	"github.com/backmassage/axon/internal/planner"
)

// ErrNoJournal is returned by operations that need the journal when none
// was opened.
var ErrNoJournal = errors.New("journal not open")

// Engine holds the compiled convention and the collaborators every command
// shares. Build one per invocation with [New].
type Engine struct {
	cfg      *config.Config
	log      *logging.Logger
	cache    *pattern.Cache
	pattern  *pattern.Pattern
	exempt   naming.Exemptions
	policy   planner.ConflictPolicy
	exec     *executor.Executor
	registry *prometheus.Registry
	journal  journal.Store
	tracer   trace.Tracer
}

// PatternOptions derives compile options from cfg.
func PatternOptions(cfg *config.Config) pattern.Options {
	return pattern.Options{
		CaseInsensitive:  cfg.CaseInsensitive,
		DateFormat:       cfg.DateFormat,
		Tags:             cfg.Tags,
		Enums:            cfg.Enums,
		DefaultExtension: cfg.DefaultExtension,
	}
}

// Exemptions merges the built-in exempt names with cfg.Exempt.
func Exemptions(cfg *config.Config) naming.Exemptions {
	ex := naming.DefaultExemptions()
	for name, reason := range cfg.Exempt {
		ex = ex.With(reason, name)
	}
	return ex
}

// New compiles the configured pattern through cache and prepares an
// executor. The journal is opened separately with [Engine.OpenJournal].
func New(cfg *config.Config, log *logging.Logger, cache *pattern.Cache) (*Engine, error) {
	p, err := cache.Compile(cfg.Pattern, PatternOptions(cfg))
	if err != nil {
		return nil, err
	}
	policy, err := planner.ParseConflictPolicy(string(cfg.OnConflict))
	if err != nil {
		return nil, err
	}
	reg := prometheus.NewRegistry()
	return &Engine{
		cfg:      cfg,
		log:      log,
		cache:    cache,
		pattern:  p,
		exempt:   Exemptions(cfg),
		policy:   policy,
		exec:     executor.New(executor.WithMetrics(executor.NewMetrics(reg))),
		registry: reg,
		tracer:   otel.Tracer("github.com/backmassage/axon/internal/pipeline"),
	}, nil
}

// Pattern returns the compiled convention.
func (e *Engine) Pattern() *pattern.Pattern { return e.pattern }

// OpenJournal opens the configured journal backend.
func (e *Engine) OpenJournal() error {
	store, err := journal.Open(journal.Backend(e.cfg.Journal.Backend), e.cfg.JournalPath(), e.log.Slog())
	if err != nil {
		return err
	}
	e.journal = store
	return nil
}

// Close releases the journal and flushes metrics to the configured file.
func (e *Engine) Close() error {
	var errs []error
	if e.cfg.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(e.cfg.MetricsFile, e.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if e.journal != nil {
		errs = append(errs, e.journal.Close())
		e.journal = nil
	}
	return errors.Join(errs...)
}
