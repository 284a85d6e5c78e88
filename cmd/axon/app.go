package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/backmassage/axon/internal/check"
	"github.com/backmassage/axon/internal/config"
	"github.com/backmassage/axon/internal/display"
	"github.com/backmassage/axon/internal/logging"
	"github.com/backmassage/axon/internal/pattern"
	"github.com/backmassage/axon/internal/pipeline"
	"github.com/backmassage/axon/internal/planner"
	"github.com/backmassage/axon/internal/probe"
	"github.com/backmassage/axon/internal/term"
)

// errNeedsConfirmation is returned when a prompt is required but stdin is
// not a terminal.
var errNeedsConfirmation = errors.New("confirmation required; rerun with --yes")

// app carries state shared by the commands of one invocation.
type app struct {
	flags *config.Flags
	cfg   *config.Config
	log   *logging.Logger
	cache *pattern.Cache

	// confirm asks the user; replaced in tests.
	confirm func(prompt string) (bool, error)
}

func newApp() *app {
	return &app{flags: config.NewFlags(), cache: pattern.NewCache(), confirm: promptConfirm}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "axon",
		Short:         "Keep note filenames on a naming convention",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	a.flags.Global(root.PersistentFlags())

	health := &cobra.Command{
		Use:   "health",
		Short: "Report how many notes follow the convention",
		Args:  cobra.NoArgs,
		RunE:  a.runHealth,
	}
	a.flags.Health(health.Flags())

	validate := &cobra.Command{
		Use:   "validate [file...]",
		Short: "Check filenames against the convention",
		RunE:  a.runValidate,
	}
	a.flags.Validate(validate.Flags())

	refactor := &cobra.Command{
		Use:   "refactor",
		Short: "Rename non-conforming notes",
		Args:  cobra.NoArgs,
		RunE:  a.runRefactor,
	}
	a.flags.Refactor(refactor.Flags())

	rollback := &cobra.Command{
		Use:   "rollback",
		Short: "Undo the last applied refactor",
		Args:  cobra.NoArgs,
		RunE:  a.runRollback,
	}
	a.flags.Rollback(rollback.Flags())

	parse := &cobra.Command{
		Use:   "parse <filename>",
		Short: "Show the field values of a conforming filename",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runParse,
	}
	a.flags.Parse(parse.Flags())

	list := &cobra.Command{
		Use:   "list",
		Short: "List conforming notes, optionally filtered by field value",
		Args:  cobra.NoArgs,
		RunE:  a.runList,
	}
	a.flags.List(list.Flags())

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Diagnose the notes directory, pattern and journal",
		Args:  cobra.NoArgs,
		RunE:  a.runCheck,
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			display.PrintBanner(cmd.OutOrStdout())
		},
	}

	root.AddCommand(health, validate, refactor, rollback, parse, list, checkCmd, version)
	return root
}

// setup layers defaults, axon.yaml and flags, then starts the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.DefaultConfig()
	file, dir := a.flags.ConfigFile()
	path, explicit := config.Resolve(file, dir)
	if err := config.Load(&cfg, path, explicit); err != nil {
		return &configError{err}
	}
	a.flags.Apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return &configError{err}
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		return err
	}
	log.SetOutput(cmd.OutOrStdout(), cmd.ErrOrStderr())
	a.cfg, a.log = &cfg, log
	if cfg.ConfigFile != "" {
		log.Debug("Loaded %s", cfg.ConfigFile)
	}
	return nil
}

// engine builds the pipeline engine, opening the journal when withJournal
// is set. The caller closes it.
func (a *app) engine(withJournal bool) (*pipeline.Engine, error) {
	eng, err := pipeline.New(a.cfg, a.log, a.cache)
	if err != nil {
		return nil, err
	}
	if withJournal {
		if err := eng.OpenJournal(); err != nil {
			_ = eng.Close()
			return nil, err
		}
	}
	return eng, nil
}

func (a *app) closeEngine(eng *pipeline.Engine) {
	if err := eng.Close(); err != nil {
		a.log.Warn("%v", err)
	}
}

func (a *app) runHealth(cmd *cobra.Command, _ []string) error {
	eng, err := a.engine(false)
	if err != nil {
		return err
	}
	defer a.closeEngine(eng)

	report, err := eng.Health(cmd.Context())
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if a.cfg.JSON {
		if err := display.JSON(w, report); err != nil {
			return err
		}
	} else {
		display.Health(w, report, a.cfg.Quiet)
	}
	if !report.OK() {
		return errInvalid
	}
	return nil
}

func (a *app) runValidate(cmd *cobra.Command, args []string) error {
	eng, err := a.engine(false)
	if err != nil {
		return err
	}
	defer a.closeEngine(eng)

	verdicts, err := eng.Validate(cmd.Context(), args)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if a.cfg.JSON {
		if err := display.JSON(w, verdicts); err != nil {
			return err
		}
	} else {
		display.Verdicts(w, a.cfg.NotesDir, verdicts)
	}
	if len(verdicts) == 0 {
		a.log.Warn("No files to validate")
		return errInvalid
	}
	for _, v := range verdicts {
		if !v.Matched {
			return errInvalid
		}
	}
	return nil
}

func (a *app) runRefactor(cmd *cobra.Command, _ []string) error {
	if err := check.Preflight(a.cfg); err != nil {
		return err
	}
	eng, err := a.engine(true)
	if err != nil {
		return err
	}
	defer a.closeEngine(eng)

	w := cmd.OutOrStdout()
	confirm, shown := a.confirmFunc(w)
	var out *pipeline.Outcome
	switch {
	case a.cfg.Retry:
		out, err = eng.Retry(cmd.Context(), confirm)
	case a.cfg.From != "":
		out, err = eng.Migrate(cmd.Context(), confirm)
	default:
		out, err = eng.Refactor(cmd.Context(), confirm)
	}
	a.report(w, out, *shown)
	return err
}

func (a *app) runRollback(cmd *cobra.Command, _ []string) error {
	eng, err := a.engine(true)
	if err != nil {
		return err
	}
	defer a.closeEngine(eng)

	w := cmd.OutOrStdout()
	confirm, shown := a.confirmFunc(w)
	out, err := eng.Rollback(cmd.Context(), confirm)
	a.report(w, out, *shown)
	return err
}

func (a *app) runParse(cmd *cobra.Command, args []string) error {
	eng, err := a.engine(false)
	if err != nil {
		return err
	}
	defer a.closeEngine(eng)

	r, err := eng.Parse(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	if !r.Matched {
		display.Verdicts(w, a.cfg.NotesDir, []pipeline.Verdict{{Result: r}})
		return errInvalid
	}
	if a.cfg.JSON {
		return display.JSON(w, display.FieldMap(r.Fields))
	}
	display.Fields(w, eng.Pattern(), r.Fields)
	return nil
}

func (a *app) runList(cmd *cobra.Command, _ []string) error {
	eng, err := a.engine(false)
	if err != nil {
		return err
	}
	defer a.closeEngine(eng)

	results, err := eng.List(cmd.Context(), a.cfg.Where)
	if err != nil {
		return err
	}
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = probe.Relative(a.cfg.NotesDir, r.Path)
	}
	w := cmd.OutOrStdout()
	if a.cfg.JSON {
		return display.JSON(w, names)
	}
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
	return nil
}

func (a *app) runCheck(cmd *cobra.Command, _ []string) error {
	display.PrintBanner(cmd.OutOrStdout())
	return check.RunCheck(cmd.Context(), a.cfg, a.log)
}

// confirmFunc shows the plan and asks before anything is renamed. shown
// reports whether the plan was printed.
func (a *app) confirmFunc(w io.Writer) (pipeline.ConfirmFunc, *bool) {
	shown := new(bool)
	return func(prompt string, plan *planner.Plan) (bool, error) {
		display.Plan(w, a.cfg.NotesDir, plan, display.PreviewLimit)
		*shown = true
		return a.confirm(prompt)
	}, shown
}

// report prints what a refactor, retry or rollback did.
func (a *app) report(w io.Writer, out *pipeline.Outcome, shown bool) {
	if out == nil || out.Plan == nil || out.Plan.Empty() {
		return
	}
	if !shown {
		limit := display.PreviewLimit
		if a.cfg.DryRun || a.cfg.Verbose {
			limit = 0
		}
		display.Plan(w, a.cfg.NotesDir, out.Plan, limit)
	}
	if out.Preview != nil && out.Record == nil {
		display.Failures(w, a.cfg.NotesDir, out.Preview)
	}
	if out.Record != nil {
		display.Failures(w, a.cfg.NotesDir, out.Record)
		display.Summary(w, out.Stats)
	}
}

func promptConfirm(prompt string) (bool, error) {
	if !term.Interactive() {
		return false, errNeedsConfirmation
	}
	var ok bool
	err := huh.NewConfirm().
		Title(prompt).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("prompt: %w", err)
	}
	return ok, nil
}
