// Command axon checks a notes directory against a naming convention and
// renames non-conforming files in reversible batches.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/backmassage/axon/internal/check"
	"github.com/backmassage/axon/internal/executor"
	"github.com/backmassage/axon/internal/pattern"
	"github.com/backmassage/axon/internal/pipeline"
	"github.com/backmassage/axon/internal/planner"
)

// Exit codes.
const (
	exitOK       = 0
	exitInvalid  = 1 // files do not conform, or nothing to act on
	exitPattern  = 2 // pattern or configuration error
	exitConflict = 3 // unresolved conflict or failed precondition
	exitIO       = 5 // rename or journal failure
)

// errInvalid marks a command that ran but found non-conforming files.
var errInvalid = errors.New("non-conforming files")

// configError wraps failures to load or validate configuration.
type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp()
	root := a.rootCommand()
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if a.log != nil {
		defer a.log.Close()
	}
	if err == nil {
		return exitOK
	}
	if !errors.Is(err, errInvalid) {
		if a.log != nil {
			a.log.Error("%v", err)
		} else {
			fmt.Fprintf(os.Stderr, "axon: %v\n", err)
		}
	}
	return exitCode(err)
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	var cerr *pattern.CompileError
	var cfgErr *configError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &cerr), errors.As(err, &cfgErr),
		errors.Is(err, planner.ErrFieldMismatch),
		errors.Is(err, pipeline.ErrBadFilter):
		return exitPattern
	case errors.Is(err, planner.ErrConflictUnresolved),
		errors.Is(err, planner.ErrPostcondition),
		errors.Is(err, executor.ErrPreconditionFailed),
		errors.Is(err, executor.ErrOverlappingBatch),
		errors.Is(err, pipeline.ErrPreviewFailed):
		return exitConflict
	case errors.Is(err, executor.ErrMidBatchFailure),
		errors.Is(err, executor.ErrRollbackIncomplete),
		errors.Is(err, executor.ErrNotRevertible),
		errors.Is(err, check.ErrNotesDirMissing),
		errors.Is(err, check.ErrNotesDirNotDir),
		errors.Is(err, check.ErrNotesDirReadOnly),
		errors.Is(err, pipeline.ErrNoJournal),
		errors.Is(err, os.ErrPermission):
		return exitIO
	default:
		return exitInvalid
	}
}
