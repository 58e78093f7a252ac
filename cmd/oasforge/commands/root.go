// Package commands implements the oasforge command line interface.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oasforge/oasforge"
	"github.com/oasforge/oasforge/generrors"
)

// Exit codes for the command surface. Parse failures, model failures,
// and output failures are distinguishable by status alone.
const (
	ExitOK     = 0
	ExitUsage  = 1
	ExitParse  = 2
	ExitModel  = 3
	ExitOutput = 4
)

// exitError carries an explicit exit code through cobra's error path.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// NewRootCmd builds the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "oasforge",
		Short:         "Generate typed API clients from OpenAPI documents",
		Version:       oasforge.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newGenCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the CLI and maps the resulting error to an exit code.
func Execute(args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)
	err := root.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return exitCode(err)
}

func exitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	switch {
	case errors.Is(err, generrors.ErrParse):
		return ExitParse
	case errors.Is(err, generrors.ErrValidation),
		errors.Is(err, generrors.ErrReference),
		errors.Is(err, generrors.ErrCircularReference),
		errors.Is(err, generrors.ErrNaming),
		errors.Is(err, generrors.ErrEmission):
		return ExitModel
	default:
		return ExitUsage
	}
}
