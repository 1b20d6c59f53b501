/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/substantialcattle5/bulkmv/internal/config"
	"github.com/substantialcattle5/bulkmv/internal/constants"
	"github.com/substantialcattle5/bulkmv/internal/editor"
	"github.com/substantialcattle5/bulkmv/internal/pathlist"
	"github.com/substantialcattle5/bulkmv/internal/rename"
	"github.com/substantialcattle5/bulkmv/internal/source"
	"github.com/substantialcattle5/bulkmv/internal/ui"
)

// rootCmd opens the listed paths in an editor and renames them to match
var rootCmd = &cobra.Command{
	Use:   "bulkmv [path...]",
	Short: "Rename many files at once in your text editor",
	Long: `bulkmv opens a list of paths in your editor. Change the names you want,
save and quit, and bulkmv renames the files to match, line by line.

Swaps and longer rename cycles are handled in place, without temporary
names, and every name is checked for conflicts before anything is touched.

Examples:
  bulkmv                    # Rename the entries of the current directory
  bulkmv photos/            # Rename the entries of photos/
  bulkmv *.jpg              # Rename the given files
  find . -name '*.log' | bulkmv -   # Rename paths read from standard input
  bulkmv --dry-run src/     # Show what would be renamed`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runInteractive,
}

// Execute runs the command line and exits with a status describing the
// outcome. This is called by main.main().
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		ui.NewPrinter(os.Stdout, os.Stderr, false, false).Error("%v", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return constants.ExitOK
	case errors.Is(err, rename.ErrMismatch), errors.Is(err, rename.ErrIncomplete):
		return constants.ExitMismatch
	case errors.Is(err, rename.ErrConflicts):
		return constants.ExitConflicts
	default:
		return constants.ExitFatal
	}
}

// editorFactory creates the editor for interactive runs.
var editorFactory = func(command string) editorRunner { return editor.New(command) }

type editorRunner interface {
	Edit(ctx context.Context, lines []string) ([]string, error)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	defer r.close()

	hidden, _ := cmd.Flags().GetBool("all")
	old, err := r.readOld(args, hidden)
	if err != nil {
		return err
	}
	defer old.Release()

	if err := r.engine.Prepare(old, nil); err != nil {
		return err
	}
	if old.Len() == 0 {
		r.printer.Success("Nothing to rename")
		return nil
	}

	var plan *rename.Plan
	session := &editor.Session{
		Editor:    editorFactory(r.opts.Editor),
		Retryable: retryable,
		Report:    func(err error) { r.printer.Error("%v", err) },
		Ask: func(label string) (bool, error) {
			if r.opts.AssumeYes {
				return false, nil
			}
			return r.prompter.Confirm(label)
		},
	}
	err = session.Loop(cmd.Context(), old.Strings(), func(lines []string) error {
		res, err := source.FromLines(lines, source.Options{ArenaSize: r.opts.ArenaBytes(), Strict: true})
		if err != nil {
			return err
		}
		attempt := old.Clone(r.opts.ArenaBytes())
		p, err := r.engine.Plan(attempt, res.List)
		if err != nil {
			if p != nil {
				r.printer.Conflicts(p.Conflicts)
			}
			attempt.Release()
			res.List.Release()
			return err
		}
		plan = p
		return nil
	})
	if err != nil {
		return err
	}
	defer plan.Old.Release()
	defer plan.New.Release()

	return r.apply(cmd, plan)
}

// retryable reports whether the user can fix err by editing again.
func retryable(err error) bool {
	var inErr *pathlist.InputError
	return errors.Is(err, rename.ErrLengthMismatch) ||
		errors.Is(err, rename.ErrConflicts) ||
		errors.As(err, &inErr)
}

// readOld builds the list to rename from the arguments: nothing means the
// working directory, one directory means its entries, "-" means standard
// input, anything else is taken as a list of paths.
func (r *runner) readOld(args []string, hidden bool) (*pathlist.List, error) {
	opts := source.Options{ArenaSize: r.opts.ArenaBytes(), Strict: r.opts.Fatal, Hidden: hidden}

	var res *source.Result
	var err error
	switch {
	case len(args) == 0:
		res, err = source.FromDir(".", opts)
	case len(args) == 1 && args[0] == "-":
		res, err = source.FromReader(os.Stdin, opts)
	case len(args) == 1 && isDir(args[0]):
		res, err = source.FromDir(args[0], opts)
	default:
		res, err = source.FromArgs(args, opts)
	}
	if err != nil {
		return nil, err
	}
	for _, dropped := range res.Dropped {
		r.printer.Warn("skipping %v", dropped)
	}
	return res.List, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// loadOptions resolves the configuration for cmd.
func loadOptions(cmd *cobra.Command) (*config.Options, string, error) {
	path, _ := cmd.Flags().GetString("config")
	opts, used, err := config.Load(path, cmd.Flags())
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}
	return opts, used, nil
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (default is ./.bulkmv.yaml or $HOME/.bulkmv.yaml)")
	flags.Bool("fatal", false, "Stop at the first conflict or failed rename")
	flags.Bool("implicit", false, "Allow overwriting files that are not part of the rename")
	flags.Bool("autosolve", false, "Remove duplicates with identical content that map to the same name")
	flags.Bool("sort", true, "Sort the list before editing")
	flags.BoolP("quiet", "q", false, "Only report errors")
	flags.BoolP("verbose", "v", false, "Show every operation")
	flags.BoolP("dry-run", "n", false, "Show the renames without performing them")
	flags.BoolP("yes", "y", false, "Do not ask for confirmation")
	flags.IntP("workers", "j", 0, "Worker threads for normalizing, hashing and sorting (0 = number of CPUs)")
	flags.String("arena-size", constants.DefaultArenaSize, "Segment size of the path arenas")
	flags.Bool("no-color", false, "Disable colored output")

	rootCmd.Flags().StringP("editor", "e", "", "Editor command (default is $VISUAL, $EDITOR or vi)")
	rootCmd.Flags().BoolP("all", "a", false, "Include hidden entries when listing a directory")
}
