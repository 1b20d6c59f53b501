/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/substantialcattle5/bulkmv/internal/config"
	"github.com/substantialcattle5/bulkmv/internal/progress"
	"github.com/substantialcattle5/bulkmv/internal/rename"
	"github.com/substantialcattle5/bulkmv/internal/sched"
	"github.com/substantialcattle5/bulkmv/internal/ui"
)

// previewLimit caps the preview table unless --verbose is given.
const previewLimit = 50

// runner holds everything one rename run needs.
type runner struct {
	opts     *config.Options
	log      *slog.Logger
	printer  *ui.Printer
	prompter *ui.Prompter
	pool     *sched.Pool
	engine   *rename.Engine
}

func newRunner(cmd *cobra.Command) (*runner, error) {
	opts, used, err := loadOptions(cmd)
	if err != nil {
		return nil, err
	}
	noColor, _ := cmd.Flags().GetBool("no-color")

	logger := setupLogger(cmd.ErrOrStderr(), opts.Verbose)
	if used != "" {
		logger.Debug("loaded config", "path", used)
	}

	pool := sched.New(opts.Workers)
	logger.Debug("worker pool started", "workers", pool.Workers())

	return &runner{
		opts:     opts,
		log:      logger,
		printer:  ui.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.Quiet, noColor),
		prompter: ui.NewPrompter(),
		pool:     pool,
		engine:   rename.New(pool, *opts, logger, nil),
	}, nil
}

func (r *runner) close() {
	r.pool.Close()
}

// apply previews a verified plan, asks for confirmation and executes it.
func (r *runner) apply(cmd *cobra.Command, plan *rename.Plan) error {
	r.printer.Conflicts(plan.Conflicts)
	if plan.Changes == 0 && len(plan.Discarded) == 0 {
		r.printer.Success("Nothing to rename")
		return nil
	}

	if !r.opts.Quiet {
		limit := previewLimit
		if r.opts.Verbose {
			limit = 0
		}
		ui.Preview(cmd.OutOrStdout(), plan, limit)
	}
	if r.opts.DryRun {
		r.printer.Success("Dry run, nothing renamed")
		return nil
	}

	if !r.opts.AssumeYes {
		ok, err := r.prompter.Confirm(fmt.Sprintf("Rename %d paths", plan.Changes))
		if err != nil {
			return err
		}
		if !ok {
			r.printer.Warn("cancelled, nothing renamed")
			return nil
		}
	}

	pm := progress.NewManager(progress.Options{
		Quiet:   r.opts.Quiet,
		Verbose: r.opts.Verbose,
		Writer:  cmd.ErrOrStderr(),
	})
	defer pm.Cleanup()
	ctx := pm.SetupCancellation(cmd.Context())
	r.engine.SetProgress(pm)

	pm.PrintVerbose("Renaming %d paths, removing %d duplicates", plan.Changes, len(plan.Discarded))
	report, err := r.engine.Execute(ctx, plan)
	if report == nil {
		return err
	}
	if pm.IsCancelled() {
		pm.PrintInfo("Stopped after %d of %d paths", report.Completed, report.Changes)
	}
	r.printer.Summary(report)
	return err
}

// setupLogger returns a text logger on w when verbose is set and a
// discarding one otherwise. User-facing messages go through ui.Printer.
func setupLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
