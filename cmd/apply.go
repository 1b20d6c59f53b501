/*
Copyright © 2025 SubstantialCattle5, nilaysharan.com
*/
package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/substantialcattle5/bulkmv/internal/rename"
	"github.com/substantialcattle5/bulkmv/internal/source"
)

// applyCmd renames from two prepared lists
var applyCmd = &cobra.Command{
	Use:   "apply --old FILE --new FILE",
	Short: "Rename from two prepared lists without an editor",
	Long: `Apply reads the current names from one file and the new names from
another, one path per line, and renames line by line. Use "-" to read
either list from standard input.

Both lists must have the same number of lines. Invalid lines are errors,
since dropping one would shift every later pair.

Examples:
  bulkmv apply --old before.txt --new after.txt
  ls | bulkmv apply --old - --new after.txt --dry-run`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func runApply(cmd *cobra.Command, _ []string) error {
	oldPath, _ := cmd.Flags().GetString("old")
	newPath, _ := cmd.Flags().GetString("new")
	if oldPath == "-" && newPath == "-" {
		return errors.New("only one list can be read from standard input")
	}

	r, err := newRunner(cmd)
	if err != nil {
		return err
	}
	defer r.close()

	opts := source.Options{ArenaSize: r.opts.ArenaBytes(), Strict: true}
	oldRes, err := source.FromFile(oldPath, opts)
	if err != nil {
		return err
	}
	defer oldRes.List.Release()
	newRes, err := source.FromFile(newPath, opts)
	if err != nil {
		return err
	}
	defer newRes.List.Release()

	old, next := oldRes.List, newRes.List
	if err := r.engine.Prepare(old, next); err != nil {
		return err
	}
	plan, err := r.engine.Plan(old, next)
	if err != nil {
		if plan != nil && errors.Is(err, rename.ErrConflicts) {
			r.printer.Conflicts(plan.Conflicts)
		}
		return err
	}
	return r.apply(cmd, plan)
}

func init() {
	rootCmd.AddCommand(applyCmd)

	applyCmd.Flags().String("old", "", "File with the current paths")
	applyCmd.Flags().String("new", "", "File with the new paths")
	_ = applyCmd.MarkFlagRequired("old")
	_ = applyCmd.MarkFlagRequired("new")
}
