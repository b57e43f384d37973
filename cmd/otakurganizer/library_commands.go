package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"otakurganizer/internal/config"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <dir>",
		Short: "Scan a directory, parse file names, and index the videos",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve directory: %w", err)
			}
			return ctx.withSession(cmd, true, func(s *session) error {
				report, err := s.manager.Scan(cmd.Context(), dir)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Found %d videos (%d already cataloged); indexed %d, failed %d\n",
					report.Found, report.Existing, report.Indexed, report.Failed)
				return nil
			})
		},
	}
}

func newGroupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "group",
		Short: "Fill missing series from similar files and fetch descriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, true, func(s *session) error {
				report, err := s.manager.Group(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Grouped %d files, added %d descriptions, %d without a match\n",
					report.Grouped, report.Described, report.Unmatched)
				return nil
			})
		},
	}
}

func newAIOrganizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ai-organize",
		Short: "Ask the AI provider for each file's series, season, and episode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, true, func(s *session) error {
				report, err := s.manager.AIOrganize(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Applied %d suggestions, rejected %d, failed %d\n",
					report.Applied, report.Rejected, report.Failed)
				return nil
			})
		},
	}
}

func newSyncCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "sync [target]",
		Short: "Move cataloged files into Series/Season/Episode folders",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target string
			if len(args) == 1 {
				expanded, err := config.ExpandPath(args[0])
				if err != nil {
					return fmt.Errorf("resolve target: %w", err)
				}
				target = expanded
			}
			return ctx.withSession(cmd, !dryRun, func(s *session) error {
				report, err := s.manager.Sync(cmd.Context(), target, dryRun)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if dryRun {
					rows := make([][]string, 0, len(report.Planned))
					for _, from := range sortedKeys(report.Planned) {
						rows = append(rows, []string{from, report.Planned[from]})
					}
					if len(rows) > 0 {
						fmt.Fprintln(out, renderTable([]string{"From", "To"}, rows, nil))
					}
					fmt.Fprintf(out, "Dry run: %d moves planned, %d skipped\n", len(report.Planned), report.Skipped)
					return nil
				}
				fmt.Fprintf(out, "Organized %d files; %d duplicates, %d failed, %d skipped, %d subtitle failures\n",
					report.Completed, report.Duplicates, report.Failed, report.Skipped, report.SubtitleFailures)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show planned moves without touching files")
	return cmd
}

func newUndoCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Move organized files back where they came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, !dryRun, func(s *session) error {
				out := cmd.OutOrStdout()
				if dryRun {
					pending, err := s.store.Journal().Entries(cmd.Context())
					if err != nil {
						return err
					}
					if len(pending) == 0 {
						fmt.Fprintln(out, "Nothing to undo")
						return nil
					}
					rows := make([][]string, 0, len(pending))
					for _, op := range pending {
						rows = append(rows, []string{op.To, op.From})
					}
					fmt.Fprintln(out, renderTable([]string{"From", "To"}, rows, nil))
					fmt.Fprintf(out, "Dry run: %d moves would be reversed\n", len(pending))
					return nil
				}

				report, err := s.manager.Undo(cmd.Context())
				if err != nil {
					return err
				}
				if report.Empty {
					fmt.Fprintln(out, "Nothing to undo")
					return nil
				}
				rows := make([][]string, 0, len(report.Restored)+len(report.Failures))
				for _, op := range report.Restored {
					rows = append(rows, []string{"restored", op.To, op.From})
				}
				for _, op := range report.Missing {
					rows = append(rows, []string{"missing", op.To, op.From})
				}
				for _, failure := range report.Failures {
					rows = append(rows, []string{"failed", failure.Operation.To, failure.Operation.From})
				}
				fmt.Fprintln(out, renderTable([]string{"Result", "From", "To"}, rows, nil))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the moves undo would reverse, newest first")
	return cmd
}

func newClearCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every record from the catalog (files are not touched)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("clear removes every cataloged record; rerun with --yes to confirm")
			}
			return ctx.withSession(cmd, true, func(s *session) error {
				removed, err := s.manager.Clear(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d records\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm clearing the catalog")
	return cmd
}
