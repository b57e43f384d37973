package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"otakurganizer/internal/catalog"
	"otakurganizer/internal/media"
	"otakurganizer/internal/preflight"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			return ctx.withSession(cmd, false, func(s *session) error {
				stats, err := s.manager.Stats(cmd.Context())
				if err != nil {
					return err
				}
				if format != outputTable {
					return writeStructured(cmd, format, stats)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderStatsTable(stats))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json, or yaml")
	return cmd
}

func renderStatsTable(stats catalog.Stats) string {
	rows := [][]string{
		{"Files", strconv.Itoa(stats.TotalFiles)},
		{"Series", strconv.Itoa(stats.Series)},
		{"Total size", humanize.IBytes(uint64(max(stats.TotalBytes, 0)))},
		{"Indexed vectors", strconv.Itoa(stats.Indexed)},
		{"Vectorizer", stats.Vectorizer},
	}
	for _, status := range media.AllStatuses() {
		rows = append(rows, []string{"Status " + string(status), strconv.Itoa(stats.ByStatus[status])})
	}
	return renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show configuration, catalog, and dependency health",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, false, func(s *session) error {
				out := cmd.OutOrStdout()
				report := newStatusReport(out)
				renderStatus(cmd.Context(), ctx, s, report)
				report.writeTo(out)
				return nil
			})
		},
	}
}

func renderStatus(ctx context.Context, cc *commandContext, s *session, r *statusReport) {
	r.section("Configuration")
	if cc.configSeen {
		r.line("Config", statusOK, cc.configPath)
	} else {
		r.line("Config", statusWarn, "defaults in use (run `otakurganizer config init`)")
	}
	r.line("Catalog", statusInfo, s.cfg.CatalogPath())
	r.line("AI suggestions", statusInfo, yesNo(s.cfg.AI.Enabled))
	r.line("Online metadata", statusInfo, yesNo(s.cfg.Metadata.OnlineEnabled))

	r.section("Catalog")
	stats, err := s.manager.Stats(ctx)
	if err != nil {
		r.line("Catalog", statusError, err.Error())
	} else {
		r.line("Files", statusInfo, fmt.Sprintf("%d (%s)", stats.TotalFiles, humanize.IBytes(uint64(max(stats.TotalBytes, 0)))))
		r.line("Series", statusInfo, strconv.Itoa(stats.Series))
		r.line("Indexed vectors", statusInfo, fmt.Sprintf("%d (%s)", stats.Indexed, stats.Vectorizer))
		if n, err := s.store.Journal().Len(ctx); err == nil {
			r.line("Undo journal", statusInfo, fmt.Sprintf("%d moves", n))
		}
	}

	r.section("Checks")
	for _, result := range preflight.RunAll(ctx, s.cfg, s.vectorizer) {
		kind := statusOK
		if !result.Passed {
			kind = statusError
		}
		r.line(result.Name, kind, result.Detail)
	}
}
