package main

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"otakurganizer/internal/catalog"
	"otakurganizer/internal/media"
)

// searchRow is the structured rendering of one search hit.
type searchRow struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Path        string   `json:"path" yaml:"path"`
	Series      string   `json:"series,omitempty" yaml:"series,omitempty"`
	Season      *int     `json:"season,omitempty" yaml:"season,omitempty"`
	Episode     *int     `json:"episode,omitempty" yaml:"episode,omitempty"`
	Status      string   `json:"status" yaml:"status"`
	Size        int64    `json:"size" yaml:"size"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Subtitles   []string `json:"subtitles,omitempty" yaml:"subtitles,omitempty"`
	Score       *float64 `json:"score,omitempty" yaml:"score,omitempty"`
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var semantic bool
	var output string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog by text or by meaning",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutputFormat(output)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			return ctx.withSession(cmd, false, func(s *session) error {
				results, err := s.manager.Search(cmd.Context(), query, semantic)
				if err != nil {
					return err
				}
				rows := make([]searchRow, len(results))
				for i, entry := range results {
					rows[i] = newSearchRow(entry, semantic)
				}
				if format != outputTable {
					return writeStructured(cmd, format, rows)
				}
				out := cmd.OutOrStdout()
				if len(rows) == 0 {
					fmt.Fprintln(out, "No matches")
					return nil
				}
				fmt.Fprintln(out, renderSearchTable(rows, semantic))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&semantic, "semantic", false, "Rank by embedding similarity (top 10)")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: table, json, or yaml")
	return cmd
}

func newSearchRow(entry catalog.Entry, semantic bool) searchRow {
	row := searchRow{
		ID:          entry.ID,
		Name:        entry.Name,
		Path:        entry.Path,
		Series:      entry.Series,
		Season:      entry.Season,
		Episode:     entry.Episode,
		Status:      string(entry.Status),
		Size:        entry.Size,
		Description: entry.Description,
		Subtitles:   entry.Subtitles,
	}
	if semantic {
		score := entry.Score
		row.Score = &score
	}
	return row
}

func renderSearchTable(rows []searchRow, semantic bool) string {
	headers := []string{"#", "Name", "Series", "S", "E", "Status", "Size"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignRight}
	if semantic {
		headers = append(headers, "Score")
		aligns = append(aligns, alignRight)
	}
	body := make([][]string, len(rows))
	for i, row := range rows {
		line := []string{
			strconv.Itoa(i + 1),
			truncate(row.Name, 48),
			row.Series,
			optionalInt(row.Season),
			optionalInt(row.Episode),
			row.Status,
			humanize.IBytes(uint64(max(row.Size, 0))),
		}
		if row.Score != nil {
			line = append(line, fmt.Sprintf("%.3f", *row.Score))
		}
		body[i] = line
	}
	return renderTable(headers, body, aligns)
}

func optionalInt(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(media.IntValue(v, 0))
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
