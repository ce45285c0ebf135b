// Package results implements the results inspection commands.
package results

import (
	"context"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/certifiedsliders/resultclaims/internal/config"
	"github.com/certifiedsliders/resultclaims/internal/database"
	"github.com/certifiedsliders/resultclaims/internal/domain"
	"github.com/certifiedsliders/resultclaims/internal/marks"
)

// Command returns the results command.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "results",
		Short: "Inspect stored results",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(listCommand())

	return cmd
}

func listCommand() *cobra.Command {
	var (
		athleteID string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an athlete's results",
		RunE: func(cmd *cobra.Command, args []string) error {
			if athleteID == "" {
				return fmt.Errorf("--athlete is required")
			}
			return runList(cmd.Context(), athleteID, limit)
		},
	}

	cmd.Flags().StringVar(&athleteID, "athlete", "", "athlete user id")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum rows to list")

	return cmd
}

func runList(ctx context.Context, athleteID string, limit int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := database.NewPostgresConnection(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	repo := database.NewResultRepository(db)

	results, err := repo.ListByAthlete(ctx, athleteID, limit)
	if err != nil {
		return fmt.Errorf("list results: %w", err)
	}

	renderResults(results)
	return nil
}

func renderResults(results []domain.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"ID", "Event", "Mark", "Adjusted", "Timing", "Season", "Meet", "Status", "Confidence"})

	for i := range results {
		r := &results[i]

		adjusted := ""
		if r.MarkSecondsAdj != nil {
			adjusted = marks.FormatSeconds(*r.MarkSecondsAdj)
		}

		timing := ""
		if r.Timing != nil {
			timing = string(*r.Timing)
		}

		meet := ""
		if r.MeetName != nil {
			meet = *r.MeetName
		}

		t.AppendRow(table.Row{
			r.ID,
			r.Event,
			r.MarkText,
			adjusted,
			timing,
			r.Season,
			meet,
			string(r.Status),
			fmt.Sprintf("%.2f", r.Confidence),
		})
	}

	t.Render()
}
