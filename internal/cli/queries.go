package cli

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rsham004/nz-electricity-chatbot/internal/entities"
	"github.com/rsham004/nz-electricity-chatbot/internal/repository"
	"github.com/spf13/cobra"
)

func (app *App) newQueriesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "queries",
		Short: "Show the most recent questions from the query log",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.cfg.QueryLogPath
			if path == "" || path == repository.MemoryPath {
				pterm.Warning.Println("The query log is in memory; set query_log_path or QUERY_LOG_PATH to keep it between runs")
			}

			repo, err := repository.NewSQLiteQueryRepository(path)
			if err != nil {
				return fmt.Errorf("failed to open query log: %w", err)
			}
			defer repo.Close()

			records, err := repo.RecentQueries(limit)
			if err != nil {
				return err
			}
			counts, err := repo.CountByOutcome()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderQueriesTable(records))
			pterm.Info.Printfln("%d answered, %d failed",
				counts[entities.OutcomeAnswered], counts[entities.OutcomeFailed])
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of records to show")
	return cmd
}

func renderQueriesTable(records []entities.QueryRecord) string {
	tableData := pterm.TableData{{"Asked at", "Intent", "Outcome", "Question"}}
	for _, rec := range records {
		outcome := pterm.FgGreen.Sprint(rec.Outcome)
		if rec.Outcome == entities.OutcomeFailed {
			outcome = pterm.FgRed.Sprint(rec.Outcome)
		}
		tableData = append(tableData, []string{
			rec.AskedAt.Local().Format("2006-01-02 15:04:05"),
			string(rec.Intent),
			outcome,
			rec.Question,
		})
	}

	rendered, _ := pterm.DefaultTable.WithHasHeader().WithData(tableData).Srender()
	return rendered
}
