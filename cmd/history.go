package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"scape-bot/internal/progress"
	"scape-bot/internal/session"
	"scape-bot/internal/store"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		bot   string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(a.cfg.Store.Path)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.ListRuns(cmd.Context(), bot, limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), historyTable(runs))
			return nil
		},
	}
	cmd.Flags().StringVar(&bot, "bot", "", "only show runs of this bot title")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	return cmd
}

func historyTable(runs []session.Run) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("RUN", "BOT", "STARTED", "DURATION", "OUTCOME", "PROGRESS", "NOTE")
	for _, r := range runs {
		t.Row(shortID(r.ID), r.Bot, r.Started.Local().Format("2006-01-02 15:04"),
			runDuration(r), outcome(r), fmt.Sprintf("%3.0f%%", r.Progress*100), r.Note)
	}
	return t.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func runDuration(r session.Run) string {
	if r.Finished.IsZero() {
		return "-"
	}
	return progress.FormatDuration(r.Finished.Sub(r.Started).Round(time.Second))
}

func outcome(r session.Run) string {
	if r.Outcome == "" {
		return "running"
	}
	return string(r.Outcome)
}
