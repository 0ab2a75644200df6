package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

type HistoryCmd struct {
	deps      Deps
	historyDB string
	limit     int
}

func NewHistoryCmd(deps Deps) *cobra.Command {
	hc := &HistoryCmd{deps: deps}
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded report runs",
		RunE:  hc.run,
	}

	cmd.Flags().StringVar(&hc.historyDB, "history-db", "", "SQLite file the runs were recorded to")
	cmd.Flags().IntVar(&hc.limit, "limit", 20, "Maximum number of runs to show")

	_ = cmd.MarkFlagRequired("history-db")

	return cmd
}

func (hc *HistoryCmd) run(cmd *cobra.Command, _ []string) error {
	if hc.deps.OpenHistory == nil {
		return fmt.Errorf("run history is not available in this build")
	}

	runs, closeStore, err := hc.deps.OpenHistory(hc.historyDB)
	if err != nil {
		return fmt.Errorf("open history db %s: %w", hc.historyDB, err)
	}
	defer closeStore()

	records, err := runs.List(cmd.Context(), hc.limit)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(hc.deps.Out, "No recorded runs.")
		return nil
	}

	table := tablewriter.NewWriter(hc.deps.Out)
	table.SetHeader([]string{"Started", "Server", "KB", "Updates", "Computers", "Installed", "Failed", "Error"})
	for _, rec := range records {
		table.Append([]string{
			rec.StartedAt.Local().Format(time.DateTime),
			rec.Server,
			strconv.Itoa(rec.KBNumber),
			strconv.Itoa(rec.UpdatesMatched),
			strconv.Itoa(rec.ComputersReported),
			strconv.Itoa(rec.InstalledCount),
			strconv.Itoa(rec.FailedCount),
			rec.Error,
		})
	}
	table.Render()
	return nil
}
