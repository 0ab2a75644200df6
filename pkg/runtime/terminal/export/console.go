package export

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/de-tools/patch-atlas/pkg/models/domain"
	"github.com/olekukonko/tablewriter"
)

// ConsoleReporter renders the same rows as the CSV artifacts, as tables on a
// terminal.
type ConsoleReporter struct {
	out io.Writer
}

func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleReporter{out: out}
}

func (r *ConsoleReporter) WriteDetail(report *domain.ServerReport, update domain.UpdateDetail) error {
	fmt.Fprintf(r.out, "\n%s - %s (KB%d)\n", report.Server, update.Title, report.KBNumber)

	table := tablewriter.NewWriter(r.out)
	table.SetHeader(detailHeader)
	for _, c := range update.Computers {
		table.Append([]string{
			c.FullDomainName,
			c.IPAddress,
			c.GroupOf,
			c.LastReportedStatusTime.Format(time.RFC3339),
			c.UpdateInstallationState,
			c.UpdateApprovalAction,
		})
	}
	table.Render()
	return nil
}

func (r *ConsoleReporter) WriteSummary(report *domain.ServerReport) error {
	fmt.Fprintf(r.out, "\nUpdate summary - %s\n", report.Server)

	table := tablewriter.NewWriter(r.out)
	table.SetHeader(summaryHeader)
	for _, s := range report.Summary {
		table.Append([]string{
			s.Title,
			s.KnowledgebaseArticles,
			strconv.Itoa(s.InstalledCount),
			strconv.Itoa(s.InstalledPendingRebootCount),
			strconv.Itoa(s.NotInstalledCount),
			strconv.Itoa(s.DownloadedCount),
			strconv.Itoa(s.FailedCount),
		})
	}
	table.Render()
	return nil
}
