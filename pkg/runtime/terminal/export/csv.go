package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/de-tools/patch-atlas/pkg/models/domain"
)

// CSVReporter appends report rows to timestamped files in one directory. The
// stamp is shared by every server of a run, so each invocation produces a
// fresh set of files and rows for several updates of the same server land in
// the same detail file.
type CSVReporter struct {
	dir   string
	stamp string
}

func NewCSVReporter(dir, stamp string) *CSVReporter {
	return &CSVReporter{dir: dir, stamp: stamp}
}

func (r *CSVReporter) WriteDetail(report *domain.ServerReport, update domain.UpdateDetail) error {
	name := fmt.Sprintf("ComputerDetail-%s-KB%d-%s.csv", report.Server, report.KBNumber, r.stamp)

	rows := make([][]string, 0, len(update.Computers))
	for _, c := range update.Computers {
		rows = append(rows, []string{
			c.FullDomainName,
			c.IPAddress,
			c.GroupOf,
			c.LastReportedStatusTime.Format(time.RFC3339),
			c.UpdateInstallationState,
			c.UpdateApprovalAction,
		})
	}

	return r.appendRows(name, detailHeader, rows)
}

func (r *CSVReporter) WriteSummary(report *domain.ServerReport) error {
	name := fmt.Sprintf("UpdateSummary-%s-%s.csv", report.Server, r.stamp)

	rows := make([][]string, 0, len(report.Summary))
	for _, s := range report.Summary {
		rows = append(rows, []string{
			s.Title,
			s.KnowledgebaseArticles,
			strconv.Itoa(s.InstalledCount),
			strconv.Itoa(s.InstalledPendingRebootCount),
			strconv.Itoa(s.NotInstalledCount),
			strconv.Itoa(s.DownloadedCount),
			strconv.Itoa(s.FailedCount),
		})
	}

	return r.appendRows(name, summaryHeader, rows)
}

// appendRows opens (or creates) the file and appends the rows, writing the
// header only when the file is new.
func (r *CSVReporter) appendRows(name string, header []string, rows [][]string) error {
	path := filepath.Join(r.dir, name)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write header to %s: %w", path, err)
		}
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row to %s: %w", path, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
