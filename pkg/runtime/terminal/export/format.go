package export

import (
	"fmt"
	"strings"

	"github.com/de-tools/patch-atlas/pkg/models/domain"
)

// Format selects the output artifact kind.
type Format string

const (
	FormatCSV     Format = "CSV"
	FormatConsole Format = "Console"
)

// ParseFormat validates a format value. Anything outside CSV/Console is a
// configuration error and must be rejected before any network call.
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(value) {
	case "csv":
		return FormatCSV, nil
	case "console":
		return FormatConsole, nil
	default:
		return "", fmt.Errorf("unknown format %q (expected CSV or Console)", value)
	}
}

// Reporter emits the two artifact kinds of a server report. WriteDetail is
// called once per matching update, as soon as its rows are collected;
// WriteSummary once per server, after all updates are done.
type Reporter interface {
	WriteDetail(report *domain.ServerReport, update domain.UpdateDetail) error
	WriteSummary(report *domain.ServerReport) error
}

var detailHeader = []string{
	"FullDomainName",
	"IPAddress",
	"GroupOf",
	"LastReportedStatusTime",
	"UpdateInstallationState",
	"UpdateApprovalAction",
}

var summaryHeader = []string{
	"Title",
	"KnowledgebaseArticles",
	"InstalledCount",
	"InstalledPendingRebootCount",
	"NotInstalledCount",
	"DownloadedCount",
	"FailedCount",
}
