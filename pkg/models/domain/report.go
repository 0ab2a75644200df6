package domain

import "time"

// ComputerDetailRow is one line of the per-computer detail report. Only
// computers whose approval action is Install ever appear here.
type ComputerDetailRow struct {
	FullDomainName          string
	IPAddress               string
	GroupOf                 string
	LastReportedStatusTime  time.Time
	UpdateInstallationState string
	UpdateApprovalAction    string
}

// UpdateSummaryRow is one line of the per-server summary report, carrying the
// raw counts of the underlying summary object unmodified.
type UpdateSummaryRow struct {
	Title                       string
	KnowledgebaseArticles       string
	InstalledCount              int
	InstalledPendingRebootCount int
	NotInstalledCount           int
	DownloadedCount             int
	FailedCount                 int
}

// UpdateDetail groups the detail rows collected for one matching update.
type UpdateDetail struct {
	RevisionID int
	Title      string
	Computers  []ComputerDetailRow
}

// ServerReport is everything extracted from one server in one run.
type ServerReport struct {
	Server      string
	KBNumber    int
	GeneratedAt time.Time
	Updates     []UpdateDetail
	Summary     []UpdateSummaryRow
}
