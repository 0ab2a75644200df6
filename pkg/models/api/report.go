package api

import "time"

type ComputerDetail struct {
	FullDomainName         string    `json:"full_domain_name"`
	IPAddress              string    `json:"ip_address"`
	GroupOf                string    `json:"group_of"`
	LastReportedStatusTime time.Time `json:"last_reported_status_time"`
	InstallationState      string    `json:"installation_state"`
	ApprovalAction         string    `json:"approval_action"`
}

type UpdateDetail struct {
	Title     string           `json:"title"`
	Computers []ComputerDetail `json:"computers"`
}

type UpdateSummary struct {
	Title                       string `json:"title"`
	KnowledgebaseArticles       string `json:"knowledgebase_articles"`
	InstalledCount              int    `json:"installed_count"`
	InstalledPendingRebootCount int    `json:"installed_pending_reboot_count"`
	NotInstalledCount           int    `json:"not_installed_count"`
	DownloadedCount             int    `json:"downloaded_count"`
	FailedCount                 int    `json:"failed_count"`
}

type ServerReport struct {
	Server      string          `json:"server"`
	KBNumber    int             `json:"kb_number"`
	GeneratedAt time.Time       `json:"generated_at"`
	Updates     []UpdateDetail  `json:"updates"`
	Summary     []UpdateSummary `json:"summary"`
}

type RunRecord struct {
	ID                int64     `json:"id"`
	Server            string    `json:"server"`
	KBNumber          int       `json:"kb_number"`
	Architecture      string    `json:"architecture,omitempty"`
	Format            string    `json:"format"`
	UpdatesMatched    int       `json:"updates_matched"`
	ComputersReported int       `json:"computers_reported"`
	InstalledCount    int       `json:"installed_count"`
	FailedCount       int       `json:"failed_count"`
	StartedAt         time.Time `json:"started_at"`
	CompletedAt       time.Time `json:"completed_at"`
	Error             string    `json:"error,omitempty"`
}
