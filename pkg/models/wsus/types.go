package wsus

import "time"

// InstallationState is the reported status of an update on a single computer.
// Values follow the WSUS administration API's UpdateInstallationState enum.
type InstallationState int

const (
	StateUnknown InstallationState = iota
	StateNotApplicable
	StateNotInstalled
	StateDownloaded
	StateInstalled
	StateFailed
	StateInstalledPendingReboot
)

func (s InstallationState) String() string {
	switch s {
	case StateNotApplicable:
		return "NotApplicable"
	case StateNotInstalled:
		return "NotInstalled"
	case StateDownloaded:
		return "Downloaded"
	case StateInstalled:
		return "Installed"
	case StateFailed:
		return "Failed"
	case StateInstalledPendingReboot:
		return "InstalledPendingReboot"
	default:
		return "Unknown"
	}
}

// ApprovalAction is the administrative decision applied to an update for the
// computer group a record belongs to.
type ApprovalAction string

const (
	ApprovalInstall     ApprovalAction = "Install"
	ApprovalUninstall   ApprovalAction = "Uninstall"
	ApprovalNotApproved ApprovalAction = "NotApproved"
	ApprovalAll         ApprovalAction = "All"
)

// UpdateSummary aggregates install-state counts for one update revision,
// scoped to a computer group.
type UpdateSummary struct {
	UpdateRevisionID            int
	InstalledCount              int
	InstalledPendingRebootCount int
	DownloadedCount             int
	NotInstalledCount           int
	FailedCount                 int
	UnknownCount                int
}

// Update is a specific patch revision known to the server.
type Update struct {
	RevisionID            int
	Title                 string
	Description           string
	KnowledgebaseArticles []string
}

// InstallationInfo is the per-computer installation record for one update.
type InstallationInfo struct {
	ComputerTargetID string
	UpdateRevisionID int
	State            InstallationState
	ApprovalAction   ApprovalAction
}

// Computer is a managed machine known to the update server.
type Computer struct {
	ID                     string
	FullDomainName         string
	IPAddress              string
	LastReportedStatusTime time.Time
	TargetGroupIDs         []string
}

// TargetGroup is an administrative grouping of computers.
type TargetGroup struct {
	ID   string
	Name string
}
