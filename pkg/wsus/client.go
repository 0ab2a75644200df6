package wsus

import (
	"context"

	"github.com/de-tools/patch-atlas/pkg/models/wsus"
)

// UpdateScope narrows which updates a query covers.
type UpdateScope struct {
	// TextIncludes matches against the update's descriptive text
	// (title, description, KB articles).
	TextIncludes string
}

// ComputerScope narrows which computers a query covers.
type ComputerScope struct {
	// GroupID restricts the query to one target group. Empty means the
	// server-wide "All Computers" group.
	GroupID string
	// IncludeSubgroups extends the scope to computers in descendant groups.
	IncludeSubgroups bool
}

// AllComputers is the scope used for every report query: the whole server,
// descendants included.
func AllComputers() ComputerScope {
	return ComputerScope{IncludeSubgroups: true}
}

// Client is the administrative collaborator the extractor consumes. The wire
// protocol behind it is a driver concern; the report core only sees these
// typed results.
type Client interface {
	GetUpdateSummaries(ctx context.Context, updates UpdateScope, computers ComputerScope) ([]wsus.UpdateSummary, error)
	GetUpdate(ctx context.Context, revisionID int) (*wsus.Update, error)
	GetInstallationInfo(ctx context.Context, revisionID int, computers ComputerScope) ([]wsus.InstallationInfo, error)
	GetComputer(ctx context.Context, id string) (*wsus.Computer, error)
	GetTargetGroup(ctx context.Context, id string) (*wsus.TargetGroup, error)
	Close() error
}
