// Package report implements the extraction workflow: one pass per server,
// two lookups (summary by update, detail by computer), filter and reshape,
// hand the rows to whatever writer the caller wired in.
package report

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/patch-atlas/pkg/adapters"
	"github.com/de-tools/patch-atlas/pkg/models/domain"
	models "github.com/de-tools/patch-atlas/pkg/models/wsus"
	"github.com/de-tools/patch-atlas/pkg/services/locale"
	"github.com/de-tools/patch-atlas/pkg/wsus"
	"github.com/rs/zerolog"
)

// Options tune a single extraction.
type Options struct {
	// Architecture is an optional case-insensitive substring filter applied
	// to update titles. Empty means no filtering.
	Architecture string
	// Progress, when set, is invoked after each installation record of an
	// update is processed. Operator feedback only.
	Progress func(processed, total int)
}

// Extractor runs the per-server report workflow against an administrative
// client obtained through its dialer.
type Extractor struct {
	dial   wsus.Dialer
	locale locale.Locale
	now    func() time.Time
}

func NewExtractor(dial wsus.Dialer, loc locale.Locale) *Extractor {
	return &Extractor{
		dial:   dial,
		locale: loc,
		now:    time.Now,
	}
}

// ExtractServer produces the report for one server. On error the returned
// report still carries every update that was fully processed before the
// failure; the remaining updates of that server are abandoned. Callers
// iterating several servers log the error and move on to the next server.
func (e *Extractor) ExtractServer(
	ctx context.Context,
	server string,
	kbNumber int,
	opts Options,
) (*domain.ServerReport, error) {
	logger := zerolog.Ctx(ctx).With().Str("server", server).Logger()

	report := &domain.ServerReport{
		Server:      server,
		KBNumber:    kbNumber,
		GeneratedAt: e.now(),
	}

	client, err := wsus.Connect(ctx, e.dial, server)
	if err != nil {
		return report, err
	}
	defer client.Close()

	summaries, err := client.GetUpdateSummaries(ctx,
		wsus.UpdateScope{TextIncludes: strconv.Itoa(kbNumber)},
		wsus.AllComputers(),
	)
	if err != nil {
		return report, fmt.Errorf("fetch update summaries: %w", err)
	}

	logger.Debug().Int("summaries", len(summaries)).Msg("update summaries fetched")

	groups := newGroupResolver(client)

	for _, summary := range summaries {
		update, err := client.GetUpdate(ctx, summary.UpdateRevisionID)
		if err != nil {
			return report, fmt.Errorf("resolve update %d: %w", summary.UpdateRevisionID, err)
		}

		if !matchesArchitecture(update.Title, opts.Architecture) {
			logger.Debug().Str("title", update.Title).Msg("update skipped by architecture filter")
			continue
		}

		rows, err := e.collectDetail(ctx, client, groups, update, opts)
		if err != nil {
			return report, fmt.Errorf("collect detail for %q: %w", update.Title, err)
		}

		report.Updates = append(report.Updates, domain.UpdateDetail{
			RevisionID: update.RevisionID,
			Title:      update.Title,
			Computers:  rows,
		})
		report.Summary = append(report.Summary, adapters.MapSummaryToRow(update, summary))
	}

	return report, nil
}

// collectDetail fetches the per-computer installation records for one update
// and keeps only those whose approval action is Install.
func (e *Extractor) collectDetail(
	ctx context.Context,
	client wsus.Client,
	groups *groupResolver,
	update *models.Update,
	opts Options,
) ([]domain.ComputerDetailRow, error) {
	infos, err := client.GetInstallationInfo(ctx, update.RevisionID, wsus.AllComputers())
	if err != nil {
		return nil, fmt.Errorf("fetch installation info: %w", err)
	}

	var rows []domain.ComputerDetailRow
	for i, info := range infos {
		if info.ApprovalAction != models.ApprovalInstall {
			reportProgress(opts, i+1, len(infos))
			continue
		}

		computer, err := client.GetComputer(ctx, info.ComputerTargetID)
		if err != nil {
			return nil, fmt.Errorf("resolve computer %s: %w", info.ComputerTargetID, err)
		}

		names, err := groups.names(ctx, computer.TargetGroupIDs)
		if err != nil {
			return nil, fmt.Errorf("resolve groups of %s: %w", computer.FullDomainName, err)
		}

		rows = append(rows, adapters.MapComputerToDetailRow(computer, names, info, e.locale))
		reportProgress(opts, i+1, len(infos))
	}
	return rows, nil
}

func reportProgress(opts Options, processed, total int) {
	if opts.Progress != nil {
		opts.Progress(processed, total)
	}
}

func matchesArchitecture(title, architecture string) bool {
	if architecture == "" {
		return true
	}
	return strings.Contains(strings.ToLower(title), strings.ToLower(architecture))
}

// groupResolver caches target-group name lookups for the duration of one
// server pass. Group memberships repeat heavily across computers.
type groupResolver struct {
	client wsus.Client
	cache  map[string]string
}

func newGroupResolver(client wsus.Client) *groupResolver {
	return &groupResolver{
		client: client,
		cache:  make(map[string]string),
	}
}

func (r *groupResolver) names(ctx context.Context, ids []string) ([]string, error) {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := r.cache[id]; ok {
			names = append(names, name)
			continue
		}
		group, err := r.client.GetTargetGroup(ctx, id)
		if err != nil {
			return nil, err
		}
		r.cache[id] = group.Name
		names = append(names, group.Name)
	}
	return names, nil
}
