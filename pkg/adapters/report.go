package adapters

import (
	"sort"
	"strings"

	"github.com/de-tools/patch-atlas/pkg/models/api"
	"github.com/de-tools/patch-atlas/pkg/models/domain"
	"github.com/de-tools/patch-atlas/pkg/models/store"
	"github.com/de-tools/patch-atlas/pkg/models/wsus"
	"github.com/de-tools/patch-atlas/pkg/services/locale"
)

// MapSummaryToRow copies the raw counts of one update summary, unmodified,
// into a summary report row.
func MapSummaryToRow(update *wsus.Update, summary wsus.UpdateSummary) domain.UpdateSummaryRow {
	return domain.UpdateSummaryRow{
		Title:                       update.Title,
		KnowledgebaseArticles:       strings.Join(update.KnowledgebaseArticles, ","),
		InstalledCount:              summary.InstalledCount,
		InstalledPendingRebootCount: summary.InstalledPendingRebootCount,
		NotInstalledCount:           summary.NotInstalledCount,
		DownloadedCount:             summary.DownloadedCount,
		FailedCount:                 summary.FailedCount,
	}
}

// MapComputerToDetailRow builds one detail row from a computer, its resolved
// group names, and the installation record. Group names come out sorted
// alphabetically and comma-joined.
func MapComputerToDetailRow(
	computer *wsus.Computer,
	groupNames []string,
	info wsus.InstallationInfo,
	loc locale.Locale,
) domain.ComputerDetailRow {
	sorted := append([]string(nil), groupNames...)
	sort.Strings(sorted)

	return domain.ComputerDetailRow{
		FullDomainName:          computer.FullDomainName,
		IPAddress:               computer.IPAddress,
		GroupOf:                 strings.Join(sorted, ","),
		LastReportedStatusTime:  computer.LastReportedStatusTime,
		UpdateInstallationState: loc.StateLabel(info.State),
		UpdateApprovalAction:    string(info.ApprovalAction),
	}
}

func MapDomainReportToAPI(report *domain.ServerReport) api.ServerReport {
	out := api.ServerReport{
		Server:      report.Server,
		KBNumber:    report.KBNumber,
		GeneratedAt: report.GeneratedAt,
		Updates:     make([]api.UpdateDetail, 0, len(report.Updates)),
		Summary:     make([]api.UpdateSummary, 0, len(report.Summary)),
	}

	for _, upd := range report.Updates {
		detail := api.UpdateDetail{
			Title:     upd.Title,
			Computers: make([]api.ComputerDetail, 0, len(upd.Computers)),
		}
		for _, c := range upd.Computers {
			detail.Computers = append(detail.Computers, api.ComputerDetail{
				FullDomainName:         c.FullDomainName,
				IPAddress:              c.IPAddress,
				GroupOf:                c.GroupOf,
				LastReportedStatusTime: c.LastReportedStatusTime,
				InstallationState:      c.UpdateInstallationState,
				ApprovalAction:         c.UpdateApprovalAction,
			})
		}
		out.Updates = append(out.Updates, detail)
	}

	for _, row := range report.Summary {
		out.Summary = append(out.Summary, api.UpdateSummary{
			Title:                       row.Title,
			KnowledgebaseArticles:       row.KnowledgebaseArticles,
			InstalledCount:              row.InstalledCount,
			InstalledPendingRebootCount: row.InstalledPendingRebootCount,
			NotInstalledCount:           row.NotInstalledCount,
			DownloadedCount:             row.DownloadedCount,
			FailedCount:                 row.FailedCount,
		})
	}
	return out
}

func MapStoreRunToAPI(run store.RunRecord) api.RunRecord {
	return api.RunRecord{
		ID:                run.ID,
		Server:            run.Server,
		KBNumber:          run.KBNumber,
		Architecture:      run.Architecture,
		Format:            run.Format,
		UpdatesMatched:    run.UpdatesMatched,
		ComputersReported: run.ComputersReported,
		InstalledCount:    run.InstalledCount,
		FailedCount:       run.FailedCount,
		StartedAt:         run.StartedAt,
		CompletedAt:       run.CompletedAt,
		Error:             run.Error,
	}
}
