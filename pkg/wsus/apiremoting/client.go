// Package apiremoting is a driver for the WSUS administration web service
// (the ApiRemoting endpoint exposed on ports 8531/8530). It is the only place
// that knows about the wire format; everything above it consumes wsus.Client.
package apiremoting

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	models "github.com/de-tools/patch-atlas/pkg/models/wsus"
	"github.com/de-tools/patch-atlas/pkg/wsus"
)

const servicePath = "/ApiRemoting30/WebService.asmx"

// DriverName is the name this driver registers under.
const DriverName = "apiremoting"

type client struct {
	baseURL string
	http    *http.Client
}

// NewDialer returns a wsus.Dialer backed by this driver. It satisfies
// wsus.DriverFactory.
func NewDialer(opts wsus.DriverOptions) wsus.Dialer {
	return func(ctx context.Context, host string, port int) (wsus.Client, error) {
		return dial(ctx, host, port, opts)
	}
}

func dial(ctx context.Context, host string, port int, opts wsus.DriverOptions) (wsus.Client, error) {
	scheme := "http"
	if port == wsus.DefaultSecurePort {
		scheme = "https"
	}

	transport := &http.Transport{}
	if opts.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	c := &client{
		baseURL: fmt.Sprintf("%s://%s%s", scheme, net.JoinHostPort(host, strconv.Itoa(port)), servicePath),
		http: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
	}

	// A cheap round trip up front so the connect/fallback decision is made
	// before any report work starts.
	if err := c.ping(ctx); err != nil {
		return nil, fmt.Errorf("probe %s: %w", c.baseURL, err)
	}
	return c, nil
}

func (c *client) ping(ctx context.Context) error {
	var resp pingResponse
	return c.call(ctx, "Ping", pingRequest{}, &resp)
}

func (c *client) GetUpdateSummaries(
	ctx context.Context,
	updates wsus.UpdateScope,
	computers wsus.ComputerScope,
) ([]models.UpdateSummary, error) {
	req := getSummariesRequest{
		UpdateScope:   updateScopeXML{TextIncludes: updates.TextIncludes},
		ComputerScope: computerScopeXML{GroupID: computers.GroupID, IncludeSubgroups: computers.IncludeSubgroups},
	}

	var resp getSummariesResponse
	if err := c.call(ctx, "GetUpdateInstallationSummaries", req, &resp); err != nil {
		return nil, fmt.Errorf("get update summaries: %w", err)
	}

	summaries := make([]models.UpdateSummary, 0, len(resp.Summaries))
	for _, s := range resp.Summaries {
		summaries = append(summaries, models.UpdateSummary{
			UpdateRevisionID:            s.RevisionID,
			InstalledCount:              s.InstalledCount,
			InstalledPendingRebootCount: s.InstalledPendingRebootCount,
			DownloadedCount:             s.DownloadedCount,
			NotInstalledCount:           s.NotInstalledCount,
			FailedCount:                 s.FailedCount,
			UnknownCount:                s.UnknownCount,
		})
	}
	return summaries, nil
}

func (c *client) GetUpdate(ctx context.Context, revisionID int) (*models.Update, error) {
	var resp getUpdateResponse
	if err := c.call(ctx, "GetUpdateByRevisionId", getUpdateRequest{RevisionID: revisionID}, &resp); err != nil {
		return nil, fmt.Errorf("get update %d: %w", revisionID, err)
	}

	return &models.Update{
		RevisionID:            resp.Update.RevisionID,
		Title:                 resp.Update.Title,
		Description:           resp.Update.Description,
		KnowledgebaseArticles: resp.Update.KnowledgebaseArticles,
	}, nil
}

func (c *client) GetInstallationInfo(
	ctx context.Context,
	revisionID int,
	computers wsus.ComputerScope,
) ([]models.InstallationInfo, error) {
	req := getInstallationInfoRequest{
		RevisionID:    revisionID,
		ComputerScope: computerScopeXML{GroupID: computers.GroupID, IncludeSubgroups: computers.IncludeSubgroups},
	}

	var resp getInstallationInfoResponse
	if err := c.call(ctx, "GetUpdateInstallationInfoPerComputerTarget", req, &resp); err != nil {
		return nil, fmt.Errorf("get installation info for update %d: %w", revisionID, err)
	}

	infos := make([]models.InstallationInfo, 0, len(resp.Infos))
	for _, i := range resp.Infos {
		infos = append(infos, models.InstallationInfo{
			ComputerTargetID: i.ComputerTargetID,
			UpdateRevisionID: revisionID,
			State:            models.InstallationState(i.State),
			ApprovalAction:   models.ApprovalAction(i.ApprovalAction),
		})
	}
	return infos, nil
}

func (c *client) GetComputer(ctx context.Context, id string) (*models.Computer, error) {
	var resp getComputerResponse
	if err := c.call(ctx, "GetComputerTarget", getComputerRequest{ID: id}, &resp); err != nil {
		return nil, fmt.Errorf("get computer %s: %w", id, err)
	}

	lastReported, err := time.Parse(time.RFC3339, resp.Computer.LastReportedStatusTime)
	if err != nil {
		return nil, fmt.Errorf("get computer %s: bad last-reported time %q: %w",
			id, resp.Computer.LastReportedStatusTime, err)
	}

	return &models.Computer{
		ID:                     resp.Computer.ID,
		FullDomainName:         resp.Computer.FullDomainName,
		IPAddress:              resp.Computer.IPAddress,
		LastReportedStatusTime: lastReported,
		TargetGroupIDs:         resp.Computer.TargetGroupIDs,
	}, nil
}

func (c *client) GetTargetGroup(ctx context.Context, id string) (*models.TargetGroup, error) {
	var resp getTargetGroupResponse
	if err := c.call(ctx, "GetComputerTargetGroup", getTargetGroupRequest{ID: id}, &resp); err != nil {
		return nil, fmt.Errorf("get target group %s: %w", id, err)
	}

	return &models.TargetGroup{
		ID:   resp.Group.ID,
		Name: resp.Group.Name,
	}, nil
}

func (c *client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
