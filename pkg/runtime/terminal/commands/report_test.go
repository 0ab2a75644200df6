package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/de-tools/patch-atlas/pkg/models/store"
	models "github.com/de-tools/patch-atlas/pkg/models/wsus"
	"github.com/de-tools/patch-atlas/pkg/store/sqlite/history"
	"github.com/de-tools/patch-atlas/pkg/wsus"
	"github.com/de-tools/patch-atlas/pkg/wsus/apiremoting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	summaries []models.UpdateSummary
	updates   map[int]*models.Update
	infos     map[int][]models.InstallationInfo
	computers map[string]*models.Computer
	groups    map[string]*models.TargetGroup
}

func (f *fakeClient) GetUpdateSummaries(_ context.Context, _ wsus.UpdateScope, _ wsus.ComputerScope) ([]models.UpdateSummary, error) {
	return f.summaries, nil
}

func (f *fakeClient) GetUpdate(_ context.Context, revisionID int) (*models.Update, error) {
	return f.updates[revisionID], nil
}

func (f *fakeClient) GetInstallationInfo(_ context.Context, revisionID int, _ wsus.ComputerScope) ([]models.InstallationInfo, error) {
	return f.infos[revisionID], nil
}

func (f *fakeClient) GetComputer(_ context.Context, id string) (*models.Computer, error) {
	return f.computers[id], nil
}

func (f *fakeClient) GetTargetGroup(_ context.Context, id string) (*models.TargetGroup, error) {
	return f.groups[id], nil
}

func (f *fakeClient) Close() error { return nil }

func newFakeClient() *fakeClient {
	return &fakeClient{
		summaries: []models.UpdateSummary{{UpdateRevisionID: 1, InstalledCount: 2}},
		updates: map[int]*models.Update{
			1: {RevisionID: 1, Title: "Security Update for Windows (x64) KB123456", KnowledgebaseArticles: []string{"123456"}},
		},
		infos: map[int][]models.InstallationInfo{
			1: {
				{ComputerTargetID: "c1", State: models.StateInstalled, ApprovalAction: models.ApprovalInstall},
				{ComputerTargetID: "c2", State: models.StateInstalled, ApprovalAction: models.ApprovalUninstall},
			},
		},
		computers: map[string]*models.Computer{
			"c1": {ID: "c1", FullDomainName: "ws01.corp.local", IPAddress: "10.0.0.1",
				LastReportedStatusTime: time.Date(2024, 5, 12, 9, 30, 0, 0, time.UTC),
				TargetGroupIDs:         []string{"g1"}},
		},
		groups: map[string]*models.TargetGroup{
			"g1": {ID: "g1", Name: "All Computers"},
		},
	}
}

type dialRecorder struct {
	dialed      []string
	failServers map[string]bool
}

func (d *dialRecorder) factory(client wsus.Client) wsus.DriverFactory {
	return func(_ wsus.DriverOptions) wsus.Dialer {
		return func(_ context.Context, host string, port int) (wsus.Client, error) {
			d.dialed = append(d.dialed, fmt.Sprintf("%s:%d", host, port))
			if d.failServers[host] {
				return nil, fmt.Errorf("port %d refused", port)
			}
			return client, nil
		}
	}
}

func (d *dialRecorder) registry(client wsus.Client) wsus.Registry {
	return wsus.NewRegistry(map[string]wsus.DriverFactory{
		apiremoting.DriverName: d.factory(client),
	})
}

type fakeHistory struct {
	records []store.RunRecord
}

func (f *fakeHistory) Add(_ context.Context, run store.RunRecord) error {
	f.records = append(f.records, run)
	return nil
}

func (f *fakeHistory) List(_ context.Context, _ int) ([]store.RunRecord, error) {
	return f.records, nil
}

func runReportCmd(t *testing.T, deps Deps, args ...string) error {
	t.Helper()
	cmd := NewReportCmd(deps)
	cmd.SetArgs(args)
	cmd.SetOut(deps.Out)
	cmd.SetErr(deps.ErrOut)
	return cmd.Execute()
}

func TestReportCmd_InvalidFormatFailsBeforeAnyCall(t *testing.T) {
	// Given
	var out, errOut bytes.Buffer
	rec := &dialRecorder{}
	deps := Deps{Drivers: rec.registry(newFakeClient()), Out: &out, ErrOut: &errOut}
	dir := t.TempDir()

	// When
	err := runReportCmd(t, deps,
		"--server", "wsus01", "--kb", "123456", "--format", "XML", "--output", dir)

	// Then
	require.Error(t, err)
	assert.Contains(t, err.Error(), "XML")
	assert.Empty(t, rec.dialed, "no network call may happen on a config error")

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "no file may be written on a config error")
}

func TestReportCmd_UnknownDriverFailsBeforeAnyCall(t *testing.T) {
	var out, errOut bytes.Buffer
	rec := &dialRecorder{}
	deps := Deps{Drivers: rec.registry(newFakeClient()), Out: &out, ErrOut: &errOut}

	err := runReportCmd(t, deps,
		"--server", "wsus01", "--kb", "123456", "--driver", "winrm", "--format", "Console")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "winrm")
	assert.Empty(t, rec.dialed, "an unregistered driver must fail before dialing")
}

func TestReportCmd_ResolvesDriverFromRegistry(t *testing.T) {
	var out, errOut bytes.Buffer
	rec := &dialRecorder{}
	deps := Deps{
		Drivers: wsus.NewRegistry(map[string]wsus.DriverFactory{
			"winrm": rec.factory(newFakeClient()),
		}),
		Out:    &out,
		ErrOut: &errOut,
	}

	err := runReportCmd(t, deps,
		"--server", "wsus01", "--kb", "123456", "--driver", "winrm", "--format", "Console")

	require.NoError(t, err)
	assert.Len(t, rec.dialed, 1)
	assert.Contains(t, out.String(), "ws01.corp.local")
}

func TestReportCmd_ConsoleScenario(t *testing.T) {
	var out, errOut bytes.Buffer
	rec := &dialRecorder{}
	deps := Deps{Drivers: rec.registry(newFakeClient()), Out: &out, ErrOut: &errOut}

	err := runReportCmd(t, deps,
		"--server", "wsus01", "--kb", "123456", "--format", "Console")
	require.NoError(t, err)

	assert.Len(t, rec.dialed, 1, "connects once")
	assert.Contains(t, out.String(), "ws01.corp.local")
	assert.NotContains(t, out.String(), "Uninstall", "non-Install approvals must not appear")
}

func TestReportCmd_FailedServerDoesNotStopTheRun(t *testing.T) {
	var out, errOut bytes.Buffer
	rec := &dialRecorder{failServers: map[string]bool{"wsus01": true}}
	deps := Deps{Drivers: rec.registry(newFakeClient()), Out: &out, ErrOut: &errOut}

	err := runReportCmd(t, deps,
		"--server", "wsus01", "--server", "wsus02", "--kb", "123456", "--format", "Console")
	require.NoError(t, err, "a broken server must not abort the run")

	// wsus01 tried on both ports, then wsus02 succeeded.
	assert.Equal(t, []string{"wsus01:8531", "wsus01:8530", "wsus02:8531"}, rec.dialed)
	assert.Contains(t, out.String(), "ws01.corp.local")
	assert.Contains(t, errOut.String(), "wsus01")
}

func TestReportCmd_CSVWritesOneSetPerServer(t *testing.T) {
	var out, errOut bytes.Buffer
	rec := &dialRecorder{}
	deps := Deps{Drivers: rec.registry(newFakeClient()), Out: &out, ErrOut: &errOut}
	dir := t.TempDir()

	err := runReportCmd(t, deps,
		"--server", "wsus01", "--server", "wsus02", "--kb", "123456", "--output", dir)
	require.NoError(t, err)

	var detail, summary []string
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		switch {
		case strings.HasPrefix(e.Name(), "ComputerDetail-"):
			detail = append(detail, e.Name())
		case strings.HasPrefix(e.Name(), "UpdateSummary-"):
			summary = append(summary, e.Name())
		}
	}

	assert.Len(t, detail, 2, "one detail file per server")
	assert.Len(t, summary, 2, "one summary file per server")

	// Both servers share the run timestamp.
	stamp := func(name string) string {
		name = strings.TrimSuffix(name, filepath.Ext(name))
		return name[strings.LastIndex(name, "-")+1:]
	}
	assert.Equal(t, stamp(summary[0]), stamp(summary[1]))
}

func TestReportCmd_RecordsHistory(t *testing.T) {
	var out, errOut bytes.Buffer
	rec := &dialRecorder{}
	runs := &fakeHistory{}
	deps := Deps{
		Drivers: rec.registry(newFakeClient()),
		OpenHistory: func(_ string) (history.Store, func() error, error) {
			return runs, func() error { return nil }, nil
		},
		Out:    &out,
		ErrOut: &errOut,
	}

	err := runReportCmd(t, deps,
		"--server", "wsus01", "--kb", "123456", "--format", "Console", "--history-db", "runs.db")
	require.NoError(t, err)

	require.Len(t, runs.records, 1)
	assert.Equal(t, "wsus01", runs.records[0].Server)
	assert.Equal(t, 123456, runs.records[0].KBNumber)
	assert.Equal(t, 1, runs.records[0].UpdatesMatched)
	assert.Equal(t, 1, runs.records[0].ComputersReported)
	assert.Empty(t, runs.records[0].Error)
}
