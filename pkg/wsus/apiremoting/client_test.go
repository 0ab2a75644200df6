package apiremoting

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	models "github.com/de-tools/patch-atlas/pkg/models/wsus"
	"github.com/de-tools/patch-atlas/pkg/wsus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pingOK = `<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body><PingResponse/></soap:Body>
</soap:Envelope>`

// soapServer answers each SOAPAction with a canned envelope body.
func soapServer(t *testing.T, responses map[string]string) (wsus.Client, func()) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		action := strings.Trim(r.Header.Get("SOAPAction"), `"`)
		action = action[strings.LastIndex(action, "/")+1:]

		body, ok := responses[action]
		if !ok {
			t.Errorf("unexpected action %q", action)
			http.Error(w, "unknown action", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/xml")
		fmt.Fprint(w, body)
	}))

	host, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	client, err := dial(context.Background(), host, port, wsus.DriverOptions{})
	require.NoError(t, err)

	return client, func() {
		client.Close()
		srv.Close()
	}
}

func TestGetUpdateSummaries(t *testing.T) {
	client, done := soapServer(t, map[string]string{
		"Ping": pingOK,
		"GetUpdateInstallationSummaries": `<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <GetUpdateInstallationSummariesResponse>
      <GetUpdateInstallationSummariesResult>
        <UpdateInstallationSummary>
          <UpdateRevisionId>17</UpdateRevisionId>
          <InstalledCount>12</InstalledCount>
          <InstalledPendingRebootCount>2</InstalledPendingRebootCount>
          <DownloadedCount>1</DownloadedCount>
          <NotInstalledCount>4</NotInstalledCount>
          <FailedCount>3</FailedCount>
          <UnknownCount>0</UnknownCount>
        </UpdateInstallationSummary>
      </GetUpdateInstallationSummariesResult>
    </GetUpdateInstallationSummariesResponse>
  </soap:Body>
</soap:Envelope>`,
	})
	defer done()

	summaries, err := client.GetUpdateSummaries(context.Background(),
		wsus.UpdateScope{TextIncludes: "123456"}, wsus.AllComputers())
	require.NoError(t, err)

	require.Len(t, summaries, 1)
	assert.Equal(t, 17, summaries[0].UpdateRevisionID)
	assert.Equal(t, 12, summaries[0].InstalledCount)
	assert.Equal(t, 2, summaries[0].InstalledPendingRebootCount)
	assert.Equal(t, 3, summaries[0].FailedCount)
}

func TestGetUpdate(t *testing.T) {
	client, done := soapServer(t, map[string]string{
		"Ping": pingOK,
		"GetUpdateByRevisionId": `<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <GetUpdateByRevisionIdResponse>
      <GetUpdateByRevisionIdResult>
        <RevisionId>17</RevisionId>
        <Title>Security Update for Windows (x64) KB123456</Title>
        <Description>A security issue has been identified.</Description>
        <KnowledgebaseArticles><string>123456</string></KnowledgebaseArticles>
      </GetUpdateByRevisionIdResult>
    </GetUpdateByRevisionIdResponse>
  </soap:Body>
</soap:Envelope>`,
	})
	defer done()

	update, err := client.GetUpdate(context.Background(), 17)
	require.NoError(t, err)

	assert.Equal(t, "Security Update for Windows (x64) KB123456", update.Title)
	assert.Equal(t, []string{"123456"}, update.KnowledgebaseArticles)
}

func TestGetComputer(t *testing.T) {
	client, done := soapServer(t, map[string]string{
		"Ping": pingOK,
		"GetComputerTarget": `<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <GetComputerTargetResponse>
      <GetComputerTargetResult>
        <Id>c1</Id>
        <FullDomainName>ws01.corp.local</FullDomainName>
        <IPAddress>10.0.0.1</IPAddress>
        <LastReportedStatusTime>2024-05-12T09:30:00Z</LastReportedStatusTime>
        <ComputerTargetGroupIds>
          <guid>g1</guid>
          <guid>g2</guid>
        </ComputerTargetGroupIds>
      </GetComputerTargetResult>
    </GetComputerTargetResponse>
  </soap:Body>
</soap:Envelope>`,
	})
	defer done()

	computer, err := client.GetComputer(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, "ws01.corp.local", computer.FullDomainName)
	assert.Equal(t, []string{"g1", "g2"}, computer.TargetGroupIDs)
	assert.Equal(t, 2024, computer.LastReportedStatusTime.Year())
}

func TestGetInstallationInfo_EnumMapping(t *testing.T) {
	client, done := soapServer(t, map[string]string{
		"Ping": pingOK,
		"GetUpdateInstallationInfoPerComputerTarget": `<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <GetUpdateInstallationInfoPerComputerTargetResponse>
      <GetUpdateInstallationInfoPerComputerTargetResult>
        <UpdateInstallationInfo>
          <ComputerTargetId>c1</ComputerTargetId>
          <UpdateInstallationState>4</UpdateInstallationState>
          <UpdateApprovalAction>Install</UpdateApprovalAction>
        </UpdateInstallationInfo>
        <UpdateInstallationInfo>
          <ComputerTargetId>c2</ComputerTargetId>
          <UpdateInstallationState>5</UpdateInstallationState>
          <UpdateApprovalAction>NotApproved</UpdateApprovalAction>
        </UpdateInstallationInfo>
      </GetUpdateInstallationInfoPerComputerTargetResult>
    </GetUpdateInstallationInfoPerComputerTargetResponse>
  </soap:Body>
</soap:Envelope>`,
	})
	defer done()

	infos, err := client.GetInstallationInfo(context.Background(), 17, wsus.AllComputers())
	require.NoError(t, err)

	require.Len(t, infos, 2)
	assert.Equal(t, models.StateInstalled, infos[0].State)
	assert.Equal(t, models.ApprovalInstall, infos[0].ApprovalAction)
	assert.Equal(t, models.StateFailed, infos[1].State)
}

func TestSoapFaultSurfacesAsError(t *testing.T) {
	client, done := soapServer(t, map[string]string{
		"Ping": pingOK,
		"GetComputerTargetGroup": `<?xml version="1.0"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/">
  <soap:Body>
    <soap:Fault>
      <faultcode>soap:Server</faultcode>
      <faultstring>group does not exist</faultstring>
    </soap:Fault>
  </soap:Body>
</soap:Envelope>`,
	})
	defer done()

	_, err := client.GetTargetGroup(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "group does not exist")
}

func TestDial_ProbeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	}))
	defer srv.Close()

	host, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, _ := strconv.Atoi(portStr)

	_, err = dial(context.Background(), host, port, wsus.DriverOptions{})
	require.Error(t, err)
}
