package apiremoting

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
)

const soapNS = "http://schemas.xmlsoap.org/soap/envelope/"

type requestEnvelope struct {
	XMLName xml.Name    `xml:"soap:Envelope"`
	NS      string      `xml:"xmlns:soap,attr"`
	Body    requestBody `xml:"soap:Body"`
}

type requestBody struct {
	Payload any
}

type responseEnvelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Fault   *soapFault `xml:"Fault"`
		Payload []byte     `xml:",innerxml"`
	} `xml:"Body"`
}

type soapFault struct {
	Code   string `xml:"faultcode"`
	Reason string `xml:"faultstring"`
}

func (f *soapFault) Error() string {
	return fmt.Sprintf("soap fault %s: %s", f.Code, f.Reason)
}

// call performs one request/response exchange against the web service.
func (c *client) call(ctx context.Context, action string, payload any, result any) error {
	body, err := xml.Marshal(requestEnvelope{
		NS:   soapNS,
		Body: requestBody{Payload: payload},
	})
	if err != nil {
		return fmt.Errorf("encode %s request: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL,
		bytes.NewReader(append([]byte(xml.Header), body...)))
	if err != nil {
		return fmt.Errorf("build %s request: %w", action, err)
	}
	req.Header.Set("Content-Type", `text/xml; charset="utf-8"`)
	req.Header.Set("SOAPAction", fmt.Sprintf("%q", "http://www.microsoft.com/SoftwareDistribution/Server/ApiRemotingWebServices/"+action))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", action, err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusInternalServerError {
		return fmt.Errorf("%s: unexpected status %d", action, resp.StatusCode)
	}

	var env responseEnvelope
	if err := xml.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("%s: decode envelope: %w", action, err)
	}
	if env.Body.Fault != nil {
		return fmt.Errorf("%s: %w", action, env.Body.Fault)
	}

	if err := xml.Unmarshal(env.Body.Payload, result); err != nil {
		return fmt.Errorf("%s: decode payload: %w", action, err)
	}
	return nil
}

type pingRequest struct {
	XMLName xml.Name `xml:"Ping"`
}

type pingResponse struct {
	XMLName xml.Name `xml:"PingResponse"`
}

type updateScopeXML struct {
	TextIncludes string `xml:"TextIncludes"`
}

type computerScopeXML struct {
	GroupID          string `xml:"ComputerTargetGroupId,omitempty"`
	IncludeSubgroups bool   `xml:"IncludeSubgroups"`
}

type getSummariesRequest struct {
	XMLName       xml.Name         `xml:"GetUpdateInstallationSummaries"`
	UpdateScope   updateScopeXML   `xml:"updateScope"`
	ComputerScope computerScopeXML `xml:"computerTargetScope"`
}

type updateSummaryXML struct {
	RevisionID                  int `xml:"UpdateRevisionId"`
	InstalledCount              int `xml:"InstalledCount"`
	InstalledPendingRebootCount int `xml:"InstalledPendingRebootCount"`
	DownloadedCount             int `xml:"DownloadedCount"`
	NotInstalledCount           int `xml:"NotInstalledCount"`
	FailedCount                 int `xml:"FailedCount"`
	UnknownCount                int `xml:"UnknownCount"`
}

type getSummariesResponse struct {
	XMLName   xml.Name           `xml:"GetUpdateInstallationSummariesResponse"`
	Summaries []updateSummaryXML `xml:"GetUpdateInstallationSummariesResult>UpdateInstallationSummary"`
}

type getUpdateRequest struct {
	XMLName    xml.Name `xml:"GetUpdateByRevisionId"`
	RevisionID int      `xml:"revisionId"`
}

type updateXML struct {
	RevisionID            int      `xml:"RevisionId"`
	Title                 string   `xml:"Title"`
	Description           string   `xml:"Description"`
	KnowledgebaseArticles []string `xml:"KnowledgebaseArticles>string"`
}

type getUpdateResponse struct {
	XMLName xml.Name  `xml:"GetUpdateByRevisionIdResponse"`
	Update  updateXML `xml:"GetUpdateByRevisionIdResult"`
}

type getInstallationInfoRequest struct {
	XMLName       xml.Name         `xml:"GetUpdateInstallationInfoPerComputerTarget"`
	RevisionID    int              `xml:"revisionId"`
	ComputerScope computerScopeXML `xml:"computerTargetScope"`
}

type installationInfoXML struct {
	ComputerTargetID string `xml:"ComputerTargetId"`
	State            int    `xml:"UpdateInstallationState"`
	ApprovalAction   string `xml:"UpdateApprovalAction"`
}

type getInstallationInfoResponse struct {
	XMLName xml.Name              `xml:"GetUpdateInstallationInfoPerComputerTargetResponse"`
	Infos   []installationInfoXML `xml:"GetUpdateInstallationInfoPerComputerTargetResult>UpdateInstallationInfo"`
}

type getComputerRequest struct {
	XMLName xml.Name `xml:"GetComputerTarget"`
	ID      string   `xml:"id"`
}

type computerXML struct {
	ID                     string   `xml:"Id"`
	FullDomainName         string   `xml:"FullDomainName"`
	IPAddress              string   `xml:"IPAddress"`
	LastReportedStatusTime string   `xml:"LastReportedStatusTime"`
	TargetGroupIDs         []string `xml:"ComputerTargetGroupIds>guid"`
}

type getComputerResponse struct {
	XMLName  xml.Name    `xml:"GetComputerTargetResponse"`
	Computer computerXML `xml:"GetComputerTargetResult"`
}

type getTargetGroupRequest struct {
	XMLName xml.Name `xml:"GetComputerTargetGroup"`
	ID      string   `xml:"id"`
}

type targetGroupXML struct {
	ID   string `xml:"Id"`
	Name string `xml:"Name"`
}

type getTargetGroupResponse struct {
	XMLName xml.Name       `xml:"GetComputerTargetGroupResponse"`
	Group   targetGroupXML `xml:"GetComputerTargetGroupResult"`
}
