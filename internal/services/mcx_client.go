package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"mcx-exporter/internal/common"
	"mcx-exporter/internal/interfaces"
	"mcx-exporter/internal/models"

	"github.com/go-resty/resty/v2"
)

const mcxBaseURL = "https://%s.allegiancetech.com/CaseManagement.svc"

type mcxClient struct {
	client   *resty.Client
	company  string
	username string
	password string
	token    string
}

// NewMcxClient creates a client for the MCX case-management service of the
// configured instance.
func NewMcxClient(config *common.McxConfig) interfaces.CaseClient {
	return newMcxClient(fmt.Sprintf(mcxBaseURL, config.Instance), config)
}

func newMcxClient(baseURL string, config *common.McxConfig) *mcxClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(time.Duration(config.Timeout) * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &mcxClient{
		client:   client,
		company:  config.Company,
		username: config.Username,
		password: config.Password,
	}
}

// post sends one service call. The session token, once present, rides in
// the request body rather than a header.
func (mc *mcxClient) post(endpoint string, body map[string]interface{}, result interface{}) error {
	if body == nil {
		body = map[string]interface{}{}
	}
	if mc.token != "" {
		body["token"] = mc.token
	}

	resp, err := mc.client.R().
		SetBody(body).
		SetResult(result).
		Post("/" + endpoint)

	if err != nil {
		return common.WrapError(err, common.ErrorTypeNetwork, "mcx_request_failed",
			fmt.Sprintf("POST %s failed", endpoint))
	}

	if resp.StatusCode() != http.StatusOK {
		return common.NewNetworkError("mcx_status",
			fmt.Sprintf("MCX API returned status %d for %s", resp.StatusCode(), endpoint)).
			WithContext("body", resp.String())
	}

	return nil
}

type authenticateResponse struct {
	AuthenticateResult struct {
		Token string `json:"token"`
	} `json:"AuthenticateResult"`
}

func (mc *mcxClient) Authenticate() error {
	payload := map[string]interface{}{
		"userName":    mc.username,
		"password":    mc.password,
		"companyName": mc.company,
	}

	var result authenticateResponse
	if err := mc.post("authenticate", payload, &result); err != nil {
		return err
	}

	if result.AuthenticateResult.Token == "" {
		return common.NewAuthError("mcx_no_token", "authenticate response carried no token")
	}

	mc.token = result.AuthenticateResult.Token
	return nil
}

type inboxResponse struct {
	GetMobileCaseInboxItemsResult struct {
		CaseMobileInboxData struct {
			Rows []json.RawMessage `json:"Rows"`
		} `json:"caseMobileInboxData"`
	} `json:"GetMobileCaseInboxItemsResult"`
}

// GetCaseInbox returns the raw inbox rows. They stay raw so the inbox model
// can decode them in document order.
func (mc *mcxClient) GetCaseInbox() ([]json.RawMessage, error) {
	var result inboxResponse
	if err := mc.post("getMobileCaseInboxItems", nil, &result); err != nil {
		return nil, err
	}
	return result.GetMobileCaseInboxItemsResult.CaseMobileInboxData.Rows, nil
}

type caseViewResponse struct {
	GetCaseViewResult json.RawMessage `json:"GetCaseViewResult"`
}

// GetCase fetches and decodes one case-view document, returning the raw
// document alongside so it can be cached and attached to parsing errors.
func (mc *mcxClient) GetCase(caseID int) (*models.CaseViewDocument, json.RawMessage, error) {
	var result caseViewResponse
	if err := mc.post("getCaseView", map[string]interface{}{"caseId": caseID}, &result); err != nil {
		return nil, nil, err
	}

	var doc models.CaseViewDocument
	if err := json.Unmarshal(result.GetCaseViewResult, &doc); err != nil {
		return nil, nil, common.WrapError(err, common.ErrorTypeParsing, "case_view_decode",
			fmt.Sprintf("failed to decode case view for case %d", caseID)).
			WithContext("case_id", caseID).
			WithContext("document", string(result.GetCaseViewResult))
	}

	return &doc, result.GetCaseViewResult, nil
}
