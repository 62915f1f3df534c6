package login

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nmhoang23/rotauth/internal/core/domain"
)

// HTTPRunner bridges to an out-of-process automation service that performs
// the actual browser session. The service receives the target, credentials,
// and the resource to route through, and answers with a classified outcome.
type HTTPRunner struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPRunner creates a runner calling the given service endpoint.
// Per-call deadlines come from the orchestrator's attempt context.
func NewHTTPRunner(endpoint string) *HTTPRunner {
	return &HTTPRunner{
		endpoint: endpoint,
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type runnerRequest struct {
	TargetURL string `json:"target_url"`
	Username  string `json:"username"`
	Password  string `json:"password"`

	ProxyURL  string `json:"proxy_url,omitempty"`
	ProxyAuth string `json:"proxy_auth,omitempty"`
}

type runnerResponse struct {
	Outcome string `json:"outcome"`
	Token   string `json:"token,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

// Run posts one attempt to the automation service and maps its answer onto
// the closed outcome set. Unknown labels never fall through silently: they
// become unclassified, the terminal catch-all.
func (r *HTTPRunner) Run(ctx context.Context, req Request, res *domain.Resource) (Result, error) {
	payload := runnerRequest{
		TargetURL: req.TargetURL,
		Username:  req.Credentials.Username,
		Password:  req.Credentials.Password,
	}
	if res != nil {
		payload.ProxyURL = res.URL().String()
		if header, ok := res.AuthHeader(); ok {
			payload.ProxyAuth = header
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Result{}, fmt.Errorf("marshal runner request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("create runner request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		return Result{}, fmt.Errorf("runner call: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read runner response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("runner http %d: %s", resp.StatusCode, raw)
	}

	var rr runnerResponse
	if err := json.Unmarshal(raw, &rr); err != nil {
		return Result{}, fmt.Errorf("parse runner response: %w", err)
	}

	return Result{
		Outcome: outcomeFromLabel(rr.Outcome),
		Token:   rr.Token,
		Detail:  rr.Detail,
	}, nil
}

func outcomeFromLabel(label string) domain.Outcome {
	switch label {
	case "success":
		return domain.OutcomeSuccess
	case "credential_invalid":
		return domain.OutcomeCredentialInvalid
	case "account_banned":
		return domain.OutcomeAccountBanned
	case "account_disabled":
		return domain.OutcomeAccountDisabled
	case "defense_block":
		return domain.OutcomeDefenseBlock
	case "navigation_timeout":
		return domain.OutcomeNavigationTimeout
	case "no_response":
		return domain.OutcomeNoResponse
	default:
		return domain.OutcomeUnclassified
	}
}
