// internal/provider/twilio.go
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioGateway talks to the Twilio Messages REST API directly.
type TwilioGateway struct {
	AccountSID string
	AuthToken  string
	From       string

	// BaseURL is overridable for tests; defaults to the public API.
	BaseURL string
	Client  *http.Client
}

func NewTwilioGateway(accountSID, authToken, from string) *TwilioGateway {
	return &TwilioGateway{
		AccountSID: accountSID,
		AuthToken:  authToken,
		From:       from,
		BaseURL:    "https://api.twilio.com",
		Client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *TwilioGateway) Name() string { return "twilio" }

type twilioMessageResponse struct {
	SID     string `json:"sid"`
	Status  string `json:"status"`
	Message string `json:"message"` // error description on non-2xx
	Code    int    `json:"code"`
}

func (g *TwilioGateway) SendSMS(ctx context.Context, to, body string) (*SendResult, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", g.From)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", g.BaseURL, g.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &PermanentError{Reason: err.Error()}
	}
	req.SetBasicAuth(g.AccountSID, g.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.Client.Do(req)
	if err != nil {
		// Network-level failures are retryable.
		return nil, &TransientError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var parsed twilioMessageResponse
	_ = json.Unmarshal(raw, &parsed)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return &SendResult{ProviderMessageID: parsed.SID, Status: parsed.Status}, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &TransientError{Code: resp.StatusCode, Reason: errReason(parsed, raw)}
	default:
		return nil, &PermanentError{Code: resp.StatusCode, Reason: errReason(parsed, raw)}
	}
}

func errReason(parsed twilioMessageResponse, raw []byte) string {
	if parsed.Message != "" {
		return parsed.Message
	}
	return strings.TrimSpace(string(raw))
}
