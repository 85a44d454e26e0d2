package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const twilioBaseURL = "https://api.twilio.com/2010-04-01"

// TwilioConfig carries the WhatsApp channel credentials and addresses.
// They are passed in explicitly so the pipeline stays testable without
// touching process environment.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string // e.g. "whatsapp:+14155238886"
	To         string // e.g. "whatsapp:+5511999999999"
}

// TwilioClient sends WhatsApp messages through the Twilio Messages API.
type TwilioClient struct {
	cfg        TwilioConfig
	baseURL    string
	httpClient HTTPClient
}

// TwilioClientOption is a configuration option for the Twilio client.
type TwilioClientOption func(*TwilioClient)

// WithBaseURL sets the API base URL.
func WithBaseURL(baseURL string) TwilioClientOption {
	return func(c *TwilioClient) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets the HTTP client used on the wire.
func WithHTTPClient(httpClient HTTPClient) TwilioClientOption {
	return func(c *TwilioClient) {
		c.httpClient = httpClient
	}
}

// NewTwilioClient creates a WhatsApp notifier for one recipient.
func NewTwilioClient(cfg TwilioConfig, options ...TwilioClientOption) (*TwilioClient, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("notify: missing twilio credentials")
	}
	if cfg.From == "" || cfg.To == "" {
		return nil, fmt.Errorf("notify: missing from/to address")
	}
	client := &TwilioClient{
		cfg:        cfg,
		baseURL:    twilioBaseURL,
		httpClient: http.DefaultClient,
	}
	for _, option := range options {
		option(client)
	}
	return client, nil
}

// Send posts the message body and returns Twilio's message SID. Non-2xx
// responses surface the API's error message when one is present.
func (c *TwilioClient) Send(ctx context.Context, body string) (string, error) {
	form := url.Values{}
	form.Set("From", c.cfg.From)
	form.Set("To", c.cfg.To)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, c.cfg.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.cfg.AccountSID, c.cfg.AuthToken)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
			Code    int    `json:"code"`
		}
		b, _ := io.ReadAll(io.LimitReader(res.Body, 2<<10))
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Message != "" {
			return "", fmt.Errorf("twilio: %s (code %d)", apiErr.Message, apiErr.Code)
		}
		return "", fmt.Errorf("twilio: unexpected status %d", res.StatusCode)
	}

	var msg struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(res.Body).Decode(&msg); err != nil {
		return "", fmt.Errorf("decoding message response: %w", err)
	}
	if msg.SID == "" {
		return "", fmt.Errorf("twilio: response carries no sid")
	}
	return msg.SID, nil
}
