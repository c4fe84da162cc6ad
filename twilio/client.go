package twilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
)

// Client is a minimal Twilio REST client covering the three operations the
// assistant needs: placing an outbound call, texting a booking link, and
// resolving a call's destination number.
type Client struct {
	accountSID string
	authToken  string
	from       string
	httpClient *http.Client
	baseURL    string
}

// NewClient reads credentials from TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN.
// from is the provisioned Twilio phone number calls and texts originate from.
func NewClient(from string) (*Client, error) {
	accountSID := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	if accountSID == "" || authToken == "" {
		return nil, errors.New("TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN environment variables are not set")
	}

	if from == "" {
		return nil, errors.New("twilio phone number must be configured")
	}

	return &Client{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		httpClient: &http.Client{},
		baseURL:    "https://api.twilio.com",
	}, nil
}

// CallInfo is the slice of a call resource the assistant cares about.
type CallInfo struct {
	SID    string `json:"sid"`
	To     string `json:"to"`
	From   string `json:"from"`
	Status string `json:"status"`
}

// PlaceCall starts an outbound call to a phone number, pointing the call's
// control flow at twimlURL. Answering machine detection runs asynchronously
// so the webhook can leave a voicemail.
func (c *Client) PlaceCall(ctx context.Context, to, twimlURL string) (string, error) {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.from)
	form.Set("Url", twimlURL)
	form.Set("MachineDetection", "Enable")
	form.Set("AsyncAmd", "true")

	var call CallInfo
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls.json", c.baseURL, c.accountSID)
	if err := c.post(ctx, endpoint, form, &call); err != nil {
		return "", fmt.Errorf("error placing call: %w", err)
	}

	if call.SID == "" {
		return "", errors.New("twilio returned a call without a sid")
	}
	return call.SID, nil
}

// SendSMS delivers one text message from the assistant's number.
func (c *Client) SendSMS(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	if err := c.post(ctx, endpoint, form, nil); err != nil {
		return fmt.Errorf("error sending SMS: %w", err)
	}
	return nil
}

// FetchCall retrieves a call resource by SID.
func (c *Client) FetchCall(ctx context.Context, callSID string) (CallInfo, error) {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Calls/%s.json", c.baseURL, c.accountSID, callSID)

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return CallInfo{}, fmt.Errorf("error creating request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)

	var call CallInfo
	if err := c.do(req, &call); err != nil {
		return CallInfo{}, fmt.Errorf("error fetching call: %w", err)
	}
	return call, nil
}

// CalledNumber resolves the phone number a call was placed to.
func (c *Client) CalledNumber(ctx context.Context, callSID string) (string, error) {
	call, err := c.FetchCall(ctx, callSID)
	if err != nil {
		return "", err
	}
	if call.To == "" {
		return "", fmt.Errorf("call %s has no destination number", callSID)
	}
	return call.To, nil
}

func (c *Client) post(ctx context.Context, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("error unmarshaling response: %w", err)
	}
	return nil
}
