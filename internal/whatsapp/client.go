package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the Graph API root used when none is configured
const DefaultBaseURL = "https://graph.facebook.com/v21.0"

// Client sends messages via the WhatsApp Cloud API.
type Client struct {
	Token         string
	PhoneNumberID string
	BaseURL       string
	HTTPClient    *http.Client
}

// NewClient creates a Cloud API client.
func NewClient(baseURL, token, phoneNumberID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		Token:         token,
		PhoneNumberID: phoneNumberID,
		BaseURL:       strings.TrimRight(baseURL, "/"),
		HTTPClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SendMessage delivers one composed payload to the given phone number.
func (c *Client) SendMessage(ctx context.Context, to string, p Payload) (*SendMessageResponse, error) {
	p.To = to
	if p.MessagingProduct == "" {
		p.MessagingProduct = "whatsapp"
	}

	var result SendMessageResponse
	if err := c.post(ctx, p, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Send is SendMessage without the response body.
func (c *Client) Send(ctx context.Context, to string, p Payload) error {
	_, err := c.SendMessage(ctx, to, p)
	return err
}

// MarkRead marks an inbound message as read.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	return c.post(ctx, ReadReceipt{
		MessagingProduct: "whatsapp",
		Status:           "read",
		MessageID:        messageID,
	}, nil)
}

func (c *Client) post(ctx context.Context, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.BaseURL, c.PhoneNumberID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("whatsapp API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
