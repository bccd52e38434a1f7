// Package messenger is the Facebook Messenger surface: a webhook server
// for incoming events and a Graph API client for outgoing replies.
package messenger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kitakits/stock-ledger/internal/session"
)

const defaultGraphURL = "https://graph.facebook.com/v18.0"

// maxQuickReplies is the Messenger platform limit per message.
const maxQuickReplies = 13

// Client sends messages through the Graph API Send API.
type Client struct {
	apiURL      string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a Client against the real Graph API.
func NewClient(accessToken string) *Client {
	return NewClientWithURL(accessToken, defaultGraphURL)
}

// NewClientWithURL creates a Client with a custom API base URL for testing.
func NewClientWithURL(accessToken, apiURL string) *Client {
	return &Client{
		apiURL:      apiURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

type quickReply struct {
	ContentType string `json:"content_type"`
	Title       string `json:"title"`
	Payload     string `json:"payload"`
}

type outgoingMessage struct {
	Text         string       `json:"text"`
	QuickReplies []quickReply `json:"quick_replies,omitempty"`
}

type sendRequest struct {
	Recipient struct {
		ID string `json:"id"`
	} `json:"recipient"`
	Message outgoingMessage `json:"message"`
}

// PresentText sends a plain text message.
func (c *Client) PresentText(ownerID, text string) error {
	return c.send(ownerID, outgoingMessage{Text: text})
}

// PresentOptions sends a message with the options attached as quick
// replies.
func (c *Client) PresentOptions(ownerID, text string, options []session.Option) error {
	if len(options) > maxQuickReplies {
		options = options[:maxQuickReplies]
	}

	replies := make([]quickReply, 0, len(options))
	for _, opt := range options {
		replies = append(replies, quickReply{
			ContentType: "text",
			Title:       opt.Label,
			Payload:     opt.ID,
		})
	}
	return c.send(ownerID, outgoingMessage{Text: text, QuickReplies: replies})
}

func (c *Client) send(recipientID string, message outgoingMessage) error {
	var req sendRequest
	req.Recipient.ID = recipientID
	req.Message = message

	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encoding send request: %w", err)
	}

	url := fmt.Sprintf("%s/me/messages?access_token=%s", c.apiURL, c.accessToken)
	resp, err := c.httpClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("send API returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}

// FetchAttachment downloads an attachment from the CDN URL Messenger
// includes in the webhook event.
func (c *Client) FetchAttachment(url string) ([]byte, string, error) {
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, "", fmt.Errorf("fetching attachment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("attachment fetch returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading attachment: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
