// Package telegram adapts the Telegram Bot API to the conversational
// handler: inbound webhook updates become bot events, outbound replies
// become sendMessage calls.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"fleet-monitor/internal/bot"
)

// Client is a minimal Telegram Bot API client.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient constructs a bot API client. baseURL defaults to the public
// Telegram endpoint; tests point it at a local fake.
func NewClient(baseURL, token string) (*Client, error) {
	if token == "" {
		return nil, errors.New("telegram: empty bot token")
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Send delivers one reply to the chat identified by sessionID. The bot
// API accepts the chat id as a string, so no parsing is needed.
func (c *Client) Send(ctx context.Context, sessionID string, reply bot.Reply) error {
	if sessionID == "" {
		return errors.New("telegram: empty session id")
	}
	body := sendMessageRequest{
		ChatID: sessionID,
		Text:   reply.Text,
	}
	switch {
	case reply.RequestLocationLabel != "":
		body.ReplyMarkup = &replyMarkup{
			Keyboard: [][]keyboardButton{{
				{Text: reply.RequestLocationLabel, RequestLocation: true},
			}},
			ResizeKeyboard: true,
		}
	case reply.RemoveKeyboard:
		body.ReplyMarkup = &replyMarkup{RemoveKeyboard: true}
	}
	return c.doJSON(ctx, "sendMessage", body, nil)
}

// SetWebhook registers the public webhook URL with the bot API.
func (c *Client) SetWebhook(ctx context.Context, url string) error {
	if url == "" {
		return errors.New("telegram: empty webhook url")
	}
	return c.doJSON(ctx, "setWebhook", map[string]any{"url": url}, nil)
}

// DeleteWebhook removes a previously registered webhook.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.doJSON(ctx, "deleteWebhook", nil, nil)
}

type sendMessageRequest struct {
	ChatID      string       `json:"chat_id"`
	Text        string       `json:"text"`
	ReplyMarkup *replyMarkup `json:"reply_markup,omitempty"`
}

type replyMarkup struct {
	Keyboard       [][]keyboardButton `json:"keyboard,omitempty"`
	ResizeKeyboard bool               `json:"resize_keyboard,omitempty"`
	RemoveKeyboard bool               `json:"remove_keyboard,omitempty"`
}

type keyboardButton struct {
	Text            string `json:"text"`
	RequestLocation bool   `json:"request_location,omitempty"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (c *Client) doJSON(ctx context.Context, method string, body any, out any) error {
	var reqBody *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(payload)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	url := c.baseURL + "/bot" + c.token + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var envelope apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("telegram: %s: http %d", method, resp.StatusCode)
	}
	if !envelope.OK {
		return fmt.Errorf("telegram: %s: %s", method, envelope.Description)
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(envelope.Result, out)
}

var _ bot.Sender = (*Client)(nil)
