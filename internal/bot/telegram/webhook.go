package telegram

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"fleet-monitor/internal/bot"
)

var (
	errNilHandler = errors.New("telegram: nil bot handler")
	errNilLogger  = errors.New("telegram: nil logger")
)

// Update is the subset of a Telegram webhook payload the bot consumes.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message carries the inbound chat message.
type Message struct {
	Date     int64     `json:"date"`
	Chat     Chat      `json:"chat"`
	Text     string    `json:"text"`
	Location *Location `json:"location"`
}

// Chat identifies the conversation.
type Chat struct {
	ID int64 `json:"id"`
}

// Location is the shared coordinate payload.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// WebhookHandler receives updates pushed by the bot API and feeds them to
// the conversational handler.
type WebhookHandler struct {
	handler *bot.Handler
	secret  string
	logger  *zap.SugaredLogger
}

// NewWebhookHandler constructs the webhook endpoint. The secret is the
// unguessable path segment the webhook is registered under.
func NewWebhookHandler(handler *bot.Handler, secret string, logger *zap.SugaredLogger) (*WebhookHandler, error) {
	if handler == nil {
		return nil, errNilHandler
	}
	if logger == nil {
		return nil, errNilLogger
	}
	return &WebhookHandler{handler: handler, secret: secret, logger: logger}, nil
}

// ServeHTTP handles POST /telegram/webhook/{secret}. Updates the bot does
// not understand are acknowledged and dropped; a non-200 answer would only
// make the bot API redeliver them forever.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.secret != "" && mux.Vars(r)["secret"] != h.secret {
		http.NotFound(w, r)
		return
	}

	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		h.logger.Warnw("webhook decode failed", "error", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	ev, ok := eventFromUpdate(update)
	if ok {
		if err := h.handler.Handle(r.Context(), ev); err != nil {
			h.logger.Warnw("webhook update failed",
				"update_id", update.UpdateID,
				"session_id", ev.SessionID,
				"error", err,
			)
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func eventFromUpdate(update Update) (bot.Event, bool) {
	msg := update.Message
	if msg == nil || msg.Chat.ID == 0 {
		return bot.Event{}, false
	}

	ev := bot.Event{
		SessionID: strconv.FormatInt(msg.Chat.ID, 10),
	}
	if msg.Date > 0 {
		ev.At = time.Unix(msg.Date, 0).UTC()
	}

	switch {
	case msg.Location != nil:
		ev.Kind = bot.KindLocation
		ev.Location = &bot.Location{
			Latitude:  msg.Location.Latitude,
			Longitude: msg.Location.Longitude,
		}
	case strings.HasPrefix(msg.Text, "/"):
		ev.Kind = bot.KindCommand
		command := strings.TrimPrefix(msg.Text, "/")
		if i := strings.IndexAny(command, " @"); i >= 0 {
			command = command[:i]
		}
		ev.Command = command
	default:
		ev.Kind = bot.KindText
		ev.Text = msg.Text
	}
	return ev, true
}
