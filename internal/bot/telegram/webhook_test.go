package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"fleet-monitor/internal/bot"
	"fleet-monitor/internal/fleet/application"
	"fleet-monitor/internal/fleet/infrastructure/memory"
	"fleet-monitor/internal/session"
)

type nopSender struct {
	mu      sync.Mutex
	replies []bot.Reply
}

func (s *nopSender) Send(ctx context.Context, sessionID string, reply bot.Reply) error {
	_ = ctx
	_ = sessionID
	s.mu.Lock()
	s.replies = append(s.replies, reply)
	s.mu.Unlock()
	return nil
}

func newWebhookRouter(t *testing.T, secret string) (*mux.Router, *memory.VehicleRepository, *nopSender) {
	t.Helper()
	vehicles := memory.NewVehicleRepository()
	positions := memory.NewPositionRepository(vehicles)
	service, err := application.NewTrackingService(vehicles, positions, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("new tracking service: %v", err)
	}
	sender := &nopSender{}
	handler, err := bot.NewHandler(session.NewStore(), service, sender, bot.DefaultPrompts(), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	webhook, err := NewWebhookHandler(handler, secret, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("new webhook handler: %v", err)
	}
	router := mux.NewRouter()
	router.Handle("/telegram/webhook/{secret}", webhook).Methods(http.MethodPost)
	return router, vehicles, sender
}

func postUpdate(router *mux.Router, secret, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/telegram/webhook/"+secret, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestWebhook_SecretMismatch(t *testing.T) {
	router, _, _ := newWebhookRouter(t, "hook-secret")

	rec := postUpdate(router, "wrong", `{"update_id":1}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status: got %d want %d", rec.Code, http.StatusNotFound)
	}
}

func TestWebhook_FullFlow(t *testing.T) {
	router, vehicles, sender := newWebhookRouter(t, "hook-secret")

	updates := []string{
		`{"update_id":1,"message":{"date":1750000000,"chat":{"id":42},"text":"/start"}}`,
		`{"update_id":2,"message":{"date":1750000010,"chat":{"id":42},"text":"Alfa123"}}`,
		`{"update_id":3,"message":{"date":1750000020,"chat":{"id":42},"location":{"latitude":48.1,"longitude":11.5}}}`,
	}
	for _, update := range updates {
		rec := postUpdate(router, "hook-secret", update)
		if rec.Code != http.StatusOK {
			t.Fatalf("status: got %d body %q", rec.Code, rec.Body.String())
		}
		if rec.Body.String() != "ok" {
			t.Fatalf("body: got %q want ok", rec.Body.String())
		}
	}

	list, err := vehicles.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one vehicle, got %d", len(list))
	}
	if list[0].ExternalSessionID != "42" || list[0].DisplayName != "Alfa123" {
		t.Fatalf("unexpected vehicle: %+v", list[0])
	}

	sender.mu.Lock()
	defer sender.mu.Unlock()
	if len(sender.replies) != 3 {
		t.Fatalf("expected 3 replies, got %d", len(sender.replies))
	}
	if sender.replies[len(sender.replies)-1].Text != bot.DefaultPrompts().PositionSaved {
		t.Fatalf("last reply: %q", sender.replies[len(sender.replies)-1].Text)
	}
}

func TestWebhook_MalformedBody(t *testing.T) {
	router, _, _ := newWebhookRouter(t, "hook-secret")

	rec := postUpdate(router, "hook-secret", `{"update_id":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestWebhook_IgnoresNonMessageUpdates(t *testing.T) {
	router, vehicles, _ := newWebhookRouter(t, "hook-secret")

	rec := postUpdate(router, "hook-secret", `{"update_id":7}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	list, _ := vehicles.List(context.Background())
	if len(list) != 0 {
		t.Fatalf("non-message update must not touch the store")
	}
}

func TestEventFromUpdate_CommandParsing(t *testing.T) {
	update := Update{Message: &Message{Chat: Chat{ID: 42}, Text: "/start@fleet_bot now"}}
	ev, ok := eventFromUpdate(update)
	if !ok {
		t.Fatalf("expected event")
	}
	if ev.Kind != bot.KindCommand || ev.Command != "start" {
		t.Fatalf("command parse: %+v", ev)
	}
	if ev.SessionID != "42" {
		t.Fatalf("session id: %q", ev.SessionID)
	}
}
