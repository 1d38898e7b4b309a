package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fleet-monitor/internal/bot"
)

func TestClient_SendMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{}})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "test-token")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	reply := bot.Reply{Text: "hello", RequestLocationLabel: "Share position"}
	if err := client.Send(context.Background(), "42", reply); err != nil {
		t.Fatalf("send: %v", err)
	}

	if gotPath != "/bottest-token/sendMessage" {
		t.Fatalf("path: got %q", gotPath)
	}
	if gotBody["chat_id"] != "42" || gotBody["text"] != "hello" {
		t.Fatalf("body: %+v", gotBody)
	}
	markup, ok := gotBody["reply_markup"].(map[string]any)
	if !ok {
		t.Fatalf("missing reply_markup: %+v", gotBody)
	}
	if _, ok := markup["keyboard"]; !ok {
		t.Fatalf("missing location keyboard: %+v", markup)
	}
}

func TestClient_SendRemoveKeyboard(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": map[string]any{}})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "test-token")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Send(context.Background(), "42", bot.Reply{Text: "hi", RemoveKeyboard: true}); err != nil {
		t.Fatalf("send: %v", err)
	}

	markup, ok := gotBody["reply_markup"].(map[string]any)
	if !ok {
		t.Fatalf("missing reply_markup: %+v", gotBody)
	}
	if markup["remove_keyboard"] != true {
		t.Fatalf("expected remove_keyboard: %+v", markup)
	}
}

func TestClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": false, "description": "chat not found"})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "test-token")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.Send(context.Background(), "42", bot.Reply{Text: "hi"}); err == nil {
		t.Fatalf("expected error from ok=false response")
	}
}

func TestClient_SetWebhook(t *testing.T) {
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": true})
	}))
	defer server.Close()

	client, err := NewClient(server.URL, "test-token")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if err := client.SetWebhook(context.Background(), "https://example.com/telegram/webhook/s3cret"); err != nil {
		t.Fatalf("set webhook: %v", err)
	}
	if gotBody["url"] != "https://example.com/telegram/webhook/s3cret" {
		t.Fatalf("url: %+v", gotBody)
	}
}
