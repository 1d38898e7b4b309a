// fake_telegram is an in-memory stand-in for the Telegram Bot API. Point
// TELEGRAM_API_BASE at it to run the bot flow locally without a real token.
package main

import (
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type fakeTelegramServer struct {
	start    time.Time
	latency  time.Duration
	failRate float64

	mu         sync.Mutex
	byChat     map[string]int64
	byMethod   map[string]int64
	messages   []sentMessage
	webhookURL string
	totalCalls int64
}

type sentMessage struct {
	ChatID string          `json:"chat_id"`
	Text   string          `json:"text"`
	Markup json.RawMessage `json:"reply_markup,omitempty"`
	At     time.Time       `json:"at"`
}

func main() {
	addr := getenvDefault("FAKE_TG_ADDR", ":18081")
	latencyMs := getenvIntDefault("FAKE_TG_LATENCY_MS", 0)
	failRate := getenvFloatDefault("FAKE_TG_FAIL_RATE", 0)

	srv := &fakeTelegramServer{
		start:    time.Now().UTC(),
		latency:  time.Duration(latencyMs) * time.Millisecond,
		failRate: failRate,
		byChat:   make(map[string]int64),
		byMethod: make(map[string]int64),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/stats", srv.handleStats)
	mux.HandleFunc("/messages", srv.handleMessages)
	mux.HandleFunc("/bot", srv.handleBot)
	mux.HandleFunc("/", srv.handleBot)

	log.Printf("fake telegram server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatal(err)
	}
}

func (s *fakeTelegramServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *fakeTelegramServer) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload := map[string]any{
		"started_at":  s.start.Format(time.RFC3339),
		"total":       atomic.LoadInt64(&s.totalCalls),
		"by_chat":     s.byChat,
		"by_method":   s.byMethod,
		"webhook_url": s.webhookURL,
	}
	writeJSON(w, payload)
}

func (s *fakeTelegramServer) handleMessages(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, s.messages)
}

// handleBot serves /bot<token>/<method> the way the real API does.
func (s *fakeTelegramServer) handleBot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !strings.HasPrefix(r.URL.Path, "/bot") {
		http.NotFound(w, r)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/bot")
	slash := strings.Index(rest, "/")
	if slash < 0 {
		http.NotFound(w, r)
		return
	}
	method := rest[slash+1:]

	if s.latency > 0 {
		time.Sleep(s.latency)
	}
	atomic.AddInt64(&s.totalCalls, 1)
	s.mu.Lock()
	s.byMethod[method]++
	s.mu.Unlock()

	if s.failRate > 0 && rand.Float64() < s.failRate {
		writeJSON(w, map[string]any{"ok": false, "description": "fake failure"})
		return
	}

	switch method {
	case "sendMessage":
		var payload struct {
			ChatID      json.RawMessage `json:"chat_id"`
			Text        string          `json:"text"`
			ReplyMarkup json.RawMessage `json:"reply_markup"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, map[string]any{"ok": false, "description": "invalid json"})
			return
		}
		chatID := strings.Trim(string(payload.ChatID), `"`)
		s.mu.Lock()
		s.byChat[chatID]++
		s.messages = append(s.messages, sentMessage{
			ChatID: chatID,
			Text:   payload.Text,
			Markup: payload.ReplyMarkup,
			At:     time.Now().UTC(),
		})
		s.mu.Unlock()
		writeJSON(w, map[string]any{"ok": true, "result": map[string]any{"message_id": atomic.LoadInt64(&s.totalCalls)}})
	case "setWebhook":
		var payload struct {
			URL string `json:"url"`
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		s.mu.Lock()
		s.webhookURL = payload.URL
		s.mu.Unlock()
		writeJSON(w, map[string]any{"ok": true, "result": true})
	case "deleteWebhook":
		s.mu.Lock()
		s.webhookURL = ""
		s.mu.Unlock()
		writeJSON(w, map[string]any{"ok": true, "result": true})
	default:
		writeJSON(w, map[string]any{"ok": false, "description": "method not found"})
	}
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvFloatDefault(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
