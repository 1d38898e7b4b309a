package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"fleet-monitor/internal/fleet/application"
	"fleet-monitor/internal/fleet/infrastructure/memory"
	"fleet-monitor/internal/session"
)

type recordingSender struct {
	mu      sync.Mutex
	replies []Reply
}

func (s *recordingSender) Send(ctx context.Context, sessionID string, reply Reply) error {
	_ = ctx
	_ = sessionID
	s.mu.Lock()
	s.replies = append(s.replies, reply)
	s.mu.Unlock()
	return nil
}

func (s *recordingSender) last(t *testing.T) Reply {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.replies) == 0 {
		t.Fatalf("no reply sent")
	}
	return s.replies[len(s.replies)-1]
}

func newTestHandler(t *testing.T) (*Handler, *recordingSender, *application.TrackingService, *memory.VehicleRepository, *memory.PositionRepository) {
	t.Helper()
	vehicles := memory.NewVehicleRepository()
	positions := memory.NewPositionRepository(vehicles)
	service, err := application.NewTrackingService(vehicles, positions, zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("new tracking service: %v", err)
	}
	sender := &recordingSender{}
	handler, err := NewHandler(session.NewStore(), service, sender, DefaultPrompts(), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("new handler: %v", err)
	}
	return handler, sender, service, vehicles, positions
}

func TestHandler_RegistrationFlow(t *testing.T) {
	handler, sender, service, _, _ := newTestHandler(t)
	ctx := context.Background()
	base := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

	if err := handler.Handle(ctx, Event{SessionID: "42", Kind: KindCommand, Command: "start"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if reply := sender.last(t); !reply.RemoveKeyboard || reply.Text != DefaultPrompts().AskName {
		t.Fatalf("start reply: %+v", reply)
	}

	if err := handler.Handle(ctx, Event{SessionID: "42", Kind: KindText, Text: "Alfa123"}); err != nil {
		t.Fatalf("name: %v", err)
	}
	reply := sender.last(t)
	if !strings.Contains(reply.Text, "Alfa123") {
		t.Fatalf("registration reply must echo the name: %q", reply.Text)
	}
	if reply.RequestLocationLabel == "" {
		t.Fatalf("registration reply must carry the location keyboard")
	}

	// Reports arriving out of order come back sorted on the read side.
	for _, offset := range []int{3, 1, 2} {
		ev := Event{
			SessionID: "42",
			Kind:      KindLocation,
			Location:  &Location{Latitude: 48.1, Longitude: 11.5},
			At:        base.Add(time.Duration(offset) * time.Minute),
		}
		if err := handler.Handle(ctx, ev); err != nil {
			t.Fatalf("location: %v", err)
		}
		if reply := sender.last(t); reply.Text != DefaultPrompts().PositionSaved {
			t.Fatalf("location reply: %q", reply.Text)
		}
	}

	_, positions, err := service.Trajectory(ctx, 1)
	if err != nil {
		t.Fatalf("trajectory: %v", err)
	}
	if len(positions) != 3 {
		t.Fatalf("expected 3 positions, got %d", len(positions))
	}
	for i, want := range []int{1, 2, 3} {
		if !positions[i].CapturedAt.Equal(base.Add(time.Duration(want) * time.Minute)) {
			t.Fatalf("position %d out of order: %v", i, positions[i].CapturedAt)
		}
	}
}

func TestHandler_EmptyNameRePrompts(t *testing.T) {
	handler, sender, _, vehicles, _ := newTestHandler(t)
	ctx := context.Background()

	if err := handler.Handle(ctx, Event{SessionID: "42", Kind: KindCommand, Command: "start"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := handler.Handle(ctx, Event{SessionID: "42", Kind: KindText, Text: "   "}); err != nil {
		t.Fatalf("blank name: %v", err)
	}
	if reply := sender.last(t); reply.Text != DefaultPrompts().InvalidName {
		t.Fatalf("blank name reply: %q", reply.Text)
	}

	list, err := vehicles.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("blank name must not create a vehicle")
	}

	// Session stays in awaiting_username and accepts a valid retry.
	if err := handler.Handle(ctx, Event{SessionID: "42", Kind: KindText, Text: "Alfa123"}); err != nil {
		t.Fatalf("retry: %v", err)
	}
	list, _ = vehicles.List(ctx)
	if len(list) != 1 {
		t.Fatalf("retry must register, got %d vehicles", len(list))
	}
}

func TestHandler_UnregisteredLocation(t *testing.T) {
	handler, sender, _, _, _ := newTestHandler(t)

	ev := Event{SessionID: "42", Kind: KindLocation, Location: &Location{Latitude: 48.1, Longitude: 11.5}}
	if err := handler.Handle(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if reply := sender.last(t); reply.Text != DefaultPrompts().RegisterFirst {
		t.Fatalf("reply: %q", reply.Text)
	}
}

func TestHandler_ConcurrentSessions(t *testing.T) {
	handler, _, service, vehicles, _ := newTestHandler(t)
	ctx := context.Background()
	base := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

	const sessions = 8
	var wg sync.WaitGroup
	wg.Add(sessions)
	for i := 0; i < sessions; i++ {
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("%d", 100+i)
			if err := handler.Handle(ctx, Event{SessionID: id, Kind: KindCommand, Command: "start"}); err != nil {
				t.Errorf("start %s: %v", id, err)
				return
			}
			if err := handler.Handle(ctx, Event{SessionID: id, Kind: KindText, Text: "vehicle-" + id}); err != nil {
				t.Errorf("name %s: %v", id, err)
				return
			}
			ev := Event{
				SessionID: id,
				Kind:      KindLocation,
				Location:  &Location{Latitude: 48.1, Longitude: 11.5},
				At:        base,
			}
			if err := handler.Handle(ctx, ev); err != nil {
				t.Errorf("location %s: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	list, err := vehicles.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != sessions {
		t.Fatalf("expected %d vehicles, got %d", sessions, len(list))
	}
	stats, err := service.StatsAll(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, row := range stats {
		if row.Count != 1 {
			t.Fatalf("vehicle %d: got %d positions", row.VehicleID, row.Count)
		}
	}
}

func TestHandler_EmptySessionID(t *testing.T) {
	handler, _, _, _, _ := newTestHandler(t)
	if err := handler.Handle(context.Background(), Event{Kind: KindCommand, Command: "start"}); err == nil {
		t.Fatalf("empty session id must error")
	}
}
