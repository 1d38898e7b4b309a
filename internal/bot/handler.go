package bot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fleet-monitor/internal/fleet/application"
	fleet "fleet-monitor/internal/fleet/domain"
	"fleet-monitor/internal/observability/metrics"
	"fleet-monitor/internal/session"
)

// Reply is a transport-neutral outbound message.
type Reply struct {
	Text                 string
	RequestLocationLabel string
	RemoveKeyboard       bool
}

// Sender delivers replies to a session's conversation.
type Sender interface {
	Send(ctx context.Context, sessionID string, reply Reply) error
}

// Handler applies inbound events to the registration state machine and
// executes the resulting effects. One event per session at a time: the
// whole critical section (state read, durable writes, state write) runs
// under a per-session lock, so concurrent deliveries for the same session
// cannot lose transitions or race vehicle creation.
type Handler struct {
	sessions *session.Store
	locks    *session.KeyedMutex
	service  *application.TrackingService
	sender   Sender
	prompts  Prompts
	logger   *zap.SugaredLogger
}

// NewHandler constructs a conversational handler.
func NewHandler(sessions *session.Store, service *application.TrackingService, sender Sender, prompts Prompts, logger *zap.SugaredLogger) (*Handler, error) {
	if sessions == nil {
		return nil, errors.New("bot handler: nil session store")
	}
	if service == nil {
		return nil, errors.New("bot handler: nil tracking service")
	}
	if sender == nil {
		return nil, errors.New("bot handler: nil sender")
	}
	if logger == nil {
		return nil, errors.New("bot handler: nil logger")
	}
	return &Handler{
		sessions: sessions,
		locks:    session.NewKeyedMutex(),
		service:  service,
		sender:   sender,
		prompts:  prompts,
		logger:   logger,
	}, nil
}

// Handle processes one inbound event to completion.
func (h *Handler) Handle(ctx context.Context, ev Event) error {
	if ev.SessionID == "" {
		return fleet.ErrEmptySessionID
	}
	metrics.IncBotUpdate(kindLabel(ev.Kind))

	unlock := h.locks.Lock(ev.SessionID)
	defer unlock()

	state, known := h.sessions.Get(ev.SessionID)
	out := Next(state, known, ev)

	if err := h.applyEffect(ctx, ev, &out); err != nil {
		// Effect failures keep the current state and re-prompt; the state
		// machine never strands a session.
		if fleet.IsValidation(err) {
			h.logger.Infow("bot input rejected", "session_id", ev.SessionID, "error", err)
			return h.send(ctx, ev.SessionID, Reply{Text: h.prompts.InvalidName})
		}
		h.logger.Errorw("bot effect failed", "session_id", ev.SessionID, "error", err)
		return h.send(ctx, ev.SessionID, Reply{Text: h.prompts.Failure})
	}

	if out.SetState {
		h.sessions.Set(ev.SessionID, out.State)
	}
	return h.send(ctx, ev.SessionID, h.reply(out))
}

func (h *Handler) applyEffect(ctx context.Context, ev Event, out *Outcome) error {
	switch out.Effect {
	case EffectRegister:
		_, err := h.service.Register(ctx, ev.SessionID, out.Name)
		return err
	case EffectRecord:
		if ev.Location == nil {
			return fleet.ErrNonFiniteCoordinate
		}
		start := time.Now()
		_, err := h.service.Record(ctx, ev.SessionID, out.Name, ev.Location.Latitude, ev.Location.Longitude, ev.At)
		result := metrics.ResultSuccess
		if err != nil {
			result = metrics.ResultError
		}
		metrics.ObserveIngest(metrics.SourceBot, result, time.Since(start))
		return err
	default:
		return nil
	}
}

func (h *Handler) reply(out Outcome) Reply {
	reply := Reply{RemoveKeyboard: out.RemoveKeyboard}
	if out.ShowLocationKeyboard {
		reply.RequestLocationLabel = h.prompts.LocationButton
	}
	switch out.Prompt {
	case PromptAskName:
		reply.Text = h.prompts.AskName
	case PromptInvalidName:
		reply.Text = h.prompts.InvalidName
	case PromptRegistered:
		reply.Text = fmt.Sprintf(h.prompts.Registered, out.Name)
	case PromptUseLocationButton:
		reply.Text = h.prompts.UseLocationButton
	case PromptPositionSaved:
		reply.Text = h.prompts.PositionSaved
	case PromptRegisterFirst:
		reply.Text = h.prompts.RegisterFirst
	}
	return reply
}

func (h *Handler) send(ctx context.Context, sessionID string, reply Reply) error {
	if reply.Text == "" {
		return nil
	}
	if err := h.sender.Send(ctx, sessionID, reply); err != nil {
		h.logger.Warnw("bot reply failed", "session_id", sessionID, "error", err)
		return err
	}
	return nil
}

func kindLabel(kind EventKind) string {
	switch kind {
	case KindCommand:
		return "command"
	case KindText:
		return "text"
	case KindLocation:
		return "location"
	default:
		return "unknown"
	}
}
