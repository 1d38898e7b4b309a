// Package bot implements the conversational registration flow as an
// explicit state machine over the session store, independent of any chat
// transport's dispatch mechanism.
package bot

import (
	"strings"
	"time"

	"fleet-monitor/internal/session"
)

// EventKind classifies an inbound transport update.
type EventKind int

const (
	// KindCommand is a structured command such as /start.
	KindCommand EventKind = iota
	// KindText is free-form text.
	KindText
	// KindLocation is a location payload.
	KindLocation
)

// Location is a transport-provided coordinate pair.
type Location struct {
	Latitude  float64
	Longitude float64
}

// Event is one inbound update, already stripped of transport detail.
type Event struct {
	SessionID string
	Kind      EventKind
	Command   string
	Text      string
	Location  *Location
	// At is the transport-supplied capture time; zero when the transport
	// did not provide one.
	At time.Time
}

// EffectKind names the side effect an outcome requires.
type EffectKind int

const (
	// EffectNone requires no durable work.
	EffectNone EffectKind = iota
	// EffectRegister binds the session to the proposed display name.
	EffectRegister
	// EffectRecord appends the event's location for the bound vehicle.
	EffectRecord
)

// PromptID names the reply the handler should send.
type PromptID int

const (
	PromptNone PromptID = iota
	PromptAskName
	PromptInvalidName
	PromptRegistered
	PromptUseLocationButton
	PromptPositionSaved
	PromptRegisterFirst
)

// Outcome is the result of one transition: the state to commit once the
// effect succeeds, the effect itself, and the reply to send.
type Outcome struct {
	State     session.State
	SetState  bool
	Effect    EffectKind
	Name      string
	Prompt    PromptID
	// ShowLocationKeyboard attaches the location-request button to the
	// reply; RemoveKeyboard clears any previous keyboard.
	ShowLocationKeyboard bool
	RemoveKeyboard       bool
}

// Next is the pure transition function of the registration state machine.
// It never errs and never reaches a terminal state: invalid input re-prompts
// in place, so a session cannot be stranded.
func Next(state session.State, known bool, ev Event) Outcome {
	if ev.Kind == KindCommand {
		if ev.Command == "start" {
			return Outcome{
				State:          session.State{Phase: session.PhaseAwaitingUsername},
				SetState:       true,
				Prompt:         PromptAskName,
				RemoveKeyboard: true,
			}
		}
		// Unknown command: re-prompt for whatever the session is waiting on.
		return rePrompt(state, known)
	}

	if !known {
		return Outcome{Prompt: PromptRegisterFirst}
	}

	switch state.Phase {
	case session.PhaseAwaitingUsername:
		if ev.Kind == KindLocation {
			return Outcome{State: state, SetState: true, Prompt: PromptAskName}
		}
		name := strings.TrimSpace(ev.Text)
		if name == "" {
			return Outcome{State: state, SetState: true, Prompt: PromptInvalidName}
		}
		return Outcome{
			State:                session.State{Phase: session.PhaseRegistered, Name: name},
			SetState:             true,
			Effect:               EffectRegister,
			Name:                 name,
			Prompt:               PromptRegistered,
			ShowLocationKeyboard: true,
		}

	case session.PhaseRegistered:
		if ev.Kind == KindLocation && ev.Location != nil {
			return Outcome{
				State:    state,
				SetState: true,
				Effect:   EffectRecord,
				Name:     state.Name,
				Prompt:   PromptPositionSaved,
			}
		}
		// Plain text never re-registers; the user must /start over.
		return Outcome{State: state, SetState: true, Prompt: PromptUseLocationButton, ShowLocationKeyboard: true}
	}

	return Outcome{Prompt: PromptRegisterFirst}
}

func rePrompt(state session.State, known bool) Outcome {
	if !known {
		return Outcome{Prompt: PromptRegisterFirst}
	}
	if state.Phase == session.PhaseAwaitingUsername {
		return Outcome{State: state, SetState: true, Prompt: PromptAskName}
	}
	return Outcome{State: state, SetState: true, Prompt: PromptUseLocationButton, ShowLocationKeyboard: true}
}
