package bot

import (
	"testing"

	"fleet-monitor/internal/session"
)

func TestNext_StartCommand(t *testing.T) {
	out := Next(session.State{}, false, Event{SessionID: "42", Kind: KindCommand, Command: "start"})

	if !out.SetState || out.State.Phase != session.PhaseAwaitingUsername {
		t.Fatalf("start must enter awaiting_username: %+v", out)
	}
	if out.Prompt != PromptAskName {
		t.Fatalf("prompt: got %v want %v", out.Prompt, PromptAskName)
	}
	if out.Effect != EffectNone {
		t.Fatalf("start must not carry an effect")
	}
	if !out.RemoveKeyboard {
		t.Fatalf("start must clear a stale keyboard")
	}
}

func TestNext_StartRestartsRegisteredSession(t *testing.T) {
	state := session.State{Phase: session.PhaseRegistered, Name: "Alfa123"}
	out := Next(state, true, Event{SessionID: "42", Kind: KindCommand, Command: "start"})

	if out.State.Phase != session.PhaseAwaitingUsername {
		t.Fatalf("restart must re-enter awaiting_username: %+v", out)
	}
}

func TestNext_AwaitingUsername(t *testing.T) {
	state := session.State{Phase: session.PhaseAwaitingUsername}

	out := Next(state, true, Event{SessionID: "42", Kind: KindText, Text: "  "})
	if out.Prompt != PromptInvalidName || out.Effect != EffectNone {
		t.Fatalf("blank name must re-prompt without effect: %+v", out)
	}
	if out.State.Phase != session.PhaseAwaitingUsername {
		t.Fatalf("blank name must keep the phase")
	}

	out = Next(state, true, Event{SessionID: "42", Kind: KindText, Text: " Alfa123 "})
	if out.Effect != EffectRegister || out.Name != "Alfa123" {
		t.Fatalf("valid name must register trimmed: %+v", out)
	}
	if out.State.Phase != session.PhaseRegistered || out.State.Name != "Alfa123" {
		t.Fatalf("valid name must advance the phase: %+v", out.State)
	}
	if !out.ShowLocationKeyboard {
		t.Fatalf("registration reply must attach the location keyboard")
	}

	out = Next(state, true, Event{SessionID: "42", Kind: KindLocation, Location: &Location{Latitude: 48, Longitude: 11}})
	if out.Effect != EffectNone || out.Prompt != PromptAskName {
		t.Fatalf("location before a name must re-ask: %+v", out)
	}
}

func TestNext_Registered(t *testing.T) {
	state := session.State{Phase: session.PhaseRegistered, Name: "Alfa123"}

	out := Next(state, true, Event{SessionID: "42", Kind: KindLocation, Location: &Location{Latitude: 48, Longitude: 11}})
	if out.Effect != EffectRecord || out.Name != "Alfa123" {
		t.Fatalf("location must record for the bound name: %+v", out)
	}
	if out.Prompt != PromptPositionSaved {
		t.Fatalf("prompt: got %v want %v", out.Prompt, PromptPositionSaved)
	}
	if out.State.Phase != session.PhaseRegistered {
		t.Fatalf("recording must not change the phase")
	}

	out = Next(state, true, Event{SessionID: "42", Kind: KindText, Text: "hello"})
	if out.Effect != EffectNone || out.Prompt != PromptUseLocationButton {
		t.Fatalf("plain text must nudge toward the button: %+v", out)
	}
	if out.State.Name != "Alfa123" {
		t.Fatalf("plain text must not rename: %+v", out.State)
	}
}

func TestNext_UnknownSession(t *testing.T) {
	out := Next(session.State{}, false, Event{SessionID: "42", Kind: KindLocation, Location: &Location{Latitude: 48, Longitude: 11}})
	if out.Effect != EffectNone || out.Prompt != PromptRegisterFirst {
		t.Fatalf("unknown session must be told to register: %+v", out)
	}
	if out.SetState {
		t.Fatalf("unknown session must not gain state")
	}
}

func TestNext_UnknownCommandRePrompts(t *testing.T) {
	state := session.State{Phase: session.PhaseAwaitingUsername}
	out := Next(state, true, Event{SessionID: "42", Kind: KindCommand, Command: "help"})
	if out.Prompt != PromptAskName || out.Effect != EffectNone {
		t.Fatalf("unknown command must re-prompt in place: %+v", out)
	}

	registered := session.State{Phase: session.PhaseRegistered, Name: "Alfa123"}
	out = Next(registered, true, Event{SessionID: "42", Kind: KindCommand, Command: "help"})
	if out.Prompt != PromptUseLocationButton {
		t.Fatalf("registered unknown command: %+v", out)
	}
}
