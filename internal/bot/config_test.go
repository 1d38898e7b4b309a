package bot

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Prompts != DefaultPrompts() {
		t.Fatalf("empty path must yield defaults")
	}
}

func TestLoadConfig_Overlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot.yaml")
	content := "prompts:\n  ask_name: \"Wie heisst dein Fahrzeug?\"\n  location_button: \"Position teilen\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Prompts.AskName != "Wie heisst dein Fahrzeug?" {
		t.Fatalf("ask_name not overridden: %q", cfg.Prompts.AskName)
	}
	if cfg.Prompts.LocationButton != "Position teilen" {
		t.Fatalf("location_button not overridden: %q", cfg.Prompts.LocationButton)
	}
	// Unset fields keep their defaults.
	if cfg.Prompts.PositionSaved != DefaultPrompts().PositionSaved {
		t.Fatalf("position_saved must keep default: %q", cfg.Prompts.PositionSaved)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("missing file must error")
	}
}
