package bot

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Prompts holds the user-visible reply texts. Deployments localize them
// through a YAML file; unset fields keep the defaults.
type Prompts struct {
	AskName           string `yaml:"ask_name"`
	InvalidName       string `yaml:"invalid_name"`
	Registered        string `yaml:"registered"` // %s is the display name
	UseLocationButton string `yaml:"use_location_button"`
	PositionSaved     string `yaml:"position_saved"`
	RegisterFirst     string `yaml:"register_first"`
	Failure           string `yaml:"failure"`
	LocationButton    string `yaml:"location_button"`
}

// Config defines bot configuration.
type Config struct {
	Prompts Prompts `yaml:"prompts"`
}

// DefaultPrompts returns the built-in reply texts.
func DefaultPrompts() Prompts {
	return Prompts{
		AskName:           "Welcome to the fleet monitor. Please send the identifier of your vehicle (e.g. 'Alfa123').",
		InvalidName:       "That does not look like a valid identifier. Please try again.",
		Registered:        "Identifier '%s' registered. Share your position with the button below, as often as you like.",
		UseLocationButton: "Please use the button below to share your position.",
		PositionSaved:     "Position received and saved. Thank you.",
		RegisterFirst:     "Please register first: send /start and provide your vehicle identifier.",
		Failure:           "Something went wrong on our side. Please try again.",
		LocationButton:    "Share position",
	}
}

// LoadConfig loads bot configuration from yaml, falling back to defaults.
func LoadConfig(path string) (Config, error) {
	cfg := Config{Prompts: DefaultPrompts()}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	overlay := Config{}
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return cfg, err
	}
	cfg.Prompts = mergePrompts(cfg.Prompts, overlay.Prompts)
	return cfg, nil
}

func mergePrompts(base, override Prompts) Prompts {
	if override.AskName != "" {
		base.AskName = override.AskName
	}
	if override.InvalidName != "" {
		base.InvalidName = override.InvalidName
	}
	if override.Registered != "" {
		base.Registered = override.Registered
	}
	if override.UseLocationButton != "" {
		base.UseLocationButton = override.UseLocationButton
	}
	if override.PositionSaved != "" {
		base.PositionSaved = override.PositionSaved
	}
	if override.RegisterFirst != "" {
		base.RegisterFirst = override.RegisterFirst
	}
	if override.Failure != "" {
		base.Failure = override.Failure
	}
	if override.LocationButton != "" {
		base.LocationButton = override.LocationButton
	}
	return base
}
