package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Delivery speed multipliers outside this range sound unnatural on every
// backend, so loaded values are clamped into it.
const (
	MinSpeed = 0.7
	MaxSpeed = 1.2
)

// VoiceSpec names one provider voice and its delivery speed (1.0 = neutral).
type VoiceSpec struct {
	ID    string  `mapstructure:"id"`
	Speed float64 `mapstructure:"speed"`
}

// VoicePair holds the two host voices for one provider and language.
type VoicePair struct {
	A VoiceSpec `mapstructure:"a"`
	B VoiceSpec `mapstructure:"b"`
}

// Voices is the voice casting table: provider -> language -> host voices.
type Voices struct {
	Providers map[string]map[string]VoicePair `mapstructure:"providers"`
}

// Lookup resolves the voice pair for a provider and language, falling back
// to the provider's "default" entry when the language has no casting.
func (v Voices) Lookup(provider, language string) (VoicePair, error) {
	languages, ok := v.Providers[provider]
	if !ok {
		return VoicePair{}, fmt.Errorf("no voices configured for provider %q", provider)
	}
	if pair, ok := languages[language]; ok && language != "" {
		return pair, nil
	}
	if pair, ok := languages["default"]; ok {
		return pair, nil
	}
	return VoicePair{}, fmt.Errorf("no voices configured for provider %q language %q", provider, language)
}

// LoadVoices reads the voice casting file. If path is empty the standard
// search order applies: ./voices.yaml, ./configs/voices.yaml. A missing
// file is not an error; the caller gets an empty table.
func LoadVoices(path string) (Voices, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("voices")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && path == "" {
			return Voices{}, nil
		}
		return Voices{}, fmt.Errorf("reading voices file: %w", err)
	}

	var voices Voices
	if err := v.Unmarshal(&voices); err != nil {
		return Voices{}, fmt.Errorf("unmarshalling voices file: %w", err)
	}

	for provider, languages := range voices.Providers {
		for language, pair := range languages {
			pair.A.Speed = clampSpeed(pair.A.Speed)
			pair.B.Speed = clampSpeed(pair.B.Speed)
			languages[language] = pair
		}
		voices.Providers[provider] = languages
	}
	return voices, nil
}

func clampSpeed(s float64) float64 {
	if s == 0 {
		return 1.0
	}
	if s < MinSpeed {
		return MinSpeed
	}
	if s > MaxSpeed {
		return MaxSpeed
	}
	return s
}
