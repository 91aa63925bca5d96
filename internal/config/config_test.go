package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":8080" {
		t.Fatalf("BindAddr = %q", cfg.BindAddr)
	}
	if cfg.WordsPerCall != 500 || cfg.OvershootFactor != 1.4 {
		t.Fatalf("section defaults = %d/%v", cfg.WordsPerCall, cfg.OvershootFactor)
	}
	if cfg.SynthesisAttempts != 3 {
		t.Fatalf("SynthesisAttempts = %d", cfg.SynthesisAttempts)
	}
}

func TestLoadRejectsBadProvider(t *testing.T) {
	t.Setenv("TTS_PROVIDER", "espeak")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoadRejectsBadOvershoot(t *testing.T) {
	t.Setenv("APP_OVERSHOOT_FACTOR", "0.9")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for overshoot <= 1")
	}
}

const voicesYAML = `providers:
  elevenlabs:
    default:
      a: {id: "voice-aaa", speed: 1.0}
      b: {id: "voice-bbb", speed: 0.95}
  cartesia:
    en:
      a: {id: "cart-a", speed: 2.5}
      b: {id: "cart-b"}
`

func writeVoicesFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voices.yaml")
	if err := os.WriteFile(path, []byte(voicesYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadVoicesClampsSpeeds(t *testing.T) {
	voices, err := LoadVoices(writeVoicesFile(t))
	if err != nil {
		t.Fatalf("LoadVoices() error = %v", err)
	}

	pair, err := voices.Lookup("cartesia", "en")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if pair.A.Speed != MaxSpeed {
		t.Fatalf("A.Speed = %v, want clamped to %v", pair.A.Speed, MaxSpeed)
	}
	if pair.B.Speed != 1.0 {
		t.Fatalf("B.Speed = %v, want neutral default", pair.B.Speed)
	}
}

func TestLookupFallsBackToDefault(t *testing.T) {
	voices, err := LoadVoices(writeVoicesFile(t))
	if err != nil {
		t.Fatalf("LoadVoices() error = %v", err)
	}

	pair, err := voices.Lookup("elevenlabs", "de")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if pair.A.ID != "voice-aaa" {
		t.Fatalf("A.ID = %q", pair.A.ID)
	}

	if _, err := voices.Lookup("cartesia", "de"); err == nil {
		t.Fatal("expected error when neither language nor default is cast")
	}
}

func TestLoadVoicesMissingFileIsEmpty(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	voices, err := LoadVoices("")
	if err != nil {
		t.Fatalf("LoadVoices() error = %v", err)
	}
	if len(voices.Providers) != 0 {
		t.Fatalf("Providers = %v, want empty", voices.Providers)
	}
}
