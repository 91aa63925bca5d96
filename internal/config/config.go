package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the podcast generation service.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	AllowAnyOrigin bool

	OutputDir string
	DebugDir  string

	GenerationAPIKey  string
	GenerationBaseURL string
	GenerationModel   string

	TTSProvider      string
	ElevenLabsAPIKey string
	CartesiaAPIKey   string

	WordsPerMinute    int
	WordsPerCall      int
	OvershootFactor   float64
	SynthesisAttempts int
	SynthesisBackoff  time.Duration

	VoicesFile string

	DatabaseURL string
}

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:          envOrDefault("APP_BIND_ADDR", ":8080"),
		MetricsNamespace:  envOrDefault("APP_METRICS_NAMESPACE", "podforge"),
		AllowAnyOrigin:    false,
		OutputDir:         envOrDefault("APP_OUTPUT_DIR", "output"),
		DebugDir:          envOrDefault("APP_DEBUG_DIR", "output/debug"),
		GenerationAPIKey:  stringsTrimSpace("GENERATION_API_KEY"),
		GenerationBaseURL: stringsTrimSpace("GENERATION_BASE_URL"),
		GenerationModel:   stringsTrimSpace("GENERATION_MODEL"),
		TTSProvider:       envOrDefault("TTS_PROVIDER", "elevenlabs"),
		ElevenLabsAPIKey:  stringsTrimSpace("ELEVENLABS_API_KEY"),
		CartesiaAPIKey:    stringsTrimSpace("CARTESIA_API_KEY"),
		WordsPerMinute:    150,
		WordsPerCall:      500,
		OvershootFactor:   1.4,
		SynthesisAttempts: 3,
		SynthesisBackoff:  2 * time.Second,
		VoicesFile:        envOrDefault("APP_VOICES_FILE", ""),
		DatabaseURL:       stringsTrimSpace("DATABASE_URL"),
		ShutdownTimeout:   15 * time.Second,
	}
	if cfg.GenerationAPIKey == "" {
		cfg.GenerationAPIKey = stringsTrimSpace("OPENAI_API_KEY")
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.SynthesisBackoff, err = durationFromEnv("APP_SYNTHESIS_BACKOFF", cfg.SynthesisBackoff)
	if err != nil {
		return Config{}, err
	}
	cfg.AllowAnyOrigin, err = boolFromEnv("APP_ALLOW_ANY_ORIGIN", cfg.AllowAnyOrigin)
	if err != nil {
		return Config{}, err
	}
	cfg.WordsPerMinute, err = intFromEnv("APP_WORDS_PER_MINUTE", cfg.WordsPerMinute)
	if err != nil {
		return Config{}, err
	}
	cfg.WordsPerCall, err = intFromEnv("APP_WORDS_PER_CALL", cfg.WordsPerCall)
	if err != nil {
		return Config{}, err
	}
	cfg.OvershootFactor, err = floatFromEnv("APP_OVERSHOOT_FACTOR", cfg.OvershootFactor)
	if err != nil {
		return Config{}, err
	}
	cfg.SynthesisAttempts, err = intFromEnv("APP_SYNTHESIS_ATTEMPTS", cfg.SynthesisAttempts)
	if err != nil {
		return Config{}, err
	}

	if cfg.WordsPerMinute <= 0 {
		return Config{}, fmt.Errorf("APP_WORDS_PER_MINUTE must be positive")
	}
	if cfg.WordsPerCall <= 0 {
		return Config{}, fmt.Errorf("APP_WORDS_PER_CALL must be positive")
	}
	if cfg.OvershootFactor <= 1 {
		return Config{}, fmt.Errorf("APP_OVERSHOOT_FACTOR must be greater than 1")
	}
	if cfg.SynthesisAttempts <= 0 {
		return Config{}, fmt.Errorf("APP_SYNTHESIS_ATTEMPTS must be positive")
	}
	switch cfg.TTSProvider {
	case "elevenlabs", "cartesia":
	default:
		return Config{}, fmt.Errorf("TTS_PROVIDER must be elevenlabs or cartesia, got %q", cfg.TTSProvider)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func intFromEnv(key string, fallback int) (int, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return n, nil
}

func floatFromEnv(key string, fallback float64) (float64, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return f, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
