package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jhendrikx/podforge/internal/config"
	"github.com/jhendrikx/podforge/internal/generate"
	"github.com/jhendrikx/podforge/internal/httpapi"
	"github.com/jhendrikx/podforge/internal/observability"
	"github.com/jhendrikx/podforge/internal/pipeline"
	"github.com/jhendrikx/podforge/internal/store"
	"github.com/jhendrikx/podforge/internal/tts"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	metrics := observability.NewMetrics(cfg.MetricsNamespace)

	ctx := context.Background()
	runs, err := store.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("run store init failed: %v", err)
	}
	defer runs.Close()
	if cfg.DatabaseURL != "" {
		log.Printf("run store: postgres")
	} else {
		log.Printf("run store: in-memory")
	}

	genClient, err := generate.NewOpenAIClient(generate.OpenAIConfig{
		APIKey:  cfg.GenerationAPIKey,
		BaseURL: cfg.GenerationBaseURL,
		Model:   cfg.GenerationModel,
	})
	if err != nil {
		log.Fatalf("generation client init failed: %v", err)
	}

	var provider tts.Provider
	switch cfg.TTSProvider {
	case "elevenlabs":
		if strings.TrimSpace(cfg.ElevenLabsAPIKey) == "" {
			log.Fatalf("TTS_PROVIDER=elevenlabs but ELEVENLABS_API_KEY is not set")
		}
		provider = tts.NewElevenLabs(tts.ElevenLabsConfig{APIKey: cfg.ElevenLabsAPIKey})
	case "cartesia":
		if strings.TrimSpace(cfg.CartesiaAPIKey) == "" {
			log.Fatalf("TTS_PROVIDER=cartesia but CARTESIA_API_KEY is not set")
		}
		provider = tts.NewCartesia(tts.CartesiaConfig{APIKey: cfg.CartesiaAPIKey})
	}
	log.Printf("tts provider: %s", provider.Name())

	voices, err := config.LoadVoices(cfg.VoicesFile)
	if err != nil {
		log.Fatalf("voices file error: %v", err)
	}

	p := pipeline.New(generate.NewService(genClient), provider, runs, metrics, voices, pipeline.Settings{
		WordsPerMinute:  cfg.WordsPerMinute,
		WordsPerCall:    cfg.WordsPerCall,
		OvershootFactor: cfg.OvershootFactor,
		OutputDir:       cfg.OutputDir,
		DebugDir:        cfg.DebugDir,
		Attempts:        cfg.SynthesisAttempts,
		BackoffBase:     cfg.SynthesisBackoff,
	})

	api := httpapi.New(cfg, runs, p, metrics)
	p.OnEvent(api.PublishRunEvent)

	httpServer := &http.Server{
		Addr:    cfg.BindAddr,
		Handler: api.Router(),
	}

	go func() {
		log.Printf("server listening on %s", cfg.BindAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Printf("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = httpServer.Close()
	}

	log.Printf("shutdown complete")
}
