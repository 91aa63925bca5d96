package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jhendrikx/podforge/internal/audio"
	"github.com/jhendrikx/podforge/internal/config"
	"github.com/jhendrikx/podforge/internal/generate"
	"github.com/jhendrikx/podforge/internal/observability"
	"github.com/jhendrikx/podforge/internal/script"
	"github.com/jhendrikx/podforge/internal/store"
	"github.com/jhendrikx/podforge/internal/tts"
)

// Request describes one episode run. Script, when set, resumes from an
// existing script and skips generation entirely.
type Request struct {
	Topic           string
	Style           string
	Language        string
	DurationMinutes int
	Research        string
	TranslateTo     string
	Script          string
	ScriptOnly      bool
}

type Settings struct {
	WordsPerMinute  int
	WordsPerCall    int
	OvershootFactor float64
	OutputDir       string
	DebugDir        string
	Attempts        int
	BackoffBase     time.Duration
}

// EventFunc receives the run record after every persisted stage change.
type EventFunc func(run store.Run)

// Pipeline drives an episode run end to end: plan, outline, sections,
// transition smoothing, normalization, parsing and synthesis.
type Pipeline struct {
	gen      *generate.Service
	provider tts.Provider
	runs     store.Store
	metrics  *observability.Metrics
	voices   config.Voices
	settings Settings
	events   EventFunc
}

func New(gen *generate.Service, provider tts.Provider, runs store.Store, metrics *observability.Metrics, voices config.Voices, settings Settings) *Pipeline {
	if settings.WordsPerMinute <= 0 {
		settings.WordsPerMinute = 150
	}
	if settings.WordsPerCall <= 0 {
		settings.WordsPerCall = 500
	}
	if settings.OvershootFactor <= 1 {
		settings.OvershootFactor = 1.4
	}
	return &Pipeline{
		gen:      gen,
		provider: provider,
		runs:     runs,
		metrics:  metrics,
		voices:   voices,
		settings: settings,
	}
}

// OnEvent registers the stage-change listener. Must be set before Run.
func (p *Pipeline) OnEvent(fn EventFunc) { p.events = fn }

// Run executes one episode run, persisting progress after every stage.
// The returned run carries the final state even when an error is returned.
func (p *Pipeline) Run(ctx context.Context, run store.Run, req Request) (store.Run, error) {
	p.metrics.ActiveRuns.Inc()
	defer p.metrics.ActiveRuns.Dec()

	run, err := p.execute(ctx, run, req)
	if err != nil {
		run.Status = store.StatusFailed
		run.Error = err.Error()
		p.persist(ctx, &run, "failed")
		return run, err
	}
	run.Status = store.StatusCompleted
	p.persist(ctx, &run, "done")
	return run, nil
}

func (p *Pipeline) execute(ctx context.Context, run store.Run, req Request) (store.Run, error) {
	scriptText := strings.TrimSpace(req.Script)
	if scriptText == "" {
		var err error
		scriptText, err = p.generateScript(ctx, &run, req)
		if err != nil {
			return run, err
		}
	} else {
		log.Printf("run %s: resuming from provided script (%d words)", run.ID, script.WordCount(scriptText))
	}

	run.Status = store.StatusGenerating
	p.stage(ctx, &run, "normalize")
	normalized := script.Normalize(scriptText)
	if idx := script.SourcesMarkerIndex(normalized); idx >= 0 {
		normalized = strings.TrimSpace(normalized[:idx])
	}

	if req.TranslateTo != "" {
		p.stage(ctx, &run, "translate")
		translated, usage, err := p.gen.Translate(ctx, normalized, req.TranslateTo)
		if err != nil {
			return run, err
		}
		p.addUsage(&run, usage)
		normalized = script.Normalize(translated)
	}

	for _, warning := range script.Lint(normalized) {
		log.Printf("run %s: script lint: %s", run.ID, warning)
	}

	segments, err := script.ParseDialogue(normalized)
	if err != nil {
		return run, fmt.Errorf("parse script: %w", err)
	}

	run.Script = normalized
	p.metrics.ScriptWords.Observe(float64(script.WordCount(normalized)))
	p.metrics.RunEvents.WithLabelValues("script", "ok").Inc()
	if req.ScriptOnly {
		return run, nil
	}

	run.Status = store.StatusSynthesizing
	p.stage(ctx, &run, "synthesize")
	result, err := p.synthesize(ctx, run.ID, segments, req.Language)
	run.Chunks = result.Chunks
	run.Retries += result.Retries
	if err != nil {
		p.metrics.RunEvents.WithLabelValues("synthesize", "error").Inc()
		return run, err
	}
	p.metrics.RunEvents.WithLabelValues("synthesize", "ok").Inc()

	path, err := p.writeAudio(run.ID, result)
	if err != nil {
		return run, err
	}
	run.AudioPath = path
	return run, nil
}

func (p *Pipeline) generateScript(ctx context.Context, run *store.Run, req Request) (string, error) {
	if strings.TrimSpace(req.Topic) == "" {
		return "", fmt.Errorf("topic is required")
	}
	minutes := req.DurationMinutes
	if minutes <= 0 {
		minutes = 10
	}

	run.Status = store.StatusGenerating
	p.stage(ctx, run, "plan")
	plan, err := script.PlanSections(minutes*p.settings.WordsPerMinute, p.settings.WordsPerCall, p.settings.OvershootFactor)
	if err != nil {
		return "", err
	}
	run.NumSections = plan.NumSections
	run.TargetWords = plan.TotalWords()
	log.Printf("run %s: %d sections of ~%d words", run.ID, plan.NumSections, plan.WordsPerSection)

	p.stage(ctx, run, "outline")
	outline, usage, err := p.gen.Outline(ctx, generate.OutlineRequest{
		Topic:           req.Topic,
		Style:           req.Style,
		Language:        req.Language,
		DurationMinutes: minutes,
		Plan:            plan,
		Research:        req.Research,
	})
	if err != nil {
		return "", err
	}
	p.addUsage(run, usage)

	p.stage(ctx, run, "sections")
	sections, usage, err := p.gen.Sections(ctx, plan, generate.SectionRequest{
		Topic:         req.Topic,
		Outline:       outline,
		Style:         req.Style,
		Language:      req.Language,
		ProviderNotes: providerNotes(p.provider, minutes),
	})
	p.addUsage(run, usage)
	if err != nil {
		p.metrics.RunEvents.WithLabelValues("sections", "error").Inc()
		return "", err
	}
	p.metrics.RunEvents.WithLabelValues("sections", "ok").Inc()

	p.stage(ctx, run, "transitions")
	joined, usage, err := p.gen.SmoothTransitions(ctx, sections, req.Language)
	p.addUsage(run, usage)
	if err != nil {
		return "", err
	}
	return joined, nil
}

func (p *Pipeline) synthesize(ctx context.Context, runID string, segments []script.Segment, language string) (tts.Result, error) {
	pair, err := p.voices.Lookup(p.provider.Name(), language)
	if err != nil {
		return tts.Result{}, err
	}

	debugDir := p.settings.DebugDir
	if debugDir != "" {
		debugDir = filepath.Join(debugDir, runID)
	}
	exec := tts.NewExecutor(p.provider, tts.ExecutorConfig{
		Attempts:    p.settings.Attempts,
		BackoffBase: p.settings.BackoffBase,
		DebugDir:    debugDir,
	})

	started := time.Now()
	result, err := exec.Run(ctx, segments, tts.Options{
		VoiceA:   tts.Voice{ID: pair.A.ID, Speed: pair.A.Speed},
		VoiceB:   tts.Voice{ID: pair.B.ID, Speed: pair.B.Speed},
		Language: language,
	})
	if result.Chunks > 0 {
		p.metrics.ObserveChunkLatency(time.Since(started) / time.Duration(result.Chunks))
	}
	for i := 0; i < result.Retries; i++ {
		p.metrics.SynthesisRetries.Inc()
	}
	if err != nil {
		var httpErr *tts.HTTPError
		code := "network"
		if errors.As(err, &httpErr) {
			code = strconv.Itoa(httpErr.Status)
		}
		p.metrics.ProviderErrors.WithLabelValues(p.provider.Name(), code).Inc()
	}
	return result, err
}

func (p *Pipeline) writeAudio(runID string, result tts.Result) (string, error) {
	if err := os.MkdirAll(p.settings.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	if result.RawPCM {
		path := filepath.Join(p.settings.OutputDir, fmt.Sprintf("episode_%s.wav", runID))
		if err := audio.WriteWAVPCM16LEFile(path, result.Audio, result.SampleRate); err != nil {
			return "", fmt.Errorf("write wav: %w", err)
		}
		return path, nil
	}
	path := filepath.Join(p.settings.OutputDir, fmt.Sprintf("episode_%s.mp3", runID))
	if err := os.WriteFile(path, result.Audio, 0o644); err != nil {
		return "", fmt.Errorf("write audio: %w", err)
	}
	return path, nil
}

func (p *Pipeline) addUsage(run *store.Run, usage generate.Usage) {
	run.InputTokens += usage.InputTokens
	run.OutputTokens += usage.OutputTokens
	p.metrics.AddTokens(usage.InputTokens, usage.OutputTokens)
}

func (p *Pipeline) stage(ctx context.Context, run *store.Run, stage string) {
	p.persist(ctx, run, stage)
}

func (p *Pipeline) persist(ctx context.Context, run *store.Run, stage string) {
	run.Stage = stage
	if err := p.runs.UpdateRun(ctx, *run); err != nil {
		log.Printf("run %s: persist stage %q: %v", run.ID, stage, err)
	}
	if p.events != nil {
		p.events(*run)
	}
}
