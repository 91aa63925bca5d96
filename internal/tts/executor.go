package tts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jhendrikx/podforge/internal/audio"
	"github.com/jhendrikx/podforge/internal/reliability"
	"github.com/jhendrikx/podforge/internal/script"
)

const (
	defaultAttempts    = 3
	defaultBackoffBase = 2 * time.Second
)

type ExecutorConfig struct {
	Attempts    int
	BackoffBase time.Duration
	DebugDir    string // empty disables request artifacts
}

// Executor drives chunked synthesis against one provider: chunk packing,
// pre-request payload artifacts, retry with linear backoff and in-order
// audio assembly.
type Executor struct {
	provider Provider
	cfg      ExecutorConfig
	sleep    func(ctx context.Context, d time.Duration) error
}

// Result is the assembled audio plus run accounting.
type Result struct {
	Audio      []byte
	RawPCM     bool
	SampleRate int
	Chunks     int
	Retries    int
	Artifacts  []string
}

func NewExecutor(provider Provider, cfg ExecutorConfig) *Executor {
	if cfg.Attempts <= 0 {
		cfg.Attempts = defaultAttempts
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	return &Executor{provider: provider, cfg: cfg, sleep: sleepContext}
}

// Run synthesizes the full segment list. Chunks are processed strictly in
// order and the run aborts on the first chunk that exhausts its attempts
// or fails fatally; partial audio is discarded by the caller.
func (e *Executor) Run(ctx context.Context, segs []script.Segment, opts Options) (Result, error) {
	res := Result{RawPCM: e.provider.RawPCM(), SampleRate: e.provider.SampleRate()}

	chunks := ChunkSegments(segs, e.provider.ChunkBudget())
	res.Chunks = len(chunks)
	if len(chunks) == 0 {
		return res, errors.New("no segments to synthesize")
	}

	for _, chunk := range chunks {
		if path, err := e.writeArtifact(chunk, opts); err != nil {
			log.Printf("chunk %d: artifact not written: %v", chunk.Index, err)
		} else if path != "" {
			res.Artifacts = append(res.Artifacts, path)
		}

		chunkAudio, retries, err := e.synthesizeChunk(ctx, chunk, opts)
		res.Retries += retries
		if err != nil {
			return res, fmt.Errorf("chunk %d/%d: %w", chunk.Index+1, len(chunks), err)
		}

		if res.RawPCM {
			res.Audio = audio.AppendPCM16LE(res.Audio, chunkAudio, res.SampleRate, audio.DefaultCrossfade)
		} else {
			res.Audio = append(res.Audio, chunkAudio...)
		}
		log.Printf("synthesized chunk %d/%d (%d segments, %d bytes)",
			chunk.Index+1, len(chunks), len(chunk.Segments), len(chunkAudio))
	}
	return res, nil
}

func (e *Executor) synthesizeChunk(ctx context.Context, chunk Chunk, opts Options) ([]byte, int, error) {
	retries := 0
	for attempt := 1; ; attempt++ {
		out, err := e.provider.Synthesize(ctx, chunk, opts)
		if err == nil {
			return out, retries, nil
		}
		if !retryable(err) {
			return nil, retries, err
		}
		if attempt >= e.cfg.Attempts {
			return nil, retries, fmt.Errorf("after %d attempts: %w", attempt, err)
		}

		retries++
		wait := reliability.LinearBackoff(attempt, e.cfg.BackoffBase)
		log.Printf("chunk %d attempt %d failed, retrying in %s: %v", chunk.Index, attempt, wait, err)
		if err := e.sleep(ctx, wait); err != nil {
			return nil, retries, err
		}
	}
}

// writeArtifact captures the exact request payload before the network call
// so a failed run leaves the evidence of what was sent.
func (e *Executor) writeArtifact(chunk Chunk, opts Options) (string, error) {
	if e.cfg.DebugDir == "" {
		return "", nil
	}
	payload, err := e.provider.RequestPayload(chunk, opts)
	if err != nil {
		return "", err
	}
	artifact := map[string]any{
		"chunk":    chunk.Index,
		"chars":    chunk.Chars(),
		"segments": len(chunk.Segments),
		"provider": e.provider.Name(),
		"payload":  payload,
	}
	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.cfg.DebugDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(e.cfg.DebugDir, fmt.Sprintf("chunk_%d_%s.json", chunk.Index, e.provider.ArtifactTag()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func retryable(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return reliability.IsRetryableHTTPStatus(httpErr.Status)
	}
	return reliability.IsRetryableNetworkError(err)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
