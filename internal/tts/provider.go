package tts

import (
	"context"
	"fmt"

	"github.com/jhendrikx/podforge/internal/script"
)

// Chunk is an ordered run of dialogue segments synthesized in one provider
// call. Segments are never split across chunks.
type Chunk struct {
	Index    int
	Segments []script.Segment
}

// Chars is the rendered character size of the chunk, the unit the packing
// budget is measured in.
func (c Chunk) Chars() int {
	total := 0
	for _, seg := range c.Segments {
		total += len(seg.Line()) + 1
	}
	return total
}

// Voice binds a speaker to a provider voice and its delivery speed.
// Speed is the provider-neutral multiplier (1.0 = neutral).
type Voice struct {
	ID    string
	Speed float64
}

// Options carries the per-run synthesis parameters shared by providers.
type Options struct {
	VoiceA   Voice
	VoiceB   Voice
	Language string
}

func (o Options) voiceFor(s script.Speaker) Voice {
	if s == script.SpeakerA {
		return o.VoiceA
	}
	return o.VoiceB
}

// Provider is one text-to-speech backend. RequestPayload exposes the exact
// wire payload for a chunk so it can be captured before the network call.
type Provider interface {
	Name() string
	ArtifactTag() string
	ChunkBudget() int
	RawPCM() bool
	SampleRate() int
	RequestPayload(chunk Chunk, opts Options) (any, error)
	Synthesize(ctx context.Context, chunk Chunk, opts Options) ([]byte, error)
}

// HTTPError is a non-2xx provider response. The status code drives retry
// classification; the body is kept for diagnostics.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("provider returned HTTP %d: %s", e.Status, e.Body)
}
