package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhendrikx/podforge/internal/script"
)

const (
	defaultElevenLabsBaseURL = "https://api.elevenlabs.io"
	defaultElevenLabsModel   = "eleven_v3"
	elevenLabsChunkBudget    = 4500
)

type ElevenLabsConfig struct {
	APIKey  string
	BaseURL string
	ModelID string
	Timeout time.Duration
}

// ElevenLabs synthesizes a whole chunk of dialogue in one request. Delivery
// tags stay inline in the text; the model interprets them natively.
type ElevenLabs struct {
	apiKey     string
	baseURL    string
	modelID    string
	httpClient *http.Client
}

func NewElevenLabs(cfg ElevenLabsConfig) *ElevenLabs {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultElevenLabsBaseURL
	}
	modelID := cfg.ModelID
	if modelID == "" {
		modelID = defaultElevenLabsModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &ElevenLabs{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		modelID:    modelID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (e *ElevenLabs) Name() string        { return "elevenlabs" }
func (e *ElevenLabs) ArtifactTag() string { return "11LB" }
func (e *ElevenLabs) ChunkBudget() int    { return elevenLabsChunkBudget }
func (e *ElevenLabs) RawPCM() bool        { return false }
func (e *ElevenLabs) SampleRate() int     { return 44100 }

type elevenLabsInput struct {
	Text          string                  `json:"text"`
	VoiceID       string                  `json:"voice_id"`
	VoiceSettings *elevenLabsVoiceSetting `json:"voice_settings,omitempty"`
}

type elevenLabsVoiceSetting struct {
	Speed float64 `json:"speed"`
}

type elevenLabsPayload struct {
	Inputs  []elevenLabsInput `json:"inputs"`
	ModelID string            `json:"model_id"`
}

func (e *ElevenLabs) RequestPayload(chunk Chunk, opts Options) (any, error) {
	inputs := make([]elevenLabsInput, 0, len(chunk.Segments))
	for _, seg := range chunk.Segments {
		voice := opts.voiceFor(seg.Speaker)
		if voice.ID == "" {
			return nil, fmt.Errorf("no voice configured for speaker %s", seg.Speaker)
		}
		input := elevenLabsInput{Text: inlineText(seg), VoiceID: voice.ID}
		if voice.Speed > 0 && voice.Speed != 1.0 {
			input.VoiceSettings = &elevenLabsVoiceSetting{Speed: voice.Speed}
		}
		inputs = append(inputs, input)
	}
	return elevenLabsPayload{Inputs: inputs, ModelID: e.modelID}, nil
}

func (e *ElevenLabs) Synthesize(ctx context.Context, chunk Chunk, opts Options) ([]byte, error) {
	payload, err := e.RequestPayload(chunk, opts)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode dialogue payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/v1/text-to-dialogue", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("text-to-dialogue request: %w", err)
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{Status: resp.StatusCode, Body: truncateBody(audio)}
	}
	return audio, nil
}

// inlineText renders a segment for synthesis: tags inline, no speaker label.
func inlineText(seg script.Segment) string {
	var b strings.Builder
	for _, tag := range seg.Tags {
		b.WriteString("[")
		b.WriteString(tag)
		b.WriteString("] ")
	}
	b.WriteString(seg.Text)
	return b.String()
}

func truncateBody(b []byte) string {
	const max = 512
	if len(b) > max {
		b = b[:max]
	}
	return string(b)
}
