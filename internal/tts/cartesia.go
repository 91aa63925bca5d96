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

	"github.com/jhendrikx/podforge/internal/audio"
	"github.com/jhendrikx/podforge/internal/script"
)

const (
	defaultCartesiaBaseURL = "https://api.cartesia.ai"
	defaultCartesiaModel   = "sonic-english"
	cartesiaAPIVersion     = "2024-06-10"
	cartesiaSampleRate     = 44100
	cartesiaChunkBudget    = 4500
)

type CartesiaConfig struct {
	APIKey  string
	BaseURL string
	ModelID string
	Timeout time.Duration
}

// Cartesia synthesizes one request per segment and joins the raw PCM with
// a short crossfade. Delivery tags are not understood inline; they map to
// the experimental emotion controls instead.
type Cartesia struct {
	apiKey     string
	baseURL    string
	modelID    string
	httpClient *http.Client
}

func NewCartesia(cfg CartesiaConfig) *Cartesia {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultCartesiaBaseURL
	}
	modelID := cfg.ModelID
	if modelID == "" {
		modelID = defaultCartesiaModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Cartesia{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		modelID:    modelID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Cartesia) Name() string        { return "cartesia" }
func (c *Cartesia) ArtifactTag() string { return "CRTS" }
func (c *Cartesia) ChunkBudget() int    { return cartesiaChunkBudget }
func (c *Cartesia) RawPCM() bool        { return true }
func (c *Cartesia) SampleRate() int     { return cartesiaSampleRate }

type cartesiaControls struct {
	Speed   float64  `json:"speed"`
	Emotion []string `json:"emotion,omitempty"`
}

type cartesiaVoice struct {
	Mode     string            `json:"mode"`
	ID       string            `json:"id"`
	Controls *cartesiaControls `json:"__experimental_controls,omitempty"`
}

type cartesiaOutputFormat struct {
	Container  string `json:"container"`
	Encoding   string `json:"encoding"`
	SampleRate int    `json:"sample_rate"`
}

type cartesiaPayload struct {
	ModelID      string               `json:"model_id"`
	Transcript   string               `json:"transcript"`
	Voice        cartesiaVoice        `json:"voice"`
	OutputFormat cartesiaOutputFormat `json:"output_format"`
	Language     string               `json:"language,omitempty"`
}

// mapSpeed converts the neutral 0.7..1.2 multiplier onto the provider's
// -1..1 control range.
func mapSpeed(speed float64) float64 {
	if speed <= 0 {
		return 0
	}
	mapped := (speed - 1.0) * 2.0
	if mapped < -1 {
		return -1
	}
	if mapped > 1 {
		return 1
	}
	return mapped
}

func (c *Cartesia) segmentPayload(seg script.Segment, opts Options) (cartesiaPayload, error) {
	voice := opts.voiceFor(seg.Speaker)
	if voice.ID == "" {
		return cartesiaPayload{}, fmt.Errorf("no voice configured for speaker %s", seg.Speaker)
	}

	controls := &cartesiaControls{Speed: mapSpeed(voice.Speed)}
	if emotion, ok := cartesiaEmotion(seg.Tags); ok {
		controls.Emotion = []string{emotion}
	}
	return cartesiaPayload{
		ModelID:    c.modelID,
		Transcript: seg.Text,
		Voice:      cartesiaVoice{Mode: "id", ID: voice.ID, Controls: controls},
		OutputFormat: cartesiaOutputFormat{
			Container:  "raw",
			Encoding:   "pcm_s16le",
			SampleRate: cartesiaSampleRate,
		},
		Language: opts.Language,
	}, nil
}

func (c *Cartesia) RequestPayload(chunk Chunk, opts Options) (any, error) {
	payloads := make([]cartesiaPayload, 0, len(chunk.Segments))
	for _, seg := range chunk.Segments {
		p, err := c.segmentPayload(seg, opts)
		if err != nil {
			return nil, err
		}
		payloads = append(payloads, p)
	}
	return payloads, nil
}

func (c *Cartesia) Synthesize(ctx context.Context, chunk Chunk, opts Options) ([]byte, error) {
	var pcm []byte
	for i, seg := range chunk.Segments {
		payload, err := c.segmentPayload(seg, opts)
		if err != nil {
			return nil, err
		}
		segAudio, err := c.post(ctx, payload)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		pcm = audio.AppendPCM16LE(pcm, segAudio, cartesiaSampleRate, audio.DefaultCrossfade)
	}
	return pcm, nil
}

func (c *Cartesia) post(ctx context.Context, payload cartesiaPayload) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode synthesis payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tts/bytes", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Cartesia-Version", cartesiaAPIVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{Status: resp.StatusCode, Body: truncateBody(out)}
	}
	return out, nil
}
