package tts

import (
	"testing"

	"github.com/jhendrikx/podforge/internal/script"
)

func TestMapSpeed(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{1.0, 0},
		{1.2, 0.4},
		{0.7, -0.6},
		{0.4, -1},  // clamped
		{1.6, 1},   // clamped
		{0, 0},     // unset means neutral
		{-0.5, 0},  // nonsense means neutral
	}
	for _, tc := range cases {
		got := mapSpeed(tc.in)
		if diff := got - tc.want; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("mapSpeed(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCartesiaEmotionFirstMatchWins(t *testing.T) {
	emotion, ok := cartesiaEmotion([]string{"unknown-tag", "Excited", "sad"})
	if !ok || emotion != "positivity:high" {
		t.Fatalf("cartesiaEmotion() = %q, %v", emotion, ok)
	}
	if _, ok := cartesiaEmotion([]string{"sarcastic"}); ok {
		t.Fatal("unmapped tags must be dropped")
	}
	if _, ok := cartesiaEmotion(nil); ok {
		t.Fatal("no tags means no emotion")
	}
}

func TestCartesiaSegmentPayload(t *testing.T) {
	c := NewCartesia(CartesiaConfig{APIKey: "k"})
	seg := script.Segment{Speaker: script.SpeakerB, Text: "what a result", Tags: []string{"surprised"}}
	opts := Options{
		VoiceA:   Voice{ID: "va", Speed: 1.0},
		VoiceB:   Voice{ID: "vb", Speed: 1.1},
		Language: "en",
	}

	p, err := c.segmentPayload(seg, opts)
	if err != nil {
		t.Fatalf("segmentPayload() error = %v", err)
	}
	if p.Transcript != "what a result" {
		t.Fatalf("transcript = %q", p.Transcript)
	}
	if p.Voice.ID != "vb" || p.Voice.Mode != "id" {
		t.Fatalf("voice = %+v", p.Voice)
	}
	if len(p.Voice.Controls.Emotion) != 1 || p.Voice.Controls.Emotion[0] != "surprise:high" {
		t.Fatalf("emotion = %v, want single surprise:high", p.Voice.Controls.Emotion)
	}
	if p.OutputFormat.Encoding != "pcm_s16le" || p.OutputFormat.Container != "raw" {
		t.Fatalf("output format = %+v", p.OutputFormat)
	}
}

func TestCartesiaSegmentPayloadRequiresVoice(t *testing.T) {
	c := NewCartesia(CartesiaConfig{APIKey: "k"})
	seg := script.Segment{Speaker: script.SpeakerA, Text: "hi"}
	if _, err := c.segmentPayload(seg, Options{}); err == nil {
		t.Fatal("expected error for missing voice")
	}
}

func TestElevenLabsPayloadKeepsTagsInline(t *testing.T) {
	e := NewElevenLabs(ElevenLabsConfig{APIKey: "k"})
	chunk := Chunk{Segments: []script.Segment{
		{Speaker: script.SpeakerA, Text: "no way", Tags: []string{"laughs"}},
		{Speaker: script.SpeakerB, Text: "way"},
	}}
	opts := Options{
		VoiceA: Voice{ID: "va", Speed: 0.9},
		VoiceB: Voice{ID: "vb", Speed: 1.0},
	}

	raw, err := e.RequestPayload(chunk, opts)
	if err != nil {
		t.Fatalf("RequestPayload() error = %v", err)
	}
	p := raw.(elevenLabsPayload)
	if p.ModelID != defaultElevenLabsModel {
		t.Fatalf("model = %q", p.ModelID)
	}
	if len(p.Inputs) != 2 {
		t.Fatalf("inputs = %d, want 2", len(p.Inputs))
	}
	if p.Inputs[0].Text != "[laughs] no way" {
		t.Fatalf("inputs[0].Text = %q, want inline tag", p.Inputs[0].Text)
	}
	if p.Inputs[0].VoiceSettings == nil || p.Inputs[0].VoiceSettings.Speed != 0.9 {
		t.Fatalf("inputs[0].VoiceSettings = %+v, want speed 0.9", p.Inputs[0].VoiceSettings)
	}
	if p.Inputs[1].VoiceSettings != nil {
		t.Fatalf("neutral speed must omit voice settings, got %+v", p.Inputs[1].VoiceSettings)
	}
}
