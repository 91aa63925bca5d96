package generate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jhendrikx/podforge/internal/script"
)

const (
	outlineMaxTokens    = 4000
	transitionMaxTokens = 2000
	translateMaxTokens  = 16000

	creativeTemperature  = 0.8
	faithfulTemperature  = 0.3
	transitionWindowSize = 4
)

// Service runs the script-producing operations on top of a generation
// client: outline, per-section generation, seam smoothing and translation.
type Service struct {
	client Client
	window int
}

func NewService(client Client) *Service {
	return &Service{client: client, window: transitionWindowSize}
}

// Outline produces a numbered episode outline matching the section plan.
func (s *Service) Outline(ctx context.Context, req OutlineRequest) (string, Usage, error) {
	resp, err := s.client.Complete(ctx, Request{
		Prompt:      buildOutlinePrompt(req),
		MaxTokens:   outlineMaxTokens,
		Temperature: creativeTemperature,
	})
	if err != nil {
		return "", Usage{}, fmt.Errorf("outline: %w", err)
	}
	return strings.TrimSpace(resp.Text), resp.Usage, nil
}

// Sections generates every section of the plan in order. Each call carries
// the tail window of the previous section as continuity context. The whole
// run aborts on the first failed section; partial scripts are not kept.
func (s *Service) Sections(ctx context.Context, plan script.Plan, req SectionRequest) ([]script.Section, Usage, error) {
	var (
		sections []script.Section
		usage    Usage
		tail     string
	)
	for i := 0; i < plan.NumSections; i++ {
		sectionReq := req
		sectionReq.Index = i
		sectionReq.Total = plan.NumSections
		sectionReq.TargetWords = plan.WordsPerSection
		sectionReq.PreviousTail = tail

		resp, err := s.client.Complete(ctx, Request{
			Prompt:      buildSectionPrompt(sectionReq),
			MaxTokens:   sectionMaxTokens(plan.WordsPerSection),
			Temperature: creativeTemperature,
		})
		if err != nil {
			return nil, usage, fmt.Errorf("section %d/%d: %w", i+1, plan.NumSections, err)
		}
		usage.Add(resp.Usage)

		text := strings.TrimSpace(resp.Text)
		if text == "" {
			return nil, usage, fmt.Errorf("section %d/%d: empty completion", i+1, plan.NumSections)
		}

		section := script.Section{Index: i, TargetWords: plan.WordsPerSection}
		section.SetText(text)
		sections = append(sections, section)
		tail = section.TailWindow

		log.Printf("generated section %d/%d (%d words, target %d)",
			i+1, plan.NumSections, script.WordCount(text), plan.WordsPerSection)
	}
	return sections, usage, nil
}

// sectionMaxTokens leaves headroom above the word target so the model is
// never truncated mid-dialogue.
func sectionMaxTokens(targetWords int) int {
	return int(float64(targetWords)*1.5) + 500
}

// SmoothTransitions joins generated sections into one script, rewriting a
// small window of dialogue around each seam. When the rewrite fails the
// seam falls back to plain concatenation of the original windows.
func (s *Service) SmoothTransitions(ctx context.Context, sections []script.Section, language string) (string, Usage, error) {
	if len(sections) == 0 {
		return "", Usage{}, errors.New("no sections to join")
	}

	parsed := make([][]script.Segment, len(sections))
	for i := range sections {
		segs, err := script.ParseDialogue(sections[i].Text)
		if err != nil {
			return "", Usage{}, fmt.Errorf("section %d: %w", i+1, err)
		}
		parsed[i] = segs
	}
	if len(sections) == 1 {
		return joinLines(parsed[0]), Usage{}, nil
	}

	var (
		parts []string
		usage Usage
	)
	for i, segs := range parsed {
		if kept := keptSlice(segs, i, len(parsed), s.window); len(kept) > 0 {
			parts = append(parts, joinLines(kept))
		}
		if i == len(parsed)-1 {
			continue
		}

		before := tailWindow(segs, s.window)
		after := headWindow(parsed[i+1], s.window)
		seam, seamUsage := s.smoothSeam(ctx, before, after, language)
		usage.Add(seamUsage)
		parts = append(parts, seam)
	}
	return strings.Join(parts, "\n\n"), usage, nil
}

// keptSlice is the portion of a section's segments that stays verbatim:
// everything outside the seam windows consumed by the neighbors.
func keptSlice(segs []script.Segment, i, total, window int) []script.Segment {
	switch {
	case total == 1:
		return segs
	case i == 0:
		if len(segs) <= window {
			return nil
		}
		return segs[:len(segs)-window]
	case i == total-1:
		if len(segs) <= window {
			return nil
		}
		return segs[window:]
	default:
		if len(segs) <= 2*window {
			return nil
		}
		return segs[window : len(segs)-window]
	}
}

func (s *Service) smoothSeam(ctx context.Context, before, after []script.Segment, language string) (string, Usage) {
	naive := joinLines(append(append([]script.Segment{}, before...), after...))
	if len(before) == 0 || len(after) == 0 {
		return naive, Usage{}
	}

	collision := before[len(before)-1].Speaker == after[0].Speaker
	resp, err := s.client.Complete(ctx, Request{
		Prompt:      buildTransitionPrompt(joinLines(before), joinLines(after), collision, language),
		MaxTokens:   transitionMaxTokens,
		Temperature: creativeTemperature,
	})
	if err != nil {
		log.Printf("transition rewrite failed, keeping plain join: %v", err)
		return naive, Usage{}
	}

	rewritten := strings.TrimSpace(resp.Text)
	segs, err := script.ParseDialogue(rewritten)
	if err != nil {
		log.Printf("transition rewrite unusable, keeping plain join: %v", err)
		return naive, resp.Usage
	}
	// The rewrite must leave the seam strictly alternating; a rewrite that
	// still collides gets its same-speaker runs merged into one utterance.
	return joinLines(mergeSameSpeakerRuns(segs)), resp.Usage
}

// mergeSameSpeakerRuns collapses adjacent segments by the same speaker into
// a single segment, concatenating text and tags in order.
func mergeSameSpeakerRuns(segs []script.Segment) []script.Segment {
	var out []script.Segment
	for _, seg := range segs {
		if n := len(out); n > 0 && out[n-1].Speaker == seg.Speaker {
			out[n-1].Text = strings.TrimSpace(out[n-1].Text + " " + seg.Text)
			out[n-1].Tags = append(append([]string{}, out[n-1].Tags...), seg.Tags...)
			continue
		}
		out = append(out, seg)
	}
	return out
}

// Translate renders a finished script into another language, preserving
// speaker labels and bracketed delivery tags.
func (s *Service) Translate(ctx context.Context, scriptText, targetLanguage string) (string, Usage, error) {
	if strings.TrimSpace(targetLanguage) == "" {
		return "", Usage{}, errors.New("target language is required")
	}
	resp, err := s.client.Complete(ctx, Request{
		Prompt:      buildTranslatePrompt(scriptText, targetLanguage),
		MaxTokens:   translateMaxTokens,
		Temperature: faithfulTemperature,
	})
	if err != nil {
		return "", Usage{}, fmt.Errorf("translate to %s: %w", targetLanguage, err)
	}
	translated := strings.TrimSpace(resp.Text)
	if _, err := script.ParseDialogue(translated); err != nil {
		return "", resp.Usage, fmt.Errorf("translate to %s: %w", targetLanguage, err)
	}
	return translated, resp.Usage, nil
}

func joinLines(segs []script.Segment) string {
	lines := make([]string, 0, len(segs))
	for _, seg := range segs {
		lines = append(lines, seg.Line())
	}
	return strings.Join(lines, "\n")
}

func tailWindow(segs []script.Segment, n int) []script.Segment {
	if len(segs) <= n {
		return segs
	}
	return segs[len(segs)-n:]
}

func headWindow(segs []script.Segment, n int) []script.Segment {
	if len(segs) <= n {
		return segs
	}
	return segs[:n]
}
