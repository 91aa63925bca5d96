package script

import "strings"

// Speaker identifies one of the two dialogue voices.
type Speaker string

const (
	SpeakerA Speaker = "A"
	SpeakerB Speaker = "B"
)

// Other returns the opposite speaker.
func (s Speaker) Other() Speaker {
	if s == SpeakerA {
		return SpeakerB
	}
	return SpeakerA
}

// Segment is the atomic speaker-attributed, tag-annotated unit of dialogue.
// Text never contains bracket markup; annotations live in Tags.
type Segment struct {
	Speaker Speaker
	Text    string
	Tags    []string
}

// Line renders the segment back into script form ("Speaker A: [tag] text").
func (s Segment) Line() string {
	var b strings.Builder
	b.WriteString("Speaker ")
	b.WriteString(string(s.Speaker))
	b.WriteString(":")
	for _, tag := range s.Tags {
		b.WriteString(" [")
		b.WriteString(tag)
		b.WriteString("]")
	}
	if s.Text != "" {
		b.WriteString(" ")
		b.WriteString(s.Text)
	}
	return b.String()
}

// Section is one contiguous span of script text produced by a single
// generation call. TailWindow is derived from Text and carries the
// continuity context for the next section.
type Section struct {
	Index       int
	TargetWords int
	Text        string
	TailWindow  string
}

const tailWindowWords = 100

// SetText stores the section text and recomputes the tail window as the
// last ~100 words (or the whole text if shorter).
func (s *Section) SetText(text string) {
	s.Text = text
	words := strings.Fields(text)
	if len(words) > tailWindowWords {
		words = words[len(words)-tailWindowWords:]
	}
	s.TailWindow = strings.Join(words, " ")
}

// WordCount reports the whitespace-separated word count of text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
