package script

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoDialogue is returned when a script contains no recognizable
// speaker-labeled lines. The script needs manual fixing or regeneration;
// there is nothing to synthesize.
var ErrNoDialogue = errors.New("no Speaker A:/Speaker B: labels found in script")

var (
	speakerLineRe = regexp.MustCompile(`(?i)^\*{0,2}speaker\s+([ab])\*{0,2}\s*[:\-]\s*\*{0,2}\s*(.*)$`)
	annotationRe  = regexp.MustCompile(`\[([^\]\n]+)\]`)
)

// ParseDialogue converts normalized script text into ordered dialogue
// segments. Lines matching a speaker label open a new segment; following
// lines that are neither labels nor headers/separators continue it.
// Leading bracket tags apply to the whole segment; a tag appearing after
// text has accumulated splits the utterance into a new segment for the
// same speaker.
func ParseDialogue(text string) ([]Segment, error) {
	var (
		segments   []Segment
		current    Speaker
		inSpeaker  bool
		rawBuilder strings.Builder
	)

	flush := func() {
		if !inSpeaker {
			return
		}
		segments = append(segments, splitAnnotated(current, rawBuilder.String())...)
		rawBuilder.Reset()
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if m := speakerLineRe.FindStringSubmatch(line); m != nil {
			flush()
			if strings.EqualFold(m[1], "a") {
				current = SpeakerA
			} else {
				current = SpeakerB
			}
			inSpeaker = true
			rawBuilder.WriteString(m[2])
			continue
		}

		if !inSpeaker {
			continue
		}
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "---") {
			continue
		}
		rawBuilder.WriteString(" ")
		rawBuilder.WriteString(line)
	}
	flush()

	if len(segments) == 0 {
		return nil, ErrNoDialogue
	}
	return segments, nil
}

// splitAnnotated extracts bracket tags from one speaker's raw utterance.
// Tags seen before any text become leading tags; a mid-utterance tag closes
// the accumulated text as one segment and starts a fresh segment carrying
// the new tag. Segments with empty text after extraction are discarded.
func splitAnnotated(speaker Speaker, raw string) []Segment {
	var (
		out  []Segment
		cur  = Segment{Speaker: speaker}
		text strings.Builder
	)

	emit := func() {
		clean := strings.Join(strings.Fields(text.String()), " ")
		text.Reset()
		if clean == "" {
			return
		}
		cur.Text = clean
		out = append(out, cur)
	}

	last := 0
	for _, loc := range annotationRe.FindAllStringSubmatchIndex(raw, -1) {
		text.WriteString(raw[last:loc[0]])
		last = loc[1]
		tag := strings.TrimSpace(raw[loc[2]:loc[3]])

		if strings.TrimSpace(text.String()) == "" {
			cur.Tags = append(cur.Tags, tag)
			continue
		}
		emit()
		cur = Segment{Speaker: speaker, Tags: []string{tag}}
	}
	text.WriteString(raw[last:])
	emit()

	return out
}
