package script

import (
	"regexp"
	"strings"
)

var (
	speakerLabelScanRe = regexp.MustCompile(`(?i)\*{0,2}Speaker [AB]\*{0,2}\s*:`)

	reasoningBlockRes = []*regexp.Regexp{
		regexp.MustCompile(`(?s)<search_quality_check>.*?</search_quality_check>`),
		regexp.MustCompile(`(?s)<search_quality_score>.*?</search_quality_score>`),
		regexp.MustCompile(`(?s)<search>.*?</search>`),
		regexp.MustCompile(`(?s)<thinking>.*?</thinking>`),
	}

	// Several textual variants of the sources marker the generation service
	// appends despite instructions.
	sourcesMarkerRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\n\s*SOURCES FOUND:`),
		regexp.MustCompile(`(?i)\n\s*\*\*SOURCES FOUND:\*\*`),
		regexp.MustCompile(`(?i)\n\s*##\s*SOURCES FOUND:`),
		regexp.MustCompile(`(?i)\n\s*\*?\*?Sources:`),
	}

	separatorLineRe      = regexp.MustCompile(`(?m)^-{3,}\s*$`)
	markdownHeaderRe     = regexp.MustCompile(`(?m)^#+\s+.*$`)
	stageDirectionRe     = regexp.MustCompile(`(?m)^\*[^\[\n]*\*$`)
	wordCountFooterRe    = regexp.MustCompile(`(?im)^\s*\*?\*?Word count:?\s*~?\d+\s*words?\*?\*?\s*$`)
	scriptLengthFooterRe = regexp.MustCompile(`(?im)^\s*\*?\*?(?:Total|Approximate)?\s*(?:script\s+)?(?:length|count):?\s*~?\d+\s*words?\*?\*?\s*$`)
	blankRunRe           = regexp.MustCompile(`\n{3,}`)
)

// Normalize strips non-dialogue content from generated script text: model
// preamble before the first speaker label, reasoning/search markup, the
// sources block, separators, headers, stage directions and word-count
// footers. The transform is a fixed point: normalizing already-normalized
// text returns it unchanged.
func Normalize(raw string) string {
	text := raw

	// Everything before the first speaker label is model meta-commentary.
	if loc := speakerLabelScanRe.FindStringIndex(text); loc != nil {
		text = text[loc[0]:]
	}

	for _, re := range reasoningBlockRes {
		text = re.ReplaceAllString(text, "")
	}

	// Sources truncation must run before separator removal: a "---" line
	// frequently precedes the sources block, and stripping it first would
	// leave the marker unreachable by position-sensitive callers.
	if idx := SourcesMarkerIndex(text); idx >= 0 {
		text = text[:idx]
	}

	text = separatorLineRe.ReplaceAllString(text, "")
	text = markdownHeaderRe.ReplaceAllString(text, "")
	text = stageDirectionRe.ReplaceAllString(text, "")
	text = wordCountFooterRe.ReplaceAllString(text, "")
	text = scriptLengthFooterRe.ReplaceAllString(text, "")

	text = blankRunRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// SourcesMarkerIndex reports the byte offset of the first sources/citation
// marker, or -1 when none is present. Callers use it both for truncation
// and as a post-normalization safety net: citation text must never reach
// synthesized audio.
func SourcesMarkerIndex(text string) int {
	idx := -1
	for _, re := range sourcesMarkerRes {
		if loc := re.FindStringIndex(text); loc != nil {
			if idx < 0 || loc[0] < idx {
				idx = loc[0]
			}
		}
	}
	return idx
}
