package generate

import (
	"fmt"
	"strings"

	"github.com/jhendrikx/podforge/internal/script"
)

const formatRules = `Format requirements:
- Write ONLY dialogue lines, each starting with "Speaker A:" or "Speaker B:".
- Strictly alternate speakers; never give the same speaker two lines in a row.
- Do not include headings, section titles, separators, stage directions or word counts.
- Do not include a sources or references list.
- Keep every utterance natural spoken language, not written prose.`

type OutlineRequest struct {
	Topic           string
	Style           string
	Language        string
	DurationMinutes int
	Plan            script.Plan
	Research        string
}

func buildOutlinePrompt(req OutlineRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Plan a two-host podcast episode about: %s\n\n", req.Topic)
	fmt.Fprintf(&b, "The episode runs roughly %d minutes and will be written in %d parts of about %d words each.\n",
		req.DurationMinutes, req.Plan.NumSections, req.Plan.WordsPerSection)
	if req.Style != "" {
		fmt.Fprintf(&b, "Tone and style: %s\n", req.Style)
	}
	if req.Language != "" {
		fmt.Fprintf(&b, "The episode is in %s.\n", req.Language)
	}
	if req.Research != "" {
		fmt.Fprintf(&b, "\nBackground material to draw on:\n%s\n", req.Research)
	}
	fmt.Fprintf(&b, "\nProduce a numbered outline with exactly %d parts. ", req.Plan.NumSections)
	b.WriteString("For each part give a short title and 2-4 bullet points of what the hosts cover. ")
	b.WriteString("Order the parts so the episode opens with a hook and closes with a wrap-up. ")
	b.WriteString("Output the outline only, no preamble.")
	return b.String()
}

type SectionRequest struct {
	Index         int
	Total         int
	TargetWords   int
	Topic         string
	Outline       string
	Style         string
	Language      string
	PreviousTail  string
	ProviderNotes string
}

func buildSectionPrompt(req SectionRequest) string {
	var b strings.Builder
	switch {
	case req.Index == 0:
		fmt.Fprintf(&b, "Write part 1 of %d of a two-host podcast conversation about: %s\n", req.Total, req.Topic)
		b.WriteString("This is the opening. Have the hosts greet listeners, introduce the topic and hook interest.\n")
	case req.Index == req.Total-1:
		fmt.Fprintf(&b, "Write the final part (%d of %d) of a two-host podcast conversation about: %s\n",
			req.Index+1, req.Total, req.Topic)
		b.WriteString("This is the closing. Wrap up the discussion, land the key takeaways and sign off.\n")
	default:
		fmt.Fprintf(&b, "Write part %d of %d of a two-host podcast conversation about: %s\n",
			req.Index+1, req.Total, req.Topic)
		b.WriteString("This is a middle part. Do NOT greet listeners or wrap up; continue the conversation mid-flow.\n")
	}

	fmt.Fprintf(&b, "\nWrite at least %d words of dialogue for this part. Longer is fine, shorter is not.\n", req.TargetWords)
	if req.Style != "" {
		fmt.Fprintf(&b, "Tone and style: %s\n", req.Style)
	}
	if req.Language != "" {
		fmt.Fprintf(&b, "Write the dialogue in %s.\n", req.Language)
	}
	if req.Outline != "" {
		fmt.Fprintf(&b, "\nEpisode outline, cover only the material for this part:\n%s\n", req.Outline)
	}
	if req.PreviousTail != "" {
		fmt.Fprintf(&b, "\nThe previous part ended like this; continue from it without repeating:\n...%s\n", req.PreviousTail)
	}
	b.WriteString("\n")
	b.WriteString(formatRules)
	if req.ProviderNotes != "" {
		b.WriteString("\n\n")
		b.WriteString(req.ProviderNotes)
	}
	b.WriteString("\n\nOutput the dialogue only.")
	return b.String()
}

func buildTransitionPrompt(before, after string, collision bool, language string) string {
	var b strings.Builder
	b.WriteString("Below are the last lines of one podcast segment and the first lines of the next. ")
	b.WriteString("Rewrite them into a single smooth stretch of conversation so the seam is inaudible.\n")
	if collision {
		b.WriteString("The same host speaks on both sides of the seam. Either merge those lines into one utterance or insert a short natural reaction from the other host between them.\n")
	}
	if language != "" {
		fmt.Fprintf(&b, "Keep the dialogue in %s.\n", language)
	}
	fmt.Fprintf(&b, "\nEnd of previous segment:\n%s\n\nStart of next segment:\n%s\n\n", before, after)
	b.WriteString("Preserve the content and any bracketed delivery tags; change only what the seam requires.\n")
	b.WriteString(formatRules)
	b.WriteString("\n\nOutput the rewritten lines only.")
	return b.String()
}

func buildTranslatePrompt(scriptText, targetLanguage string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the following podcast script to %s.\n", targetLanguage)
	b.WriteString("Keep every \"Speaker A:\" and \"Speaker B:\" label exactly as is.\n")
	b.WriteString("Keep every bracketed tag like [excited] or [laughs] untranslated and in place.\n")
	b.WriteString("Translate for natural spoken delivery, not literal word order.\n\n")
	b.WriteString(scriptText)
	b.WriteString("\n\nOutput the translated script only.")
	return b.String()
}
