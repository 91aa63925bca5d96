package pipeline

import (
	"fmt"
	"strings"

	"github.com/jhendrikx/podforge/internal/tts"
)

// providerNotes builds the delivery-tag instructions for the section
// prompts. Counts scale with episode length so a long episode does not end
// up with the same handful of reactions as a short one.
func providerNotes(provider tts.Provider, minutes int) string {
	interruptions := scaleCount(minutes, 2)
	reactions := scaleCount(minutes, 4)

	var b strings.Builder
	b.WriteString("Delivery guidance:\n")
	fmt.Fprintf(&b, "- Include roughly %d short interruptions where one host cuts in mid-sentence.\n", interruptions)
	fmt.Fprintf(&b, "- Include roughly %d brief spoken reactions (\"Right\", \"Exactly\", \"Hmm\").\n", reactions)

	switch provider.Name() {
	case "cartesia":
		b.WriteString("- Mark emotional delivery with a single leading bracket tag per line when it changes, ")
		b.WriteString("using only: [excited], [curious], [thoughtful], [surprised], [concerned], [serious], [laughs], [chuckles].")
	default:
		b.WriteString("- Mark delivery with inline bracket tags where they help, ")
		b.WriteString("such as [excited], [curious], [laughs], [whispers], [sighs]. Use them sparingly.")
	}
	return b.String()
}

// scaleCount is per-five-minutes scaling with a floor of the base count.
func scaleCount(minutes, base int) int {
	if minutes <= 5 {
		return base
	}
	return base * minutes / 5
}
