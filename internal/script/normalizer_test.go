package script

import (
	"strings"
	"testing"
)

func TestNormalizeStripsPreamble(t *testing.T) {
	raw := "I'll create a podcast script about quantum computing.\n\nSpeaker A: [excited] Welcome back!\nSpeaker B: Great to be here."
	got := Normalize(raw)
	if !strings.HasPrefix(got, "Speaker A:") {
		t.Fatalf("Normalize() = %q, want text starting at first speaker label", got)
	}
	if strings.Contains(got, "I'll create") {
		t.Fatalf("Normalize() retained preamble: %q", got)
	}
}

func TestNormalizeTruncatesSources(t *testing.T) {
	raw := "Speaker A: Closing thoughts.\nSpeaker B: Thanks for listening!\n\n---\n\nSOURCES FOUND:\n1. Some study - https://example.org"
	got := Normalize(raw)
	if strings.Contains(got, "example.org") || strings.Contains(strings.ToUpper(got), "SOURCES") {
		t.Fatalf("Normalize() leaked sources block: %q", got)
	}
	if !strings.Contains(got, "Thanks for listening!") {
		t.Fatalf("Normalize() dropped dialogue: %q", got)
	}
}

func TestNormalizeTruncatesInlineSourcesAtEndOfInput(t *testing.T) {
	raw := "Speaker A: That wraps it up.\nSources: [1] example.com/study"
	got := Normalize(raw)
	if strings.Contains(got, "example.com") || strings.Contains(strings.ToLower(got), "sources") {
		t.Fatalf("Normalize() leaked same-line sources: %q", got)
	}
	if !strings.Contains(got, "That wraps it up.") {
		t.Fatalf("Normalize() dropped dialogue: %q", got)
	}
}

func TestNormalizeSourcesBeforeSeparators(t *testing.T) {
	// The "---" before the sources block must not be removed first, or the
	// block would survive with its marker intact.
	raw := "Speaker A: Done.\n---\n**SOURCES FOUND:**\n1. A source"
	got := Normalize(raw)
	if SourcesMarkerIndex("\n"+got) >= 0 {
		t.Fatalf("sources marker still present after normalization: %q", got)
	}
}

func TestNormalizeRemovesClutter(t *testing.T) {
	raw := strings.Join([]string{
		"Speaker A: Hello.",
		"# Section Two",
		"---",
		"*leans forward dramatically*",
		"Speaker B: Hi.",
		"",
		"",
		"",
		"Word count: 450 words",
	}, "\n")
	got := Normalize(raw)
	for _, banned := range []string{"#", "---", "leans forward", "Word count"} {
		if strings.Contains(got, banned) {
			t.Fatalf("Normalize() retained %q in %q", banned, got)
		}
	}
	if !strings.Contains(got, "Speaker B: Hi.") {
		t.Fatalf("Normalize() dropped dialogue: %q", got)
	}
}

func TestNormalizeKeepsAnnotationTags(t *testing.T) {
	raw := "Speaker A: [excited] [fast-paced] This is incredible!"
	got := Normalize(raw)
	if got != raw {
		t.Fatalf("Normalize() = %q, want %q", got, raw)
	}
}

func TestNormalizeRemovesReasoningBlocks(t *testing.T) {
	raw := "Speaker A: Hello.\n<search>quantum computing 2025</search>\nSpeaker B: Hi."
	got := Normalize(raw)
	if strings.Contains(got, "<search>") || strings.Contains(got, "quantum computing 2025") {
		t.Fatalf("Normalize() retained search block: %q", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	raw := "Some preamble.\n\nSpeaker A: [curious] What happened?\n---\nSpeaker B: A lot.\n\n\n\nSOURCES FOUND:\n1. x"
	once := Normalize(raw)
	twice := Normalize(once)
	if once != twice {
		t.Fatalf("Normalize not idempotent:\nonce  = %q\ntwice = %q", once, twice)
	}
}

func TestSourcesMarkerIndexVariants(t *testing.T) {
	variants := []string{
		"dialogue\nSOURCES FOUND:\nx",
		"dialogue\n**SOURCES FOUND:**\nx",
		"dialogue\n## SOURCES FOUND:\nx",
		"dialogue\nSources:\nx",
		"dialogue\nSources: [1] example.com",
	}
	for _, v := range variants {
		if SourcesMarkerIndex(v) < 0 {
			t.Fatalf("SourcesMarkerIndex(%q) = -1, want match", v)
		}
	}
	if SourcesMarkerIndex("Speaker A: clean dialogue") >= 0 {
		t.Fatalf("SourcesMarkerIndex matched clean dialogue")
	}
}

func TestLintWarnsOnFlatScript(t *testing.T) {
	warnings := Lint("Speaker A: Hello.\nSpeaker B: Hi.")
	if len(warnings) != 3 {
		t.Fatalf("Lint() = %d warnings, want 3", len(warnings))
	}
}

func TestLintCleanScript(t *testing.T) {
	text := "Speaker A: [excited] Wow!\nSpeaker B: [interrupting] Wait...\nSpeaker A: [laughs] Exactly!"
	if warnings := Lint(text); len(warnings) != 0 {
		t.Fatalf("Lint() = %v, want no warnings", warnings)
	}
}
