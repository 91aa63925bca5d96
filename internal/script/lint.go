package script

import "strings"

var (
	interruptionTags = []string{"[interrupting]", "[overlapping]", "[interjecting]"}
	emotionTags      = []string{"[excited]", "[curious]", "[skeptical]", "[surprised]", "[thoughtful]"}
	reactionTags     = []string{"[laughs]", "[chuckles]", "[sighs]", "[gasps]"}
)

// Lint runs heuristic quality checks on a script and returns human-readable
// warnings. Warnings never block a run; they flag dialogue likely to sound
// flat or robotic once synthesized.
func Lint(text string) []string {
	lower := strings.ToLower(text)

	var warnings []string
	if !containsAny(lower, interruptionTags) {
		warnings = append(warnings, "no interruption tags found - dialogue may sound too formal")
	}
	if !containsAny(lower, emotionTags) {
		warnings = append(warnings, "no emotion tags found - dialogue may lack energy")
	}
	if !containsAny(lower, reactionTags) {
		warnings = append(warnings, "no reaction tags found - dialogue may sound robotic")
	}
	return warnings
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
