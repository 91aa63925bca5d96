package tts

import "strings"

// cartesiaEmotions maps script delivery tags to the provider's
// category:intensity controls. Intensity levels are lowest, low, high and
// highest; there is no medium. Unmapped tags are dropped silently.
var cartesiaEmotions = map[string]string{
	"excited":      "positivity:high",
	"enthusiastic": "positivity:high",
	"happy":        "positivity:high",
	"laughs":       "positivity:high",
	"chuckles":     "positivity:low",
	"curious":      "curiosity:high",
	"questioning":  "curiosity:high",
	"interested":   "curiosity:high",
	"thoughtful":   "curiosity:low",
	"analytical":   "curiosity:low",
	"concerned":    "curiosity:low",
	"surprised":    "surprise:high",
	"amazed":       "surprise:high",
	"worried":      "anger:low",
	"serious":      "anger:lowest",
	"sad":          "sadness:low",
}

// cartesiaEmotion resolves the first mappable tag of a segment. The
// provider accepts at most one emotion control per utterance, so the first
// match wins and the rest are ignored.
func cartesiaEmotion(tags []string) (string, bool) {
	for _, tag := range tags {
		if e, ok := cartesiaEmotions[strings.ToLower(strings.TrimSpace(tag))]; ok {
			return e, true
		}
	}
	return "", false
}
