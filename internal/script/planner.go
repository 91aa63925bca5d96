package script

import (
	"fmt"
	"math"
)

// Plan describes how a total word target is split across generation calls.
type Plan struct {
	NumSections     int
	WordsPerSection int
}

// TotalWords is the summed per-section target, which covers the requested
// total once the overshoot factor is applied.
func (p Plan) TotalWords() int {
	return p.NumSections * p.WordsPerSection
}

// PlanSections derives section count and per-section word targets from the
// total target and a per-call budget. Generation services under-produce
// relative to requested length, so the overshoot factor inflates each
// section's target to compensate.
func PlanSections(totalWords, wordsPerCall int, overshoot float64) (Plan, error) {
	if totalWords <= 0 {
		return Plan{}, fmt.Errorf("total word count must be positive, got %d", totalWords)
	}
	if wordsPerCall <= 0 {
		return Plan{}, fmt.Errorf("words per call must be positive, got %d", wordsPerCall)
	}
	if overshoot <= 1 {
		return Plan{}, fmt.Errorf("overshoot factor must exceed 1, got %g", overshoot)
	}

	numSections := (totalWords + wordsPerCall - 1) / wordsPerCall
	wordsPerSection := int(math.Round(float64(totalWords) / float64(numSections) * overshoot))

	return Plan{
		NumSections:     numSections,
		WordsPerSection: wordsPerSection,
	}, nil
}
