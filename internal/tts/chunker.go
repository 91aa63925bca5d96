package tts

import "github.com/jhendrikx/podforge/internal/script"

// ChunkSegments packs segments into chunks that fit the provider's
// character budget. Packing is greedy and order-preserving; a segment
// larger than the budget becomes a chunk of its own rather than being
// split mid-utterance.
func ChunkSegments(segs []script.Segment, budget int) []Chunk {
	if len(segs) == 0 {
		return nil
	}
	if budget <= 0 || totalChars(segs) <= budget {
		return []Chunk{{Index: 0, Segments: segs}}
	}

	var (
		chunks  []Chunk
		current []script.Segment
		size    int
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, Chunk{Index: len(chunks), Segments: current})
		current = nil
		size = 0
	}

	for _, seg := range segs {
		segSize := len(seg.Line()) + 1
		if size > 0 && size+segSize > budget {
			flush()
		}
		current = append(current, seg)
		size += segSize
	}
	flush()
	return chunks
}

func totalChars(segs []script.Segment) int {
	total := 0
	for _, seg := range segs {
		total += len(seg.Line()) + 1
	}
	return total
}
