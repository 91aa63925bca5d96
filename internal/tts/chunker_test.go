package tts

import (
	"strings"
	"testing"

	"github.com/jhendrikx/podforge/internal/script"
)

func segmentsOfSize(n, textLen int) []script.Segment {
	segs := make([]script.Segment, n)
	for i := range segs {
		speaker := script.SpeakerA
		if i%2 == 1 {
			speaker = script.SpeakerB
		}
		segs[i] = script.Segment{Speaker: speaker, Text: strings.Repeat("a", textLen)}
	}
	return segs
}

func TestChunkSegmentsShortScriptStaysWhole(t *testing.T) {
	segs := segmentsOfSize(10, 100)
	chunks := ChunkSegments(segs, 4500)
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1 for script under the budget", len(chunks))
	}
	if len(chunks[0].Segments) != 10 {
		t.Fatalf("segments = %d, want 10", len(chunks[0].Segments))
	}
}

func TestChunkSegmentsSmallScriptStillHonorsBudget(t *testing.T) {
	// Total well under a typical provider limit but over this budget;
	// every multi-segment chunk must still fit.
	segs := segmentsOfSize(8, 500)
	budget := 600
	chunks := ChunkSegments(segs, budget)

	if len(chunks) < 2 {
		t.Fatalf("len(chunks) = %d, want multiple for total over budget", len(chunks))
	}
	total := 0
	for i, c := range chunks {
		if len(c.Segments) > 1 && c.Chars() > budget {
			t.Fatalf("chunk %d holds %d chars over budget %d", i, c.Chars(), budget)
		}
		total += len(c.Segments)
	}
	if total != len(segs) {
		t.Fatalf("chunks hold %d segments, want %d", total, len(segs))
	}
}

func TestChunkSegmentsRespectsBudget(t *testing.T) {
	segs := segmentsOfSize(20, 500)
	budget := 1200
	chunks := ChunkSegments(segs, budget)

	if len(chunks) < 2 {
		t.Fatalf("len(chunks) = %d, want multiple", len(chunks))
	}
	total := 0
	for i, c := range chunks {
		if c.Index != i {
			t.Fatalf("chunks[%d].Index = %d", i, c.Index)
		}
		if len(c.Segments) > 1 && c.Chars() > budget {
			t.Fatalf("chunk %d holds %d chars over budget %d", i, c.Chars(), budget)
		}
		total += len(c.Segments)
	}
	if total != len(segs) {
		t.Fatalf("chunks hold %d segments, want %d", total, len(segs))
	}
}

func TestChunkSegmentsOversizedSegmentGetsOwnChunk(t *testing.T) {
	segs := segmentsOfSize(2, 200)
	huge := script.Segment{Speaker: script.SpeakerA, Text: strings.Repeat("b", 9000)}
	segs = append(segs[:1], append([]script.Segment{huge}, segs[1:]...)...)

	chunks := ChunkSegments(segs, 500)
	for _, c := range chunks {
		for _, seg := range c.Segments {
			if len(seg.Text) == 9000 && len(c.Segments) != 1 {
				t.Fatalf("oversized segment shares chunk with %d others", len(c.Segments)-1)
			}
		}
	}

	var flat []script.Segment
	for _, c := range chunks {
		flat = append(flat, c.Segments...)
	}
	for i := range segs {
		if flat[i].Text != segs[i].Text {
			t.Fatalf("segment order broken at %d", i)
		}
	}
}

func TestChunkSegmentsEmpty(t *testing.T) {
	if chunks := ChunkSegments(nil, 4500); chunks != nil {
		t.Fatalf("chunks = %v, want nil", chunks)
	}
}
