package audio

import (
	"encoding/binary"
	"time"
)

// DefaultCrossfade is short enough to stay inaudible as a transition but
// long enough to remove the click a hard PCM join produces.
const DefaultCrossfade = 30 * time.Millisecond

// AppendPCM16LE appends next to dst with a linear crossfade over the join.
// Both buffers are mono PCM16LE at the given sample rate. The fade window
// shrinks to half of the shorter buffer when either side is too short, and
// degenerates to plain concatenation when a side is empty.
func AppendPCM16LE(dst, next []byte, sampleRate int, fade time.Duration) []byte {
	dst = trimOddByte(dst)
	next = trimOddByte(next)
	if len(dst) == 0 {
		return append(dst, next...)
	}
	if len(next) == 0 {
		return dst
	}

	fadeSamples := int(float64(sampleRate) * fade.Seconds())
	if max := len(dst) / 2 / 2; fadeSamples > max {
		fadeSamples = max
	}
	if max := len(next) / 2 / 2; fadeSamples > max {
		fadeSamples = max
	}
	if fadeSamples <= 0 {
		return append(dst, next...)
	}

	overlapStart := len(dst) - fadeSamples*2
	for i := 0; i < fadeSamples; i++ {
		tail := int16(binary.LittleEndian.Uint16(dst[overlapStart+i*2:]))
		head := int16(binary.LittleEndian.Uint16(next[i*2:]))

		t := float64(i+1) / float64(fadeSamples+1)
		mixed := float64(tail)*(1-t) + float64(head)*t
		binary.LittleEndian.PutUint16(dst[overlapStart+i*2:], uint16(int16(mixed)))
	}
	return append(dst, next[fadeSamples*2:]...)
}

func trimOddByte(b []byte) []byte {
	if len(b)%2 == 1 {
		return b[:len(b)-1]
	}
	return b
}
