package handle

import (
	"math"
	"math/rand/v2"
	"strings"
)

// Alphabet is the set of characters handles are drawn from.
const Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Source supplies uniformly distributed integers in [0, n).
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// NewSource returns a deterministic source for the given seed.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// NewRandomSource returns a source seeded from the runtime's random stream.
func NewRandomSource() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Generate returns a string of exactly length characters, each chosen
// independently from Alphabet. A length of zero or less yields "".
func Generate(src Source, length int) string {
	if length <= 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(Alphabet[src.IntN(len(Alphabet))])
	}
	return b.String()
}

// Space returns the number of distinct handles of the given length.
// The result saturates at math.MaxUint64.
func Space(length int) uint64 {
	if length <= 0 {
		return 1
	}
	n := uint64(1)
	base := uint64(len(Alphabet))
	for i := 0; i < length; i++ {
		if n > math.MaxUint64/base {
			return math.MaxUint64
		}
		n *= base
	}
	return n
}

// CollisionProbability approximates the chance that n generated handles of
// the given length contain at least one duplicate (n²/(2·62^L)), clamped to [0, 1].
func CollisionProbability(n, length int) float64 {
	if n <= 1 {
		return 0
	}
	if length <= 0 {
		return 1
	}
	p := float64(n) * float64(n) / (2 * math.Pow(float64(len(Alphabet)), float64(length)))
	return math.Min(p, 1)
}

// Valid reports whether h has exactly length characters, all from Alphabet.
func Valid(h string, length int) bool {
	if len(h) != length {
		return false
	}
	for i := 0; i < len(h); i++ {
		if strings.IndexByte(Alphabet, h[i]) < 0 {
			return false
		}
	}
	return true
}
