package corpus

import (
	"crypto/sha256"
	"encoding/binary"
)

// DefaultTestFraction is the share of samples assigned to the test split.
const DefaultTestFraction = 0.2

// SplitFor deterministically assigns key to the train or test split.
// Fractions outside (0, 1) use DefaultTestFraction.
func SplitFor(key string, testFraction float64) string {
	fraction := testFraction
	if fraction <= 0 || fraction >= 1 {
		fraction = DefaultTestFraction
	}
	threshold := uint64(float64(^uint64(0)) * fraction)
	if stableUint64(key) <= threshold {
		return SplitTest
	}
	return SplitTrain
}

func stableUint64(input string) uint64 {
	sum := sha256.Sum256([]byte(input))
	return binary.BigEndian.Uint64(sum[:8])
}
