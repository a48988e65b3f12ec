package fingerprint

import "log/slog"

// HammingDistance computes the number of positions at which two equal-length
// fingerprints differ. Returns -1 for fingerprints of unequal length.
func HammingDistance(a, b Fingerprint) int {
	if len(a) != len(b) {
		return -1
	}
	distance := 0
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			distance++
		}
	}
	return distance
}

// Similarity converts the Hamming distance between two fingerprints into a
// score between 0 and 1, where 1 means identical. Fingerprints of unequal
// length score 0; the hasher is fixed-length so a mismatch indicates corrupt
// stored data and is logged as such.
func Similarity(a, b Fingerprint) float64 {
	distance := HammingDistance(a, b)
	if distance < 0 {
		slog.Warn("comparing fingerprints of unequal length",
			"len_a", len(a), "len_b", len(b))
		return 0
	}
	return 1 - float64(distance)/float64(len(a))
}

// MatchesAny reports whether the candidate exceeds the similarity threshold
// against any of the stored fingerprints.
func MatchesAny(candidate Fingerprint, stored []Fingerprint, threshold float64) bool {
	for _, s := range stored {
		if Similarity(candidate, s) > threshold {
			return true
		}
	}
	return false
}
