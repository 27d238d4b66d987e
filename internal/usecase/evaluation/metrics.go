// Package evaluation scores retrieval quality against labelled queries.
package evaluation

// PrecisionAtK is the share of the first k retrieved ids that are relevant.
// The denominator is k even when fewer than k ids were retrieved.
func PrecisionAtK(retrieved []int64, relevant map[int64]struct{}, k int) float64 {
	if k <= 0 || len(retrieved) == 0 {
		return 0
	}
	return float64(hits(retrieved, relevant, k)) / float64(k)
}

// RecallAtK is the share of relevant ids found in the first k retrieved.
func RecallAtK(retrieved []int64, relevant map[int64]struct{}, k int) float64 {
	if k <= 0 || len(retrieved) == 0 || len(relevant) == 0 {
		return 0
	}
	return float64(hits(retrieved, relevant, k)) / float64(len(relevant))
}

// ReciprocalRank is 1/rank of the first relevant id, or 0.
func ReciprocalRank(retrieved []int64, relevant map[int64]struct{}) float64 {
	for i, id := range retrieved {
		if _, ok := relevant[id]; ok {
			return 1 / float64(i+1)
		}
	}
	return 0
}

func hits(retrieved []int64, relevant map[int64]struct{}, k int) int {
	n := 0
	for _, id := range retrieved[:min(k, len(retrieved))] {
		if _, ok := relevant[id]; ok {
			n++
		}
	}
	return n
}

func toSet(ids []int64) map[int64]struct{} {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
