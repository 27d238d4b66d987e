package evaluation

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestPrecisionAtK(t *testing.T) {
	relevant := toSet([]int64{2, 5})
	tests := []struct {
		name      string
		retrieved []int64
		k         int
		want      float64
	}{
		{"one of three", []int64{1, 2, 3}, 3, 1.0 / 3},
		{"both in top two", []int64{5, 2, 9}, 2, 1},
		{"fewer retrieved than k", []int64{2}, 5, 0.2},
		{"nothing retrieved", nil, 3, 0},
		{"k zero", []int64{2}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PrecisionAtK(tt.retrieved, relevant, tt.k); !approx(got, tt.want) {
				t.Errorf("PrecisionAtK = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecallAtK(t *testing.T) {
	relevant := toSet([]int64{2, 5})
	if got := RecallAtK([]int64{1, 2, 3}, relevant, 3); !approx(got, 0.5) {
		t.Errorf("RecallAtK = %v, want 0.5", got)
	}
	if got := RecallAtK([]int64{5, 2}, relevant, 1); !approx(got, 0.5) {
		t.Errorf("RecallAtK@1 = %v, want 0.5", got)
	}
	if got := RecallAtK([]int64{1}, map[int64]struct{}{}, 1); got != 0 {
		t.Errorf("RecallAtK without relevant ids = %v, want 0", got)
	}
}

func TestReciprocalRank(t *testing.T) {
	relevant := toSet([]int64{7})
	if got := ReciprocalRank([]int64{1, 2, 7}, relevant); !approx(got, 1.0/3) {
		t.Errorf("ReciprocalRank = %v, want 1/3", got)
	}
	if got := ReciprocalRank([]int64{1, 2}, relevant); got != 0 {
		t.Errorf("ReciprocalRank = %v, want 0", got)
	}
}
