package review

import "testing"

func TestMean(t *testing.T) {
	tests := []struct {
		name      string
		ratings   []int
		wantMean  float64
		wantTotal int
	}{
		{name: "no reviews"},
		{name: "one", ratings: []int{4}, wantMean: 4, wantTotal: 1},
		{name: "many", ratings: []int{5, 4, 3, 3}, wantMean: 3.75, wantTotal: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := make([]Review, 0, len(tt.ratings))
			for _, r := range tt.ratings {
				reviews = append(reviews, Review{Rating: r})
			}
			mean, total := Mean(reviews)
			if mean != tt.wantMean || total != tt.wantTotal {
				t.Errorf("Mean() = (%v, %d); want (%v, %d)", mean, total, tt.wantMean, tt.wantTotal)
			}
		})
	}
}
