package retrieve_test

import (
	"math"
	"testing"

	"github.com/becomeliminal/strata-go-sdk/retrieve"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"orthogonal", []float32{1, 0, 0}, []float32{0, 1, 0}, 0},
		{"opposite", []float32{1, 0, 0}, []float32{-1, 0, 0}, -1},
		{"scaled", []float32{2, 0, 0}, []float32{5, 0, 0}, 1},
		{"mismatched dims", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"empty", nil, nil, 0},
		{"zero vector", []float32{0, 0, 0}, []float32{1, 0, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := retrieve.CosineSimilarity(tt.a, tt.b)
			if !almostEqual(got, tt.want) {
				t.Errorf("Expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestScorer_NegativePenalty(t *testing.T) {
	scorer := retrieve.NewScorer(0.5)

	query := []float32{1, 0, 0}
	candidate := []float32{1, 0, 0}
	negatives := [][]float32{{0, 1, 0}, {1, 0, 0}}

	score, positive, negative := scorer.Score(candidate, query, negatives)
	if !almostEqual(positive, 1) {
		t.Errorf("Expected positive 1, got %f", positive)
	}
	// The strongest negative wins, not the sum.
	if !almostEqual(negative, 1) {
		t.Errorf("Expected max negative 1, got %f", negative)
	}
	if !almostEqual(score, 0.5) {
		t.Errorf("Expected score 1 - 0.5*1 = 0.5, got %f", score)
	}
}

func TestScorer_NoNegatives(t *testing.T) {
	scorer := retrieve.NewScorer(0.35)

	score, positive, negative := scorer.Score([]float32{1, 0}, []float32{1, 0}, nil)
	if !almostEqual(score, positive) || !almostEqual(negative, 0) {
		t.Errorf("Expected score == positive with zero penalty, got score=%f positive=%f negative=%f",
			score, positive, negative)
	}
}

func TestNewScorer_DefaultBeta(t *testing.T) {
	scorer := retrieve.NewScorer(0)
	if scorer.Beta != retrieve.DefaultBeta {
		t.Errorf("Expected default beta %f, got %f", retrieve.DefaultBeta, scorer.Beta)
	}
}
