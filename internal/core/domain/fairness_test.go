package domain_test

import (
	"math"
	"testing"

	"github.com/samirrijal/middleground/internal/core/domain"
)

func TestFairnessRatio(t *testing.T) {
	cases := []struct {
		name string
		a, b float64
		want float64
	}{
		{"equal", 600, 600, 1.0},
		{"first smaller", 300, 600, 0.5},
		{"second smaller", 600, 300, 0.5},
		{"very lopsided", 60, 6000, 0.01},
		{"zero first", 0, 600, 1.0},
		{"zero second", 600, 0, 1.0},
		{"both zero", 0, 0, 1.0},
		{"negative", -10, 600, 1.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.FairnessRatio(tc.a, tc.b)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("FairnessRatio(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestFairnessRatio_Symmetric(t *testing.T) {
	if domain.FairnessRatio(420, 900) != domain.FairnessRatio(900, 420) {
		t.Error("fairness ratio should not depend on argument order")
	}
}

func TestFairness_AbsoluteGap(t *testing.T) {
	r := domain.Fairness(900, 600)
	if r.AbsoluteGap != 300 {
		t.Errorf("expected gap 300, got %v", r.AbsoluteGap)
	}

	r = domain.Fairness(600, 900)
	if r.AbsoluteGap != 300 {
		t.Errorf("expected gap 300 regardless of order, got %v", r.AbsoluteGap)
	}
	if math.Abs(r.Ratio-600.0/900.0) > 1e-9 {
		t.Errorf("expected ratio %v, got %v", 600.0/900.0, r.Ratio)
	}
}
