package domain

// FairnessRatio compares two non-negative travel measurements (durations or
// distances). 1.0 means perfectly equal; values approach 0 as the burden
// becomes one-sided. When either measurement is zero the comparison is
// meaningless, so 1.0 is returned by convention.
func FairnessRatio(a, b float64) float64 {
	if a <= 0 || b <= 0 {
		return 1.0
	}
	if a < b {
		return a / b
	}
	return b / a
}

// FairnessResult pairs a symmetry ratio with the absolute gap between the two
// measurements, in whatever unit the measurements were taken.
type FairnessResult struct {
	Ratio       float64 `json:"ratio"`
	AbsoluteGap float64 `json:"absolute_gap"`
}

// Fairness builds a FairnessResult from two measurements.
func Fairness(a, b float64) FairnessResult {
	gap := a - b
	if gap < 0 {
		gap = -gap
	}
	return FairnessResult{Ratio: FairnessRatio(a, b), AbsoluteGap: gap}
}
