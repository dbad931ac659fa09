package utils

import "math"

// CalculateBMI returns weight/(height m)^2 rounded to one decimal. ok is
// false for non-positive inputs.
func CalculateBMI(heightCM, weightKG float64) (float64, bool) {
	if heightCM <= 0 || weightKG <= 0 {
		return 0, false
	}
	m := heightCM / 100.0
	bmi := weightKG / (m * m)
	return math.Round(bmi*10) / 10, true
}
