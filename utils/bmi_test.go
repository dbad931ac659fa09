package utils

import "testing"

func TestCalculateBMI(t *testing.T) {
	bmi, ok := CalculateBMI(170, 65)
	if !ok {
		t.Fatalf("expected BMI to be computable")
	}
	if bmi != 22.5 {
		t.Fatalf("expected 22.5, got %v", bmi)
	}
}

func TestCalculateBMIRejectsNonPositive(t *testing.T) {
	if _, ok := CalculateBMI(0, 65); ok {
		t.Fatalf("zero height must not produce a BMI")
	}
	if _, ok := CalculateBMI(170, -1); ok {
		t.Fatalf("negative weight must not produce a BMI")
	}
}
