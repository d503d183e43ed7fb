package service

import "testing"

func TestPercentage(t *testing.T) {
	cases := []struct {
		score, max, want float64
	}{
		{85, 100, 85},
		{7, 10, 70},
		{0, 100, 0},
		{100, 100, 100},
		{50, 0, 0}, // max 0 tidak boleh panic / Inf
	}
	for _, tc := range cases {
		if got := Percentage(tc.score, tc.max); got != tc.want {
			t.Errorf("Percentage(%v, %v) = %v, want %v", tc.score, tc.max, got, tc.want)
		}
	}
}

func TestGradeBands(t *testing.T) {
	cases := []struct {
		pct  float64
		want string
	}{
		{100, "A+"},
		{90, "A+"},
		{89.99, "A"},
		{80, "A"},
		{79.5, "B+"},
		{70, "B+"},
		{69, "B"},
		{60, "B"},
		{59.9, "C"},
		{50, "C"},
		{49, "D"},
		{40, "D"},
		{39.99, "F"},
		{0, "F"},
	}
	for _, tc := range cases {
		if got := Grade(tc.pct); got != tc.want {
			t.Errorf("Grade(%v) = %q, want %q", tc.pct, got, tc.want)
		}
	}
}

func TestGradeMonotonic(t *testing.T) {
	order := map[string]int{"F": 0, "D": 1, "C": 2, "B": 3, "B+": 4, "A": 5, "A+": 6}
	prev := -1
	for pct := 0.0; pct <= 100; pct += 0.5 {
		rank := order[Grade(pct)]
		if rank < prev {
			t.Fatalf("grade rank turun di pct=%v", pct)
		}
		prev = rank
	}
}
