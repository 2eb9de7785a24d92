package service

import "testing"

func TestRequiredSupervisors(t *testing.T) {
	tests := []struct {
		name         string
		totalBatches int
		want         int
	}{
		{"no batches needs nobody", 0, 0},
		{"single batch rounds up", 1, 2},  // 1.5 → 2
		{"two batches exact", 2, 3},       // 3.0
		{"three batches rounds up", 3, 5}, // 4.5 → 5
		{"six batches across exams", 6, 9},
		{"large session", 20, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := requiredSupervisors(tt.totalBatches); got != tt.want {
				t.Errorf("requiredSupervisors(%d) = %d, want %d", tt.totalBatches, got, tt.want)
			}
		})
	}
}

func TestRequiredSupervisorsIdempotent(t *testing.T) {
	for _, batches := range []int{0, 1, 6, 13} {
		first := requiredSupervisors(batches)
		second := requiredSupervisors(batches)
		if first != second {
			t.Errorf("requiredSupervisors(%d) not stable: %d then %d", batches, first, second)
		}
	}
}

func TestSupervisionQuota(t *testing.T) {
	tests := []struct {
		name         string
		teachingLoad float64
		ownSessions  int
		want         float64
	}{
		{"no credit", 4, 0, 6},
		{"standard credit", 4, 3, 3},
		{"floors at zero on equality", 2, 3, 0},
		{"floors at zero below", 1, 5, 0},
		{"fractional load", 3, 2, 2.5},
		{"zero load zero sessions", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := supervisionQuota(tt.teachingLoad, tt.ownSessions)
			if got != tt.want {
				t.Errorf("supervisionQuota(%v, %d) = %v, want %v",
					tt.teachingLoad, tt.ownSessions, got, tt.want)
			}
			if got < 0 {
				t.Errorf("supervisionQuota(%v, %d) = %v, must never be negative",
					tt.teachingLoad, tt.ownSessions, got)
			}
		})
	}
}
