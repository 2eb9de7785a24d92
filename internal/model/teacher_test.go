package model

import "testing"

func TestCanTakeMoreAssignments(t *testing.T) {
	quota := func(v float64) *float64 { return &v }

	tests := []struct {
		name            string
		quota           *float64
		liveAssignments int
		want            bool
	}{
		{"unset quota never blocks", nil, 100, true},
		{"below quota", quota(3), 2, true},
		{"exactly at quota blocks", quota(3), 3, false},
		{"above quota blocks", quota(3), 4, false},
		{"fractional quota admits the floor", quota(2.5), 2, true},
		{"fractional quota blocks past it", quota(2.5), 3, false},
		{"zero quota blocks the first duty", quota(0), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			teacher := &Teacher{SupervisionQuota: tt.quota}
			if got := teacher.CanTakeMoreAssignments(tt.liveAssignments); got != tt.want {
				t.Errorf("CanTakeMoreAssignments(%d) with quota %v = %v, want %v",
					tt.liveAssignments, tt.quota, got, tt.want)
			}
		})
	}
}
