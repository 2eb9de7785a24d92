package service

import (
	"testing"
	"time"

	"github.com/fsegs/survex-backend/internal/model"
)

func at(hour, min int) time.Time {
	return time.Date(2026, 5, 18, hour, min, 0, 0, time.UTC)
}

func tp(t time.Time) *time.Time { return &t }

func TestSubjectConflict(t *testing.T) {
	tests := []struct {
		name            string
		teacherSubjects []int
		sessionSubjects []int
		want            bool
	}{
		{"no overlap", []int{1, 2}, []int{3, 4}, false},
		{"single shared subject", []int{1, 2}, []int{2, 9}, true},
		{"teacher teaches nothing", nil, []int{1}, false},
		{"session covers nothing", []int{1}, nil, false},
		{"both empty", nil, nil, false},
		{"all shared", []int{5, 6}, []int{6, 5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := subjectConflict(tt.teacherSubjects, tt.sessionSubjects); got != tt.want {
				t.Errorf("subjectConflict(%v, %v) = %v, want %v",
					tt.teacherSubjects, tt.sessionSubjects, got, tt.want)
			}
		})
	}
}

func TestTimeConflict(t *testing.T) {
	tests := []struct {
		name     string
		start    *time.Time
		end      *time.Time
		existing []model.TimeSlot
		want     bool
	}{
		{
			name:  "overlapping windows conflict",
			start: tp(at(10, 0)), end: tp(at(12, 0)),
			existing: []model.TimeSlot{{Start: tp(at(9, 0)), End: tp(at(11, 0))}},
			want:     true,
		},
		{
			name:  "touching windows do not conflict",
			start: tp(at(10, 0)), end: tp(at(12, 0)),
			existing: []model.TimeSlot{{Start: tp(at(8, 0)), End: tp(at(10, 0))}},
			want:     false,
		},
		{
			name:  "candidate ends where existing starts",
			start: tp(at(8, 0)), end: tp(at(10, 0)),
			existing: []model.TimeSlot{{Start: tp(at(10, 0)), End: tp(at(12, 0))}},
			want:     false,
		},
		{
			name:  "contained window conflicts",
			start: tp(at(9, 30)), end: tp(at(10, 30)),
			existing: []model.TimeSlot{{Start: tp(at(9, 0)), End: tp(at(12, 0))}},
			want:     true,
		},
		{
			name:  "identical window conflicts",
			start: tp(at(9, 0)), end: tp(at(11, 0)),
			existing: []model.TimeSlot{{Start: tp(at(9, 0)), End: tp(at(11, 0))}},
			want:     true,
		},
		{
			name:  "missing candidate start means no conflict",
			start: nil, end: tp(at(12, 0)),
			existing: []model.TimeSlot{{Start: tp(at(9, 0)), End: tp(at(11, 0))}},
			want:     false,
		},
		{
			name:  "missing candidate end means no conflict",
			start: tp(at(10, 0)), end: nil,
			existing: []model.TimeSlot{{Start: tp(at(9, 0)), End: tp(at(11, 0))}},
			want:     false,
		},
		{
			name:  "existing slot with missing bounds is skipped",
			start: tp(at(10, 0)), end: tp(at(12, 0)),
			existing: []model.TimeSlot{
				{Start: nil, End: tp(at(11, 0))},
				{Start: tp(at(9, 0)), End: nil},
			},
			want: false,
		},
		{
			name:  "no existing assignments",
			start: tp(at(10, 0)), end: tp(at(12, 0)),
			want:  false,
		},
		{
			name:  "second of several slots conflicts",
			start: tp(at(10, 0)), end: tp(at(12, 0)),
			existing: []model.TimeSlot{
				{Start: tp(at(7, 0)), End: tp(at(8, 0))},
				{Start: tp(at(11, 0)), End: tp(at(13, 0))},
			},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := timeConflict(tt.start, tt.end, tt.existing); got != tt.want {
				t.Errorf("timeConflict() = %v, want %v", got, tt.want)
			}
		})
	}
}
