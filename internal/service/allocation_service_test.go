package service

import (
	"testing"

	"github.com/fsegs/survex-backend/internal/model"
)

func fp(v float64) *float64 { return &v }

// baseState returns an admissible allocation state that individual cases
// then break one rule at a time.
func baseState() allocationState {
	return allocationState{
		session: &model.Session{
			ID:                  7,
			Date:                at(0, 0),
			StartTime:           tp(at(9, 0)),
			EndTime:             tp(at(11, 0)),
			RequiredSupervisors: 4,
			EnrolledSupervisors: 2,
		},
		teacher:           &model.Teacher{ID: 3, SupervisionQuota: fp(3)},
		teacherSubjectIDs: []int{1, 2},
		sessionSubjectIDs: []int{3, 4},
		liveAssignments:   1,
	}
}

func TestEvaluateAllocation(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*allocationState)
		wantOK     bool
		wantReason model.AllocationReason
	}{
		{
			name:   "admissible request passes",
			mutate: func(st *allocationState) {},
			wantOK: true,
		},
		{
			name:       "duplicate pair rejected first",
			mutate:     func(st *allocationState) { st.alreadyAssigned = true },
			wantOK:     false,
			wantReason: model.ReasonAlreadyAssigned,
		},
		{
			name: "saturated session rejected",
			mutate: func(st *allocationState) {
				st.session.EnrolledSupervisors = st.session.RequiredSupervisors
			},
			wantOK:     false,
			wantReason: model.ReasonSessionFull,
		},
		{
			name: "over-enrolled session still counts as saturated",
			mutate: func(st *allocationState) {
				st.session.EnrolledSupervisors = st.session.RequiredSupervisors + 1
			},
			wantOK:     false,
			wantReason: model.ReasonSessionFull,
		},
		{
			name:       "own subject rejected",
			mutate:     func(st *allocationState) { st.sessionSubjectIDs = []int{2, 9} },
			wantOK:     false,
			wantReason: model.ReasonSubjectConflict,
		},
		{
			name: "overlapping same-day duty rejected",
			mutate: func(st *allocationState) {
				st.sameDaySlots = []model.TimeSlot{{Start: tp(at(10, 0)), End: tp(at(12, 0))}}
			},
			wantOK:     false,
			wantReason: model.ReasonTimeConflict,
		},
		{
			name: "back-to-back same-day duty admitted",
			mutate: func(st *allocationState) {
				st.sameDaySlots = []model.TimeSlot{{Start: tp(at(11, 0)), End: tp(at(13, 0))}}
			},
			wantOK: true,
		},
		{
			name:       "quota exact boundary rejected",
			mutate:     func(st *allocationState) { st.liveAssignments = 3 },
			wantOK:     false,
			wantReason: model.ReasonQuotaReached,
		},
		{
			name:       "one below quota admitted",
			mutate:     func(st *allocationState) { st.liveAssignments = 2 },
			wantOK:     true,
		},
		{
			name: "unset quota never blocks",
			mutate: func(st *allocationState) {
				st.teacher.SupervisionQuota = nil
				st.liveAssignments = 50
			},
			wantOK: true,
		},
		{
			name: "zero quota blocks the first assignment",
			mutate: func(st *allocationState) {
				st.teacher.SupervisionQuota = fp(0)
				st.liveAssignments = 0
			},
			wantOK:     false,
			wantReason: model.ReasonQuotaReached,
		},
		{
			name: "saturation checked before subject conflict",
			mutate: func(st *allocationState) {
				st.session.EnrolledSupervisors = st.session.RequiredSupervisors
				st.sessionSubjectIDs = []int{1}
			},
			wantOK:     false,
			wantReason: model.ReasonSessionFull,
		},
		{
			name: "subject conflict checked before time conflict",
			mutate: func(st *allocationState) {
				st.sessionSubjectIDs = []int{1}
				st.sameDaySlots = []model.TimeSlot{{Start: tp(at(9, 0)), End: tp(at(11, 0))}}
			},
			wantOK:     false,
			wantReason: model.ReasonSubjectConflict,
		},
		{
			name: "time conflict checked before quota",
			mutate: func(st *allocationState) {
				st.sameDaySlots = []model.TimeSlot{{Start: tp(at(9, 0)), End: tp(at(11, 0))}}
				st.liveAssignments = 10
			},
			wantOK:     false,
			wantReason: model.ReasonTimeConflict,
		},
		{
			name: "session without times skips the time check",
			mutate: func(st *allocationState) {
				st.session.StartTime = nil
				st.session.EndTime = nil
				st.sameDaySlots = []model.TimeSlot{{Start: tp(at(9, 0)), End: tp(at(11, 0))}}
			},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := baseState()
			tt.mutate(&st)

			reason, ok := evaluateAllocation(st)
			if ok != tt.wantOK {
				t.Fatalf("evaluateAllocation() ok = %v, want %v (reason %q)", ok, tt.wantOK, reason)
			}
			if !tt.wantOK && reason != tt.wantReason {
				t.Errorf("evaluateAllocation() reason = %q, want %q", reason, tt.wantReason)
			}
			if tt.wantOK && reason != "" {
				t.Errorf("evaluateAllocation() reason = %q, want empty on success", reason)
			}
		})
	}
}

func TestReasonMessageCoversAllReasons(t *testing.T) {
	reasons := []model.AllocationReason{
		model.ReasonAlreadyAssigned,
		model.ReasonSessionFull,
		model.ReasonSubjectConflict,
		model.ReasonTimeConflict,
		model.ReasonQuotaReached,
		model.ReasonTeacherNotFound,
		model.ReasonSessionNotFound,
		model.ReasonTransientConflict,
		model.ReasonNothingToCancel,
		model.ReasonWishRepaired,
	}

	for _, reason := range reasons {
		if msg := reasonMessage(reason, nil); msg == "" || msg == string(reason) {
			t.Errorf("reasonMessage(%q) has no human-readable text", reason)
		}
	}
}

func TestReasonMessageQuotaIncludesValue(t *testing.T) {
	msg := reasonMessage(model.ReasonQuotaReached, fp(3))
	if msg != "Supervision quota reached (3.0 sessions)." {
		t.Errorf("unexpected quota message: %q", msg)
	}
}
