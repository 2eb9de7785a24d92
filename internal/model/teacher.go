package model

import "time"

// Teacher represents a staff member who can be assigned supervision duty.
//
// TeachingLoad is input data (weekly teaching hours). SupervisionQuota is
// derived by the load calculator and stays nil until first computed; once
// computed it is always >= 0.
type Teacher struct {
	ID               int       `json:"id"`
	FullName         string    `json:"full_name"`
	Grade            string    `json:"grade,omitempty"`
	TeachingLoad     *float64  `json:"teaching_load,omitempty"`
	SupervisionQuota *float64  `json:"supervision_quota,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CanTakeMoreAssignments reports whether a teacher with the given live
// assignment count is still under quota. An unset quota never blocks.
func (t *Teacher) CanTakeMoreAssignments(liveAssignments int) bool {
	if t.SupervisionQuota == nil {
		return true
	}
	return float64(liveAssignments) < *t.SupervisionQuota
}

// CreateTeacherRequest is the payload for registering a teacher with the
// subjects they teach.
type CreateTeacherRequest struct {
	FullName     string   `json:"full_name" binding:"required,min=2,max=150"`
	Grade        string   `json:"grade" binding:"omitempty,max=50"`
	TeachingLoad *float64 `json:"teaching_load" binding:"required,min=0,max=60"`
	SubjectIDs   []int    `json:"subject_ids" binding:"omitempty,dive,min=1"`
}
