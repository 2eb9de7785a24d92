package model

import "time"

// Session represents a scheduled exam time-block requiring supervision.
//
// RequiredSupervisors is derived by the need calculator and is stale until
// recomputed. EnrolledSupervisors is a counter kept in lockstep with the live
// Assignment rows referencing this session.
type Session struct {
	ID                  int        `json:"id"`
	Date                time.Time  `json:"date"`
	StartTime           *time.Time `json:"start_time,omitempty"`
	EndTime             *time.Time `json:"end_time,omitempty"`
	RequiredSupervisors int        `json:"required_supervisors"`
	EnrolledSupervisors int        `json:"enrolled_supervisors"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// IsSaturated reports whether the session has reached its required supervisor
// count. A session with required == 0 is saturated by definition.
func (s *Session) IsSaturated() bool {
	return s.EnrolledSupervisors >= s.RequiredSupervisors
}

// TimeSlot is the [start, end) window of a session, as seen by the time
// conflict check. Either bound may be missing on incomplete imported data.
type TimeSlot struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
}

// CreateSessionRequest is the payload for scheduling a session.
type CreateSessionRequest struct {
	Date      time.Time  `json:"date" binding:"required"`
	StartTime *time.Time `json:"start_time" binding:"omitempty"`
	EndTime   *time.Time `json:"end_time" binding:"omitempty,gtfield=StartTime"`
}
