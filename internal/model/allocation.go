package model

import "time"

// Assignment is a committed (teacher, session) supervision duty. At most one
// live Assignment exists per pair; the database enforces this with a unique
// constraint on (teacher_id, session_id).
type Assignment struct {
	ID        int       `json:"id"`
	TeacherID int       `json:"teacher_id"`
	SessionID int       `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Wish is a teacher-initiated request for a session. In the normal flow a Wish
// is created and destroyed together with its Assignment, so a live Wish
// implies a live Assignment for the same pair.
type Wish struct {
	ID          int       `json:"id"`
	TeacherID   int       `json:"teacher_id"`
	SessionID   int       `json:"session_id"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// AllocationMode selects which entry path requested the assignment. Both go
// through the identical rule gate; Wish mode additionally records a Wish row.
type AllocationMode string

const (
	ModeDirect AllocationMode = "DIRECT"
	ModeWish   AllocationMode = "WISH"
)

// AllocationReason is a stable machine-readable code explaining an allocation
// or cancellation outcome.
type AllocationReason string

const (
	ReasonAlreadyAssigned   AllocationReason = "ALREADY_ASSIGNED"
	ReasonSessionFull       AllocationReason = "SESSION_FULL"
	ReasonSubjectConflict   AllocationReason = "SUBJECT_CONFLICT"
	ReasonTimeConflict      AllocationReason = "TIME_CONFLICT"
	ReasonQuotaReached      AllocationReason = "QUOTA_REACHED"
	ReasonTeacherNotFound   AllocationReason = "TEACHER_NOT_FOUND"
	ReasonSessionNotFound   AllocationReason = "SESSION_NOT_FOUND"
	ReasonTransientConflict AllocationReason = "TRANSIENT_CONFLICT"
	ReasonNothingToCancel   AllocationReason = "NOTHING_TO_CANCEL"
	// ReasonWishRepaired marks a degraded success: the wish existed without a
	// matching assignment (pre-existing drift) and the orphan was deleted.
	ReasonWishRepaired AllocationReason = "WISH_REPAIRED"
)

// AllocationOutcome is the typed result of an allocation or cancellation
// request. Rule rejections are normal outcomes, not errors: Accepted is false
// and Reason names the first rule that failed.
type AllocationOutcome struct {
	Accepted bool             `json:"accepted"`
	Reason   AllocationReason `json:"reason,omitempty"`
	Message  string           `json:"message"`
}

// AssignRequest is the admin payload for a direct assignment.
type AssignRequest struct {
	TeacherID int `json:"teacher_id" binding:"required,min=1"`
	SessionID int `json:"session_id" binding:"required,min=1"`
}

// SubmitWishRequest is the teacher payload for submitting a wish.
type SubmitWishRequest struct {
	SessionID int `json:"session_id" binding:"required,min=1"`
}
