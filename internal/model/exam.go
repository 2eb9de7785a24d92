package model

import "time"

// Exam is one subject's examination held within a session. Its batches are
// the countable units (envelopes of papers) that drive the supervisor need
// formula.
type Exam struct {
	ID        int       `json:"id"`
	SessionID int       `json:"session_id"`
	SubjectID int       `json:"subject_id"`
	Track     string    `json:"track,omitempty"`
	ClassName string    `json:"class_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Batch is a countable unit of exam material. Its only role is to be counted:
// the need calculator sums batches across a session's exams.
type Batch struct {
	ID        int `json:"id"`
	ExamID    int `json:"exam_id"`
	SubjectID int `json:"subject_id"`
}

// CreateExamRequest is the payload for adding an exam (with its batch count)
// to a session. BatchCount expands into that many Batch rows.
type CreateExamRequest struct {
	SubjectID  int    `json:"subject_id" binding:"required,min=1"`
	Track      string `json:"track" binding:"omitempty,max=100"`
	ClassName  string `json:"class_name" binding:"omitempty,max=100"`
	BatchCount int    `json:"batch_count" binding:"required,min=1,max=100"`
}
