package service

import (
	"time"

	"github.com/fsegs/survex-backend/internal/model"
)

// Conflict detection predicates. Both are stateless: they evaluate data the
// allocation engine has already fetched under its transaction, which keeps
// them trivially testable and keeps all locking in one place.

// subjectConflict reports whether the teacher teaches any of the subjects
// covered by the candidate session's exams. A teacher must never supervise an
// exam in their own subject.
func subjectConflict(teacherSubjectIDs, sessionSubjectIDs []int) bool {
	if len(teacherSubjectIDs) == 0 || len(sessionSubjectIDs) == 0 {
		return false
	}
	taught := make(map[int]struct{}, len(teacherSubjectIDs))
	for _, id := range teacherSubjectIDs {
		taught[id] = struct{}{}
	}
	for _, id := range sessionSubjectIDs {
		if _, ok := taught[id]; ok {
			return true
		}
	}
	return false
}

// timeConflict reports whether the candidate window overlaps any of the
// teacher's existing same-day assignment windows. Windows are half-open
// [start, end): sessions that exactly touch do not conflict.
//
// A candidate with a missing start or end cannot conflict; data completeness
// is the importer's responsibility. Existing slots with missing bounds are
// skipped for the same reason.
func timeConflict(candidateStart, candidateEnd *time.Time, existing []model.TimeSlot) bool {
	if candidateStart == nil || candidateEnd == nil {
		return false
	}
	for _, slot := range existing {
		if slot.Start == nil || slot.End == nil {
			continue
		}
		if overlaps(*slot.Start, *slot.End, *candidateStart, *candidateEnd) {
			return true
		}
	}
	return false
}

// overlaps is the half-open interval overlap test:
// existingStart < candidateEnd && candidateStart < existingEnd.
func overlaps(existingStart, existingEnd, candidateStart, candidateEnd time.Time) bool {
	return existingStart.Before(candidateEnd) && candidateStart.Before(existingEnd)
}
