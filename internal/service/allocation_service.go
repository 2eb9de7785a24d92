package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fsegs/survex-backend/internal/config"
	"github.com/fsegs/survex-backend/internal/model"
	"github.com/fsegs/survex-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// retryBackoff is the pause before the single internal retry after a
// serialization failure.
const retryBackoff = 50 * time.Millisecond

// PlanningEvent is published on the Redis planning channel after every
// committed mutation, feeding the live planning board stream.
type PlanningEvent struct {
	Type      string    `json:"type"` // "assigned", "cancelled", "repaired"
	TeacherID int       `json:"teacher_id"`
	SessionID int       `json:"session_id"`
	At        time.Time `json:"at"`
}

// AllocationService is the allocation engine: it decides whether a requested
// assignment (direct or via wish) is admissible and performs the commit as one
// atomic unit, plus the inverse cancellation workflow.
//
// Every decision runs inside a transaction holding a row lock on the session,
// so no concurrent request can observe the session between its saturation
// check and its counter increment.
type AllocationService struct {
	pool           *pgxpool.Pool
	teacherRepo    *repository.TeacherRepository
	sessionRepo    *repository.SessionRepository
	examRepo       *repository.ExamRepository
	assignmentRepo *repository.AssignmentRepository
	wishRepo       *repository.WishRepository
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewAllocationService creates a new AllocationService.
func NewAllocationService(
	pool *pgxpool.Pool,
	teacherRepo *repository.TeacherRepository,
	sessionRepo *repository.SessionRepository,
	examRepo *repository.ExamRepository,
	assignmentRepo *repository.AssignmentRepository,
	wishRepo *repository.WishRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *AllocationService {
	return &AllocationService{
		pool:           pool,
		teacherRepo:    teacherRepo,
		sessionRepo:    sessionRepo,
		examRepo:       examRepo,
		assignmentRepo: assignmentRepo,
		wishRepo:       wishRepo,
		rdb:            rdb,
		log:            log.With().Str("component", "allocation_service").Logger(),
	}
}

// ────────────────────────────────────────────────────────────────────────────
// Admission decision
// ────────────────────────────────────────────────────────────────────────────

// allocationState is everything the admission rules need, fetched under the
// engine's transaction. Keeping the decision itself pure pins the rule order
// in one reviewable place.
type allocationState struct {
	session           *model.Session
	teacher           *model.Teacher
	alreadyAssigned   bool
	teacherSubjectIDs []int
	sessionSubjectIDs []int
	sameDaySlots      []model.TimeSlot
	liveAssignments   int
}

// evaluateAllocation applies the admission rules in their fixed order,
// short-circuiting at the first failure. An empty reason means admissible.
func evaluateAllocation(st allocationState) (model.AllocationReason, bool) {
	if st.alreadyAssigned {
		return model.ReasonAlreadyAssigned, false
	}
	if st.session.IsSaturated() {
		return model.ReasonSessionFull, false
	}
	if subjectConflict(st.teacherSubjectIDs, st.sessionSubjectIDs) {
		return model.ReasonSubjectConflict, false
	}
	if timeConflict(st.session.StartTime, st.session.EndTime, st.sameDaySlots) {
		return model.ReasonTimeConflict, false
	}
	if !st.teacher.CanTakeMoreAssignments(st.liveAssignments) {
		return model.ReasonQuotaReached, false
	}
	return "", true
}

// reasonMessage maps a rejection reason to its human-readable explanation.
func reasonMessage(reason model.AllocationReason, quota *float64) string {
	switch reason {
	case model.ReasonAlreadyAssigned:
		return "Already assigned to this session."
	case model.ReasonSessionFull:
		return "Session is already saturated."
	case model.ReasonSubjectConflict:
		return "Cannot supervise sessions covering your own subjects."
	case model.ReasonTimeConflict:
		return "Time conflict with an existing assignment."
	case model.ReasonQuotaReached:
		if quota != nil {
			return fmt.Sprintf("Supervision quota reached (%.1f sessions).", *quota)
		}
		return "Supervision quota reached."
	case model.ReasonTeacherNotFound:
		return "Teacher not found."
	case model.ReasonSessionNotFound:
		return "Session not found."
	case model.ReasonTransientConflict:
		return "The session is being updated concurrently. Please retry."
	case model.ReasonNothingToCancel:
		return "No wish to cancel for this session."
	case model.ReasonWishRepaired:
		return "Wish cancelled; no matching assignment was found."
	default:
		return string(reason)
	}
}

func reject(reason model.AllocationReason, quota *float64) *model.AllocationOutcome {
	return &model.AllocationOutcome{
		Accepted: false,
		Reason:   reason,
		Message:  reasonMessage(reason, quota),
	}
}

// ────────────────────────────────────────────────────────────────────────────
// RequestAssignment
// ────────────────────────────────────────────────────────────────────────────

// RequestAssignment runs the full admission sequence for a (teacher, session)
// pair and commits on success. Wish mode additionally records the Wish row in
// the same transaction. Serialization failures are retried once with backoff,
// then surfaced as a transient-conflict rejection.
func (s *AllocationService) RequestAssignment(ctx context.Context, teacherID, sessionID int, mode model.AllocationMode) (*model.AllocationOutcome, error) {
	outcome, err := s.allocateOnce(ctx, teacherID, sessionID, mode)
	if err != nil && isSerializationError(err) {
		s.log.Warn().Err(err).
			Int("teacher_id", teacherID).
			Int("session_id", sessionID).
			Msg("Serialization conflict, retrying once")
		time.Sleep(retryBackoff)
		outcome, err = s.allocateOnce(ctx, teacherID, sessionID, mode)
		if err != nil && isSerializationError(err) {
			return reject(model.ReasonTransientConflict, nil), nil
		}
	}
	if err != nil {
		return nil, err
	}

	if outcome.Accepted {
		s.publishEvent(ctx, PlanningEvent{Type: "assigned", TeacherID: teacherID, SessionID: sessionID, At: time.Now()})
		s.invalidatePlanningCache(ctx)
	}
	return outcome, nil
}

func (s *AllocationService) allocateOnce(ctx context.Context, teacherID, sessionID int, mode model.AllocationMode) (*model.AllocationOutcome, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	teachers := s.teacherRepo.WithTx(tx)
	sessions := s.sessionRepo.WithTx(tx)
	exams := s.examRepo.WithTx(tx)
	assignments := s.assignmentRepo.WithTx(tx)
	wishes := s.wishRepo.WithTx(tx)

	teacher, err := teachers.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return reject(model.ReasonTeacherNotFound, nil), nil
		}
		return nil, fmt.Errorf("get teacher: %w", err)
	}

	// Row lock: held until commit, serializing check-and-increment per session.
	session, err := sessions.GetByIDForUpdate(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return reject(model.ReasonSessionNotFound, nil), nil
		}
		return nil, fmt.Errorf("lock session: %w", err)
	}

	st := allocationState{
		session: session,
		teacher: teacher,
	}

	st.alreadyAssigned, err = assignments.Exists(ctx, teacherID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}

	st.teacherSubjectIDs, err = teachers.SubjectIDs(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("teacher subjects: %w", err)
	}

	st.sessionSubjectIDs, err = exams.SubjectIDsBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("session subjects: %w", err)
	}

	st.sameDaySlots, err = assignments.SlotsByTeacherOnDate(ctx, teacherID, session.Date, sessionID)
	if err != nil {
		return nil, fmt.Errorf("same-day slots: %w", err)
	}

	st.liveAssignments, err = assignments.CountByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("count assignments: %w", err)
	}

	if reason, ok := evaluateAllocation(st); !ok {
		return reject(reason, teacher.SupervisionQuota), nil
	}

	// Commit phase: assignment (+ wish), then the counter, one atomic unit.
	assignment := &model.Assignment{TeacherID: teacherID, SessionID: sessionID}
	if err := assignments.Create(ctx, assignment); err != nil {
		if isUniqueViolation(err) {
			// Lost the race for the pair; deterministic duplicate outcome.
			return reject(model.ReasonAlreadyAssigned, nil), nil
		}
		return nil, fmt.Errorf("create assignment: %w", err)
	}

	if mode == model.ModeWish {
		wish := &model.Wish{TeacherID: teacherID, SessionID: sessionID}
		if err := wishes.Create(ctx, wish); err != nil {
			return nil, fmt.Errorf("create wish: %w", err)
		}
	}

	if err := sessions.IncrementEnrolled(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("increment enrolled: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.log.Info().
		Int("teacher_id", teacherID).
		Int("session_id", sessionID).
		Str("mode", string(mode)).
		Msg("Assignment committed")

	msg := "Assignment successful."
	if mode == model.ModeWish {
		msg = "Wish submitted and assignment created."
	}
	return &model.AllocationOutcome{Accepted: true, Message: msg}, nil
}

// ────────────────────────────────────────────────────────────────────────────
// CancelWish
// ────────────────────────────────────────────────────────────────────────────

// CancelWish retracts a wish/assignment pair and restores the session counter
// as one atomic unit. A wish without a matching assignment is pre-existing
// drift: the orphan is deleted and the call reports a degraded success rather
// than failing.
func (s *AllocationService) CancelWish(ctx context.Context, teacherID, sessionID int) (*model.AllocationOutcome, error) {
	outcome, err := s.cancelOnce(ctx, teacherID, sessionID)
	if err != nil && isSerializationError(err) {
		time.Sleep(retryBackoff)
		outcome, err = s.cancelOnce(ctx, teacherID, sessionID)
		if err != nil && isSerializationError(err) {
			return reject(model.ReasonTransientConflict, nil), nil
		}
	}
	if err != nil {
		return nil, err
	}

	if outcome.Accepted {
		evType := "cancelled"
		if outcome.Reason == model.ReasonWishRepaired {
			evType = "repaired"
		}
		s.publishEvent(ctx, PlanningEvent{Type: evType, TeacherID: teacherID, SessionID: sessionID, At: time.Now()})
		s.invalidatePlanningCache(ctx)
	}
	return outcome, nil
}

func (s *AllocationService) cancelOnce(ctx context.Context, teacherID, sessionID int) (*model.AllocationOutcome, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	teachers := s.teacherRepo.WithTx(tx)
	sessions := s.sessionRepo.WithTx(tx)
	assignments := s.assignmentRepo.WithTx(tx)
	wishes := s.wishRepo.WithTx(tx)

	if _, err := teachers.GetByID(ctx, teacherID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return reject(model.ReasonTeacherNotFound, nil), nil
		}
		return nil, fmt.Errorf("get teacher: %w", err)
	}

	if _, err := sessions.GetByIDForUpdate(ctx, sessionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return reject(model.ReasonSessionNotFound, nil), nil
		}
		return nil, fmt.Errorf("lock session: %w", err)
	}

	wishDeleted, err := wishes.Delete(ctx, teacherID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("delete wish: %w", err)
	}
	if !wishDeleted {
		return reject(model.ReasonNothingToCancel, nil), nil
	}

	assignmentDeleted, err := assignments.Delete(ctx, teacherID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("delete assignment: %w", err)
	}

	if !assignmentDeleted {
		// Orphan wish: self-heal and report the repair instead of failing.
		if err := tx.Commit(ctx); err != nil {
			return nil, fmt.Errorf("commit: %w", err)
		}
		s.log.Warn().
			Int("teacher_id", teacherID).
			Int("session_id", sessionID).
			Msg("Orphan wish deleted, no matching assignment")
		return &model.AllocationOutcome{
			Accepted: true,
			Reason:   model.ReasonWishRepaired,
			Message:  reasonMessage(model.ReasonWishRepaired, nil),
		}, nil
	}

	if err := sessions.DecrementEnrolled(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("decrement enrolled: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	s.log.Info().
		Int("teacher_id", teacherID).
		Int("session_id", sessionID).
		Msg("Wish cancelled")

	return &model.AllocationOutcome{Accepted: true, Message: "Wish cancelled and assignment released."}, nil
}

// ────────────────────────────────────────────────────────────────────────────
// Listings
// ────────────────────────────────────────────────────────────────────────────

// ListAssignments returns all committed assignments with teacher/session facts.
func (s *AllocationService) ListAssignments(ctx context.Context) ([]repository.AssignmentRow, error) {
	return s.assignmentRepo.List(ctx)
}

// ListWishes returns all live wishes, newest first.
func (s *AllocationService) ListWishes(ctx context.Context) ([]repository.WishRow, error) {
	return s.wishRepo.List(ctx)
}

// ────────────────────────────────────────────────────────────────────────────
// Internal helpers
// ────────────────────────────────────────────────────────────────────────────

// isUniqueViolation reports whether err is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isSerializationError reports whether err is a serialization failure or
// deadlock (SQLSTATE 40001 / 40P01) worth one retry.
func isSerializationError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// publishEvent pushes a planning event onto the Redis channel. Best effort.
func (s *AllocationService) publishEvent(ctx context.Context, ev PlanningEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := s.rdb.Publish(ctx, config.CacheKey.PlanningEventsChannel(), payload).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Planning event publish failed")
	}
}

func (s *AllocationService) invalidatePlanningCache(ctx context.Context) {
	if err := s.rdb.Del(ctx, config.CacheKey.PlanningSessionsKey()).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Planning cache invalidation failed")
	}
}
