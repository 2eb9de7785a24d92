package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/fsegs/survex-backend/internal/config"
	"github.com/fsegs/survex-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Sentinel errors surfaced by the calculators.
var (
	ErrTeacherNotFound = errors.New("teacher not found")
	ErrSessionNotFound = errors.New("session not found")
)

// supervisorsPerBatch is the staffing ratio of the need and quota formulas:
// every batch consumes one and a half supervisors, and every teaching hour
// earns one and a half supervision slots.
const supervisorsPerBatch = 1.5

// RecalcReport summarizes a batch recomputation run. Each entity update is its
// own unit of work: one failure never rolls back or aborts the others.
type RecalcReport struct {
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// PlanningService owns the two derived-quantity calculators: session need and
// teacher supervision quota. Derived fields are stale until recomputed; the
// allocation engine compares against the stored values at decision time.
type PlanningService struct {
	sessionRepo *repository.SessionRepository
	teacherRepo *repository.TeacherRepository
	examRepo    *repository.ExamRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewPlanningService creates a new PlanningService.
func NewPlanningService(
	sessionRepo *repository.SessionRepository,
	teacherRepo *repository.TeacherRepository,
	examRepo *repository.ExamRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *PlanningService {
	return &PlanningService{
		sessionRepo: sessionRepo,
		teacherRepo: teacherRepo,
		examRepo:    examRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "planning_service").Logger(),
	}
}

// requiredSupervisors derives a session's supervisor need from its total
// batch count. Rounding is always upward: a fractional requirement consumes a
// whole additional supervisor.
func requiredSupervisors(totalBatches int) int {
	return int(math.Ceil(float64(totalBatches) * supervisorsPerBatch))
}

// supervisionQuota derives a teacher's quota from teaching load, crediting
// sessions that already examine the teacher's own subjects. Floors at zero.
func supervisionQuota(teachingLoad float64, ownSubjectSessions int) float64 {
	q := teachingLoad*supervisorsPerBatch - float64(ownSubjectSessions)
	if q < 0 {
		return 0
	}
	return q
}

// ComputeSessionNeed recomputes and stores requiredSupervisors for a session.
// Idempotent: unchanged batch data yields the same value.
func (s *PlanningService) ComputeSessionNeed(ctx context.Context, sessionID int) error {
	total, err := s.examRepo.CountBatchesBySession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("count batches: %w", err)
	}

	needed := requiredSupervisors(total)
	if err := s.sessionRepo.UpdateRequiredSupervisors(ctx, sessionID, needed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("store need: %w", err)
	}

	s.invalidatePlanningCache(ctx)

	s.log.Debug().
		Int("session_id", sessionID).
		Int("total_batches", total).
		Int("required_supervisors", needed).
		Msg("Session need recomputed")
	return nil
}

// ComputeTeacherQuota recomputes and stores supervisionQuota for a teacher.
// A teacher without a teaching load is not yet computable: the quota stays
// unset rather than defaulting to zero.
func (s *PlanningService) ComputeTeacherQuota(ctx context.Context, teacherID int) error {
	teacher, err := s.teacherRepo.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTeacherNotFound
		}
		return fmt.Errorf("get teacher: %w", err)
	}

	if teacher.TeachingLoad == nil {
		s.log.Debug().Int("teacher_id", teacherID).Msg("Teaching load unset, quota left uncomputed")
		return nil
	}

	ownSessions, err := s.teacherRepo.CountOwnSubjectSessions(ctx, teacherID)
	if err != nil {
		return fmt.Errorf("count own-subject sessions: %w", err)
	}

	quota := supervisionQuota(*teacher.TeachingLoad, ownSessions)
	if err := s.teacherRepo.UpdateSupervisionQuota(ctx, teacherID, quota); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTeacherNotFound
		}
		return fmt.Errorf("store quota: %w", err)
	}

	s.log.Debug().
		Int("teacher_id", teacherID).
		Float64("teaching_load", *teacher.TeachingLoad).
		Int("own_subject_sessions", ownSessions).
		Float64("supervision_quota", quota).
		Msg("Teacher quota recomputed")
	return nil
}

// RecalculateAllSessionNeeds recomputes every session's need. Failures are
// isolated per session and reported in the aggregate.
func (s *PlanningService) RecalculateAllSessionNeeds(ctx context.Context) (*RecalcReport, error) {
	ids, err := s.sessionRepo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	report := &RecalcReport{}
	for _, id := range ids {
		if err := s.ComputeSessionNeed(ctx, id); err != nil {
			report.Failed++
			s.log.Warn().Err(err).Int("session_id", id).Msg("Need recompute failed")
			continue
		}
		report.Updated++
	}
	return report, nil
}

// RecalculateAllTeacherQuotas recomputes every teacher's quota with the same
// per-entity failure isolation.
func (s *PlanningService) RecalculateAllTeacherQuotas(ctx context.Context) (*RecalcReport, error) {
	ids, err := s.teacherRepo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}

	report := &RecalcReport{}
	for _, id := range ids {
		if err := s.ComputeTeacherQuota(ctx, id); err != nil {
			report.Failed++
			s.log.Warn().Err(err).Int("teacher_id", id).Msg("Quota recompute failed")
			continue
		}
		report.Updated++
	}
	return report, nil
}

// invalidatePlanningCache drops the cached planning board. Best effort: a
// Redis hiccup must not fail a recompute that already committed.
func (s *PlanningService) invalidatePlanningCache(ctx context.Context) {
	if err := s.rdb.Del(ctx, config.CacheKey.PlanningSessionsKey()).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Planning cache invalidation failed")
	}
}
