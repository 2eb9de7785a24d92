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
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// planningCacheTTL bounds staleness of the cached planning board. Every
// committed allocation, cancellation and recompute invalidates it anyway.
const planningCacheTTL = 5 * time.Minute

// SessionOverview is a session with its exams as shown on the planning board.
type SessionOverview struct {
	model.Session
	Exams        []repository.ExamOverview `json:"exams"`
	TotalBatches int                       `json:"total_batches"`
	Saturated    bool                      `json:"saturated"`
}

// SessionService handles session listing and the session/exam import surface.
// Import operations never touch derived fields; those belong to the
// calculators.
type SessionService struct {
	sessionRepo *repository.SessionRepository
	examRepo    *repository.ExamRepository
	rdb         *redis.Client
	log         zerolog.Logger
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessionRepo *repository.SessionRepository,
	examRepo *repository.ExamRepository,
	rdb *redis.Client,
	log zerolog.Logger,
) *SessionService {
	return &SessionService{
		sessionRepo: sessionRepo,
		examRepo:    examRepo,
		rdb:         rdb,
		log:         log.With().Str("component", "session_service").Logger(),
	}
}

// List returns the planning board: every session with its exams and batch
// totals. Served from the Redis cache when fresh.
func (s *SessionService) List(ctx context.Context) ([]SessionOverview, error) {
	cacheKey := config.CacheKey.PlanningSessionsKey()

	if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
		var overviews []SessionOverview
		if jsonErr := json.Unmarshal([]byte(cached), &overviews); jsonErr == nil {
			return overviews, nil
		}
		// Corrupt cache entry: fall through to the database.
		s.rdb.Del(ctx, cacheKey)
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Planning cache read failed")
	}

	sessions, err := s.sessionRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	overviews := make([]SessionOverview, 0, len(sessions))
	for i := range sessions {
		ov, err := s.buildOverview(ctx, &sessions[i])
		if err != nil {
			return nil, err
		}
		overviews = append(overviews, *ov)
	}

	if payload, err := json.Marshal(overviews); err == nil {
		if err := s.rdb.Set(ctx, cacheKey, payload, planningCacheTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Planning cache write failed")
		}
	}

	return overviews, nil
}

// Get returns one session with its exams. Returns ErrSessionNotFound when the
// id does not resolve.
func (s *SessionService) Get(ctx context.Context, sessionID int) (*SessionOverview, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return s.buildOverview(ctx, session)
}

// Create schedules a new session with zeroed counters.
func (s *SessionService) Create(ctx context.Context, req *model.CreateSessionRequest) (*model.Session, error) {
	session := &model.Session{
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	s.invalidatePlanningCache(ctx)
	return session, nil
}

// AddExam attaches an exam with its batches to a session. The session's
// required count stays stale until the need calculator runs.
func (s *SessionService) AddExam(ctx context.Context, sessionID int, req *model.CreateExamRequest) (*model.Exam, error) {
	if _, err := s.sessionRepo.GetByID(ctx, sessionID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	exam := &model.Exam{
		SessionID: sessionID,
		SubjectID: req.SubjectID,
		Track:     req.Track,
		ClassName: req.ClassName,
	}
	if err := s.examRepo.CreateWithBatches(ctx, exam, req.BatchCount); err != nil {
		return nil, fmt.Errorf("create exam: %w", err)
	}

	s.invalidatePlanningCache(ctx)

	s.log.Info().
		Int("session_id", sessionID).
		Int("subject_id", req.SubjectID).
		Int("batch_count", req.BatchCount).
		Msg("Exam added to session")
	return exam, nil
}

func (s *SessionService) buildOverview(ctx context.Context, session *model.Session) (*SessionOverview, error) {
	exams, err := s.examRepo.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	if exams == nil {
		exams = []repository.ExamOverview{}
	}

	total := 0
	for _, e := range exams {
		total += e.BatchCount
	}

	return &SessionOverview{
		Session:      *session,
		Exams:        exams,
		TotalBatches: total,
		Saturated:    session.IsSaturated(),
	}, nil
}

func (s *SessionService) invalidatePlanningCache(ctx context.Context) {
	if err := s.rdb.Del(ctx, config.CacheKey.PlanningSessionsKey()).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Planning cache invalidation failed")
	}
}
