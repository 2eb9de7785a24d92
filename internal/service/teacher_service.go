package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/fsegs/survex-backend/internal/model"
	"github.com/fsegs/survex-backend/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// TeacherProfile is a teacher with taught subjects and current duties, the
// shape returned to the teacher dashboard and embedded in the login response.
type TeacherProfile struct {
	model.Teacher
	Subjects        []model.Subject            `json:"subjects"`
	Assignments     []repository.AssignmentRow `json:"assignments"`
	LiveAssignments int                        `json:"live_assignments"`
}

// TeacherService handles teacher listing, profiles, and registration.
type TeacherService struct {
	teacherRepo    *repository.TeacherRepository
	assignmentRepo *repository.AssignmentRepository
	log            zerolog.Logger
}

// NewTeacherService creates a new TeacherService.
func NewTeacherService(
	teacherRepo *repository.TeacherRepository,
	assignmentRepo *repository.AssignmentRepository,
	log zerolog.Logger,
) *TeacherService {
	return &TeacherService{
		teacherRepo:    teacherRepo,
		assignmentRepo: assignmentRepo,
		log:            log.With().Str("component", "teacher_service").Logger(),
	}
}

// List returns all teachers.
func (s *TeacherService) List(ctx context.Context) ([]model.Teacher, error) {
	return s.teacherRepo.List(ctx)
}

// GetProfile returns a teacher with subjects and assignments. Returns
// ErrTeacherNotFound when the id does not resolve.
func (s *TeacherService) GetProfile(ctx context.Context, teacherID int) (*TeacherProfile, error) {
	teacher, err := s.teacherRepo.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTeacherNotFound
		}
		return nil, fmt.Errorf("get teacher: %w", err)
	}

	subjects, err := s.teacherRepo.Subjects(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("teacher subjects: %w", err)
	}
	if subjects == nil {
		subjects = []model.Subject{}
	}

	assignments, err := s.assignmentRepo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("teacher assignments: %w", err)
	}
	if assignments == nil {
		assignments = []repository.AssignmentRow{}
	}

	return &TeacherProfile{
		Teacher:         *teacher,
		Subjects:        subjects,
		Assignments:     assignments,
		LiveAssignments: len(assignments),
	}, nil
}

// Create registers a teacher with their taught subjects. The supervision
// quota stays unset until the load calculator runs.
func (s *TeacherService) Create(ctx context.Context, req *model.CreateTeacherRequest) (*model.Teacher, error) {
	teacher := &model.Teacher{
		FullName:     req.FullName,
		Grade:        req.Grade,
		TeachingLoad: req.TeachingLoad,
	}
	if err := s.teacherRepo.Create(ctx, teacher, req.SubjectIDs); err != nil {
		return nil, fmt.Errorf("create teacher: %w", err)
	}

	s.log.Info().
		Int("teacher_id", teacher.ID).
		Int("subjects", len(req.SubjectIDs)).
		Msg("Teacher registered")
	return teacher, nil
}
