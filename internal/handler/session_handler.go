package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fsegs/survex-backend/internal/model"
	"github.com/fsegs/survex-backend/internal/response"
	"github.com/fsegs/survex-backend/internal/service"
	"github.com/fsegs/survex-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// SessionHandler handles the planning board, the session/exam import surface,
// and the need calculators.
type SessionHandler struct {
	sessionService  *service.SessionService
	planningService *service.PlanningService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(
	sessionService *service.SessionService,
	planningService *service.PlanningService,
) *SessionHandler {
	return &SessionHandler{
		sessionService:  sessionService,
		planningService: planningService,
	}
}

// List godoc
// GET /api/v1/sessions
// Returns the planning board: every session with exams and batch totals.
func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.sessionService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sessions": sessions})
}

// Get godoc
// GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	session, err := h.sessionService.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// Create godoc
// POST /api/v1/admin/sessions
// Schedules a session with zeroed counters.
func (h *SessionHandler) Create(c *gin.Context) {
	var req model.CreateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.Create(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": session})
}

// AddExam godoc
// POST /api/v1/admin/sessions/:id/exams
// Attaches an exam with its batches; the need stays stale until recomputed.
func (h *SessionHandler) AddExam(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.CreateExamRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	exam, err := h.sessionService.AddExam(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"exam": exam})
}

// CalculateNeed godoc
// POST /api/v1/admin/sessions/:id/calculate-needs
// Recomputes and stores one session's supervisor need.
func (h *SessionHandler) CalculateNeed(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.planningService.ComputeSessionNeed(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	session, err := h.sessionService.Get(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// RecalculateNeeds godoc
// POST /api/v1/admin/sessions/recalculate-needs
// Recomputes every session's need; per-session failures do not abort the run.
func (h *SessionHandler) RecalculateNeeds(c *gin.Context) {
	report, err := h.planningService.RecalculateAllSessionNeeds(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"report": report})
}
