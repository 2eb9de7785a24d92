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

// TeacherHandler handles teacher listing, profiles, registration, and the
// quota calculators.
type TeacherHandler struct {
	teacherService  *service.TeacherService
	planningService *service.PlanningService
}

// NewTeacherHandler creates a new TeacherHandler.
func NewTeacherHandler(
	teacherService *service.TeacherService,
	planningService *service.PlanningService,
) *TeacherHandler {
	return &TeacherHandler{
		teacherService:  teacherService,
		planningService: planningService,
	}
}

// List godoc
// GET /api/v1/teachers
func (h *TeacherHandler) List(c *gin.Context) {
	teachers, err := h.teacherService.List(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if teachers == nil {
		teachers = []model.Teacher{}
	}
	response.Success(c, http.StatusOK, gin.H{"teachers": teachers})
}

// GetProfile godoc
// GET /api/v1/teachers/:id
// Returns the teacher with subjects and current assignments.
func (h *TeacherHandler) GetProfile(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	profile, err := h.teacherService.GetProfile(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTeacherNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrTeacherNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"teacher": profile})
}

// Create godoc
// POST /api/v1/admin/teachers
// Registers a teacher with their taught subjects.
func (h *TeacherHandler) Create(c *gin.Context) {
	var req model.CreateTeacherRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	teacher, err := h.teacherService.Create(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"teacher": teacher})
}

// CalculateQuota godoc
// POST /api/v1/admin/teachers/:id/calculate-quota
// Recomputes and stores one teacher's supervision quota.
func (h *TeacherHandler) CalculateQuota(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.planningService.ComputeTeacherQuota(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrTeacherNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrTeacherNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	profile, err := h.teacherService.GetProfile(c.Request.Context(), id)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"teacher": profile})
}

// RecalculateQuotas godoc
// POST /api/v1/admin/teachers/recalculate-quotas
// Recomputes every teacher's quota; per-teacher failures do not abort the run.
func (h *TeacherHandler) RecalculateQuotas(c *gin.Context) {
	report, err := h.planningService.RecalculateAllTeacherQuotas(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"report": report})
}
