package handler

import (
	"net/http"

	"github.com/fsegs/survex-backend/internal/middleware"
	"github.com/fsegs/survex-backend/internal/model"
	"github.com/fsegs/survex-backend/internal/repository"
	"github.com/fsegs/survex-backend/internal/response"
	"github.com/fsegs/survex-backend/internal/service"
	"github.com/fsegs/survex-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// AllocationHandler exposes the allocation engine: wish submission and
// cancellation for teachers, direct assignment for planners, plus listings.
type AllocationHandler struct {
	allocationService *service.AllocationService
}

// NewAllocationHandler creates a new AllocationHandler.
func NewAllocationHandler(allocationService *service.AllocationService) *AllocationHandler {
	return &AllocationHandler{allocationService: allocationService}
}

// SubmitWish godoc
// POST /api/v1/teacher/wishes
// Submits a wish for the authenticated teacher. A rule rejection is a normal
// outcome, reported with the first rule that failed.
func (h *AllocationHandler) SubmitWish(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil || claims.TeacherID == nil {
		response.Fail(c, http.StatusForbidden, response.ErrTeacherAccessOnly)
		return
	}

	var req model.SubmitWishRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	outcome, err := h.allocationService.RequestAssignment(
		c.Request.Context(), *claims.TeacherID, req.SessionID, model.ModeWish)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	writeOutcome(c, outcome, http.StatusCreated)
}

// CancelWish godoc
// DELETE /api/v1/teacher/wishes/:session_id
// Retracts the authenticated teacher's wish for a session.
func (h *AllocationHandler) CancelWish(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil || claims.TeacherID == nil {
		response.Fail(c, http.StatusForbidden, response.ErrTeacherAccessOnly)
		return
	}

	sessionID, ok := paramID(c, "session_id")
	if !ok {
		return
	}

	outcome, err := h.allocationService.CancelWish(c.Request.Context(), *claims.TeacherID, sessionID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	writeOutcome(c, outcome, http.StatusOK)
}

// AssignTeacher godoc
// POST /api/v1/admin/assignments
// Directly assigns a teacher to a session. Goes through the identical rule
// gate as wish submission; only the wish row is skipped.
func (h *AllocationHandler) AssignTeacher(c *gin.Context) {
	var req model.AssignRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	outcome, err := h.allocationService.RequestAssignment(
		c.Request.Context(), req.TeacherID, req.SessionID, model.ModeDirect)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	writeOutcome(c, outcome, http.StatusCreated)
}

// ListAssignments godoc
// GET /api/v1/assignments
func (h *AllocationHandler) ListAssignments(c *gin.Context) {
	assignments, err := h.allocationService.ListAssignments(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if assignments == nil {
		assignments = []repository.AssignmentRow{}
	}
	response.Success(c, http.StatusOK, gin.H{"assignments": assignments})
}

// ListWishes godoc
// GET /api/v1/admin/wishes
func (h *AllocationHandler) ListWishes(c *gin.Context) {
	wishes, err := h.allocationService.ListWishes(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if wishes == nil {
		wishes = []repository.WishRow{}
	}
	response.Success(c, http.StatusOK, gin.H{"wishes": wishes})
}

// writeOutcome maps an allocation outcome to the HTTP surface. Accepted
// outcomes carry the outcome body (including degraded successes, which keep
// their reason); rejections keep the engine's reason code and message.
func writeOutcome(c *gin.Context, outcome *model.AllocationOutcome, successStatus int) {
	if outcome.Accepted {
		response.Success(c, successStatus, gin.H{"outcome": outcome})
		return
	}

	status, code := rejectionStatus(outcome.Reason)
	response.FailWithMessage(c, status, code, outcome.Message)
}

// rejectionStatus maps a rejection reason to its HTTP status and error code.
func rejectionStatus(reason model.AllocationReason) (int, response.ErrCode) {
	switch reason {
	case model.ReasonTeacherNotFound:
		return http.StatusNotFound, response.ErrTeacherNotFound
	case model.ReasonSessionNotFound:
		return http.StatusNotFound, response.ErrSessionNotFound
	case model.ReasonAlreadyAssigned:
		return http.StatusConflict, response.ErrAlreadyAssigned
	case model.ReasonSessionFull:
		return http.StatusConflict, response.ErrSessionFull
	case model.ReasonSubjectConflict:
		return http.StatusConflict, response.ErrSubjectConflict
	case model.ReasonTimeConflict:
		return http.StatusConflict, response.ErrTimeConflict
	case model.ReasonQuotaReached:
		return http.StatusConflict, response.ErrQuotaReached
	case model.ReasonNothingToCancel:
		return http.StatusNotFound, response.ErrNothingToCancel
	case model.ReasonTransientConflict:
		return http.StatusConflict, response.ErrTransientConflict
	default:
		return http.StatusConflict, response.ErrConflict
	}
}
