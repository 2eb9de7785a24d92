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

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService    *service.AuthService
	teacherService *service.TeacherService
	userRepo       *repository.UserRepository
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService *service.AuthService,
	teacherService *service.TeacherService,
	userRepo *repository.UserRepository,
) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		teacherService: teacherService,
		userRepo:       userRepo,
	}
}

// Login godoc
// POST /api/v1/auth/login
// Validates login + password, returns JWT plus the role-based landing route.
// Teacher accounts additionally get their full profile embedded.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, err := h.userRepo.GetByLogin(c.Request.Context(), req.Login)
	if err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if err := h.authService.CheckPassword(user.PasswordHash, req.Password); err != nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	token, err := h.authService.GenerateToken(c.Request.Context(), user)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	data := gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"login": user.Login,
			"role":  user.Role,
		},
		"redirect": redirectFor(user),
	}

	if user.Role == model.RoleTeacher && user.TeacherID != nil {
		profile, err := h.teacherService.GetProfile(c.Request.Context(), *user.TeacherID)
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		data["teacher"] = profile
	}

	response.Success(c, http.StatusOK, data)
}

// Logout godoc
// POST /api/v1/auth/logout
// Invalidates the current session; the token fails validation from then on.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims.UserID); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the currently authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	user, err := h.userRepo.GetByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	data := gin.H{
		"user": gin.H{
			"id":    user.ID,
			"login": user.Login,
			"role":  user.Role,
		},
	}

	if user.Role == model.RoleTeacher && user.TeacherID != nil {
		profile, err := h.teacherService.GetProfile(c.Request.Context(), *user.TeacherID)
		if err != nil {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
			return
		}
		data["teacher"] = profile
	}

	response.Success(c, http.StatusOK, data)
}

// redirectFor maps a role to its frontend landing route.
func redirectFor(user *model.User) string {
	if user.IsAdmin() {
		return "/admin"
	}
	return "/teacher"
}
