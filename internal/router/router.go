package router

import (
	"net/http"
	"time"

	"github.com/fsegs/survex-backend/internal/config"
	"github.com/fsegs/survex-backend/internal/handler"
	"github.com/fsegs/survex-backend/internal/middleware"
	"github.com/fsegs/survex-backend/internal/response"
	"github.com/fsegs/survex-backend/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Subject    *handler.SubjectHandler
	Teacher    *handler.TeacherHandler
	Session    *handler.SessionHandler
	Allocation *handler.AllocationHandler
	WS         *handler.WSHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	authService *service.AuthService,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// Rate limiter for auth routes (30 requests per minute per IP).
	authLimiter := middleware.NewRateLimiter(30, time.Minute)

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := router.Group("/api/v1/auth")
	{
		auth.POST("/login", authLimiter.Middleware(), handlers.Auth.Login)

		// Authenticated profile routes
		auth.POST("/logout", middleware.RequireAuth(authService), handlers.Auth.Logout)
		auth.GET("/me", middleware.RequireAuth(authService), handlers.Auth.Me)
	}

	// ─── 2. Shared Read Group (Any Authenticated User) ─────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireAuth(authService))
	{
		api.GET("/subjects", handlers.Subject.GetAll)
		api.GET("/teachers", handlers.Teacher.List)
		api.GET("/teachers/:id", handlers.Teacher.GetProfile)
		api.GET("/sessions", handlers.Session.List)
		api.GET("/sessions/:id", handlers.Session.Get)
		api.GET("/assignments", handlers.Allocation.ListAssignments)
	}

	// ─── 3. Teacher Group (Wish Workflow) ──────────────────────────────
	teacherAPI := router.Group("/api/v1/teacher")
	teacherAPI.Use(middleware.RequireTeacherJWT(authService))
	{
		teacherAPI.POST("/wishes", handlers.Allocation.SubmitWish)
		teacherAPI.DELETE("/wishes/:session_id", handlers.Allocation.CancelWish)
	}

	// ─── 4. WebSocket Group (Query Token Auth) ─────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(authService))
	{
		ws.GET("/planning/stream", handlers.WS.PlanningStream)
	}

	// ─── 5. Admin Group (Planner Only) ─────────────────────────────────
	adminAPI := router.Group("/api/v1/admin")
	adminAPI.Use(middleware.RequireAdminJWT(authService))
	{
		// Subject reference data
		adminAPI.POST("/subjects", handlers.Subject.Create)
		adminAPI.PUT("/subjects/:id", handlers.Subject.Update)
		adminAPI.DELETE("/subjects/:id", handlers.Subject.Delete)

		// Teacher import and quota calculators
		adminAPI.POST("/teachers", handlers.Teacher.Create)
		adminAPI.POST("/teachers/recalculate-quotas", handlers.Teacher.RecalculateQuotas)
		adminAPI.POST("/teachers/:id/calculate-quota", handlers.Teacher.CalculateQuota)

		// Session/exam import and need calculators
		adminAPI.POST("/sessions", handlers.Session.Create)
		adminAPI.POST("/sessions/recalculate-needs", handlers.Session.RecalculateNeeds)
		adminAPI.POST("/sessions/:id/exams", handlers.Session.AddExam)
		adminAPI.POST("/sessions/:id/calculate-needs", handlers.Session.CalculateNeed)

		// Direct assignment and wish oversight
		adminAPI.POST("/assignments", handlers.Allocation.AssignTeacher)
		adminAPI.GET("/wishes", handlers.Allocation.ListWishes)
	}

	return router
}
