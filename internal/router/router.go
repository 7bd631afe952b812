package router

import (
	"time"

	"github.com/BrightonDube/BizPilot2-sub004/internal/config"
	"github.com/BrightonDube/BizPilot2-sub004/internal/handler"
	"github.com/BrightonDube/BizPilot2-sub004/internal/infra"
	"github.com/BrightonDube/BizPilot2-sub004/internal/middleware"
	"github.com/BrightonDube/BizPilot2-sub004/internal/repository"
	"github.com/BrightonDube/BizPilot2-sub004/internal/service"
	"github.com/BrightonDube/BizPilot2-sub004/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(
	cfg *config.Config,
	db *gorm.DB,
	rdb *redis.Client,
	auditCB *infra.CircuitBreaker,
	dispatcher *worker.Dispatcher,
	clk clockwork.Clock,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	sessionRepo := repository.NewSessionRepository(db, cfg.LockTimeout())
	registerRepo := repository.NewRegisterRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	sessionSvc := service.NewSessionService(sessionRepo, registerRepo, dispatcher, clk)
	movementSvc := service.NewMovementService(sessionRepo, dispatcher, clk)
	reportSvc := service.NewReportService(reportRepo, cfg.Tolerance())
	registerSvc := service.NewRegisterService(registerRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	sessionH := handler.NewSessionHandler(sessionSvc)
	movementH := handler.NewMovementHandler(movementSvc)
	reportH := handler.NewReportHandler(reportSvc)
	registerH := handler.NewRegisterHandler(registerSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, auditCB))

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		anyStaff := middleware.RequireRole(middleware.RoleCashier, middleware.RoleSupervisor, middleware.RoleAdmin)
		backOffice := middleware.RequireRole(middleware.RoleSupervisor, middleware.RoleAdmin)
		mutation := middleware.MutationRateLimiter()

		cash := v1.Group("/cash")
		{
			cash.POST("/open", anyStaff, mutation, sessionH.Open)
			cash.POST("/close", anyStaff, mutation, sessionH.Close)
			cash.POST("/movement", anyStaff, mutation, movementH.RecordMovement)
			cash.POST("/sale", anyStaff, mutation, movementH.RecordSale)
			cash.POST("/refund", anyStaff, mutation, movementH.RecordRefund)
			cash.GET("/active", anyStaff, sessionH.GetActive)
			cash.GET("/history", backOffice, sessionH.History)
			cash.GET("/:id/report", anyStaff, sessionH.GetReport)
			cash.GET("/:id/movements", anyStaff, movementH.ListMovements)
		}

		v1.GET("/reports/cash", backOffice, reportH.Reconciliation)

		registers := v1.Group("/registers", middleware.RequireRole(middleware.RoleAdmin))
		{
			registers.POST("", registerH.Create)
			registers.GET("", registerH.List)
			registers.GET("/:id", registerH.Get)
			registers.PUT("/:id", registerH.Rename)
			registers.PATCH("/:id/deactivate", registerH.Deactivate)
			registers.PATCH("/:id/reactivate", registerH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
