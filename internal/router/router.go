package router

import (
	"time"

	"anypos/internal/config"
	"anypos/internal/handler"
	"anypos/internal/infra"
	"anypos/internal/middleware"
	"anypos/internal/repository"
	"anypos/internal/service"
	"anypos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, mailCB *infra.CircuitBreaker) *gin.Engine {
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
	userRepo := repository.NewUserRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	dayEndRepo := repository.NewDayEndRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	saleSvc := service.NewSaleService(saleRepo)
	dayEndSvc := service.NewDayEndService(dayEndRepo, saleRepo, dispatcher)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	dayEndH := handler.NewDayEndHandler(dayEndSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, mailCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyStaff := middleware.RequireRole(middleware.RoleCashier, middleware.RoleManager, middleware.RoleAdmin)
	managers := middleware.RequireRole(middleware.RoleManager, middleware.RoleAdmin)

	v1 := r.Group("/v1", jwtMW)
	{
		sales := v1.Group("/sales")
		{
			sales.POST("", anyStaff, salesH.Register)
			sales.GET("", anyStaff, salesH.List)
			sales.GET("/:id", anyStaff, salesH.Get)
			sales.DELETE("/:id", managers, salesH.Void)
		}

		dayend := v1.Group("/dayend")
		{
			dayend.POST("/open", anyStaff, dayEndH.Open)
			dayend.GET("/active", anyStaff, dayEndH.GetActive)
			dayend.GET("", managers, dayEndH.List)
			dayend.GET("/cashier/:cashier_id/history", anyStaff, dayEndH.History)
			dayend.GET("/:id", anyStaff, dayEndH.Get)
			dayend.GET("/:id/summary", anyStaff, dayEndH.Summary)
			dayend.POST("/:id/sales/:sale_id", anyStaff, dayEndH.AddSale)
			dayend.POST("/:id/close", anyStaff, dayEndH.Close)
		}

		users := v1.Group("/users", middleware.RequireRole(middleware.RoleAdmin))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.DELETE("/:id", usersH.Deactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
