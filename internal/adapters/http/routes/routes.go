package routes

import (
	"insureadmin/internal/adapters/http/handlers"
	"insureadmin/internal/adapters/http/middleware"
	"insureadmin/internal/adapters/persistence/repositories"
	"insureadmin/internal/config"
	"insureadmin/internal/core/services"
	"insureadmin/internal/core/session"
	"insureadmin/internal/core/state"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"gorm.io/gorm"
)

// Deps holds the app-level dependencies routes need beyond the database
type Deps struct {
	Sessions *session.Store
}

// Setup configures all routes for the application and returns the cron
// service so the caller owns its lifecycle.
func Setup(app *fiber.App, db *gorm.DB, cfg *config.Config, deps Deps) *services.CronService {
	// Initialize repositories
	userRepo := repositories.NewUserRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	refreshTokenRepo := repositories.NewRefreshTokenRepository(db)
	policyRepo := repositories.NewPolicyRepository(db)
	enrollmentRepo := repositories.NewEnrollmentRepository(db)
	agentClientRepo := repositories.NewAgentClientRepository(db)

	// Initialize services
	notifyService := services.NewNotificationService(cfg)
	authService := services.NewAuthService(userRepo, roleRepo, refreshTokenRepo, notifyService, cfg)
	userService := services.NewUserService(userRepo, roleRepo, agentClientRepo)
	policyService := services.NewPolicyService(policyRepo, enrollmentRepo, agentClientRepo, notifyService)
	reportService := services.NewReportService(db, agentClientRepo)
	cronService := services.NewCronService(enrollmentRepo, refreshTokenRepo, notifyService)

	// Client state manager and session bridge
	states := state.NewManager(state.Deps{
		Auth:     authService,
		Users:    userService,
		Policies: policyService,
		Reports:  reportService,
		Notifier: notifyService,
	}, deps.Sessions)
	bridge := session.NewBridge(deps.Sessions, states)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler()
	authHandler := handlers.NewAuthHandler(authService, bridge, cfg)
	userHandler := handlers.NewUserHandler(userService, states)
	policyHandler := handlers.NewPolicyHandler(policyService, states)
	dashboardHandler := handlers.NewDashboardHandler(reportService, states)

	// Health check & root routes
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.HealthCheck)

	// Prometheus scrape endpoint
	app.Get("/metrics", middleware.MetricsHandler())

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API v1 group
	apiV1 := app.Group("/api/v1")
	setupAPIV1Routes(apiV1, healthHandler, authHandler, userHandler, policyHandler, dashboardHandler, cfg)

	return cronService
}

// setupAPIV1Routes configures API v1 routes
func setupAPIV1Routes(
	router fiber.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	policyHandler *handlers.PolicyHandler,
	dashboardHandler *handlers.DashboardHandler,
	cfg *config.Config,
) {
	router.Get("/", healthHandler.APIInfo)

	// Auth routes (public, rate limited)
	auth := router.Group("/auth", middleware.NoCacheHeaders())
	auth.Post("/signup", middleware.AuthRateLimiter(), authHandler.SignUp)
	auth.Post("/signin", middleware.AuthRateLimiter(), authHandler.SignIn)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/reset-password", middleware.StrictRateLimiter(), authHandler.RequestPasswordReset)
	auth.Post("/update-password", middleware.StrictRateLimiter(), authHandler.UpdatePassword)

	// Auth routes (authenticated)
	auth.Post("/logout", middleware.AuthMiddleware(cfg), authHandler.Logout)
	auth.Post("/logout-all", middleware.AuthMiddleware(cfg), authHandler.LogoutAll)
	auth.Get("/me", middleware.AuthMiddleware(cfg), authHandler.Me)

	// User management (admin only, except agent client listing)
	users := router.Group("/users", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	users.Get("/", middleware.AdminOnly(), userHandler.ListUsers)
	users.Post("/", middleware.AdminOnly(), userHandler.CreateUser)
	users.Get("/:id", middleware.AdminOnly(), userHandler.GetUser)
	users.Put("/:id", middleware.AdminOnly(), userHandler.UpdateUser)
	users.Delete("/:id", middleware.AdminOnly(), userHandler.DeleteUser)
	users.Get("/:id/clients", middleware.AgentOrAdmin(), userHandler.ListClients)
	users.Post("/:id/clients", middleware.AdminOnly(), userHandler.AssignClient)
	users.Delete("/:id/clients/:clientId", middleware.AdminOnly(), userHandler.UnassignClient)

	// Roles
	router.Get("/roles", middleware.AuthMiddleware(cfg), userHandler.ListRoles)
	router.Get("/roles/:name/users", middleware.AuthMiddleware(cfg), middleware.AdminOnly(), userHandler.ListUsersByRole)

	// Policy catalog (readable by all authenticated roles, writable by admin)
	policies := router.Group("/policies", middleware.AuthMiddleware(cfg))
	policies.Get("/", middleware.CatalogCache(), policyHandler.ListCatalog)
	policies.Get("/:id", middleware.CatalogCache(), policyHandler.GetCatalogPolicy)
	policies.Post("/", middleware.AdminOnly(), policyHandler.CreateCatalogPolicy)
	policies.Put("/:id", middleware.AdminOnly(), policyHandler.UpdateCatalogPolicy)
	policies.Delete("/:id", middleware.AdminOnly(), policyHandler.DeleteCatalogPolicy)

	// Enrollments (role scoping happens in the service)
	enrollments := router.Group("/enrollments", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	enrollments.Get("/", policyHandler.ListEnrollments)
	enrollments.Get("/:id", policyHandler.GetEnrollment)
	enrollments.Post("/", policyHandler.CreateEnrollment)
	enrollments.Put("/:id", policyHandler.UpdateEnrollment)
	enrollments.Delete("/:id", policyHandler.DeleteEnrollment)

	// Dashboard
	dashboard := router.Group("/dashboard", middleware.AuthMiddleware(cfg), middleware.NoCacheHeaders())
	dashboard.Get("/", dashboardHandler.Dashboard)
	dashboard.Get("/counts-by-type-status", dashboardHandler.CountsByTypeStatus)
	dashboard.Get("/monthly-coverage", dashboardHandler.MonthlyCoverage)
	dashboard.Get("/coverage-by-type", dashboardHandler.CoverageByType)
	dashboard.Get("/premium-by-type", dashboardHandler.PremiumByType)
}
