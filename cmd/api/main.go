package main

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"compliance-platform/internal/config"
	"compliance-platform/internal/domain"
	"compliance-platform/internal/handler"
	"compliance-platform/internal/middleware"
	"compliance-platform/internal/repository"
	"compliance-platform/internal/service"
	"compliance-platform/internal/service/auth"
	"compliance-platform/internal/service/search"
	"compliance-platform/internal/workflow"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	logrus.SetFormatter(&logrus.JSONFormatter{})
	if os.Getenv("ENVIRONMENT") == "development" {
		logrus.SetFormatter(&logrus.TextFormatter{})
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg := config.Load()

	def, err := workflow.ByName(cfg.WorkflowVariant)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid workflow configuration")
	}
	policy := workflow.NewPolicy(def)

	db, err := config.NewPostgresDB(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	rdb, err := config.NewRedisClient(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer rdb.Close()

	minioClient, err := config.NewMinIOClient(cfg)
	if err != nil {
		logrus.WithError(err).Warn("Failed to connect to MinIO, evidence uploads will not work")
	}

	index := search.NewNoopIndex()
	if cfg.SearchEnabled {
		bleveIdx, err := config.NewSearchIndex(cfg)
		if err != nil {
			logrus.WithError(err).Warn("Failed to open search index, falling back to database search")
		} else {
			index = search.NewBleveIndex(bleveIdx)
			defer bleveIdx.Close()
		}
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, cfg, policy, rdb, minioClient, index)
	handlers := handler.NewHandlers(services)

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, PATCH, DELETE, OPTIONS",
	}))

	setupRoutes(app, handlers, services.Auth)

	logrus.WithFields(logrus.Fields{
		"port":     cfg.Port,
		"workflow": def.Name,
	}).Info("Server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		logrus.WithError(err).Fatal("Failed to start server")
	}
}

func setupRoutes(app *fiber.App, h *handler.Handlers, authService auth.Service) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.Refresh)
	authGroup.Post("/forgot-password", h.Auth.ForgotPassword)
	authGroup.Post("/reset-password", h.Auth.ResetPassword)

	protected := v1.Group("", middleware.AuthRequired(authService))
	protected.Post("/auth/logout", h.Auth.Logout)

	adminOnly := middleware.RequireRole(domain.RoleAdmin)
	auditReaders := middleware.RequireRole(domain.RoleAdmin, domain.RoleComplianceMaker, domain.RoleComplianceChecker)

	users := protected.Group("/users")
	users.Get("/me", h.Auth.Me)
	users.Post("/", adminOnly, h.User.Create)
	users.Get("/", adminOnly, h.User.List)
	users.Post("/assign-role", adminOnly, h.User.AssignRole)
	users.Get("/:id", adminOnly, h.User.Get)
	users.Delete("/:id", adminOnly, h.User.Deactivate)
	users.Put("/:id/departments", adminOnly, h.User.SetDepartments)

	departments := protected.Group("/departments")
	departments.Post("/", adminOnly, h.Department.Create)
	departments.Get("/", h.Department.List)
	departments.Get("/:id", h.Department.Get)
	departments.Put("/:id", adminOnly, h.Department.Update)
	departments.Delete("/:id", adminOnly, h.Department.Delete)

	regulations := protected.Group("/regulations")
	regulations.Get("/search", h.Regulation.Search)
	regulations.Post("/", h.Regulation.Create)
	regulations.Get("/", h.Regulation.List)
	regulations.Get("/:id", h.Regulation.Get)
	regulations.Put("/:id", h.Regulation.Update)
	regulations.Delete("/:id", h.Regulation.Delete)
	regulations.Post("/:id/transition", h.Regulation.Transition)
	regulations.Get("/:id/transitions", h.Regulation.AvailableTransitions)
	regulations.Get("/:id/audit", h.Regulation.AuditTrail)
	regulations.Post("/:id/articles", h.Article.Create)
	regulations.Get("/:id/articles", h.Article.ListByRegulation)

	articles := protected.Group("/articles")
	articles.Get("/:id", h.Article.Get)
	articles.Put("/:id", h.Article.Update)
	articles.Delete("/:id", h.Article.Delete)
	articles.Put("/:id/compliance/:departmentId", h.Compliance.Record)
	articles.Get("/:id/compliance", h.Compliance.ListByArticle)

	compliance := protected.Group("/compliance")
	compliance.Get("/summary", h.Compliance.Summary)
	compliance.Post("/:id/evidence", h.Evidence.Upload)
	compliance.Get("/:id/evidence", h.Evidence.List)

	protected.Delete("/evidence/:id", h.Evidence.Delete)

	notifications := protected.Group("/notifications")
	notifications.Get("/", h.Notification.List)
	notifications.Get("/unread-count", h.Notification.UnreadCount)
	notifications.Patch("/:id/read", h.Notification.MarkAsRead)
	notifications.Post("/mark-all-read", h.Notification.MarkAllAsRead)

	audit := protected.Group("/audit", auditReaders)
	audit.Get("/", h.Audit.List)
	audit.Get("/recent", h.Audit.Recent)

	protected.Get("/dashboard/stats", h.Dashboard.Stats)

	exports := protected.Group("/exports", auditReaders)
	exports.Get("/regulations.csv", h.Export.RegulationsCSV)
	exports.Get("/regulations.xlsx", h.Export.RegulationsXLSX)
	exports.Get("/compliance-summary.csv", h.Export.ComplianceSummaryCSV)
	exports.Get("/audit-logs.csv", h.Export.AuditLogsCSV)
}
