package main

import (
	"log"

	"case_radar_go/config"
	"case_radar_go/db"
	"case_radar_go/handlers"
	"case_radar_go/middleware"
	"case_radar_go/models"
	"case_radar_go/services"
	"case_radar_go/services/jobs"
	"case_radar_go/services/monitor"
	"case_radar_go/services/rules"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&models.User{},
		&models.Case{},
		&models.CaseParty{},
		&models.MonitoredCase{},
		&models.CaseAct{},
		&models.CaseChangeLogEntry{},
		&models.NotificationRule{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Shared rule cache: CRUD invalidation must reach the cycle's evaluations
	ruleCache := rules.NewCache(rules.DefaultTTL)

	// Start the background monitoring and reminder jobs
	scheduler := jobs.StartScheduler(db.DB, cfg, ruleCache)

	ruleHandlers := handlers.NewRuleHandlers(services.NewRuleService(db.DB, ruleCache))
	monitoringHandlers := handlers.NewMonitoringHandlers(monitor.NewService(db.DB), scheduler)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// All routes require a resolved user (auth lives upstream)
	api := e.Group("/api")
	api.Use(middleware.RequireUser())
	{
		// Notification read API
		api.GET("/notifications", handlers.GetNotificationsHandler)
		api.GET("/notifications/unread", handlers.GetUnreadNotificationsHandler)
		api.GET("/notifications/count", handlers.GetUnreadCountHandler)
		api.POST("/notifications/:id/read", handlers.MarkNotificationReadHandler)
		api.POST("/notifications/read-all", handlers.MarkAllNotificationsReadHandler)

		// Rule management API
		api.GET("/notification-rules", ruleHandlers.ListRules)
		api.POST("/notification-rules", ruleHandlers.CreateRule)
		api.GET("/notification-rules/:id", ruleHandlers.GetRule)
		api.PUT("/notification-rules/:id", ruleHandlers.UpdateRule)
		api.PUT("/notification-rules/:id/enabled", ruleHandlers.ToggleRule)
		api.DELETE("/notification-rules/:id", ruleHandlers.DeleteRule)

		// Monitoring lifecycle + manual trigger
		api.GET("/cases/:id/monitor", monitoringHandlers.GetMonitoredCase)
		api.POST("/cases/:id/monitor", monitoringHandlers.EnrollCase)
		api.POST("/cases/:id/monitor/pause", monitoringHandlers.PauseCase)
		api.POST("/cases/:id/monitor/resume", monitoringHandlers.ResumeCase)
		api.POST("/cases/:id/monitor/check", monitoringHandlers.TriggerCheck)
		api.GET("/cases/:id/acts/export", monitoringHandlers.ExportCaseActivity)
	}

	// Start server
	log.Printf("Starting server on port %s (%s)", cfg.ServerPort, cfg.Environment)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
