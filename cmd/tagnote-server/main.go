// Command tagnote-server starts the tag-note HTTP API.
package main

import (
	"os"
	"strconv"

	"github.com/bu6030/tag-note/pkg/tagnote/auth"
	"github.com/bu6030/tag-note/pkg/tagnote/database"
	"github.com/bu6030/tag-note/pkg/tagnote/logging"
	"github.com/bu6030/tag-note/pkg/tagnote/models"
	"github.com/bu6030/tag-note/pkg/tagnote/notes"
	"github.com/bu6030/tag-note/pkg/tagnote/tags"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	// Get database path from environment or use default
	dbPath := os.Getenv("TAGNOTE_DB_PATH")
	if dbPath == "" {
		dbPath = "tagnote.db"
	}

	// Connect to database
	if err := database.Connect(dbPath); err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations completed", zap.String("path", dbPath))

	// Services; the tag service deletes notes through the note service
	// when a tag is removed (cascade).
	noteService := notes.NewService(database.GetDB())
	if v := os.Getenv("TAGNOTE_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			noteService.SetDefaultPageSize(n)
		}
	}
	tagService := tags.NewService(database.GetDB(), noteService)

	// Set up Gin router
	r := gin.New()
	r.Use(logging.RequestLogger(logger), gin.Recovery())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "tagnote",
			})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(database.GetDB())
		authHandler.RegisterRoutes(api.Group("/auth"))

		// Notes routes (protected)
		notesHandler := notes.NewHandler(noteService)
		notesHandler.RegisterRoutes(api.Group("", auth.AuthMiddleware()))

		// Tags routes (protected)
		tagsHandler := tags.NewHandler(tagService)
		tagsHandler.RegisterRoutes(api.Group("", auth.AuthMiddleware()))
	}

	// Get port from environment or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logger.Info("starting tagnote server", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}
