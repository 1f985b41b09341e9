package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Itish41/Poligap/analyzer"
	"github.com/Itish41/Poligap/catalog"
	controller "github.com/Itish41/Poligap/controller"
	"github.com/Itish41/Poligap/initializers"
	middleware "github.com/Itish41/Poligap/middleware"
	"github.com/Itish41/Poligap/repository"
	service "github.com/Itish41/Poligap/service"
	"github.com/Itish41/Poligap/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// multipartOverhead is the slack allowed on top of the file size limit
// for form boundaries and the other fields.
const multipartOverhead = 1 << 20

func main() {
	envErr := initializers.LoadEnv()
	initializers.SetupLogger(initializers.LogSettings())
	if envErr != nil {
		log.Info().Msg("No .env file loaded, using process environment")
	} else {
		log.Info().Msg("Env loaded successfully")
	}
	cfg := initializers.LoadConfig()

	db, err := initializers.ConnectDB(cfg.DatabaseURL, cfg.LogLevel == "debug")
	if err != nil {
		log.Fatal().Err(err).Msg("[CRITICAL] Failed to initialize database connection")
	}
	if err := initializers.Migrate(db, "file://db/migrations"); err != nil {
		log.Fatal().Err(err).Msg("[CRITICAL] Failed to run database migrations")
	}

	cat, err := catalog.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("[CRITICAL] Failed to load standards catalog")
	}

	ctx := context.Background()
	objects, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.Warn().Err(err).Msg("Object storage disabled, asset uploads will fail")
	}

	aiClient := &http.Client{Timeout: cfg.AITimeout}
	pipeline := analyzer.NewPipeline(
		analyzer.NewGeminiAnalyzer(cfg.GeminiAPIKey, cfg.GeminiBaseURL, cfg.GeminiModel, aiClient),
		analyzer.NewKrooloAnalyzer(cfg.Kroolo, aiClient),
	)

	search := service.NewSearchService(cfg.ElasticsearchURL)
	auditService := service.NewAuditService(repository.NewAuditLogRepository(db), cat, search)
	analysisService := service.NewAnalysisService(cat, pipeline)
	taskService := service.NewTaskService(repository.NewTaskRepository(db), cat)
	assetService := service.NewAssetService(repository.NewAssetRepository(db), objects, search, cfg.MaxUploadBytes)

	analysisController := controller.NewAnalysisController(analysisService, auditService, cat)
	auditController := controller.NewAuditController(auditService)
	taskController := controller.NewTaskController(taskService)
	assetController := controller.NewAssetController(assetService)
	searchController := controller.NewSearchController(search)

	globalLimiter := middleware.NewRateLimiter(cfg.RateLimit, time.Minute)
	strictLimiter := middleware.NewRateLimiter(cfg.StrictRateLimit, time.Minute)
	defer globalLimiter.Stop()
	defer strictLimiter.Stop()
	uploadLimit := middleware.BodyLimit(cfg.MaxUploadBytes + multipartOverhead)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(globalLimiter.Limit())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "search": search.Enabled(), "storage": objects != nil})
	})

	api := router.Group("/api")
	api.GET("/standards", analysisController.GetStandards)
	api.POST("/compliance-analysis",
		strictLimiter.Limit(),
		uploadLimit,
		analysisController.AnalyzeDocument)

	api.GET("/audit-logs", auditController.GetAuditLogs)
	api.POST("/audit-logs", auditController.CreateAuditLog)
	api.GET("/audit-logs/:id", auditController.GetAuditLog)

	api.GET("/tasks", taskController.GetTasks)
	api.POST("/tasks", taskController.CreateTask)
	api.PATCH("/tasks", taskController.UpdateTask)
	api.PATCH("/tasks/:id", taskController.UpdateTask)
	api.DELETE("/tasks", taskController.DeleteTask)
	api.DELETE("/tasks/:id", taskController.DeleteTask)
	api.POST("/tasks/from-gap", taskController.AddFromGap)
	api.POST("/tasks/from-suggestion", taskController.AddFromSuggestion)

	api.GET("/assets", assetController.GetAssets)
	api.POST("/assets", assetController.CreateAsset)
	api.DELETE("/assets", assetController.DeleteAsset)
	api.POST("/assets/upload",
		strictLimiter.Limit(),
		uploadLimit,
		assetController.UploadAsset)
	api.POST("/assets/tags", assetController.UpdateTags)

	api.GET("/search", searchController.Search)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      cfg.WriteTimeout(),
	}
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
}
