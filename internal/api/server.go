package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"catalogimport/internal/api/handlers"
	"catalogimport/internal/api/middleware"
	"catalogimport/internal/config"
	"catalogimport/internal/logger"
	"catalogimport/internal/worker/processors/validation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the HTTP layer talks to. Live is
// optional.
type Dependencies struct {
	DB        *gorm.DB
	Jobs      handlers.JobRepository
	Publisher handlers.ImportPublisher
	Live      handlers.LiveProgress
}

type Server struct {
	config *config.Config
	logger *logger.Logger
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, deps Dependencies) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = 32 << 20

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Initialize handlers
	importHandler := handlers.NewImportHandler(deps.Jobs, deps.Publisher, validation.New(logger), deps.Live, cfg.UploadDir, logger)
	productHandler := handlers.NewProductHandler(deps.DB, logger)
	settingsHandler := handlers.NewSettingsHandler(cfg.Settings)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Imports
		imports := v1.Group("/imports")
		{
			imports.POST("", importHandler.Create)
			imports.GET("", importHandler.List)
			imports.GET("/:id", importHandler.Get)
		}

		// Catalog
		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
		}

		v1.GET("/settings", settingsHandler.Get)
	}

	return &Server{
		config: cfg,
		logger: logger,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on %s", addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
