package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/atharvakonge/portfolio-pilot/internal/config"
	"github.com/atharvakonge/portfolio-pilot/internal/db"
	"github.com/atharvakonge/portfolio-pilot/internal/handlers"
	"github.com/atharvakonge/portfolio-pilot/internal/logger"
	"github.com/atharvakonge/portfolio-pilot/internal/validation"
)

func main() {
	// Load .env file and environment
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	// Initialize storage
	store, closeStore, err := openStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer closeStore()

	hub := handlers.NewHub(store, log.With().Str("component", "hub").Logger())

	// Initialize write processor
	processor := handlers.NewWriteProcessor(cfg.NumWorkers, store, hub, log.With().Str("component", "writer").Logger())
	processor.Start()
	defer processor.Stop()

	// Set Gin mode based on environment
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	h := &handlers.InvestmentHandler{
		Store:        store,
		Processor:    processor,
		Hub:          hub,
		Validator:    validation.New(time.Now),
		DefaultOwner: cfg.DefaultOwner,
		Log:          log,
	}
	router := handlers.NewRouter(h, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", "http://localhost:"+cfg.Port).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
}

// openStore picks the storage backend named by DB_DRIVER
func openStore(cfg config.Config, log zerolog.Logger) (db.Store, func(), error) {
	if cfg.DB.Driver == config.DriverMemory {
		log.Warn().Msg("Using in-memory store, data is lost on restart")
		return db.NewMemoryStore(), func() {}, nil
	}

	conn, err := db.Open(cfg.DB, log)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(conn); err != nil {
		db.Close(conn, log)
		return nil, nil, err
	}

	storeLog := log.With().Str("component", "store").Logger()
	return db.NewSQLStore(conn, cfg.DB.Driver, storeLog), func() { db.Close(conn, log) }, nil
}
