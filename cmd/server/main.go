package main

import (
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/teerapatch/linklytics/pkg/adapters/handler"
	"github.com/teerapatch/linklytics/pkg/adapters/repository/sqlite"
	"github.com/teerapatch/linklytics/pkg/config"
	"github.com/teerapatch/linklytics/pkg/core/services"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg)

	// Initialize Repository
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL, sqlite.PoolOptions{
		MaxOpenConns:   cfg.DBMaxOpenConns,
		MaxIdleConns:   cfg.DBMaxIdleConns,
		MaxIdleTime:    time.Duration(cfg.DBConnMaxIdleSec) * time.Second,
		ConnectTimeout: time.Duration(cfg.DBConnectTimeoutSec) * time.Second,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer repo.Close()

	// Initialize Services
	linkService := services.NewLinkService(repo)
	clickService := services.NewClickService(repo, log)
	analyticsService := services.NewAnalyticsService(repo)

	// Initialize Router
	mux := handler.NewRouter(cfg, linkService, clickService, analyticsService, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var out = os.Stdout
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	if cfg.AppEnv == "local" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out})
	}
	return logger
}
