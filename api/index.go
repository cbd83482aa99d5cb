package handler

import (
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/teerapatch/linklytics/pkg/adapters/handler"
	"github.com/teerapatch/linklytics/pkg/adapters/repository/sqlite"
	"github.com/teerapatch/linklytics/pkg/config"
	"github.com/teerapatch/linklytics/pkg/core/services"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Note: On Vercel the local sqlite file is ephemeral; point DATABASE_URL
	// at a libsql/Turso URL for anything durable.
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL, sqlite.DefaultPoolOptions())
	if err != nil {
		panic(err)
	}

	linkService := services.NewLinkService(repo)
	clickService := services.NewClickService(repo, log)
	analyticsService := services.NewAnalyticsService(repo)

	mux = handler.NewRouter(cfg, linkService, clickService, analyticsService, log)
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
