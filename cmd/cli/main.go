package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/teerapatch/linklytics/pkg/adapters/repository/sqlite"
	"github.com/teerapatch/linklytics/pkg/config"
	"github.com/teerapatch/linklytics/pkg/core/domain"
)

// Migration tool: dumps links to JSON and loads them back. Short codes are
// unique, so import skips codes that already exist; click counts travel with
// the link but raw click events do not.
func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "JSON file to import")

	if len(os.Args) < 2 {
		fmt.Println("expected 'export' or 'import' subcommands")
		os.Exit(1)
	}

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg := config.Load()
	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL, sqlite.DefaultPoolOptions())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to db")
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		doExport(repo, log)
	case "import":
		importCmd.Parse(os.Args[2:])
		if *importFile == "" {
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		doImport(repo, log, *importFile)
	default:
		fmt.Println("expected 'export' or 'import' subcommands")
		os.Exit(1)
	}
}

func doExport(repo *sqlite.SQLiteRepository, log zerolog.Logger) {
	links, err := repo.Dump(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("export failed")
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(links); err != nil {
		log.Fatal().Err(err).Msg("encode failed")
	}
}

func doImport(repo *sqlite.SQLiteRepository, log zerolog.Logger, filename string) {
	file, err := os.Open(filename)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open file")
	}
	defer file.Close()

	var links []domain.Link
	if err := json.NewDecoder(file).Decode(&links); err != nil {
		log.Fatal().Err(err).Msg("decode failed")
	}

	ctx := context.Background()
	count := 0
	for _, l := range links {
		existing, err := repo.GetByShortCode(ctx, l.ShortCode)
		if err != nil {
			log.Fatal().Err(err).Msg("lookup failed")
		}
		if existing != nil {
			log.Warn().Str("short_code", l.ShortCode).Msg("skipping existing code")
			continue
		}

		if err := repo.Create(ctx, &l); err != nil {
			log.Error().Err(err).Str("short_code", l.ShortCode).Msg("failed to import link")
		} else {
			count++
		}
	}
	log.Info().Int("count", count).Msg("import finished")
}
