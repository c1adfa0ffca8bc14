package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pronounce/assets"
	"github.com/robalobadob/pronounce/internal/audio"
	"github.com/robalobadob/pronounce/internal/game"
	"github.com/robalobadob/pronounce/internal/httpserver"
	"github.com/robalobadob/pronounce/internal/store"
	"github.com/robalobadob/pronounce/internal/table"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	st := store.NewMemoryStore()
	if dsn := os.Getenv("DB_PATH"); dsn != "" {
		db, err := openDB(dsn)
		if err != nil {
			log.Fatal().Err(err).Str("dsn", dsn).Msg("failed to open database")
		}
		defer db.Close()
		if err := store.Migrate(db, assets.Migrations()); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
		st = store.NewSQLiteStore(db)
		log.Info().Str("dsn", dsn).Msg("sessions persisted to sqlite")
	}

	roots := splitList(os.Getenv("AUDIO_ROOTS"))
	srv := httpserver.New(st, httpserver.Config{
		Loader:         table.NewLoader(os.Getenv("DATASET_BASE"), assets.Datasets()),
		Audio:          audio.NewResolver(roots, nil),
		DefaultDataset: getEnv("DEFAULT_DATASET", "dataset01"),
		Policy:         game.ParsePolicy(getEnv("GRADING_POLICY", string(game.PolicyColumnOnly))),
		Mode:           game.ParseMode(getEnv("PLACEMENT_MODE", string(game.ModeFree))),
		Secret:         os.Getenv("SESSION_SECRET"),
		TicketTTL:      time.Duration(envInt("TICKET_TTL_HOURS", 24)) * time.Hour,
		ClientOrigin:   os.Getenv("CLIENT_ORIGIN"),
	})

	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Strs("audioRoots", roots).Msg("starting go-server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return def
}

// splitList splits a comma-separated env value, dropping blanks.
func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
