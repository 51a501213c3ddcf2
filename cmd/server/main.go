package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/constructhq/defect-tracker/internal/api"
	"github.com/constructhq/defect-tracker/internal/database"
	"github.com/constructhq/defect-tracker/internal/storage"
	"github.com/constructhq/defect-tracker/pkg/auth"
	"github.com/constructhq/defect-tracker/pkg/config"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to optional config file (env vars take precedence)")
	flag.Parse()

	// A missing .env is fine; config falls back to defaults.
	_ = godotenv.Load()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := database.NewDatabase(cfg.Database.DataDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}

	fileStorage, err := storage.NewFileStorage(cfg.Storage.UploadDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize file storage")
	}

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenHours)*time.Hour)

	handler := api.NewHandler(db, fileStorage)
	authHandler := api.NewAuthHandler(db, jwtManager)
	router := api.SetupRouter(handler, authHandler, db, jwtManager, cfg.Storage.UploadDir, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info().Str("addr", addr).Msg("starting defect tracker server")

	if err := router.Run(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
