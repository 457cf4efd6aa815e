package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-backend-go/internal/config"
	"portfolio-backend-go/internal/db"
	httpapi "portfolio-backend-go/internal/http"
	"portfolio-backend-go/internal/migrations"
	"portfolio-backend-go/internal/services"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	cleanupLogs, err := setupLogger(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("file logging disabled")
	} else {
		defer cleanupLogs()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db")
	}
	defer database.Close()
	if err := migrations.Apply(ctx, database); err != nil {
		log.Fatal().Err(err).Msg("migrations")
	}

	storage, err := newStorage(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("upload storage")
	}

	hub := services.NewMetricsHub()
	go hub.Run(ctx)
	go services.SampleLoop(ctx, hub, cfg.MetricsDiskPath, time.Duration(cfg.MetricsSampleSeconds)*time.Second)

	server := httpapi.NewServer(database, cfg, hub, storage)
	addr := ":" + cfg.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	cancel()
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("shutdown complete")
}

func newStorage(ctx context.Context, cfg config.Config) (services.Storage, error) {
	if cfg.UploadBackend == "s3" {
		if cfg.S3Bucket == "" {
			return nil, errors.New("S3_BUCKET is required when UPLOAD_BACKEND=s3")
		}
		return services.NewS3Storage(ctx, cfg.S3Bucket, cfg.S3PublicBaseURL)
	}
	return services.LocalStorage{Dir: cfg.UploadDir, URLPrefix: cfg.UploadURLPrefix}, nil
}
