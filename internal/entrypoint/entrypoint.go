package entrypoint

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/sunr3d/media-showcase/internal/api"
	"github.com/sunr3d/media-showcase/internal/config"
	"github.com/sunr3d/media-showcase/internal/infra/inmem"
	"github.com/sunr3d/media-showcase/internal/interfaces/services"
	"github.com/sunr3d/media-showcase/internal/middleware"
	"github.com/sunr3d/media-showcase/internal/server"
	"github.com/sunr3d/media-showcase/internal/services/media_service"
)

func Run(cfg *config.Config, log *zap.Logger) error {
	if err := os.MkdirAll(cfg.MediaDir, 0755); err != nil {
		return fmt.Errorf("не удалось создать директорию для медиа: %w", err)
	}
	log.Info("директория для медиа создана", zap.String("path", cfg.MediaDir))

	if err := os.MkdirAll(cfg.TempDir, 0755); err != nil {
		return fmt.Errorf("не удалось создать директорию для временных файлов: %w", err)
	}
	log.Info("директория для временных файлов создана", zap.String("path", cfg.TempDir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := inmem.New(log)
	svc := media_service.New(log, cfg, db)
	svc.Start(ctx)

	go cleanupLoop(ctx, cfg.CleanupInterval, svc, log)

	controller := api.New(svc, log, cfg)

	mux := http.NewServeMux()
	mux.Handle("POST /api/upload",
		middleware.RateLimit(cfg.UploadRatePerMin, log)(http.HandlerFunc(controller.Upload)))
	mux.Handle("POST /api/submit_link",
		middleware.RateLimit(cfg.LinkRatePerMin, log)(http.HandlerFunc(controller.SubmitLink)))
	mux.HandleFunc("GET /api/sessions", controller.ListSessions)
	mux.HandleFunc("GET /api/session/{id}", controller.GetSession)
	mux.HandleFunc("DELETE /api/session/{id}", controller.DeleteSession)
	mux.HandleFunc("GET /api/media/{session_id}/{filename}", controller.GetMediaFile)
	mux.HandleFunc("GET /api/cleanup", controller.Cleanup)

	router := http.Handler(mux)
	router = middleware.CORS(cfg.CORSOrigins)(router)
	router = middleware.ReqLogger(log)(router)
	router = middleware.Recovery(log)(router)

	srv := server.New(cfg.HTTPPort, router, log)
	return srv.Start()
}

func cleanupLoop(ctx context.Context, interval time.Duration, svc services.MediaService, log *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.Cleanup(ctx); err != nil {
				log.Error("фоновая очистка сессий завершилась ошибкой", zap.Error(err))
			}
		}
	}
}
