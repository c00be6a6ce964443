package media_service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sunr3d/media-showcase/internal/config"
	"github.com/sunr3d/media-showcase/internal/interfaces/infra"
	"github.com/sunr3d/media-showcase/internal/interfaces/services"
	"github.com/sunr3d/media-showcase/models"
)

var _ services.MediaService = (*mediaService)(nil)

type mediaService struct {
	repo       infra.Database
	logger     *zap.Logger
	cfg        *config.Config
	httpClient *http.Client
	queue      chan string
}

func New(log *zap.Logger, cfg *config.Config, repo infra.Database) services.MediaService {
	return &mediaService{
		logger:     log,
		cfg:        cfg,
		repo:       repo,
		httpClient: &http.Client{Timeout: cfg.DownloadTimeout},
		queue:      make(chan string, cfg.QueueSize),
	}
}

func (s *mediaService) Start(ctx context.Context) {
	for i := 0; i < s.cfg.Workers; i++ {
		go s.worker(ctx)
	}
	s.logger.Info("воркеры обработки сессий запущены", zap.Int("workers", s.cfg.Workers))
}

func (s *mediaService) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case sessionID := <-s.queue:
			s.processSession(ctx, sessionID)
		}
	}
}

func (s *mediaService) CreateUploadSession(ctx context.Context, filename string, size int64, file io.Reader, opts *models.SlideshowOptions) (*models.Session, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if strings.ToLower(filepath.Ext(filename)) != ".zip" {
		return nil, ErrNotZip
	}
	if size > s.cfg.MaxUploadSize {
		return nil, fmt.Errorf("%w: %d байт, максимум %d", ErrFileTooLarge, size, s.cfg.MaxUploadSize)
	}

	opts, err := s.normalizeOptions(opts)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New().String()
	sessionDir := s.sessionDir(sessionID)
	if err := os.MkdirAll(sessionDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMkdirFailed, err)
	}

	if err := s.saveUpload(sessionDir, file); err != nil {
		os.RemoveAll(sessionDir)
		return nil, err
	}

	session := s.newSession(sessionID, models.SourceTypeUpload, "", filename, opts)
	if err := s.repo.SaveSession(ctx, session); err != nil {
		os.RemoveAll(sessionDir)
		return nil, fmt.Errorf("%w: %v", ErrSessionSave, err)
	}

	if err := s.enqueue(sessionID); err != nil {
		os.RemoveAll(sessionDir)
		s.repo.DeleteSession(ctx, sessionID)
		return nil, err
	}

	s.logger.Info("сессия загрузки создана",
		zap.String("session_id", sessionID),
		zap.String("filename", filename),
		zap.Int64("size", size),
	)
	return session, nil
}

func (s *mediaService) CreateLinkSession(ctx context.Context, sourceURL string, sourceType models.SourceType, opts *models.SlideshowOptions) (*models.Session, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if sourceType != models.SourceTypeURL && sourceType != models.SourceTypeGoogleDrive {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSourceType, sourceType)
	}
	if err := s.validateURL(sourceURL); err != nil {
		return nil, err
	}

	opts, err := s.normalizeOptions(opts)
	if err != nil {
		return nil, err
	}

	session := s.newSession(uuid.New().String(), sourceType, sourceURL, filenameFromURL(sourceURL), opts)
	if err := s.repo.SaveSession(ctx, session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionSave, err)
	}

	if err := s.enqueue(session.ID); err != nil {
		s.repo.DeleteSession(ctx, session.ID)
		return nil, err
	}

	s.logger.Info("сессия по ссылке создана",
		zap.String("session_id", session.ID),
		zap.String("source_type", string(sourceType)),
		zap.String("source_url", sourceURL),
	)
	return session, nil
}

func (s *mediaService) GetSession(ctx context.Context, id string) (*models.Session, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	session, err := s.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionGet, err)
	}

	return session, nil
}

// ListSessions возвращает сессии, срок жизни которых еще не истек.
// Фильтрация по TTL выполняется в момент чтения, а не записи.
func (s *mediaService) ListSessions(ctx context.Context) ([]*models.Session, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	sessions, err := s.repo.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionGet, err)
	}

	now := time.Now()
	alive := make([]*models.Session, 0, len(sessions))
	for _, session := range sessions {
		if session.Expired(now) {
			continue
		}
		alive = append(alive, session)
	}

	return alive, nil
}

func (s *mediaService) DeleteSession(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if err := s.repo.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionGet, err)
	}

	if err := os.RemoveAll(s.sessionDir(id)); err != nil {
		s.logger.Error("не удалось удалить директорию сессии",
			zap.String("session_id", id),
			zap.Error(err),
		)
	}

	s.logger.Info("сессия удалена", zap.String("session_id", id))
	return nil
}

func (s *mediaService) Cleanup(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	removed, err := s.repo.DeleteExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSessionGet, err)
	}

	for _, id := range removed {
		if err := os.RemoveAll(s.sessionDir(id)); err != nil {
			s.logger.Error("не удалось удалить директорию сессии",
				zap.String("session_id", id),
				zap.Error(err),
			)
		}
	}

	if len(removed) > 0 {
		s.logger.Info("очистка устаревших сессий выполнена", zap.Int("removed", len(removed)))
	}
	return len(removed), nil
}

func (s *mediaService) MediaFilePath(ctx context.Context, sessionID, filename string) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if _, err := s.repo.GetSession(ctx, sessionID); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSessionGet, err)
	}

	sessionDir := s.sessionDir(sessionID)
	filePath := filepath.Join(sessionDir, filepath.Base(filename))
	if filepath.Base(filename) != filename {
		return "", ErrPathTraversal
	}

	if _, err := os.Stat(filePath); err != nil {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, filename)
	}

	return filePath, nil
}

// processSession выполняет полный конвейер обработки одной сессии:
// загрузка (для ссылок), распаковка, классификация, слайдшоу, манифест.
func (s *mediaService) processSession(ctx context.Context, sessionID string) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		s.logger.Error("сессия из очереди не найдена",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return
	}

	sessionDir := s.sessionDir(sessionID)
	zipPath := filepath.Join(sessionDir, inputZipName)

	if session.SourceType != models.SourceTypeUpload {
		s.setStatus(ctx, session, models.SessionStatusDownloading, 25)
		if err := os.MkdirAll(sessionDir, 0755); err != nil {
			s.fail(ctx, session, fmt.Errorf("%w: %v", ErrMkdirFailed, err))
			return
		}
		if err := s.downloadZip(ctx, session.SourceURL, zipPath); err != nil {
			s.fail(ctx, session, err)
			return
		}
	}

	s.setStatus(ctx, session, models.SessionStatusProcessing, 75)

	if err := s.extractZip(zipPath, sessionDir); err != nil {
		s.fail(ctx, session, err)
		return
	}
	if err := os.Remove(zipPath); err != nil {
		s.logger.Error("не удалось удалить исходный архив",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}

	manifest, err := s.buildManifest(ctx, sessionDir)
	if err != nil {
		s.fail(ctx, session, err)
		return
	}

	if len(manifest.Images) > 0 {
		s.setStatus(ctx, session, models.SessionStatusGeneratingSlideshow, 75)

		music := ""
		if len(manifest.AudioFiles) > 0 {
			music = manifest.AudioFiles[0].Filename
		}
		if err := s.generateSlideshow(ctx, sessionDir, manifest.Images, music, session.SlideshowOptions); err != nil {
			// Слайдшоу опционально: его отказ не ломает сессию.
			s.logger.Error("не удалось сгенерировать слайдшоу",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		} else {
			manifest.SlideshowVideo = slideshowName
		}
	}

	manifest.CreatedAt = time.Now()
	session.Manifest = manifest
	s.setStatus(ctx, session, models.SessionStatusReady, 100)

	s.logger.Info("сессия обработана",
		zap.String("session_id", sessionID),
		zap.Int("images", len(manifest.Images)),
		zap.Int("videos", len(manifest.Videos)),
		zap.Int("audio_files", len(manifest.AudioFiles)),
		zap.String("slideshow", manifest.SlideshowVideo),
	)
}

func (s *mediaService) fail(ctx context.Context, session *models.Session, err error) {
	session.Status = models.SessionStatusFailed
	session.ErrorMessage = err.Error()
	session.UpdatedAt = time.Now()

	if saveErr := s.repo.SaveSession(ctx, session); saveErr != nil {
		s.logger.Error("не удалось сохранить статус failed",
			zap.String("session_id", session.ID),
			zap.Error(saveErr),
		)
	}

	if rmErr := os.RemoveAll(s.sessionDir(session.ID)); rmErr != nil {
		s.logger.Error("не удалось удалить директорию сессии",
			zap.String("session_id", session.ID),
			zap.Error(rmErr),
		)
	}

	s.logger.Error("обработка сессии завершилась ошибкой",
		zap.String("session_id", session.ID),
		zap.Error(err),
	)
}

func (s *mediaService) setStatus(ctx context.Context, session *models.Session, status models.SessionStatus, progress int) {
	session.Status = status
	session.Progress = progress
	session.UpdatedAt = time.Now()

	if err := s.repo.SaveSession(ctx, session); err != nil {
		s.logger.Error("не удалось обновить статус сессии",
			zap.String("session_id", session.ID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}

func (s *mediaService) enqueue(sessionID string) error {
	select {
	case s.queue <- sessionID:
		return nil
	default:
		return ErrQueueFull
	}
}

func (s *mediaService) newSession(id string, sourceType models.SourceType, sourceURL, originalFilename string, opts *models.SlideshowOptions) *models.Session {
	now := time.Now()
	return &models.Session{
		ID:               id,
		SourceType:       sourceType,
		SourceURL:        sourceURL,
		OriginalFilename: originalFilename,
		Status:           models.SessionStatusQueued,
		Progress:         0,
		SubmittedAt:      now,
		UpdatedAt:        now,
		ExpiresAt:        now.Add(s.cfg.SessionTTL),
		SlideshowOptions: opts,
	}
}

func (s *mediaService) normalizeOptions(opts *models.SlideshowOptions) (*models.SlideshowOptions, error) {
	if opts == nil {
		return models.DefaultSlideshowOptions(), nil
	}

	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return opts, nil
}

func (s *mediaService) saveUpload(sessionDir string, file io.Reader) error {
	zipPath := filepath.Join(sessionDir, inputZipName)
	dst, err := os.Create(zipPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileCreateFailed, err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(file, s.cfg.MaxUploadSize+1))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileCopyFailed, err)
	}
	if written > s.cfg.MaxUploadSize {
		return ErrFileTooLarge
	}

	return nil
}

func (s *mediaService) sessionDir(sessionID string) string {
	return filepath.Join(s.cfg.MediaDir, sessionID)
}

// filenameFromURL достает отображаемое имя архива из пути URL, если оно есть.
func filenameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	name, err := url.PathUnescape(path.Base(u.Path))
	if err != nil || !strings.HasSuffix(strings.ToLower(name), ".zip") {
		return ""
	}
	return name
}
