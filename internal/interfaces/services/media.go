package services

import (
	"context"
	"io"

	"github.com/sunr3d/media-showcase/models"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.2 --name=MediaService --output=../../../mocks
type MediaService interface {
	// Start запускает воркеры фоновой обработки сессий.
	Start(ctx context.Context)

	CreateUploadSession(ctx context.Context, filename string, size int64, file io.Reader, opts *models.SlideshowOptions) (*models.Session, error)
	CreateLinkSession(ctx context.Context, sourceURL string, sourceType models.SourceType, opts *models.SlideshowOptions) (*models.Session, error)
	GetSession(ctx context.Context, id string) (*models.Session, error)
	ListSessions(ctx context.Context) ([]*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	Cleanup(ctx context.Context) (int, error)
	MediaFilePath(ctx context.Context, sessionID, filename string) (string, error)
}
