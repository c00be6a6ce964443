package client

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sunr3d/media-showcase/models"
)

// MaxUploadSize — клиентский лимит размера архива (2 ГБ), должен
// совпадать с серверным MAX_UPLOAD_SIZE.
const MaxUploadSize int64 = 2 << 30

var (
	ErrNotZip       = errors.New("допускаются только ZIP файлы")
	ErrFileTooLarge = errors.New("файл слишком большой")
	ErrInvalidURL   = errors.New("некорректный URL")
)

var googleDriveHost = regexp.MustCompile(`(?:^|\.)(?:drive|docs)\.google\.com$`)

// ValidateUploadFile проверяет имя и размер файла до сетевого вызова.
// Файл размером ровно в лимит проходит, на байт больше — нет.
func ValidateUploadFile(filename string, size int64) error {
	if strings.ToLower(filepath.Ext(filename)) != ".zip" {
		return ErrNotZip
	}
	if size > MaxUploadSize {
		return fmt.Errorf("%w: %d байт, максимум %d", ErrFileTooLarge, size, MaxUploadSize)
	}
	return nil
}

// ClassifySourceURL определяет тип источника по URL: ссылки
// drive.google.com / docs.google.com считаются Google Drive,
// любой другой корректный http(s) URL — обычной ссылкой.
func ClassifySourceURL(rawURL string) (models.SourceType, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}

	if googleDriveHost.MatchString(u.Hostname()) {
		return models.SourceTypeGoogleDrive, nil
	}
	return models.SourceTypeURL, nil
}
