package media_service

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
)

const downloadUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

var googleDriveIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/presentation/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`/document/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`id=([a-zA-Z0-9_-]+)`),
}

// validateURL отклоняет не-HTTP(S) схемы и адреса локальной/приватной
// сети, чтобы исключить SSRF через загрузку по ссылке.
func (s *mediaService) validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: схема %q", ErrInvalidURL, u.Scheme)
	}

	host := u.Hostname()
	if host == "" || host == "localhost" || host == "127.0.0.1" || host == "0.0.0.0" {
		return fmt.Errorf("%w: %s", ErrPrivateAddress, host)
	}

	if ip := net.ParseIP(host); ip != nil && (ip.IsPrivate() || ip.IsLoopback() || ip.IsUnspecified()) {
		return fmt.Errorf("%w: %s", ErrPrivateAddress, host)
	}

	return nil
}

func isGoogleDriveURL(rawURL string) bool {
	return strings.Contains(rawURL, "drive.google.com") || strings.Contains(rawURL, "docs.google.com")
}

func googleDriveFileID(rawURL string) (string, error) {
	for _, pattern := range googleDriveIDPatterns {
		if m := pattern.FindStringSubmatch(rawURL); m != nil {
			return m[1], nil
		}
	}
	return "", fmt.Errorf("%w: не удалось извлечь ID файла", ErrGoogleDriveURL)
}

func googleDriveDownloadURL(fileID string) string {
	return "https://drive.google.com/uc?export=download&id=" + fileID
}

// downloadZip скачивает архив по ссылке в файл dest с контролем размера.
// Ссылки Google Drive преобразуются в прямую ссылку на скачивание.
func (s *mediaService) downloadZip(ctx context.Context, rawURL, dest string) error {
	if isGoogleDriveURL(rawURL) {
		fileID, err := googleDriveFileID(rawURL)
		if err != nil {
			return err
		}
		rawURL = googleDriveDownloadURL(fileID)
	}

	if err := s.validateURL(rawURL); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", downloadUserAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP status %d", ErrDownloadFailed, resp.StatusCode)
	}

	if resp.ContentLength > s.cfg.MaxDownloadSize {
		return fmt.Errorf("%w: %d байт", ErrDownloadTooLarge, resp.ContentLength)
	}

	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileCreateFailed, err)
	}
	defer file.Close()

	written, err := io.Copy(file, io.LimitReader(resp.Body, s.cfg.MaxDownloadSize+1))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	if written > s.cfg.MaxDownloadSize {
		os.Remove(dest)
		return fmt.Errorf("%w: больше %d байт", ErrDownloadTooLarge, s.cfg.MaxDownloadSize)
	}

	return nil
}
