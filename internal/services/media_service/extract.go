package media_service

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	inputZipName  = "input.zip"
	slideshowName = "slideshow.mp4"

	// Служебная директория macOS архиваторов с копиями ресурсных форков.
	macosxPrefix    = "__MACOSX"
	resourceForkPfx = "._"
)

var unsafeFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// extractZip безопасно распаковывает архив в директорию сессии.
// Все файлы кладутся плоско, с санитизированными базовыми именами.
// Перед распаковкой архив проверяется на zip-бомбу: лимит количества
// файлов и суммарного распакованного размера по заголовкам, а при
// копировании размер контролируется повторно (заголовкам верить нельзя).
func (s *mediaService) extractZip(zipPath, destDir string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotZipArchive, err)
	}
	defer zr.Close()

	var totalSize int64
	fileCount := 0
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}

		if strings.Contains(f.Name, "..") || strings.HasPrefix(f.Name, "/") {
			return fmt.Errorf("%w: %s", ErrPathTraversal, f.Name)
		}

		fileCount++
		if fileCount > s.cfg.MaxFilesPerZip {
			return fmt.Errorf("%w: больше %d", ErrTooManyFiles, s.cfg.MaxFilesPerZip)
		}

		totalSize += int64(f.UncompressedSize64)
		if totalSize > s.cfg.MaxExtractedSize {
			return fmt.Errorf("%w: больше %d байт", ErrExtractedTooLarge, s.cfg.MaxExtractedSize)
		}
	}

	remaining := s.cfg.MaxExtractedSize
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || skipArchiveEntry(f.Name) {
			continue
		}

		written, err := s.extractFile(f, destDir, remaining)
		if err != nil {
			return err
		}
		remaining -= written
	}

	return nil
}

func (s *mediaService) extractFile(f *zip.File, destDir string, limit int64) (int64, error) {
	safeName := sanitizeFilename(filepath.Base(f.Name))
	targetPath := filepath.Join(destDir, safeName)

	if !strings.HasPrefix(filepath.Clean(targetPath), filepath.Clean(destDir)+string(os.PathSeparator)) {
		return 0, fmt.Errorf("%w: %s", ErrPathTraversal, f.Name)
	}

	src, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFileCreateFailed, err)
	}
	defer src.Close()

	dst, err := os.Create(targetPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFileCreateFailed, err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, io.LimitReader(src, limit+1))
	if err != nil {
		return written, fmt.Errorf("%w: %v", ErrFileCopyFailed, err)
	}
	if written > limit {
		os.Remove(targetPath)
		return written, fmt.Errorf("%w: больше %d байт", ErrExtractedTooLarge, s.cfg.MaxExtractedSize)
	}

	return written, nil
}

// skipArchiveEntry отсекает служебные элементы архива: ресурсные форки
// macOS (__MACOSX/, ._*) и скрытые файлы.
func skipArchiveEntry(name string) bool {
	if strings.HasPrefix(name, macosxPrefix) {
		return true
	}

	base := filepath.Base(name)
	if strings.HasPrefix(base, resourceForkPfx) {
		return true
	}
	return strings.HasPrefix(base, ".")
}

func sanitizeFilename(name string) string {
	name = unsafeFilenameChars.ReplaceAllString(name, "_")

	if len(name) > 255 {
		ext := filepath.Ext(name)
		name = name[:255-len(ext)] + ext
	}
	return name
}
