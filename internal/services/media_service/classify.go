package media_service

import (
	"context"
	"fmt"
	"image"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	// Регистрация декодеров для image.DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/sunr3d/media-showcase/models"
)

const thumbnailPrefix = "thumb_"

// buildManifest классифицирует распакованные файлы по расширению,
// снимает размеры изображений, длительность видео/аудио и генерирует
// миниатюры для изображений.
func (s *mediaService) buildManifest(ctx context.Context, sessionDir string) (*models.Manifest, error) {
	manifest := &models.Manifest{
		Images:     []models.MediaFile{},
		Videos:     []models.MediaFile{},
		AudioFiles: []models.MediaFile{},
	}

	err := filepath.WalkDir(sessionDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		name := d.Name()
		if name == inputZipName || name == slideshowName || strings.HasPrefix(name, thumbnailPrefix) {
			return nil
		}
		if skipArchiveEntry(name) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}

		file := models.MediaFile{
			Filename: name,
			Size:     info.Size(),
		}

		switch s.mediaTypeFor(name) {
		case models.MediaTypeImage:
			file.Type = models.MediaTypeImage
			file.Width, file.Height = imageDimensions(path)
			file.Thumbnail = s.makeThumbnail(sessionDir, path, name)
			manifest.Images = append(manifest.Images, file)
		case models.MediaTypeVideo:
			file.Type = models.MediaTypeVideo
			file.Duration = s.probeDuration(ctx, path)
			manifest.Videos = append(manifest.Videos, file)
		case models.MediaTypeAudio:
			file.Type = models.MediaTypeAudio
			file.Duration = s.probeDuration(ctx, path)
			manifest.AudioFiles = append(manifest.AudioFiles, file)
		default:
			return nil
		}

		manifest.TotalFiles++
		manifest.TotalSize += info.Size()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileNotFound, err)
	}

	sortByFilename(manifest.Images)
	sortByFilename(manifest.Videos)
	sortByFilename(manifest.AudioFiles)

	return manifest, nil
}

func (s *mediaService) mediaTypeFor(filename string) models.MediaType {
	ext := strings.ToLower(filepath.Ext(filename))

	for _, allowed := range s.cfg.ImageFormats {
		if ext == allowed {
			return models.MediaTypeImage
		}
	}
	for _, allowed := range s.cfg.VideoFormats {
		if ext == allowed {
			return models.MediaTypeVideo
		}
	}
	for _, allowed := range s.cfg.AudioFormats {
		if ext == allowed {
			return models.MediaTypeAudio
		}
	}
	return ""
}

func imageDimensions(path string) (int, int) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0
	}
	return cfg.Width, cfg.Height
}

// makeThumbnail создает JPEG миниатюру изображения в директории сессии.
// Возвращает имя файла миниатюры или пустую строку при ошибке: миниатюра
// опциональна и не должна ломать обработку.
func (s *mediaService) makeThumbnail(sessionDir, path, name string) string {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		s.logger.Warn("не удалось открыть изображение для миниатюры",
			zap.String("filename", name),
			zap.Error(err),
		)
		return ""
	}

	thumb := imaging.Resize(img, s.cfg.ThumbnailWidth, 0, imaging.Lanczos)
	thumbName := thumbnailPrefix + strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"

	if err := imaging.Save(thumb, filepath.Join(sessionDir, thumbName)); err != nil {
		s.logger.Warn("не удалось сохранить миниатюру",
			zap.String("filename", name),
			zap.Error(err),
		)
		return ""
	}

	return thumbName
}

// probeDuration возвращает длительность медиа файла в секундах через
// ffprobe, 0 при любой ошибке (длительность опциональна).
func (s *mediaService) probeDuration(ctx context.Context, path string) float64 {
	cmd := exec.CommandContext(ctx, s.cfg.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		s.logger.Warn("ffprobe недоступен или вернул ошибку",
			zap.String("path", path),
			zap.Error(err),
		)
		return 0
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0
	}
	return duration
}

func sortByFilename(files []models.MediaFile) {
	sort.Slice(files, func(i, j int) bool {
		return files[i].Filename < files[j].Filename
	})
}
