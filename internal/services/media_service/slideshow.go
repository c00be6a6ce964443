package media_service

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/sunr3d/media-showcase/models"
)

const transitionDuration = 0.5

// generateSlideshow собирает видео слайдшоу из изображений сессии через
// ffmpeg. Первый аудио файл архива, если он есть, используется как
// фоновая музыка (зациклен и приглушен до 30% громкости).
func (s *mediaService) generateSlideshow(ctx context.Context, sessionDir string, images []models.MediaFile, music string, opts *models.SlideshowOptions) error {
	if len(images) == 0 {
		return fmt.Errorf("%w: нет изображений", ErrSlideshowFailed)
	}
	if len(images) > s.cfg.MaxSlideshowImages {
		images = images[:s.cfg.MaxSlideshowImages]
	}

	paths := make([]string, 0, len(images))
	for _, img := range images {
		paths = append(paths, filepath.Join(sessionDir, img.Filename))
	}

	musicPath := ""
	if music != "" {
		musicPath = filepath.Join(sessionDir, music)
	}

	output := filepath.Join(sessionDir, slideshowName)
	args := buildSlideshowArgs(paths, musicPath, output, opts)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.cfg.FFmpegPath, args...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %v: %s", ErrSlideshowFailed, err, lastLine(stderr.String()))
	}

	return nil
}

// buildSlideshowArgs строит список аргументов ffmpeg: каждое изображение
// подается отдельным входом, масштабируется с паддингом до целевого
// разрешения, дальше склейка зависит от эффекта перехода.
func buildSlideshowArgs(images []string, music, output string, opts *models.SlideshowOptions) []string {
	args := []string{"-y"}

	duration := fmt.Sprintf("%.2f", opts.ImageDuration)
	for _, img := range images {
		args = append(args, "-loop", "1", "-t", duration, "-i", img)
	}
	if music != "" {
		args = append(args, "-stream_loop", "-1", "-i", music)
	}

	var filters []string
	for i := range images {
		filters = append(filters, fmt.Sprintf(
			"[%d:v]scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1[v%d]",
			i, opts.Width, opts.Height, opts.Width, opts.Height, i,
		))
	}

	vout := "[v0]"
	switch {
	case len(images) == 1:
		if opts.TransitionEffect != models.TransitionNone {
			filters = append(filters, fmt.Sprintf(
				"[v0]fade=t=in:st=0:d=%.2f,fade=t=out:st=%.2f:d=%.2f[vout]",
				transitionDuration, opts.ImageDuration-transitionDuration, transitionDuration,
			))
			vout = "[vout]"
		}
	case opts.TransitionEffect == models.TransitionCrossfade:
		prev := "[v0]"
		for i := 1; i < len(images); i++ {
			label := fmt.Sprintf("[x%d]", i)
			offset := float64(i) * (opts.ImageDuration - transitionDuration)
			filters = append(filters, fmt.Sprintf(
				"%s[v%d]xfade=transition=fade:duration=%.2f:offset=%.2f%s",
				prev, i, transitionDuration, offset, label,
			))
			prev = label
		}
		vout = prev
	default:
		var concat strings.Builder
		for i := range images {
			fmt.Fprintf(&concat, "[v%d]", i)
		}
		fmt.Fprintf(&concat, "concat=n=%d:v=1:a=0[vc]", len(images))
		filters = append(filters, concat.String())
		vout = "[vc]"

		if opts.TransitionEffect == models.TransitionFade {
			total := opts.ImageDuration * float64(len(images))
			filters = append(filters, fmt.Sprintf(
				"[vc]fade=t=in:st=0:d=%.2f,fade=t=out:st=%.2f:d=%.2f[vout]",
				transitionDuration, total-transitionDuration, transitionDuration,
			))
			vout = "[vout]"
		}
	}

	if music != "" {
		filters = append(filters, fmt.Sprintf("[%d:a]volume=0.3[aout]", len(images)))
	}

	args = append(args, "-filter_complex", strings.Join(filters, ";"))
	args = append(args, "-map", vout)
	if music != "" {
		args = append(args, "-map", "[aout]", "-c:a", "aac", "-shortest")
	}
	args = append(args, "-c:v", "libx264", "-r", "24", "-pix_fmt", "yuv420p", output)

	return args
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
