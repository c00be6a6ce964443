package media_service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunr3d/media-showcase/models"
)

func filterComplex(t *testing.T, args []string) string {
	t.Helper()
	for i, arg := range args {
		if arg == "-filter_complex" {
			require.Less(t, i+1, len(args))
			return args[i+1]
		}
	}
	t.Fatal("аргумент -filter_complex не найден")
	return ""
}

func mapTarget(t *testing.T, args []string) string {
	t.Helper()
	for i, arg := range args {
		if arg == "-map" {
			require.Less(t, i+1, len(args))
			return args[i+1]
		}
	}
	t.Fatal("аргумент -map не найден")
	return ""
}

func TestBuildSlideshowArgs_Concat(t *testing.T) {
	opts := &models.SlideshowOptions{
		ImageDuration:    3,
		TransitionEffect: models.TransitionNone,
		Width:            1280,
		Height:           720,
	}
	args := buildSlideshowArgs([]string{"a.jpg", "b.jpg", "c.jpg"}, "", "out.mp4", opts)

	assert.Equal(t, "-y", args[0])
	assert.Equal(t, "out.mp4", args[len(args)-1])

	// Каждое изображение — отдельный зацикленный вход с длительностью показа.
	joined := strings.Join(args, " ")
	assert.Equal(t, 3, strings.Count(joined, "-loop 1 -t 3.00 -i"))

	fc := filterComplex(t, args)
	assert.Contains(t, fc, "scale=1280:720:force_original_aspect_ratio=decrease")
	assert.Contains(t, fc, "pad=1280:720:(ow-iw)/2:(oh-ih)/2")
	assert.Contains(t, fc, "[v0][v1][v2]concat=n=3:v=1:a=0[vc]")
	assert.NotContains(t, fc, "fade=")
	assert.Equal(t, "[vc]", mapTarget(t, args))
}

func TestBuildSlideshowArgs_Fade(t *testing.T) {
	opts := &models.SlideshowOptions{
		ImageDuration:    2,
		TransitionEffect: models.TransitionFade,
		Width:            1280,
		Height:           720,
	}
	args := buildSlideshowArgs([]string{"a.jpg", "b.jpg"}, "", "out.mp4", opts)

	fc := filterComplex(t, args)
	assert.Contains(t, fc, "concat=n=2:v=1:a=0[vc]")
	// Плавное появление в начале и затухание в конце всего ролика.
	assert.Contains(t, fc, "[vc]fade=t=in:st=0:d=0.50,fade=t=out:st=3.50:d=0.50[vout]")
	assert.Equal(t, "[vout]", mapTarget(t, args))
}

func TestBuildSlideshowArgs_Crossfade(t *testing.T) {
	opts := &models.SlideshowOptions{
		ImageDuration:    3,
		TransitionEffect: models.TransitionCrossfade,
		Width:            1280,
		Height:           720,
	}
	args := buildSlideshowArgs([]string{"a.jpg", "b.jpg", "c.jpg"}, "", "out.mp4", opts)

	fc := filterComplex(t, args)
	assert.Contains(t, fc, "[v0][v1]xfade=transition=fade:duration=0.50:offset=2.50[x1]")
	assert.Contains(t, fc, "[x1][v2]xfade=transition=fade:duration=0.50:offset=5.00[x2]")
	assert.Equal(t, "[x2]", mapTarget(t, args))
}

func TestBuildSlideshowArgs_SingleImage(t *testing.T) {
	opts := &models.SlideshowOptions{
		ImageDuration:    3,
		TransitionEffect: models.TransitionFade,
		Width:            1280,
		Height:           720,
	}
	args := buildSlideshowArgs([]string{"only.jpg"}, "", "out.mp4", opts)

	fc := filterComplex(t, args)
	assert.NotContains(t, fc, "concat")
	assert.Contains(t, fc, "[v0]fade=t=in:st=0:d=0.50,fade=t=out:st=2.50:d=0.50[vout]")
	assert.Equal(t, "[vout]", mapTarget(t, args))
}

func TestBuildSlideshowArgs_BackgroundMusic(t *testing.T) {
	opts := &models.SlideshowOptions{
		ImageDuration:    3,
		TransitionEffect: models.TransitionNone,
		Width:            1280,
		Height:           720,
	}
	args := buildSlideshowArgs([]string{"a.jpg", "b.jpg"}, "track.mp3", "out.mp4", opts)

	joined := strings.Join(args, " ")
	// Музыка зациклена и приглушена, выход обрезан по видео.
	assert.Contains(t, joined, "-stream_loop -1 -i track.mp3")
	assert.Contains(t, filterComplex(t, args), "[2:a]volume=0.3[aout]")
	assert.Contains(t, joined, "-map [aout] -c:a aac -shortest")
}

func TestBuildSlideshowArgs_OutputEncoding(t *testing.T) {
	args := buildSlideshowArgs([]string{"a.jpg"}, "", "out.mp4", models.DefaultSlideshowOptions())

	joined := strings.Join(args, " ")
	assert.Contains(t, joined, "-c:v libx264 -r 24 -pix_fmt yuv420p out.mp4")
}

func TestGenerateSlideshow_NoImages(t *testing.T) {
	svc := newTestService(t, testConfig(t))

	err := svc.generateSlideshow(context.Background(), t.TempDir(), nil, "", models.DefaultSlideshowOptions())
	assert.ErrorIs(t, err, ErrSlideshowFailed)
}
