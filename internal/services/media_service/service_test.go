package media_service

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sunr3d/media-showcase/internal/config"
	"github.com/sunr3d/media-showcase/internal/infra/inmem"
	"github.com/sunr3d/media-showcase/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		MaxUploadSize:      1 << 20,
		MaxExtractedSize:   1 << 20,
		MaxFilesPerZip:     10,
		ImageFormats:       []string{".jpg", ".jpeg", ".png", ".gif"},
		VideoFormats:       []string{".mp4", ".webm", ".mov"},
		AudioFormats:       []string{".mp3", ".wav"},
		SessionTTL:         time.Hour,
		Workers:            1,
		QueueSize:          8,
		DownloadTimeout:    5 * time.Second,
		MaxDownloadSize:    1 << 20,
		FFmpegPath:         "ffmpeg",
		FFprobePath:        "ffprobe",
		MaxSlideshowImages: 30,
		ThumbnailWidth:     64,
		MediaDir:           t.TempDir(),
		TempDir:            t.TempDir(),
	}
}

func newTestService(t *testing.T, cfg *config.Config) *mediaService {
	t.Helper()
	repo := inmem.New(zaptest.NewLogger(t))
	return New(zaptest.NewLogger(t), cfg, repo).(*mediaService)
}

// zipBytes собирает ZIP архив в памяти из пар имя-содержимое.
func zipBytes(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// pngBytes кодирует однотонный PNG заданного размера.
func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestCreateUploadSession(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg)

	payload := zipBytes(t, map[string]string{"photo.jpg": "fake"})
	session, err := svc.CreateUploadSession(context.Background(), "photos.zip", int64(len(payload)), bytes.NewReader(payload), nil)
	require.NoError(t, err)

	assert.Equal(t, models.SessionStatusQueued, session.Status)
	assert.Equal(t, models.SourceTypeUpload, session.SourceType)
	assert.Equal(t, "photos.zip", session.OriginalFilename)
	assert.Equal(t, 0, session.Progress)
	assert.True(t, session.ExpiresAt.After(time.Now()))
	require.NotNil(t, session.SlideshowOptions)
	assert.Equal(t, models.DefaultImageDuration, session.SlideshowOptions.ImageDuration)

	// Архив сохранен в директорию сессии и поставлен в очередь.
	_, err = os.Stat(filepath.Join(cfg.MediaDir, session.ID, inputZipName))
	require.NoError(t, err)
	assert.Len(t, svc.queue, 1)
}

func TestCreateUploadSession_NotZip(t *testing.T) {
	svc := newTestService(t, testConfig(t))

	_, err := svc.CreateUploadSession(context.Background(), "photos.rar", 10, bytes.NewReader([]byte("x")), nil)
	assert.ErrorIs(t, err, ErrNotZip)
}

func TestCreateUploadSession_SizeBoundary(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxUploadSize = 16
	svc := newTestService(t, cfg)

	payload := bytes.Repeat([]byte("a"), 16)
	_, err := svc.CreateUploadSession(context.Background(), "ok.zip", 16, bytes.NewReader(payload), nil)
	assert.NoError(t, err)

	_, err = svc.CreateUploadSession(context.Background(), "big.zip", 17, bytes.NewReader(append(payload, 'b')), nil)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestCreateUploadSession_DeclaredSizeLied(t *testing.T) {
	cfg := testConfig(t)
	cfg.MaxUploadSize = 8
	svc := newTestService(t, cfg)

	// Заявлен маленький размер, фактический поток больше лимита.
	payload := bytes.Repeat([]byte("a"), 64)
	_, err := svc.CreateUploadSession(context.Background(), "liar.zip", 4, bytes.NewReader(payload), nil)
	assert.ErrorIs(t, err, ErrFileTooLarge)

	// Директорий-сирот после отказа не остается.
	entries, err := os.ReadDir(cfg.MediaDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestCreateUploadSession_InvalidOptions(t *testing.T) {
	svc := newTestService(t, testConfig(t))

	opts := &models.SlideshowOptions{ImageDuration: 42}
	_, err := svc.CreateUploadSession(context.Background(), "photos.zip", 10, bytes.NewReader([]byte("x")), opts)
	assert.ErrorIs(t, err, ErrInvalidOptions)
}

func TestCreateUploadSession_QueueFull(t *testing.T) {
	cfg := testConfig(t)
	cfg.QueueSize = 1
	svc := newTestService(t, cfg)

	payload := zipBytes(t, map[string]string{"a.txt": "x"})
	_, err := svc.CreateUploadSession(context.Background(), "one.zip", int64(len(payload)), bytes.NewReader(payload), nil)
	require.NoError(t, err)

	_, err = svc.CreateUploadSession(context.Background(), "two.zip", int64(len(payload)), bytes.NewReader(payload), nil)
	assert.ErrorIs(t, err, ErrQueueFull)
}

func TestCreateUploadSession_ContextDone(t *testing.T) {
	svc := newTestService(t, testConfig(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.CreateUploadSession(ctx, "photos.zip", 10, bytes.NewReader([]byte("x")), nil)
	assert.ErrorIs(t, err, ErrContextDone)
}

func TestCreateLinkSession(t *testing.T) {
	svc := newTestService(t, testConfig(t))

	session, err := svc.CreateLinkSession(context.Background(), "https://example.com/photos.zip", models.SourceTypeURL, nil)
	require.NoError(t, err)

	assert.Equal(t, models.SessionStatusQueued, session.Status)
	assert.Equal(t, models.SourceTypeURL, session.SourceType)
	assert.Equal(t, "https://example.com/photos.zip", session.SourceURL)
	assert.Equal(t, "photos.zip", session.OriginalFilename)
	assert.Len(t, svc.queue, 1)
}

func TestCreateLinkSession_InvalidSourceType(t *testing.T) {
	svc := newTestService(t, testConfig(t))

	_, err := svc.CreateLinkSession(context.Background(), "https://example.com/a.zip", models.SourceType("ftp"), nil)
	assert.ErrorIs(t, err, ErrInvalidSourceType)

	_, err = svc.CreateLinkSession(context.Background(), "https://example.com/a.zip", models.SourceTypeUpload, nil)
	assert.ErrorIs(t, err, ErrInvalidSourceType)
}

func TestCreateLinkSession_PrivateAddress(t *testing.T) {
	svc := newTestService(t, testConfig(t))

	cases := []string{
		"http://localhost/a.zip",
		"http://127.0.0.1:8000/a.zip",
		"http://10.0.0.5/a.zip",
		"http://192.168.1.10/a.zip",
		"http://0.0.0.0/a.zip",
	}
	for _, rawURL := range cases {
		_, err := svc.CreateLinkSession(context.Background(), rawURL, models.SourceTypeURL, nil)
		assert.ErrorIs(t, err, ErrPrivateAddress, rawURL)
	}
}

func TestListSessions_SkipsExpired(t *testing.T) {
	svc := newTestService(t, testConfig(t))
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, svc.repo.SaveSession(ctx, &models.Session{
		ID:        "fresh",
		Status:    models.SessionStatusReady,
		ExpiresAt: now.Add(time.Hour),
	}))
	require.NoError(t, svc.repo.SaveSession(ctx, &models.Session{
		ID:        "stale",
		Status:    models.SessionStatusReady,
		ExpiresAt: now.Add(-time.Hour),
	}))

	sessions, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "fresh", sessions[0].ID)
}

func TestDeleteSession_RemovesFiles(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg)
	ctx := context.Background()

	payload := zipBytes(t, map[string]string{"a.txt": "x"})
	session, err := svc.CreateUploadSession(ctx, "photos.zip", int64(len(payload)), bytes.NewReader(payload), nil)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, session.ID))

	_, err = svc.GetSession(ctx, session.ID)
	assert.ErrorIs(t, err, ErrSessionGet)
	_, statErr := os.Stat(filepath.Join(cfg.MediaDir, session.ID))
	assert.True(t, os.IsNotExist(statErr))
}

func TestCleanup(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg)
	ctx := context.Background()

	now := time.Now()
	staleDir := filepath.Join(cfg.MediaDir, "stale")
	require.NoError(t, os.MkdirAll(staleDir, 0755))
	require.NoError(t, svc.repo.SaveSession(ctx, &models.Session{
		ID:        "stale",
		Status:    models.SessionStatusReady,
		ExpiresAt: now.Add(-time.Hour),
	}))
	require.NoError(t, svc.repo.SaveSession(ctx, &models.Session{
		ID:        "fresh",
		Status:    models.SessionStatusReady,
		ExpiresAt: now.Add(time.Hour),
	}))

	removed, err := svc.Cleanup(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, statErr := os.Stat(staleDir)
	assert.True(t, os.IsNotExist(statErr))
	_, err = svc.GetSession(ctx, "fresh")
	assert.NoError(t, err)
}

func TestMediaFilePath(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg)
	ctx := context.Background()

	require.NoError(t, svc.repo.SaveSession(ctx, &models.Session{ID: "sess", ExpiresAt: time.Now().Add(time.Hour)}))
	sessionDir := filepath.Join(cfg.MediaDir, "sess")
	require.NoError(t, os.MkdirAll(sessionDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(sessionDir, "photo.jpg"), []byte("img"), 0644))

	path, err := svc.MediaFilePath(ctx, "sess", "photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(sessionDir, "photo.jpg"), path)

	_, err = svc.MediaFilePath(ctx, "sess", "../secret.txt")
	assert.ErrorIs(t, err, ErrPathTraversal)

	_, err = svc.MediaFilePath(ctx, "sess", "missing.jpg")
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = svc.MediaFilePath(ctx, "unknown", "photo.jpg")
	assert.ErrorIs(t, err, ErrSessionGet)
}

func TestProcessSession_Upload(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg)
	ctx := context.Background()

	payload := zipBytes(t, map[string]string{
		"photos/sunset.png": string(pngBytes(t, 4, 3)),
		"readme.txt":        "ignored",
	})
	session, err := svc.CreateUploadSession(ctx, "photos.zip", int64(len(payload)), bytes.NewReader(payload), nil)
	require.NoError(t, err)

	svc.processSession(ctx, session.ID)

	got, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusReady, got.Status)
	assert.Equal(t, 100, got.Progress)

	require.NotNil(t, got.Manifest)
	require.Len(t, got.Manifest.Images, 1)
	img := got.Manifest.Images[0]
	assert.Equal(t, "sunset.png", img.Filename)
	assert.Equal(t, 4, img.Width)
	assert.Equal(t, 3, img.Height)
	assert.Equal(t, 1, got.Manifest.TotalFiles)

	// Исходный архив после распаковки не хранится.
	_, statErr := os.Stat(filepath.Join(cfg.MediaDir, session.ID, inputZipName))
	assert.True(t, os.IsNotExist(statErr))
}

func TestProcessSession_BadArchive(t *testing.T) {
	cfg := testConfig(t)
	svc := newTestService(t, cfg)
	ctx := context.Background()

	payload := []byte("это вовсе не zip")
	session, err := svc.CreateUploadSession(ctx, "broken.zip", int64(len(payload)), bytes.NewReader(payload), nil)
	require.NoError(t, err)

	svc.processSession(ctx, session.ID)

	got, err := svc.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusFailed, got.Status)
	assert.NotEmpty(t, got.ErrorMessage)

	// Файлы проваленной сессии удаляются сразу.
	_, statErr := os.Stat(filepath.Join(cfg.MediaDir, session.ID))
	assert.True(t, os.IsNotExist(statErr))
}

func TestFilenameFromURL(t *testing.T) {
	assert.Equal(t, "photos.zip", filenameFromURL("https://example.com/files/photos.zip"))
	assert.Equal(t, "my photos.zip", filenameFromURL("https://example.com/my%20photos.zip"))
	assert.Equal(t, "", filenameFromURL("https://example.com/download"))
	assert.Equal(t, "", filenameFromURL("https://drive.google.com/file/d/1AbCdEf/view"))
}
