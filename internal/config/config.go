package config

import "time"

type Config struct {
	HTTPPort string `envconfig:"HTTP_PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	MaxUploadSize    int64 `envconfig:"MAX_UPLOAD_SIZE" default:"2147483648"`
	MaxExtractedSize int64 `envconfig:"MAX_EXTRACTED_SIZE" default:"1073741824"`
	MaxFilesPerZip   int   `envconfig:"MAX_FILES_PER_ZIP" default:"200"`

	ImageFormats []string `envconfig:"IMAGE_FORMATS" default:".jpg,.jpeg,.png,.gif,.bmp,.webp"`
	VideoFormats []string `envconfig:"VIDEO_FORMATS" default:".mp4,.webm,.avi,.mov,.mkv"`
	AudioFormats []string `envconfig:"AUDIO_FORMATS" default:".mp3,.wav,.ogg,.aac,.flac"`

	SessionTTL      time.Duration `envconfig:"SESSION_TTL" default:"720h"`
	CleanupInterval time.Duration `envconfig:"CLEANUP_INTERVAL" default:"30m"`
	Workers         int           `envconfig:"WORKERS" default:"2"`
	QueueSize       int           `envconfig:"QUEUE_SIZE" default:"64"`

	DownloadTimeout time.Duration `envconfig:"DOWNLOAD_TIMEOUT" default:"5m"`
	MaxDownloadSize int64         `envconfig:"MAX_DOWNLOAD_SIZE" default:"2147483648"`

	FFmpegPath         string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	FFprobePath        string `envconfig:"FFPROBE_PATH" default:"ffprobe"`
	MaxSlideshowImages int    `envconfig:"MAX_SLIDESHOW_IMAGES" default:"30"`
	ThumbnailWidth     int    `envconfig:"THUMBNAIL_WIDTH" default:"320"`

	MediaDir string `envconfig:"MEDIA_DIR" default:"./static/media"`
	TempDir  string `envconfig:"TEMP_DIR" default:"./tmp"`

	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173,http://127.0.0.1:5173"`

	UploadRatePerMin int `envconfig:"RATE_LIMIT_UPLOADS" default:"5"`
	LinkRatePerMin   int `envconfig:"RATE_LIMIT_LINKS" default:"10"`
}
