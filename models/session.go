package models

import "time"

type SessionStatus string

const (
	SessionStatusQueued              SessionStatus = "queued"
	SessionStatusDownloading         SessionStatus = "downloading"
	SessionStatusProcessing          SessionStatus = "processing"
	SessionStatusGeneratingSlideshow SessionStatus = "generating_slideshow"
	SessionStatusReady               SessionStatus = "ready"
	SessionStatusFailed              SessionStatus = "failed"
)

// IsTerminal сообщает, что сессия достигла конечного состояния.
func (s SessionStatus) IsTerminal() bool {
	return s == SessionStatusReady || s == SessionStatusFailed
}

// IsActive сообщает, что сессия все еще обрабатывается бэкендом.
// Неизвестные статусы не считаются активными, но и не отбрасываются.
func (s SessionStatus) IsActive() bool {
	switch s {
	case SessionStatusQueued, SessionStatusDownloading,
		SessionStatusProcessing, SessionStatusGeneratingSlideshow:
		return true
	default:
		return false
	}
}

type SourceType string

const (
	SourceTypeUpload      SourceType = "upload"
	SourceTypeURL         SourceType = "url"
	SourceTypeGoogleDrive SourceType = "google_drive"
)

type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

type MediaFile struct {
	Filename  string    `json:"filename"`
	Type      MediaType `json:"file_type"`
	Size      int64     `json:"file_size"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	Duration  float64   `json:"duration,omitempty"`
	Thumbnail string    `json:"thumbnail,omitempty"`
}

type Manifest struct {
	Images         []MediaFile `json:"images"`
	Videos         []MediaFile `json:"videos"`
	AudioFiles     []MediaFile `json:"audio_files"`
	SlideshowVideo string      `json:"slideshow_video,omitempty"`
	TotalFiles     int         `json:"total_files"`
	TotalSize      int64       `json:"total_size"`
	CreatedAt      time.Time   `json:"created_at"`
}

type Session struct {
	ID               string            `json:"session_id"`
	SourceType       SourceType        `json:"source_type"`
	SourceURL        string            `json:"source_url,omitempty"`
	OriginalFilename string            `json:"original_filename,omitempty"`
	Status           SessionStatus     `json:"status"`
	Progress         int               `json:"progress"`
	SubmittedAt      time.Time         `json:"submitted_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
	ExpiresAt        time.Time         `json:"expires_at"`
	ErrorMessage     string            `json:"error_message,omitempty"`
	SlideshowOptions *SlideshowOptions `json:"slideshow_options,omitempty"`
	Manifest         *Manifest         `json:"manifest,omitempty"`
}

// Expired сообщает, что срок жизни медиа сессии истек.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
