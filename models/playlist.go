package models

type EntryKind string

const (
	EntryKindImage     EntryKind = "image"
	EntryKindVideo     EntryKind = "video"
	EntryKindSlideshow EntryKind = "slideshow"
)

// Playable сообщает, что элемент воспроизводится как видео
// (обычное видео или сгенерированное слайдшоу).
func (k EntryKind) Playable() bool {
	switch k {
	case EntryKindVideo, EntryKindSlideshow:
		return true
	case EntryKindImage:
		return false
	default:
		return false
	}
}

type PlaylistEntry struct {
	Kind      EntryKind `json:"kind"`
	URL       string    `json:"url"`
	Filename  string    `json:"filename"`
	Duration  float64   `json:"duration,omitempty"`
	Thumbnail string    `json:"thumbnail,omitempty"`
}
