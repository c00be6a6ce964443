package playlist

import (
	"strings"

	"github.com/sunr3d/media-showcase/models"
)

// Служебные элементы macOS архиваторов не попадают в плейлист,
// даже если просочились в манифест.
const macosxPrefix = "__MACOSX"

// URLBuilder строит адрес медиа файла сессии (обычно Client.MediaURL).
type URLBuilder func(sessionID, filename string) string

// FromSession строит плейлист из манифеста сессии: изображения, затем
// видео, затем сгенерированное слайдшоу. Манифест не изменяется; плейлист
// каждый раз выводится заново.
func FromSession(session *models.Session, urlFor URLBuilder) []models.PlaylistEntry {
	if session == nil || session.Manifest == nil {
		return nil
	}

	manifest := session.Manifest
	entries := make([]models.PlaylistEntry, 0, len(manifest.Images)+len(manifest.Videos)+1)

	for _, img := range manifest.Images {
		if skipEntry(img.Filename) {
			continue
		}

		entry := models.PlaylistEntry{
			Kind:     models.EntryKindImage,
			URL:      urlFor(session.ID, img.Filename),
			Filename: img.Filename,
		}
		if img.Thumbnail != "" {
			entry.Thumbnail = urlFor(session.ID, img.Thumbnail)
		}
		entries = append(entries, entry)
	}

	for _, vid := range manifest.Videos {
		if skipEntry(vid.Filename) {
			continue
		}

		entries = append(entries, models.PlaylistEntry{
			Kind:     models.EntryKindVideo,
			URL:      urlFor(session.ID, vid.Filename),
			Filename: vid.Filename,
			Duration: vid.Duration,
		})
	}

	if manifest.SlideshowVideo != "" {
		entries = append(entries, models.PlaylistEntry{
			Kind:     models.EntryKindSlideshow,
			URL:      urlFor(session.ID, manifest.SlideshowVideo),
			Filename: manifest.SlideshowVideo,
		})
	}

	return entries
}

func skipEntry(filename string) bool {
	return strings.HasPrefix(filename, macosxPrefix) || strings.HasPrefix(filename, "._")
}
