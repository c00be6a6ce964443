package playlist

import "github.com/sunr3d/media-showcase/models"

// Navigator управляет текущей позицией в плейлисте. С включенным
// фильтром переходы идут только по видео и слайдшоу; без него — по всем
// элементам. Зацикливания нет: на краях списка позиция не меняется.
type Navigator struct {
	entries    []models.PlaylistEntry
	index      int
	videosOnly bool
	autoplay   bool
}

func NewNavigator(entries []models.PlaylistEntry, videosOnly bool) *Navigator {
	return &Navigator{
		entries:    entries,
		videosOnly: videosOnly,
	}
}

func (n *Navigator) Index() int {
	return n.index
}

func (n *Navigator) Len() int {
	return len(n.entries)
}

// Current возвращает текущий элемент; ok == false для пустого плейлиста.
func (n *Navigator) Current() (models.PlaylistEntry, bool) {
	if n.index < 0 || n.index >= len(n.entries) {
		return models.PlaylistEntry{}, false
	}
	return n.entries[n.index], true
}

// Next переходит к следующему элементу и возвращает новый индекс.
// Если двигаться некуда, индекс не меняется.
func (n *Navigator) Next() int {
	return n.moveTo(n.nextIndex())
}

// Previous переходит к предыдущему элементу и возвращает новый индекс.
func (n *Navigator) Previous() int {
	return n.moveTo(n.prevIndex())
}

// HasNext истинно, только если Next действительно сдвинет позицию.
func (n *Navigator) HasNext() bool {
	return n.nextIndex() != n.index
}

// HasPrevious истинно, только если Previous действительно сдвинет позицию.
func (n *Navigator) HasPrevious() bool {
	return n.prevIndex() != n.index
}

// Select — ручной выбор элемента (клик по миниатюре). Повторный выбор
// текущего элемента тоже взводит autoplay: это запрос воспроизведения.
func (n *Navigator) Select(i int) bool {
	if i < 0 || i >= len(n.entries) {
		return false
	}

	n.index = i
	n.autoplay = true
	return true
}

// SetFilter переключает режим "только видео/слайдшоу". Текущая позиция
// сохраняется, даже если элемент под фильтр не попадает.
func (n *Navigator) SetFilter(videosOnly bool) {
	n.videosOnly = videosOnly
}

// ConsumeAutoplay возвращает и сбрасывает намерение автовоспроизведения:
// одна попытка на одну смену выбора, под политику браузеров.
func (n *Navigator) ConsumeAutoplay() bool {
	v := n.autoplay
	n.autoplay = false
	return v
}

// MediaEnded обрабатывает окончание воспроизведения текущего элемента:
// если он видео или слайдшоу и под текущим фильтром есть следующий,
// выбор сдвигается автоматически. Возвращает признак перехода.
func (n *Navigator) MediaEnded() bool {
	current, ok := n.Current()
	if !ok || !current.Kind.Playable() {
		return false
	}
	if !n.HasNext() {
		return false
	}

	n.Next()
	return true
}

func (n *Navigator) moveTo(target int) int {
	if target != n.index {
		n.index = target
		n.autoplay = true
	}
	return n.index
}

func (n *Navigator) nextIndex() int {
	if n.videosOnly {
		for i := n.index + 1; i < len(n.entries); i++ {
			if n.entries[i].Kind.Playable() {
				return i
			}
		}
		return n.index
	}

	if n.index+1 < len(n.entries) {
		return n.index + 1
	}
	return n.index
}

func (n *Navigator) prevIndex() int {
	if n.videosOnly {
		for i := n.index - 1; i >= 0; i-- {
			if n.entries[i].Kind.Playable() {
				return i
			}
		}
		return n.index
	}

	if n.index-1 >= 0 {
		return n.index - 1
	}
	return n.index
}
