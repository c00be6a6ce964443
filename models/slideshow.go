package models

import "errors"

type TransitionEffect string

const (
	TransitionNone      TransitionEffect = "none"
	TransitionFade      TransitionEffect = "fade"
	TransitionCrossfade TransitionEffect = "crossfade"
)

const (
	DefaultImageDuration = 3.0
	MinImageDuration     = 0.5
	MaxImageDuration     = 10.0
	DefaultWidth         = 1280
	DefaultHeight        = 720
)

var (
	ErrInvalidImageDuration = errors.New("длительность показа изображения должна быть от 0.5 до 10 секунд")
	ErrInvalidTransition    = errors.New("неизвестный эффект перехода")
	ErrInvalidResolution    = errors.New("некорректное разрешение видео")
)

type SlideshowOptions struct {
	ImageDuration    float64          `json:"image_duration"`
	TransitionEffect TransitionEffect `json:"transition_effect"`
	Width            int              `json:"width"`
	Height           int              `json:"height"`
	BackgroundMusic  string           `json:"background_music,omitempty"`
}

// DefaultSlideshowOptions возвращает настройки слайдшоу по умолчанию.
func DefaultSlideshowOptions() *SlideshowOptions {
	return &SlideshowOptions{
		ImageDuration:    DefaultImageDuration,
		TransitionEffect: TransitionFade,
		Width:            DefaultWidth,
		Height:           DefaultHeight,
	}
}

// Normalize подставляет значения по умолчанию вместо нулевых полей.
func (o *SlideshowOptions) Normalize() {
	if o.ImageDuration == 0 {
		o.ImageDuration = DefaultImageDuration
	}
	if o.TransitionEffect == "" {
		o.TransitionEffect = TransitionFade
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
}

func (o *SlideshowOptions) Validate() error {
	if o.ImageDuration < MinImageDuration || o.ImageDuration > MaxImageDuration {
		return ErrInvalidImageDuration
	}
	switch o.TransitionEffect {
	case TransitionNone, TransitionFade, TransitionCrossfade:
	default:
		return ErrInvalidTransition
	}
	if o.Width <= 0 || o.Height <= 0 {
		return ErrInvalidResolution
	}
	return nil
}
