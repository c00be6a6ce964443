package inmem

import "errors"

var (
	ErrSessionNotFound = errors.New("сессия не найдена")
	ErrSessionNil      = errors.New("сессия не может быть nil")
	ErrSessionIDEmpty  = errors.New("ID сессии не может быть пустым")
	ErrContextDone     = errors.New("отмена контекста")
)
