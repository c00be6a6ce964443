package media_service

import "errors"

var (
	ErrContextDone = errors.New("отмена контекста")

	ErrNotZip            = errors.New("допускаются только ZIP файлы")
	ErrFileTooLarge      = errors.New("файл слишком большой")
	ErrInvalidSourceType = errors.New("некорректный тип источника")
	ErrInvalidURL        = errors.New("некорректный URL")
	ErrPrivateAddress    = errors.New("URL указывает на локальный или приватный адрес")
	ErrInvalidOptions    = errors.New("некорректные настройки слайдшоу")

	ErrSessionSave = errors.New("не удалось сохранить сессию")
	ErrSessionGet  = errors.New("не удалось получить сессию")
	ErrQueueFull   = errors.New("очередь обработки переполнена")

	ErrNotZipArchive     = errors.New("файл не является корректным ZIP архивом")
	ErrTooManyFiles      = errors.New("превышен лимит файлов в архиве")
	ErrExtractedTooLarge = errors.New("превышен лимит размера распакованного содержимого")
	ErrPathTraversal     = errors.New("обнаружена попытка выхода за пределы директории сессии")

	ErrDownloadFailed   = errors.New("не удалось загрузить файл")
	ErrDownloadTooLarge = errors.New("загружаемый файл слишком большой")
	ErrGoogleDriveURL   = errors.New("некорректная ссылка Google Drive")

	ErrSlideshowFailed = errors.New("не удалось сгенерировать слайдшоу")

	ErrFileNotFound     = errors.New("файл не найден")
	ErrMkdirFailed      = errors.New("не удалось создать директорию")
	ErrFileCreateFailed = errors.New("не удалось создать файл")
	ErrFileCopyFailed   = errors.New("не удалось скопировать файл")
)
