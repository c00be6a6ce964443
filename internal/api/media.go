package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sunr3d/media-showcase/internal/config"
	"github.com/sunr3d/media-showcase/internal/interfaces/services"
	"github.com/sunr3d/media-showcase/internal/services/media_service"
	"github.com/sunr3d/media-showcase/models"
)

// Запас на служебные данные multipart поверх лимита самого файла.
const multipartOverhead = 10 << 20

type MediaAPI struct {
	service services.MediaService
	logger  *zap.Logger
	cfg     *config.Config
}

func New(service services.MediaService, logger *zap.Logger, cfg *config.Config) *MediaAPI {
	return &MediaAPI{
		service: service,
		logger:  logger,
		cfg:     cfg,
	}
}

// POST /api/upload
func (h *MediaAPI) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadSize+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Некорректный запрос: отсутствует файл")
		return
	}
	defer file.Close()

	opts, err := parseSlideshowOptions(r.FormValue("slideshow_options"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Некорректные настройки слайдшоу: "+err.Error())
		return
	}

	session, err := h.service.CreateUploadSession(r.Context(), header.Filename, header.Size, file, opts)
	if err != nil {
		h.logger.Error("ошибка создания сессии загрузки", zap.Error(err))
		h.writeError(w, statusFor(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, submitResp{
		SessionID: session.ID,
		Status:    string(session.Status),
	})
}

// POST /api/submit_link
func (h *MediaAPI) SubmitLink(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.writeError(w, http.StatusBadRequest, "Некорректный запрос: не удалось разобрать форму")
		return
	}

	sourceURL := r.FormValue("source_url")
	if sourceURL == "" {
		h.writeError(w, http.StatusBadRequest, "Некорректный запрос: поле source_url не может быть пустым")
		return
	}
	sourceType := models.SourceType(r.FormValue("source_type"))

	opts, err := parseSlideshowOptions(r.FormValue("slideshow_options"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Некорректные настройки слайдшоу: "+err.Error())
		return
	}

	session, err := h.service.CreateLinkSession(r.Context(), sourceURL, sourceType, opts)
	if err != nil {
		h.logger.Error("ошибка создания сессии по ссылке", zap.Error(err))
		h.writeError(w, statusFor(err), err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, submitResp{
		SessionID: session.ID,
		Status:    string(session.Status),
	})
}

// GET /api/session/{id}
func (h *MediaAPI) GetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		h.writeError(w, http.StatusBadRequest, "Некорректный запрос: отсутствует ID сессии")
		return
	}

	session, err := h.service.GetSession(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Сессия не найдена")
		return
	}

	h.writeJSON(w, http.StatusOK, session)
}

// GET /api/sessions
func (h *MediaAPI) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.service.ListSessions(r.Context())
	if err != nil {
		h.logger.Error("ошибка получения списка сессий", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	summaries := make([]sessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, sessionSummary{
			SessionID:        session.ID,
			Status:           string(session.Status),
			SubmittedAt:      session.SubmittedAt,
			ExpiresAt:        session.ExpiresAt,
			OriginalFilename: session.OriginalFilename,
		})
	}

	h.writeJSON(w, http.StatusOK, summaries)
}

// DELETE /api/session/{id}
func (h *MediaAPI) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		h.writeError(w, http.StatusBadRequest, "Некорректный запрос: отсутствует ID сессии")
		return
	}

	if err := h.service.DeleteSession(r.Context(), sessionID); err != nil {
		h.logger.Error("ошибка удаления сессии", zap.Error(err))
		h.writeError(w, http.StatusNotFound, "Сессия не найдена")
		return
	}

	h.writeJSON(w, http.StatusOK, messageResp{Message: "Сессия успешно удалена"})
}

// GET /api/media/{session_id}/{filename}
func (h *MediaAPI) GetMediaFile(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session_id")
	filename := r.PathValue("filename")
	if sessionID == "" || filename == "" {
		h.writeError(w, http.StatusBadRequest, "Некорректный запрос: отсутствует ID сессии или имя файла")
		return
	}

	filePath, err := h.service.MediaFilePath(r.Context(), sessionID, filename)
	if err != nil {
		h.writeError(w, http.StatusNotFound, "Файл не найден")
		return
	}

	http.ServeFile(w, r, filePath)
}

// GET /api/cleanup
func (h *MediaAPI) Cleanup(w http.ResponseWriter, r *http.Request) {
	removed, err := h.service.Cleanup(r.Context())
	if err != nil {
		h.logger.Error("ошибка очистки сессий", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	h.writeJSON(w, http.StatusOK, messageResp{
		Message: "Очистка устаревших сессий выполнена",
		Removed: removed,
	})
}

func (h *MediaAPI) writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("ошибка кодирования JSON ответа", zap.Error(err))
	}
}

func (h *MediaAPI) writeError(w http.ResponseWriter, code int, message string) {
	h.writeJSON(w, code, errorResp{Error: message})
}

func parseSlideshowOptions(raw string) (*models.SlideshowOptions, error) {
	if raw == "" {
		return nil, nil
	}

	var opts models.SlideshowOptions
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return nil, err
	}
	return &opts, nil
}

// statusFor отображает ошибки валидации на 400, остальные на 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, media_service.ErrNotZip),
		errors.Is(err, media_service.ErrFileTooLarge),
		errors.Is(err, media_service.ErrInvalidSourceType),
		errors.Is(err, media_service.ErrInvalidURL),
		errors.Is(err, media_service.ErrPrivateAddress),
		errors.Is(err, media_service.ErrInvalidOptions):
		return http.StatusBadRequest
	case errors.Is(err, media_service.ErrQueueFull):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
