package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sunr3d/media-showcase/models"
)

const defaultHTTPTimeout = 30 * time.Second

// APIError — не-2xx ответ бэкенда: HTTP статус и тело ответа как есть.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

type SubmitResult struct {
	SessionID string               `json:"session_id"`
	Status    models.SessionStatus `json:"status"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

func New(baseURL string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
		logger:     log,
	}
}

// Upload отправляет ZIP архив на бэкенд. Валидация имени и размера
// выполняется до какого-либо сетевого вызова.
func (c *Client) Upload(ctx context.Context, filename string, size int64, file io.Reader, opts *models.SlideshowOptions) (*SubmitResult, error) {
	if err := ValidateUploadFile(filename, size); err != nil {
		return nil, err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("не удалось сформировать multipart запрос: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("не удалось прочитать файл: %w", err)
	}

	if opts != nil {
		raw, err := json.Marshal(opts)
		if err != nil {
			return nil, fmt.Errorf("не удалось сериализовать настройки слайдшоу: %w", err)
		}
		if err := mw.WriteField("slideshow_options", string(raw)); err != nil {
			return nil, fmt.Errorf("не удалось сформировать multipart запрос: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("не удалось сформировать multipart запрос: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var result SubmitResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SubmitLink отправляет ссылку на архив; тип источника определяется
// по URL (Google Drive или обычная ссылка).
func (c *Client) SubmitLink(ctx context.Context, sourceURL string, opts *models.SlideshowOptions) (*SubmitResult, error) {
	sourceType, err := ClassifySourceURL(sourceURL)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("source_url", sourceURL)
	form.Set("source_type", string(sourceType))
	if opts != nil {
		raw, err := json.Marshal(opts)
		if err != nil {
			return nil, fmt.Errorf("не удалось сериализовать настройки слайдшоу: %w", err)
		}
		form.Set("slideshow_options", string(raw))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/submit_link", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var result SubmitResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) GetSession(ctx context.Context, id string) (*models.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/session/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var session models.Session
	if err := c.do(req, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) ListSessions(ctx context.Context) ([]*models.Session, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/sessions", nil)
	if err != nil {
		return nil, err
	}

	var sessions []*models.Session
	if err := c.do(req, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *Client) DeleteSession(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/api/session/"+url.PathEscape(id), nil)
	if err != nil {
		return err
	}

	return c.do(req, nil)
}

func (c *Client) Cleanup(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/cleanup", nil)
	if err != nil {
		return err
	}

	return c.do(req, nil)
}

// MediaURL строит адрес медиа файла сессии; скачивание остается
// за вызывающей стороной (плеер, тег img и т.п.).
func (c *Client) MediaURL(sessionID, filename string) string {
	return c.baseURL + "/api/media/" + url.PathEscape(sessionID) + "/" + url.PathEscape(filename)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("сетевая ошибка: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("не удалось разобрать JSON ответ: %w", err)
	}
	return nil
}
