package client

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sunr3d/media-showcase/models"
)

const DefaultPollInterval = 3 * time.Second

const (
	progressQueued      = 0
	progressDownloading = 25
	progressProcessing  = 75
	progressReady       = 100
)

// Poller периодически опрашивает бэкенд и держит локальный снимок
// списка сессий. Все изменения проходят через merge по ID сессии,
// чтобы запоздавший ответ не затер более свежие данные.
type Poller struct {
	client   *Client
	logger   *zap.Logger
	interval time.Duration

	mu       sync.RWMutex
	sessions map[string]*models.Session
	loading  bool
	lastErr  error
}

func NewPoller(c *Client, interval time.Duration, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		client:   c,
		logger:   log,
		interval: interval,
		sessions: make(map[string]*models.Session),
	}
}

// Run крутит цикл опроса до отмены контекста. Первый запрос уходит
// сразу, дальше по таймеру; тик вхолостую, когда все локальные сессии
// в терминальном статусе.
func (p *Poller) Run(ctx context.Context) {
	p.Refresh(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.hasActive() {
				continue
			}
			p.Refresh(ctx)
		}
	}
}

// Refresh выполняет один цикл опроса: список сессий, отсев истекших,
// детальный запрос по каждой активной с подстановкой прогресса.
// Отказ детального запроса по одной сессии не трогает остальные.
func (p *Poller) Refresh(ctx context.Context) {
	p.setLoading(true)
	defer p.setLoading(false)

	list, err := p.client.ListSessions(ctx)
	if err != nil {
		p.setErr(err)
		p.logger.Error("не удалось получить список сессий", zap.Error(err))
		return
	}
	p.setErr(nil)

	now := time.Now()
	fresh := make(map[string]*models.Session, len(list))
	for _, session := range list {
		if session.Expired(now) {
			continue
		}

		if session.Status.IsActive() {
			detail, err := p.client.GetSession(ctx, session.ID)
			if err != nil {
				// Частичный отказ: оставляем данные из списка как есть.
				p.logger.Warn("не удалось получить детали сессии",
					zap.String("session_id", session.ID),
					zap.Error(err),
				)
			} else {
				session = detail
			}
		}

		attachProgress(session)
		fresh[session.ID] = session
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for id, existing := range p.sessions {
		if _, ok := fresh[id]; ok {
			continue
		}
		// Оптимистично добавленная сессия могла еще не попасть в список
		// бэкенда: активные и не истекшие оставляем до следующего цикла.
		if existing.Status.IsActive() && !existing.Expired(now) {
			fresh[id] = existing
		}
	}

	for id, incoming := range fresh {
		fresh[id] = merge(p.sessions[id], incoming)
	}
	p.sessions = fresh
}

// AddSession локально добавляет только что созданную сессию, не дожидаясь
// следующего цикла опроса.
func (p *Poller) AddSession(session *models.Session) {
	if session == nil || session.ID == "" {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[session.ID] = merge(p.sessions[session.ID], session)
}

// UpdateSession обновляет поля известной сессии через merge по ID.
func (p *Poller) UpdateSession(session *models.Session) {
	p.AddSession(session)
}

// RemoveSession убирает сессию только из локального снимка.
func (p *Poller) RemoveSession(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.sessions, id)
}

// Delete сначала просит бэкенд удалить сессию и убирает ее локально
// только при успехе. Возвращает признак успеха, а не ошибку: при отказе
// сессия остается в списке.
func (p *Poller) Delete(ctx context.Context, id string) bool {
	if err := p.client.DeleteSession(ctx, id); err != nil {
		p.logger.Error("бэкенд отказал в удалении сессии",
			zap.String("session_id", id),
			zap.Error(err),
		)
		return false
	}

	p.RemoveSession(id)
	return true
}

// Sessions возвращает снимок сессий, отсортированный по времени подачи.
func (p *Poller) Sessions() []*models.Session {
	p.mu.RLock()
	defer p.mu.RUnlock()

	sessions := make([]*models.Session, 0, len(p.sessions))
	for _, session := range p.sessions {
		cp := *session
		sessions = append(sessions, &cp)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].SubmittedAt.Before(sessions[j].SubmittedAt)
	})
	return sessions
}

func (p *Poller) Loading() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loading
}

func (p *Poller) Err() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastErr
}

func (p *Poller) hasActive() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, session := range p.sessions {
		if session.Status.IsActive() {
			return true
		}
	}
	return false
}

func (p *Poller) setLoading(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = v
}

func (p *Poller) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = err
}

// merge сводит новые данные с уже известными: более старый UpdatedAt
// не перекрывает свежий, манифест и прогресс не откатываются назад
// без смены статуса.
func merge(existing, incoming *models.Session) *models.Session {
	if existing == nil {
		return incoming
	}
	if incoming == nil {
		return existing
	}

	if incoming.UpdatedAt.Before(existing.UpdatedAt) {
		return existing
	}

	merged := *incoming
	if merged.Manifest == nil {
		merged.Manifest = existing.Manifest
	}
	if merged.Status == existing.Status && merged.Progress < existing.Progress {
		merged.Progress = existing.Progress
	}
	return &merged
}

// attachProgress подставляет производный прогресс по статусу.
// Неизвестные статусы пропускаются как есть.
func attachProgress(session *models.Session) {
	switch session.Status {
	case models.SessionStatusQueued:
		session.Progress = progressQueued
	case models.SessionStatusDownloading:
		session.Progress = progressDownloading
	case models.SessionStatusProcessing, models.SessionStatusGeneratingSlideshow:
		session.Progress = progressProcessing
	case models.SessionStatusReady:
		session.Progress = progressReady
	}
}
