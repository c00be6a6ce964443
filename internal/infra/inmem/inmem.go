package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sunr3d/media-showcase/internal/interfaces/infra"
	"github.com/sunr3d/media-showcase/models"
)

var _ infra.Database = (*inmemDB)(nil)

type inmemDB struct {
	logger *zap.Logger
	db     map[string]*models.Session
	mu     sync.RWMutex
}

func New(log *zap.Logger) infra.Database {
	return &inmemDB{
		logger: log,
		db:     make(map[string]*models.Session),
	}
}

func (db *inmemDB) SaveSession(ctx context.Context, session *models.Session) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if session == nil {
		return ErrSessionNil
	}

	if session.ID == "" {
		return ErrSessionIDEmpty
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	cp := *session
	db.db[session.ID] = &cp

	return nil
}

func (db *inmemDB) GetSession(ctx context.Context, id string) (*models.Session, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if id == "" {
		return nil, ErrSessionIDEmpty
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	session, exists := db.db[id]
	if !exists {
		return nil, ErrSessionNotFound
	}

	cp := *session
	return &cp, nil
}

func (db *inmemDB) ListSessions(ctx context.Context) ([]*models.Session, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	sessions := make([]*models.Session, 0, len(db.db))
	for _, session := range db.db {
		cp := *session
		sessions = append(sessions, &cp)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].SubmittedAt.Before(sessions[j].SubmittedAt)
	})

	return sessions, nil
}

func (db *inmemDB) DeleteSession(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if id == "" {
		return ErrSessionIDEmpty
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.db[id]; !exists {
		return ErrSessionNotFound
	}

	delete(db.db, id)
	db.logger.Info("сессия удалена", zap.String("session_id", id))

	return nil
}

func (db *inmemDB) DeleteExpired(ctx context.Context, now time.Time) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	var removed []string
	for id, session := range db.db {
		if session.Expired(now) {
			delete(db.db, id)
			removed = append(removed, id)
			db.logger.Info("сессия удалена по TTL", zap.String("session_id", id))
		}
	}

	return removed, nil
}
