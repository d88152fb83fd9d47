package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Handle tracks the session of one request so the transport can emit the cookie afterwards.
type Handle struct {
	id      string
	changed bool
}

// NewHandle wraps the id presented by the client, possibly empty.
func NewHandle(id string) *Handle {
	return &Handle{id: id}
}

// ID is the current session id; empty when none.
func (h *Handle) ID() string { return h.id }

// Changed reports whether the session was established or destroyed during the request.
func (h *Handle) Changed() bool { return h.changed }

type handleKey struct{}

// WithHandle binds h to ctx.
func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, handleKey{}, h)
}

// HandleFromContext returns the handle bound to ctx, or nil.
func HandleFromContext(ctx context.Context) *Handle {
	h, _ := ctx.Value(handleKey{}).(*Handle)
	return h
}

// Manager establishes, resolves and destroys sessions.
type Manager struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewManager builds a manager whose entries live for ttl.
func NewManager(store Store, ttl time.Duration, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{store: store, ttl: ttl, logger: logger}
}

// Resolve returns the user id bound to id. ok is false for unknown or expired ids.
func (m *Manager) Resolve(ctx context.Context, id string) (int64, bool, error) {
	if id == "" {
		return 0, false, nil
	}
	userID, err := m.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return userID, true, nil
}

// Establish binds a fresh session id to userID and records it on the request handle.
// Any previous session carried by the request is discarded.
func (m *Manager) Establish(ctx context.Context, userID int64) error {
	id := uuid.NewString()
	if err := m.store.Set(ctx, id, userID, m.ttl); err != nil {
		return err
	}

	if h := HandleFromContext(ctx); h != nil {
		if h.id != "" {
			if err := m.store.Delete(ctx, h.id); err != nil {
				m.logger.Warn("drop previous session", zap.Error(err))
			}
		}
		h.id = id
		h.changed = true
	}
	m.logger.Debug("session established", zap.Int64("user_id", userID))
	return nil
}

// Destroy removes the request's session, if any.
func (m *Manager) Destroy(ctx context.Context) error {
	h := HandleFromContext(ctx)
	if h == nil || h.id == "" {
		return nil
	}
	if err := m.store.Delete(ctx, h.id); err != nil {
		return err
	}
	h.id = ""
	h.changed = true
	return nil
}
