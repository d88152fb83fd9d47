package auth

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/ereignis/ereignis-api/internal/domain"
	"github.com/ereignis/ereignis-api/internal/session"
	apperrors "github.com/ereignis/ereignis-api/pkg/util/errorutil"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	MaxAge time.Duration
	Domain string
	Secure bool
}

// UserLookup resolves a session's user id to an account.
type UserLookup interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// SessionMiddleware resolves the actor from the session cookie and writes the
// cookie back when the session changed during the request.
type SessionMiddleware struct {
	sessions *session.Manager
	users    UserLookup
	cookie   CookieConfig
	logger   *zap.Logger
}

// NewSessionMiddleware constructs middleware.
func NewSessionMiddleware(sessions *session.Manager, users UserLookup, cookie CookieConfig, logger *zap.Logger) *SessionMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionMiddleware{sessions: sessions, users: users, cookie: cookie, logger: logger}
}

// Handle runs for every request; anonymous requests carry a nil actor.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	ctx := c.UserContext()
	handle := session.NewHandle(c.Cookies(m.cookie.Name))

	actor, err := m.resolveActor(ctx, handle.ID())
	if err != nil {
		return apperrors.MapError(err)
	}

	c.SetUserContext(session.WithHandle(WithActor(ctx, actor), handle))

	err = c.Next()

	if handle.Changed() {
		m.writeCookie(c, handle.ID())
	}
	return err
}

func (m *SessionMiddleware) resolveActor(ctx context.Context, sid string) (*domain.User, error) {
	userID, ok, err := m.sessions.Resolve(ctx, sid)
	if err != nil || !ok {
		return nil, err
	}
	user, err := m.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			m.logger.Debug("session bound to missing user", zap.Int64("user_id", userID))
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (m *SessionMiddleware) writeCookie(c *fiber.Ctx, sid string) {
	cookie := &fiber.Cookie{
		Name:     m.cookie.Name,
		Value:    sid,
		Path:     "/",
		Domain:   m.cookie.Domain,
		Secure:   m.cookie.Secure,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	}
	if sid == "" {
		cookie.Expires = time.Unix(0, 0).UTC()
	} else {
		cookie.MaxAge = int(m.cookie.MaxAge / time.Second)
		cookie.Expires = time.Now().Add(m.cookie.MaxAge)
	}
	c.Cookie(cookie)
}
