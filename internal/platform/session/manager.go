package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mediconsult/mediconsult/internal/platform/auth"
)

const CookieName = "mc_session"

// Manager issues, loads and destroys sessions and keeps the cookie in sync.
type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
	now    func() time.Time
}

func NewManager(store Store, ttl time.Duration, secureCookie bool) *Manager {
	return &Manager{
		store:  store,
		ttl:    ttl,
		secure: secureCookie,
		now:    time.Now,
	}
}

// Start creates a fresh session for the user and sets the cookie. Any
// session the client already holds is destroyed first so a login never
// reuses a pre-authentication id.
func (m *Manager) Start(c echo.Context, userID int64, role string) (*Session, error) {
	ctx := c.Request().Context()
	if old, err := c.Cookie(CookieName); err == nil && old.Value != "" {
		if err := m.store.Destroy(ctx, old.Value); err != nil {
			return nil, err
		}
	}

	now := m.now()
	s := &Session{
		ID:        uuid.New().String(),
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Set(ctx, s); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	c.SetCookie(m.cookie(s.ID, s.ExpiresAt, int(m.ttl.Seconds())))
	return s, nil
}

// End destroys the caller's session, if any, and expires the cookie.
func (m *Manager) End(c echo.Context) error {
	if ck, err := c.Cookie(CookieName); err == nil && ck.Value != "" {
		if err := m.store.Destroy(c.Request().Context(), ck.Value); err != nil {
			return err
		}
	}
	c.SetCookie(m.cookie("", time.Unix(0, 0), -1))
	return nil
}

// Load returns the session referenced by the request cookie.
func (m *Manager) Load(ctx context.Context, r *http.Request) (*Session, error) {
	ck, err := r.Cookie(CookieName)
	if err != nil || ck.Value == "" {
		return nil, ErrNotFound
	}
	return m.store.Get(ctx, ck.Value)
}

// Middleware resolves the session cookie into an identity on the request
// context. Requests without a valid session continue anonymously; routes
// that need a user are guarded by auth.RequireAuth. Health checks skip the
// store lookup.
func (m *Manager) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if auth.PublicSkipper(c) {
				return next(c)
			}
			req := c.Request()
			s, err := m.Load(req.Context(), req)
			switch {
			case err == nil:
				c.SetRequest(req.WithContext(auth.WithIdentity(req.Context(), s.UserID, s.Role)))
			case errors.Is(err, ErrNotFound):
			default:
				zerolog.Ctx(req.Context()).Warn().Err(err).Msg("session lookup failed")
			}
			return next(c)
		}
	}
}

func (m *Manager) cookie(value string, expires time.Time, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
