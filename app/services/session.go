package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sparkcrackers/storefront/app/models"
	"github.com/sparkcrackers/storefront/pkg/auth"
	"github.com/sparkcrackers/storefront/pkg/event"
	"github.com/sparkcrackers/storefront/pkg/logger"
	"github.com/sparkcrackers/storefront/pkg/session"
)

// EventSessionChanged fires after every login, logout, restore and forced
// clear.
const EventSessionChanged = "session.changed"

// SessionState is a snapshot of the session.
type SessionState struct {
	User            *models.User
	Token           string
	IsAuthenticated bool
	Loading         bool
}

type sessionEvent struct {
	ctx   context.Context
	state SessionState
}

// Session is the signed-in shopper. It is created loading, resolved once by
// Restore, and afterwards moves between active (Start) and cleared (Clear).
// Every store that needs the user gets the same *Session.
type Session struct {
	store session.Store
	bus   *event.Bus
	now   func() time.Time

	mu      sync.RWMutex
	user    *models.User
	token   string
	loading bool
	gen     uint64
}

func NewSession(store session.Store, bus *event.Bus) *Session {
	if bus == nil {
		bus = event.NewBus()
	}
	return &Session{store: store, bus: bus, now: time.Now, loading: true}
}

// Restore reads the durable token and user. Both must be present and parse,
// and a JWT token must not be past its exp; otherwise the stored keys are
// removed and the shopper is anonymous.
func (s *Session) Restore(ctx context.Context) error {
	token, user, err := s.read(ctx)

	s.mu.Lock()
	s.loading = false
	s.gen++
	if err == nil && user != nil {
		s.token, s.user = token, user
	} else {
		s.token, s.user = "", nil
	}
	s.mu.Unlock()

	if err == nil && user == nil {
		if derr := s.store.Delete(ctx, session.KeyToken, session.KeyUser); derr != nil {
			err = fmt.Errorf("session: clear stale keys: %w", derr)
		}
	}

	s.notify(ctx)
	return err
}

func (s *Session) read(ctx context.Context) (string, *models.User, error) {
	token, okT, err := s.store.Get(ctx, session.KeyToken)
	if err != nil {
		return "", nil, fmt.Errorf("session: read token: %w", err)
	}
	raw, okU, err := s.store.Get(ctx, session.KeyUser)
	if err != nil {
		return "", nil, fmt.Errorf("session: read user: %w", err)
	}
	if !okT || !okU || token == "" {
		return "", nil, nil
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		logger.WithCtx(ctx).Warn("session: stored user is unreadable", "error", err)
		return "", nil, nil
	}

	exp, hasExp, err := auth.Expiry(token)
	if err != nil && !errors.Is(err, auth.ErrNotJWT) {
		return "", nil, nil
	}
	if hasExp && !exp.After(s.now()) {
		logger.WithCtx(ctx).Info("session: stored token expired", "expired_at", exp)
		return "", nil, nil
	}
	return token, &user, nil
}

// Start persists token and user and marks the session authenticated.
func (s *Session) Start(ctx context.Context, token string, user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}
	if err := s.store.Set(ctx, session.KeyToken, token); err != nil {
		return fmt.Errorf("session: write token: %w", err)
	}
	if err := s.store.Set(ctx, session.KeyUser, string(raw)); err != nil {
		_ = s.store.Delete(ctx, session.KeyToken)
		return fmt.Errorf("session: write user: %w", err)
	}

	s.mu.Lock()
	s.token, s.user, s.loading = token, &user, false
	s.gen++
	s.mu.Unlock()

	s.notify(ctx)
	return nil
}

// SetUser replaces the stored profile without touching the token. It does
// not fire a change event.
func (s *Session) SetUser(ctx context.Context, user models.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}
	if err := s.store.Set(ctx, session.KeyUser, string(raw)); err != nil {
		return fmt.Errorf("session: write user: %w", err)
	}

	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()
	return nil
}

// Clear removes both durable keys and signs the shopper out. In-memory state
// is cleared even when storage fails.
func (s *Session) Clear(ctx context.Context) error {
	err := s.store.Delete(ctx, session.KeyToken, session.KeyUser)

	s.mu.Lock()
	s.token, s.user, s.loading = "", nil, false
	s.gen++
	s.mu.Unlock()

	s.notify(ctx)
	if err != nil {
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// ForceClear is the 401 hook handed to the API client.
func (s *Session) ForceClear(ctx context.Context) {
	logger.WithCtx(ctx).Info("session: backend rejected the token, signing out")
	if err := s.Clear(ctx); err != nil {
		logger.WithCtx(ctx).Error("session: forced clear failed", "error", err)
	}
}

// OnChange registers fn for every session change. fn runs synchronously on
// the goroutine that changed the session.
func (s *Session) OnChange(fn func(ctx context.Context, st SessionState)) (unsubscribe func()) {
	return s.bus.Listen(EventSessionChanged, func(p any) {
		if ev, ok := p.(sessionEvent); ok {
			fn(ev.ctx, ev.state)
		}
	})
}

func (s *Session) notify(ctx context.Context) {
	s.bus.Fire(EventSessionChanged, sessionEvent{ctx: ctx, state: s.State()})
}

// Token implements api.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the signed-in user.
func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != ""
}

// generation counts sign-ins, sign-outs and restores. A response started
// under one generation belongs to a session that no longer exists once it
// moves.
func (s *Session) generation() (gen uint64, authenticated bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen, s.user != nil && s.token != ""
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) State() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := SessionState{Token: s.token, Loading: s.loading, IsAuthenticated: s.user != nil && s.token != ""}
	if s.user != nil {
		u := *s.user
		st.User = &u
	}
	return st
}
