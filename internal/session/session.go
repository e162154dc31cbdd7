package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jask/tenantshell/internal/database/repository"
)

// TokenStore persists the token pair between launches.
type TokenStore interface {
	Load(ctx context.Context) (*repository.Token, error)
	Save(ctx context.Context, t repository.Token) error
	Clear(ctx context.Context) error
}

// User is the signed-in identity read from the access token.
type User struct {
	ID        string
	Tenant    string
	Role      string
	ExpiresAt *time.Time
}

// Session is safe for concurrent use. Subscribers run on the goroutine that
// changed the state and must not block.
type Session struct {
	store TokenStore
	auth  Authenticator
	log   zerolog.Logger
	now   func() time.Time

	mu            sync.RWMutex
	authenticated bool
	loading       bool
	loggingIn     bool
	user          *User

	subMu  sync.Mutex
	subs   map[int]func()
	nextID int
}

func New(store TokenStore, auth Authenticator, log zerolog.Logger) *Session {
	return &Session{
		store: store,
		auth:  auth,
		log:   log.With().Str("component", "session").Logger(),
		now:   time.Now,
		subs:  make(map[int]func()),
	}
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Session) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) IsLoggingIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggingIn
}

// User returns the signed-in user, or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Subscribe registers fn to run after every state change.
func (s *Session) Subscribe(fn func()) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Session) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (s *Session) update(fn func()) {
	s.mu.Lock()
	fn()
	s.mu.Unlock()
	s.notify()
}

// InitializeAuth restores the session from the stored token. A missing or
// unreadable token leaves the session signed out. An expired token is
// refreshed; a rejected refresh signs out, any other refresh failure keeps
// the stored session.
func (s *Session) InitializeAuth(ctx context.Context) error {
	s.update(func() { s.loading = true })
	defer s.update(func() { s.loading = false })

	stored, err := s.store.Load(ctx)
	if err != nil {
		s.signOut()
		return fmt.Errorf("load token: %w", err)
	}
	if stored == nil {
		s.signOut()
		return nil
	}
	claims, err := decodeUnverified(stored.AccessToken)
	if err != nil {
		s.log.Warn().Err(err).Msg("stored token unreadable, signing out")
		s.signOut()
		return s.clear(ctx)
	}
	exp := expiresAt(claims)
	if exp == nil || s.now().Before(*exp) {
		s.signIn(claims)
		return nil
	}
	if stored.RefreshToken == nil || *stored.RefreshToken == "" {
		s.log.Info().Msg("token expired without refresh token, signing out")
		s.signOut()
		return s.clear(ctx)
	}

	tokens, err := s.auth.Refresh(ctx, *stored.RefreshToken)
	if errors.Is(err, ErrUnauthorized) {
		s.log.Info().Msg("refresh rejected, signing out")
		s.signOut()
		return s.clear(ctx)
	}
	if err != nil {
		// the backend may just be unreachable
		s.signIn(claims)
		return fmt.Errorf("refresh token: %w", err)
	}
	refreshed, err := s.persist(ctx, tokens)
	if err != nil {
		s.signIn(claims)
		return err
	}
	s.signIn(refreshed)
	return nil
}

// Login exchanges credentials for tokens and stores them.
func (s *Session) Login(ctx context.Context, username, password string) error {
	s.update(func() {
		s.loading = true
		s.loggingIn = true
	})
	defer s.update(func() {
		s.loading = false
		s.loggingIn = false
	})

	tokens, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	claims, err := s.persist(ctx, tokens)
	if err != nil {
		return err
	}
	s.signIn(claims)
	s.log.Info().Str("user", claims.Subject).Msg("signed in")
	return nil
}

func (s *Session) Logout(ctx context.Context) error {
	s.signOut()
	return s.clear(ctx)
}

func (s *Session) persist(ctx context.Context, tokens Tokens) (*Claims, error) {
	claims, err := decodeUnverified(tokens.Access)
	if err != nil {
		return nil, err
	}
	t := repository.Token{AccessToken: tokens.Access, Subject: claims.Subject, ExpiresAt: expiresAt(claims)}
	if tokens.Refresh != "" {
		refresh := tokens.Refresh
		t.RefreshToken = &refresh
	}
	if err := s.store.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	return claims, nil
}

func (s *Session) clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (s *Session) signIn(c *Claims) {
	s.update(func() {
		s.authenticated = true
		s.user = &User{ID: c.Subject, Tenant: c.Tenant, Role: c.Role, ExpiresAt: expiresAt(c)}
	})
}

func (s *Session) signOut() {
	s.update(func() {
		s.authenticated = false
		s.user = nil
	})
}
