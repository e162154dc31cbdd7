package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnauthorized means the credentials or refresh token were rejected. The
// session drops its stored tokens when refresh fails with it.
var ErrUnauthorized = errors.New("unauthorized")

// Tokens is an access/refresh pair issued by an Authenticator.
type Tokens struct {
	Access  string
	Refresh string
}

// Authenticator issues and refreshes tokens.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (Tokens, error)
	Refresh(ctx context.Context, refreshToken string) (Tokens, error)
}

// Claims are the access token claims the shell reads.
type Claims struct {
	Tenant string `json:"tenant,omitempty"`
	Role   string `json:"role,omitempty"`
	Kind   string `json:"kind,omitempty"`
	jwt.RegisteredClaims
}

const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

// decodeUnverified reads claims without checking the signature.
func decodeUnverified(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	return claims, nil
}

func expiresAt(c *Claims) *time.Time {
	if c == nil || c.ExpiresAt == nil {
		return nil
	}
	t := c.ExpiresAt.Time.UTC()
	return &t
}

// LocalAuthenticator signs HS256 tokens for a single configured user.
type LocalAuthenticator struct {
	secret   []byte
	ttl      time.Duration
	username string
	password string
	tenant   string
	role     string
	now      func() time.Time
}

type LocalConfig struct {
	Secret   string
	TTL      time.Duration
	Username string
	Password string
	Tenant   string
	Role     string
}

func NewLocalAuthenticator(cfg LocalConfig) (*LocalAuthenticator, error) {
	if cfg.Secret == "" {
		return nil, errors.New("local authenticator: secret is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("local authenticator: ttl must be positive")
	}
	return &LocalAuthenticator{
		secret:   []byte(cfg.Secret),
		ttl:      cfg.TTL,
		username: cfg.Username,
		password: cfg.Password,
		tenant:   cfg.Tenant,
		role:     cfg.Role,
		now:      time.Now,
	}, nil
}

func (a *LocalAuthenticator) Login(_ context.Context, username, password string) (Tokens, error) {
	if username == "" || username != a.username || password != a.password {
		return Tokens{}, ErrUnauthorized
	}
	return a.issue(username)
}

func (a *LocalAuthenticator) Refresh(_ context.Context, refreshToken string) (Tokens, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(refreshToken, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil || claims.Kind != kindRefresh {
		return Tokens{}, ErrUnauthorized
	}
	return a.issue(claims.Subject)
}

func (a *LocalAuthenticator) issue(subject string) (Tokens, error) {
	now := a.now()
	access, err := a.sign(subject, kindAccess, now, a.ttl)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := a.sign(subject, kindRefresh, now, 24*a.ttl)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{Access: access, Refresh: refresh}, nil
}

func (a *LocalAuthenticator) sign(subject, kind string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		Tenant: a.tenant,
		Role:   a.role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, nil
}
