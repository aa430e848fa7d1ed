// Package session resolves bearer tokens into authenticated sessions. Tokens
// are HS256 JWTs whose session id is looked up in Redis; a token without a
// live session resolves to a NotAuthenticated fault.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"

	"github.com/devenirpromoteur/realify-api/internal/faults"
)

const sessionKeyPrefix = "realify:session:"

// Session is an authenticated user session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Provider resolves a bearer token into a session.
type Provider interface {
	Resolve(ctx context.Context, token string) (*Session, error)
}

// RedisProvider is the production Provider: JWT verification followed by a
// session lookup in Redis.
type RedisProvider struct {
	client *redis.Client
	secret []byte
}

// NewRedisProvider creates a Provider over the given Redis client.
func NewRedisProvider(client *redis.Client, jwtSecret string) *RedisProvider {
	return &RedisProvider{
		client: client,
		secret: []byte(jwtSecret),
	}
}

// Resolve verifies the token signature, extracts the session id claim and
// loads the session from Redis. Every failure path maps to NotAuthenticated;
// only a Redis transport error surfaces as Transient.
func (p *RedisProvider) Resolve(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, faults.New(faults.KindNotAuthenticated, "No active session")
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, faults.Wrap(faults.KindNotAuthenticated, "Invalid session token", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, faults.New(faults.KindNotAuthenticated, "Invalid session token")
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return nil, faults.New(faults.KindNotAuthenticated, "Invalid session token")
	}

	data, err := p.client.Get(ctx, sessionKeyPrefix+sid).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, faults.New(faults.KindNotAuthenticated, "Session expired")
		}
		return nil, faults.Wrap(faults.KindTransient, "Session store unavailable", err)
	}

	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, faults.Wrap(faults.KindTransient, "Corrupt session record", err)
	}
	if !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt) {
		return nil, faults.New(faults.KindNotAuthenticated, "Session expired")
	}

	return &s, nil
}

type contextKey struct{}

// WithContext attaches a resolved session to the context.
func WithContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session attached to the context, or nil.
func FromContext(ctx context.Context) *Session {
	if s, ok := ctx.Value(contextKey{}).(*Session); ok {
		return s
	}
	return nil
}

// Require returns the session on the context or a NotAuthenticated fault.
// Store operations call this before touching the remote table.
func Require(ctx context.Context) (*Session, error) {
	if s := FromContext(ctx); s != nil {
		return s, nil
	}
	return nil, faults.New(faults.KindNotAuthenticated, "No active session")
}
