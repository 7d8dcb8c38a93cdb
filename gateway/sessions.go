package gateway

import (
	"sync"
	"time"

	"github.com/go-redis/redis/v7"
	"github.com/google/uuid"
)

// SessionTTL is how long an issued session token stays valid.
const SessionTTL = 24 * time.Hour

// Principal is the authenticated identity behind a session token.
type Principal struct {
	Username string
}

// SessionStore issues and resolves opaque session tokens. Concurrent logins
// for the same principal produce independent tokens.
type SessionStore interface {
	Create(p Principal, ttl time.Duration) (string, error)
	// Get returns nil for unknown or expired tokens.
	Get(token string) (*Principal, error)
	Delete(token string) error
}

type memorySession struct {
	principal Principal
	expiresAt time.Time
}

// MemorySessions is the default in-process session backend.
type MemorySessions struct {
	mu       sync.Mutex
	sessions map[string]memorySession
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: make(map[string]memorySession)}
}

func (m *MemorySessions) Create(p Principal, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	m.mu.Lock()
	m.sessions[token] = memorySession{principal: p, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
	return token, nil
}

func (m *MemorySessions) Get(token string) (*Principal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, nil
	}
	if time.Now().After(s.expiresAt) {
		delete(m.sessions, token)
		return nil, nil
	}
	p := s.principal
	return &p, nil
}

func (m *MemorySessions) Delete(token string) error {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
	return nil
}

// RedisSessions keeps sessions in redis so they survive restarts and can be
// shared between replicas.
type RedisSessions struct {
	Client *redis.Client
}

func sessionKey(token string) string { return "session:" + token }

func (r *RedisSessions) Create(p Principal, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	if err := r.Client.Set(sessionKey(token), p.Username, ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (r *RedisSessions) Get(token string) (*Principal, error) {
	username, err := r.Client.Get(sessionKey(token)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &Principal{Username: username}, nil
}

func (r *RedisSessions) Delete(token string) error {
	return r.Client.Del(sessionKey(token)).Err()
}
