package auth

import (
	"context"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/redis/go-redis/v9"
)

// TokenKind namespaces server-side token records.
type TokenKind string

const (
	KindRefresh       TokenKind = "refresh"
	KindPasswordReset TokenKind = "pwreset"
)

// ErrTokenNotFound is returned when a token id is unknown, revoked or expired.
var ErrTokenNotFound = errors.New("token not found")

// TokenStore records opaque token ids against the user they were issued to.
type TokenStore interface {
	Put(ctx context.Context, kind TokenKind, id string, userID uuid.UUID, ttl time.Duration) error
	Lookup(ctx context.Context, kind TokenKind, id string) (uuid.UUID, error)
	// Consume returns the owner and deletes the record in one step.
	Consume(ctx context.Context, kind TokenKind, id string) (uuid.UUID, error)
	Revoke(ctx context.Context, kind TokenKind, id string) error
}

// NewTokenID returns a random, URL-safe id with 256 bits of entropy.
func NewTokenID() string {
	return strings.TrimRight(
		base32.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32)),
		"=",
	)
}

// RedisTokenStore keeps token records in Redis.
//
// Redis keys: "token:<kind>:<id>" holding the user id, with TTL equal to the
// token lifetime so expired records disappear on their own.
type RedisTokenStore struct {
	client *redis.Client
}

// NewRedisTokenStore creates a Redis-backed token store.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Put(ctx context.Context, kind TokenKind, id string, userID uuid.UUID, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenKey(kind, id), userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("store %s token: %w", kind, err)
	}
	return nil
}

func (s *RedisTokenStore) Lookup(ctx context.Context, kind TokenKind, id string) (uuid.UUID, error) {
	val, err := s.client.Get(ctx, tokenKey(kind, id)).Result()
	return parseTokenOwner(kind, val, err)
}

func (s *RedisTokenStore) Consume(ctx context.Context, kind TokenKind, id string) (uuid.UUID, error) {
	val, err := s.client.GetDel(ctx, tokenKey(kind, id)).Result()
	return parseTokenOwner(kind, val, err)
}

func (s *RedisTokenStore) Revoke(ctx context.Context, kind TokenKind, id string) error {
	if err := s.client.Del(ctx, tokenKey(kind, id)).Err(); err != nil {
		return fmt.Errorf("revoke %s token: %w", kind, err)
	}
	return nil
}

func parseTokenOwner(kind TokenKind, val string, err error) (uuid.UUID, error) {
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, ErrTokenNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("load %s token: %w", kind, err)
	}
	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse %s token owner: %w", kind, err)
	}
	return userID, nil
}

func tokenKey(kind TokenKind, id string) string {
	return "token:" + string(kind) + ":" + id
}

// MemoryTokenStore is an in-process TokenStore for tests and single-node
// development without Redis.
type MemoryTokenStore struct {
	mu      sync.Mutex
	records map[string]memoryToken
	now     func() time.Time
}

type memoryToken struct {
	userID    uuid.UUID
	expiresAt time.Time
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{records: make(map[string]memoryToken), now: time.Now}
}

func (s *MemoryTokenStore) Put(_ context.Context, kind TokenKind, id string, userID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[tokenKey(kind, id)] = memoryToken{userID: userID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) Lookup(_ context.Context, kind TokenKind, id string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[tokenKey(kind, id)]
	if !ok || !s.now().Before(rec.expiresAt) {
		return uuid.Nil, ErrTokenNotFound
	}
	return rec.userID, nil
}

func (s *MemoryTokenStore) Consume(ctx context.Context, kind TokenKind, id string) (uuid.UUID, error) {
	userID, err := s.Lookup(ctx, kind, id)
	if err != nil {
		return uuid.Nil, err
	}
	s.mu.Lock()
	delete(s.records, tokenKey(kind, id))
	s.mu.Unlock()
	return userID, nil
}

func (s *MemoryTokenStore) Revoke(_ context.Context, kind TokenKind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, tokenKey(kind, id))
	return nil
}
