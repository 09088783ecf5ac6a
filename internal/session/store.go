package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"powerbill/internal/models"
)

// ErrSessionNotFound represents a missing or expired session record.
var ErrSessionNotFound = errors.New("session not found")

// Record is the cached session payload.
type Record struct {
	UserID     int64     `json:"user_id"`
	Email      string    `json:"email"`
	MeterNo    string    `json:"meter_no"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

// Store keeps login sessions in redis, keyed by a digest of the bearer
// token. Logout deletes the record, which invalidates the token before its
// JWT expiry.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore returns redis-backed session store.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("session:%s", hex.EncodeToString(sum[:]))
}

// Save caches the session for the token.
func (s *Store) Save(ctx context.Context, token string, user *models.User) error {
	data, err := json.Marshal(Record{
		UserID:     user.ID,
		Email:      user.Email,
		MeterNo:    user.MeterNo,
		LoggedInAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(token), data, s.ttl).Err()
}

// Get returns the session record for the token.
func (s *Store) Get(ctx context.Context, token string) (*Record, error) {
	result, err := s.client.Get(ctx, s.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var record Record
	if err := json.Unmarshal([]byte(result), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Exists reports whether a live session backs the token.
func (s *Store) Exists(ctx context.Context, token string) (bool, error) {
	count, err := s.client.Exists(ctx, s.key(token)).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Clear removes the session record.
func (s *Store) Clear(ctx context.Context, token string) error {
	return s.client.Del(ctx, s.key(token)).Err()
}
