// Package session keeps admin sessions in process memory.
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Store maps opaque session tokens to the signed-in email. Every successful
// lookup pushes the expiry forward by the configured duration.
type Store struct {
	cache    *cache.Cache
	duration time.Duration
}

func NewStore(duration time.Duration) *Store {
	return &Store{
		cache:    cache.New(duration, 2*duration),
		duration: duration,
	}
}

func (s *Store) Create(email string) string {
	token := uuid.NewString()
	s.cache.Set(token, email, s.duration)
	return token
}

func (s *Store) Get(token string) (string, bool) {
	value, ok := s.cache.Get(token)
	if !ok {
		return "", false
	}
	email, ok := value.(string)
	if !ok {
		return "", false
	}
	s.cache.Set(token, email, s.duration)
	return email, true
}

func (s *Store) Delete(token string) {
	s.cache.Delete(token)
}
