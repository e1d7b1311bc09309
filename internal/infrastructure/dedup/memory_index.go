package dedup

import (
	"context"
	"sync"

	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
)

// MemoryIndex serializes claims within a single process.
type MemoryIndex struct {
	store EmailChecker

	mu       sync.Mutex
	reserved map[string]struct{}
}

func NewMemoryIndex(store EmailChecker) *MemoryIndex {
	return &MemoryIndex{
		store:    store,
		reserved: make(map[string]struct{}),
	}
}

func (i *MemoryIndex) Reserve(ctx context.Context, email string) (bool, error) {
	email = domain.NormalizeEmail(email)

	i.mu.Lock()
	if _, taken := i.reserved[email]; taken {
		i.mu.Unlock()
		return false, nil
	}
	i.reserved[email] = struct{}{}
	i.mu.Unlock()

	exists, err := i.store.ExistsByEmail(ctx, email)
	if err != nil || exists {
		i.release(email)
		return false, err
	}
	return true, nil
}

func (i *MemoryIndex) Release(_ context.Context, email string) error {
	i.release(domain.NormalizeEmail(email))
	return nil
}

func (i *MemoryIndex) release(email string) {
	i.mu.Lock()
	delete(i.reserved, email)
	i.mu.Unlock()
}
