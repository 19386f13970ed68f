package auth

import (
	"context"
	"sync"
	"time"

	pkgApp "github.com/mateusmacedo/go-reservas/pkg/application"
)

// RevocationStore guarda os IDs (jti) dos tokens invalidados até a expiração natural
// de cada um. Precisa ser compartilhado entre instâncias em produção (Redis ou banco).
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Cleaner é implementado pelos stores que precisam de limpeza periódica.
type Cleaner interface {
	Cleanup(ctx context.Context, now time.Time) (int, error)
}

// MemoryRevocationStore é a lista de revogação em memória, para testes e instância única.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{entries: make(map[string]time.Time)}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[tokenID] = expiresAt
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[tokenID]
	return ok, nil
}

// Cleanup remove as entradas cujo token já expirou.
func (s *MemoryRevocationStore) Cleanup(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for tokenID, expiresAt := range s.entries {
		if !now.Before(expiresAt) {
			delete(s.entries, tokenID)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryRevocationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// RunCleanup chama cleaner.Cleanup a cada interval até ctx ser cancelado.
func RunCleanup(ctx context.Context, cleaner Cleaner, interval time.Duration, logger pkgApp.AppLogger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := cleaner.Cleanup(ctx, now)
			if err != nil {
				pkgApp.LogError(ctx, logger, "revocation cleanup failed", err, nil)
				continue
			}
			if removed > 0 {
				pkgApp.LogDebug(ctx, logger, "revocation cleanup", map[string]interface{}{"removed": removed})
			}
		}
	}
}
