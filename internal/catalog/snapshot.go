package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/veritum/veritum-pro/internal/database/models"
)

// Refetcher loads the full active-suite list; in production it is
// Service.ListActive.
type Refetcher func(ctx context.Context) ([]models.Suite, error)

// Snapshot holds the current active-suite list in memory. Every change
// notification triggers a full refetch whose result replaces the snapshot
// wholesale — last full refetch wins, no incremental merge.
type Snapshot struct {
	mu      sync.RWMutex
	suites  []models.Suite
	refetch Refetcher
	logger  *slog.Logger
}

func NewSnapshot(refetch Refetcher, logger *slog.Logger) *Snapshot {
	return &Snapshot{refetch: refetch, logger: logger}
}

// Suites returns a copy of the current snapshot contents; callers may mutate
// the result without racing a concurrent Refresh.
func (s *Snapshot) Suites() []models.Suite {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Suite, len(s.suites))
	copy(out, s.suites)
	return out
}

// Refresh refetches and replaces the snapshot. A failed refetch keeps the
// previous contents.
func (s *Snapshot) Refresh(ctx context.Context) error {
	suites, err := s.refetch(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.suites = suites
	s.mu.Unlock()
	return nil
}

// Listen subscribes to the catalog channel and refreshes on every message
// until the context is canceled. Run it in its own goroutine after an
// initial Refresh.
func (s *Snapshot) Listen(ctx context.Context, redisClient *redis.Client) {
	sub := redisClient.Subscribe(ctx, Channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if err := s.Refresh(ctx); err != nil {
				s.logger.Error("catalog snapshot refresh failed",
					"channel", msg.Channel, "error", err)
			}
		}
	}
}
