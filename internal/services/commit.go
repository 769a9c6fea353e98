package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/baharkarakas/storefront-backend/internal/apperr"
	"github.com/baharkarakas/storefront-backend/internal/metrics"
)

const (
	maxCommitAttempts = 25
	maxCommitBackoff  = 5 * time.Millisecond
)

// commit runs a read-modify-write attempt until it stops reporting
// apperr.ErrConflict. Each lost race means another writer committed, so the
// number of attempts a writer needs is bounded by its concurrent peers.
func commit(ctx context.Context, entity string, attempt func() error) error {
	backoff := 50 * time.Microsecond
	for i := 0; i < maxCommitAttempts; i++ {
		err := attempt()
		if !errors.Is(err, apperr.ErrConflict) {
			return err
		}
		metrics.CommitConflicts.WithLabelValues(entity).Inc()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rand.N(backoff) + time.Microsecond):
		}
		backoff = min(backoff*2, maxCommitBackoff)
	}
	return fmt.Errorf("%s: gave up after %d concurrent updates: %w", entity, maxCommitAttempts, apperr.ErrConflict)
}
