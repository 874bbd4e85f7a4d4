package jobs

import (
	"context"
	"log"
	"time"

	"followgate/internal/store"
)

const sweepBatchSize = 500

// BacklinkSweeper periodically prunes reverse-link index entries whose
// source record has been removed out of band. Incoming listings tolerate
// dangling entries by skipping them, but leaving them in place wastes
// candidate window slots on every page.
type BacklinkSweeper struct {
	store    *store.Store
	interval time.Duration
}

// NewBacklinkSweeper creates a new sweeper.
func NewBacklinkSweeper(st *store.Store, interval time.Duration) *BacklinkSweeper {
	return &BacklinkSweeper{store: st, interval: interval}
}

// Start begins the background sweep loop.
func (s *BacklinkSweeper) Start(ctx context.Context) {
	log.Printf("Backlink sweeper started (interval: %v)", s.interval)

	// Run immediately on start
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Backlink sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep removes dangling backlinks in batches until none remain.
func (s *BacklinkSweeper) sweep(ctx context.Context) {
	var total int64
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := s.store.PruneDanglingBacklinks(ctx, sweepBatchSize)
		if err != nil {
			log.Printf("Backlink sweeper: prune failed: %v", err)
			return
		}
		total += n
		if n < sweepBatchSize {
			break
		}
	}

	if total > 0 {
		log.Printf("Backlink sweeper: removed %d dangling entries", total)
	}
}
