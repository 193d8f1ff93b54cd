package store

import (
	"context"
	"log"
	"time"
)

// Purger — то, что умеет удалять старые записи (*ExtractionRepo).
type Purger interface {
	PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error)
}

// PurgeLoop чистит журнал сразу и затем каждые every, пока жив ctx.
// keep <= 0 отключает чистку.
func PurgeLoop(ctx context.Context, p Purger, keep, every time.Duration) {
	if keep <= 0 {
		log.Printf("history retention disabled")
		return
	}
	if every <= 0 {
		every = time.Hour
	}
	purge := func() {
		n, err := p.PurgeOlderThan(ctx, keep)
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("history purge: %v", err)
			}
			return
		}
		if n > 0 {
			log.Printf("history purge: removed %d rows older than %v", n, keep)
		}
	}

	purge()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			purge()
		}
	}
}
