// internal/app/system/workers/tokencleanup.go
package workers

import (
	"context"
	"sync"
	"time"

	resettokenstore "github.com/temanawa/iwihub/internal/app/store/resettokens"
	"go.uber.org/zap"
)

// TokenCleanup is a background worker that removes expired password
// reset tokens. MongoDB's TTL index does this too, but its sweep can
// lag; this keeps the collection tidy on a predictable schedule.
type TokenCleanup struct {
	tokens   *resettokenstore.Store
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewTokenCleanup creates a cleanup worker that runs every interval.
func NewTokenCleanup(tokens *resettokenstore.Store, logger *zap.Logger, interval time.Duration) *TokenCleanup {
	return &TokenCleanup{
		tokens:   tokens,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background cleanup loop.
func (w *TokenCleanup) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("reset token cleanup worker started",
		zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *TokenCleanup) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("reset token cleanup worker stopped")
}

func (w *TokenCleanup) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.cleanup()
		}
	}
}

func (w *TokenCleanup) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := w.tokens.CleanupExpired(ctx)
	if err != nil {
		w.log.Error("failed to clean up expired reset tokens", zap.Error(err))
		return
	}
	if count > 0 {
		w.log.Info("removed expired reset tokens", zap.Int64("count", count))
	}
}
