package sched

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"edu-games-subscription/internal/usecase"
)

const runTimeout = 30 * time.Second

// ExpiryWorker fires the expiry reconciler at fixed wall-clock points
// (a daily sweep plus a few checks during business hours). No request waits
// on it: a failed run is logged and the next scheduled run retries naturally.
type ExpiryWorker struct {
	reconciler usecase.ReconcileUseCase
	fireAt     []int // minutes since midnight
	poll       time.Duration
	clock      usecase.Clock
	log        *zerolog.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	lastRun map[int]string // fire point -> date it last fired
}

// NewExpiryWorker parses fireAt entries formatted "HH:MM". A nil clock means
// wall clock; poll <= 0 defaults to one minute.
func NewExpiryWorker(reconciler usecase.ReconcileUseCase, fireAt []string, poll time.Duration, clock usecase.Clock, logger *zerolog.Logger) (*ExpiryWorker, error) {
	if poll <= 0 {
		poll = time.Minute
	}
	if clock == nil {
		clock = time.Now
	}
	points := make([]int, 0, len(fireAt))
	for _, s := range fireAt {
		var hh, mm int
		if _, err := fmt.Sscanf(s, "%d:%d", &hh, &mm); err != nil || hh < 0 || hh > 23 || mm < 0 || mm > 59 {
			return nil, fmt.Errorf("invalid fire point %q", s)
		}
		points = append(points, hh*60+mm)
	}
	l := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		reconciler: reconciler,
		fireAt:     points,
		poll:       poll,
		clock:      clock,
		log:        &l,
		done:       make(chan struct{}),
		lastRun:    make(map[int]string),
	}, nil
}

// Start begins the worker loop in a background goroutine. Calling Start on a
// running worker has no effect.
func (w *ExpiryWorker) Start(parent context.Context) {
	if w.ctx != nil {
		return
	}
	w.ctx, w.cancel = context.WithCancel(parent)
	go w.loop()
}

func (w *ExpiryWorker) loop() {
	ticker := time.NewTicker(w.poll)
	defer func() {
		ticker.Stop()
		close(w.done)
	}()

	w.log.Info().Ints("fire_at_minutes", w.fireAt).Msg("expiry worker started")
	for {
		select {
		case <-w.ctx.Done():
			w.log.Info().Msg("expiry worker stopping")
			return
		case <-ticker.C:
			if !w.due(w.clock()) {
				continue
			}
			runCtx, cancel := context.WithTimeout(w.ctx, runTimeout)
			if _, err := w.RunOnce(runCtx); err != nil {
				// Swallowed on purpose: one bad run must not stop the loop.
				w.log.Error().Err(err).Msg("scheduled reconciliation failed")
			}
			cancel()
		}
	}
}

// Stop cancels the worker and waits for the loop to finish. Idempotent.
func (w *ExpiryWorker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	<-w.done
	w.ctx = nil
	w.cancel = nil
	w.done = make(chan struct{})
}

// RunOnce triggers a reconciliation immediately. Shared by the loop and the
// admin on-demand endpoint; idempotent with scheduled runs.
func (w *ExpiryWorker) RunOnce(ctx context.Context) (*usecase.ReconcileResult, error) {
	now := w.clock()
	res, err := w.reconciler.Reconcile(ctx, now)
	if err != nil {
		return nil, err
	}
	if res.UpdatedCount > 0 {
		w.log.Info().
			Int("expired", res.ExpiredCount).
			Int("updated", res.UpdatedCount).
			Msg("expired subscriptions reconciled")
	}
	return res, nil
}

// due reports whether any fire point has been crossed today and not yet run.
func (w *ExpiryWorker) due(now time.Time) bool {
	minute := now.Hour()*60 + now.Minute()
	date := now.Format("2006-01-02")
	fired := false
	for _, p := range w.fireAt {
		if minute >= p && w.lastRun[p] != date {
			w.lastRun[p] = date
			fired = true
		}
	}
	return fired
}
