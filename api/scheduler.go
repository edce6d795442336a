/*
scheduler.go - Background expiry sweep

PURPOSE:
  Periodically runs the advisory expiry sweep so forfeits show up in
  the audit trail without an operator pressing the button. The sweep
  never changes a balance; a stopped scheduler only delays audit rows,
  never correctness.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Sweeps once immediately on start, then on every tick
  - Stop() blocks until the goroutine has exited

CONFIGURATION:
  - CheckInterval: How often to sweep (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewSweepScheduler(sweeper, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: TriggerSweep endpoint (manual sweep)
  - compoff/expiry.go: Sweeper
*/
package api

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rosterly/comp-ledger/compoff"
	"github.com/rosterly/comp-ledger/ledger"
)

// SweepScheduler runs the advisory expiry sweep on an interval.
type SweepScheduler struct {
	Sweeper       *compoff.Sweeper
	Logger        *slog.Logger
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSweepScheduler creates a new scheduler.
func NewSweepScheduler(sweeper *compoff.Sweeper, logger *slog.Logger) *SweepScheduler {
	return &SweepScheduler{
		Sweeper:       sweeper,
		Logger:        logger,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (ss *SweepScheduler) Start() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if !ss.Enabled {
		ss.Logger.Info("sweep scheduler disabled, not starting")
		return
	}

	ss.ticker = time.NewTicker(ss.CheckInterval)
	ss.wg.Add(1)
	go ss.run()

	ss.Logger.Info("sweep scheduler started", slog.Duration("interval", ss.CheckInterval))
}

// Stop stops the scheduler.
func (ss *SweepScheduler) Stop() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if ss.ticker != nil {
		ss.ticker.Stop()
		close(ss.stop)
		ss.wg.Wait()
		ss.Logger.Info("sweep scheduler stopped")
	}
}

func (ss *SweepScheduler) run() {
	defer ss.wg.Done()

	// Sweep immediately on start so restarts catch up.
	ss.sweep()

	for {
		select {
		case <-ss.ticker.C:
			ss.sweep()
		case <-ss.stop:
			return
		}
	}
}

func (ss *SweepScheduler) sweep() {
	ctx := context.Background()
	asOf := ledger.DateOf(time.Now().UTC())

	res, err := ss.Sweeper.Sweep(ctx, asOf)
	if err != nil {
		ss.Logger.Error("expiry sweep failed", slog.Any("error", err))
		return
	}
	metricSweepRuns.Inc()
	metricSweepForfeited.Add(res.DaysForfeited.Float64())

	if res.RecordsWritten > 0 {
		ss.Logger.Info("expiry sweep recorded forfeits",
			slog.String("as_of", asOf.String()),
			slog.Int("employees_scanned", res.EmployeesScanned),
			slog.Int("records_written", res.RecordsWritten),
			slog.String("days_forfeited", res.DaysForfeited.String()),
		)
	}
}
