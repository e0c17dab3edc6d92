package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Poller drives RunDue on a fixed cadence, for deployments without an
// external trigger. It runs one pass immediately on Start so work that
// came due while the process was down is picked up promptly, then one
// pass per interval.
type Poller struct {
	scheduler *Scheduler
	interval  time.Duration
	logger    *slog.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewPoller creates a Poller triggering a pass every interval. A
// non-positive interval falls back to one minute.
func NewPoller(scheduler *Scheduler, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		scheduler: scheduler,
		interval:  interval,
		logger:    logger,
	}
}

// Start launches the polling goroutine. Starting a running poller is a
// no-op; a stopped poller can be started again.
func (p *Poller) Start(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})

	p.wg.Add(1)
	go p.loop(p.stopCh)

	p.logger.Info("poller started", slog.Duration("interval", p.interval))
	return nil
}

// Stop signals the loop to exit and waits for any in-flight pass to
// finish, or until ctx expires.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.stopCh)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Poller) loop(stop chan struct{}) {
	defer p.wg.Done()

	p.pass()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.pass()
		}
	}
}

func (p *Poller) pass() {
	if _, err := p.scheduler.RunDue(context.Background()); err != nil {
		p.logger.Error("scheduler pass error", slog.String("error", err.Error()))
	}
}
