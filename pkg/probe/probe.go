// Package probe tracks the availability of a remote dependency from repeated
// check results. Thresholds (inspired by Kubernetes probe configuration)
// avoid flapping: the target must fail consecutively FailureThreshold times
// before being marked down, and succeed SuccessThreshold times before being
// marked up again.
package probe

import (
	"context"
	"sync/atomic"
	"time"
)

// CheckFunc probes the target once. It should return nil when the target is
// reachable and healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// Config controls probe behaviour. Zero values get defaults.
type Config struct {
	// Timeout bounds a single check. Defaults to 5s.
	Timeout time.Duration

	// FailureThreshold is how many consecutive failures flip the probe to
	// down. Defaults to 3.
	FailureThreshold int

	// SuccessThreshold is how many consecutive successes flip the probe back
	// to up. Defaults to 1.
	SuccessThreshold int

	// OnChange, when set, is called on every up/down flip with the new state
	// and the error that drove a down flip (nil on up).
	OnChange func(up bool, err error)
}

// Probe holds the availability state of one target.
//
// Concurrency model: Run executes checks from exactly one goroutine, so the
// consecutive counters need no synchronization. Up and LastError may be read
// from other goroutines and use atomics.
type Probe struct {
	check CheckFunc
	cfg   Config

	up      atomic.Bool
	lastErr atomic.Pointer[error]

	consecutiveFails int
	consecutiveOK    int
}

// New creates a Probe in the up state.
func New(check CheckFunc, cfg Config) *Probe {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 1
	}

	p := &Probe{check: check, cfg: cfg}
	p.up.Store(true) // assume up until proven otherwise
	return p
}

// Up returns the current availability state.
func (p *Probe) Up() bool {
	return p.up.Load()
}

// LastError returns the most recent check error, or nil.
func (p *Probe) LastError() error {
	if e := p.lastErr.Load(); e != nil {
		return *e
	}
	return nil
}

// Observe records one check result and updates thresholds. Must be called
// from a single goroutine.
func (p *Probe) Observe(err error) {
	p.lastErr.Store(&err)

	if err != nil {
		p.consecutiveOK = 0
		p.consecutiveFails++
		if p.consecutiveFails >= p.cfg.FailureThreshold && p.up.Load() {
			p.up.Store(false)
			if p.cfg.OnChange != nil {
				p.cfg.OnChange(false, err)
			}
		}
		return
	}

	p.consecutiveFails = 0
	p.consecutiveOK++
	if p.consecutiveOK >= p.cfg.SuccessThreshold && !p.up.Load() {
		p.up.Store(true)
		if p.cfg.OnChange != nil {
			p.cfg.OnChange(true, nil)
		}
	}
}

// Run probes the target at the given interval until the context is cancelled.
// The first check runs immediately.
func (p *Probe) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.runOnce(ctx)
		}
	}
}

func (p *Probe) runOnce(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	p.Observe(p.check(checkCtx))
}
