package dashboard

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/YossiCharash/project-menagment-sub004/internal/obs"
)

// DefaultPollInterval is the fixed dashboard re-fetch cadence.
const DefaultPollInterval = 30 * time.Second

// Poller re-fetches the dashboard snapshot on a fixed interval. A tick is
// skipped while a refresh is already in flight; manual refreshes share the
// same flag, so a concurrent manual trigger is only best-effort serialized.
// Each refresh runs under its own context cancelled with the poller.
type Poller struct {
	svc             *Service
	interval        time.Duration
	includeArchived bool
	publish         func([]Project)

	inFlight atomic.Bool

	mu      sync.RWMutex
	last    []Project
	lastErr error
	asOf    time.Time
}

// NewPoller creates a poller. publish may be nil; when set it receives every
// successful snapshot (the SSE stream hooks in here).
func NewPoller(svc *Service, interval time.Duration, includeArchived bool, publish func([]Project)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		svc:             svc,
		interval:        interval,
		includeArchived: includeArchived,
		publish:         publish,
	}
}

// Run refreshes immediately, then on every tick until ctx ends.
func (p *Poller) Run(ctx context.Context) {
	p.TryRefresh(ctx)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.TryRefresh(ctx)
		}
	}
}

// TryRefresh runs one refresh unless another is in flight. It reports
// whether the refresh actually ran.
func (p *Poller) TryRefresh(ctx context.Context) bool {
	if !p.inFlight.CompareAndSwap(false, true) {
		obs.CountDashboardRefresh("skipped")
		return false
	}
	defer p.inFlight.Store(false)

	refreshCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	projects, err := p.svc.LoadProjects(refreshCtx, p.includeArchived)

	p.mu.Lock()
	if err != nil {
		p.lastErr = err
	} else {
		p.last = projects
		p.lastErr = nil
		p.asOf = time.Now().UTC()
	}
	p.mu.Unlock()

	if err != nil {
		obs.CountDashboardRefresh("error")
		return true
	}
	obs.CountDashboardRefresh("ok")
	if p.publish != nil {
		p.publish(projects)
	}
	return true
}

// Snapshot returns the last successful load, its timestamp and the last
// refresh error (nil after a successful refresh).
func (p *Poller) Snapshot() ([]Project, time.Time, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Project, len(p.last))
	copy(out, p.last)
	return out, p.asOf, p.lastErr
}
