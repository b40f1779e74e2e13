/*
scheduler.go - Periodic balance audit

PURPOSE:
  Periodically recomputes every owner's account balances from their entries
  and logs accounts whose stored balance has drifted. The result of the last
  run is kept for inspection.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Audits owners one at a time; an error for one owner does not stop the run
  - Never repairs balances: drift means something wrote outside the engine

CONFIGURATION:
  - CheckInterval: How often to check (AUDIT_INTERVAL, default: 1 hour)
  - Enabled: Whether scheduler is active (a zero interval disables it)

USAGE:
  scheduler := NewAuditScheduler(store, engine, time.Hour)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: Audit endpoint (on-demand, single owner)
  - ledger/engine.go: Engine.Audit
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/finance-ledger/ledger"
)

// OwnerLister enumerates owners that hold accounts.
type OwnerLister interface {
	ListOwners(ctx context.Context) ([]ledger.OwnerID, error)
}

// AuditRun summarizes one scheduler pass.
type AuditRun struct {
	StartedAt     time.Time
	CompletedAt   time.Time
	Owners        int
	Failed        int
	Discrepancies map[ledger.OwnerID][]ledger.Discrepancy
}

// Consistent reports whether the run found no drift and no errors.
func (r AuditRun) Consistent() bool {
	return r.Failed == 0 && len(r.Discrepancies) == 0
}

// AuditScheduler handles periodic balance audits.
type AuditScheduler struct {
	Owners        OwnerLister
	Engine        *ledger.Engine
	CheckInterval time.Duration
	Enabled       bool
	Logger        *log.Logger

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	lastMu sync.RWMutex
	last   *AuditRun
}

// NewAuditScheduler creates a new scheduler. A non-positive interval leaves
// it disabled.
func NewAuditScheduler(owners OwnerLister, engine *ledger.Engine, interval time.Duration) *AuditScheduler {
	return &AuditScheduler{
		Owners:        owners,
		Engine:        engine,
		CheckInterval: interval,
		Enabled:       interval > 0,
		Logger:        log.Default(),
	}
}

// Start begins the scheduler.
func (as *AuditScheduler) Start() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if !as.Enabled {
		as.Logger.Println("[Audit] Disabled, not starting")
		return
	}
	if as.ticker != nil {
		return
	}

	as.ticker = time.NewTicker(as.CheckInterval)
	as.stop = make(chan struct{})
	as.wg.Add(1)

	go as.run()

	as.Logger.Printf("[Audit] Started with check interval: %v", as.CheckInterval)
}

// Stop stops the scheduler and waits for a running pass to finish.
func (as *AuditScheduler) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.ticker != nil {
		as.ticker.Stop()
		close(as.stop)
		as.wg.Wait()
		as.ticker = nil
		as.Logger.Println("[Audit] Stopped")
	}
}

func (as *AuditScheduler) run() {
	defer as.wg.Done()

	// Run immediately on start
	as.RunNow(context.Background())

	for {
		select {
		case <-as.ticker.C:
			as.RunNow(context.Background())
		case <-as.stop:
			return
		}
	}
}

// RunNow audits every owner once and records the result.
func (as *AuditScheduler) RunNow(ctx context.Context) AuditRun {
	run := AuditRun{
		StartedAt:     time.Now(),
		Discrepancies: make(map[ledger.OwnerID][]ledger.Discrepancy),
	}

	owners, err := as.Owners.ListOwners(ctx)
	if err != nil {
		as.Logger.Printf("[Audit] Error listing owners: %v", err)
		run.Failed++
	}

	for _, owner := range owners {
		run.Owners++
		found, err := as.Engine.Audit(ctx, owner)
		if err != nil {
			as.Logger.Printf("[Audit] Error auditing %s: %v", owner, err)
			run.Failed++
			continue
		}
		if len(found) == 0 {
			continue
		}
		run.Discrepancies[owner] = found
		for _, d := range found {
			as.Logger.Printf("[Audit] owner=%s account=%s stored=%d expected=%d",
				owner, d.AccountID, d.Stored, d.Expected)
		}
	}
	run.CompletedAt = time.Now()

	if !run.Consistent() {
		as.Logger.Printf("[Audit] Completed: %d owners, %d with drift, %d failed",
			run.Owners, len(run.Discrepancies), run.Failed)
	}

	as.lastMu.Lock()
	as.last = &run
	as.lastMu.Unlock()
	return run
}

// LastRun returns the most recent pass, or nil before the first one.
func (as *AuditScheduler) LastRun() *AuditRun {
	as.lastMu.RLock()
	defer as.lastMu.RUnlock()
	return as.last
}
