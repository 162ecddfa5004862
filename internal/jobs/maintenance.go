package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// SessionSweeper deletes sessions idle for longer than ttl
type SessionSweeper interface {
	Sweep(ctx context.Context, ttl time.Duration) (int, error)
}

// DedupeResetter clears the in-memory set of seen message ids
type DedupeResetter interface {
	ResetSeen() int
}

// MaintenanceJob runs the periodic housekeeping: the session TTL sweep
// (only when a TTL is configured) and the dedupe-set reset.
type MaintenanceJob struct {
	sessions SessionSweeper
	dedupe   DedupeResetter
	ttl      time.Duration

	sweepEvery time.Duration
	resetEvery time.Duration

	mu        sync.Mutex
	isRunning bool
	stop      chan struct{}
	wg        sync.WaitGroup
}

// NewMaintenanceJob creates the housekeeping scheduler
func NewMaintenanceJob(sessions SessionSweeper, dedupe DedupeResetter, ttl time.Duration) *MaintenanceJob {
	sweepEvery := 5 * time.Minute
	if ttl > 0 && ttl/2 < sweepEvery {
		sweepEvery = max(ttl/2, time.Second)
	}
	return &MaintenanceJob{
		sessions:   sessions,
		dedupe:     dedupe,
		ttl:        ttl,
		sweepEvery: sweepEvery,
		resetEvery: time.Hour,
	}
}

// Start begins the scheduled jobs
func (j *MaintenanceJob) Start() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.isRunning {
		log.Println("Maintenance jobs already running")
		return
	}
	j.isRunning = true
	j.stop = make(chan struct{})

	if j.ttl > 0 && j.sessions != nil {
		j.schedule("session sweep", j.sweepEvery, j.SweepSessions)
	}
	if j.dedupe != nil {
		j.schedule("dedupe reset", j.resetEvery, func(context.Context) { j.ResetDedupe() })
	}
	log.Println("Maintenance jobs started")
}

// Stop halts the scheduled jobs and waits for a running pass to finish
func (j *MaintenanceJob) Stop() {
	j.mu.Lock()
	if !j.isRunning {
		j.mu.Unlock()
		return
	}
	j.isRunning = false
	close(j.stop)
	j.mu.Unlock()

	j.wg.Wait()
	log.Println("Maintenance jobs stopped")
}

func (j *MaintenanceJob) schedule(name string, every time.Duration, run func(context.Context)) {
	stop := j.stop
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		log.Printf("Next %s scheduled in %v", name, every)
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), every)
				run(ctx)
				cancel()
			}
		}
	}()
}

// SweepSessions removes sessions idle for longer than the TTL
func (j *MaintenanceJob) SweepSessions(ctx context.Context) {
	n, err := j.sessions.Sweep(ctx, j.ttl)
	if err != nil {
		log.Printf("Error sweeping idle sessions: %v", err)
		return
	}
	if n > 0 {
		log.Printf("Swept %d idle sessions", n)
	}
}

// ResetDedupe clears the seen-id set; the message log keeps rejecting stored ids
func (j *MaintenanceJob) ResetDedupe() {
	if n := j.dedupe.ResetSeen(); n > 0 {
		log.Printf("Cleared %d seen message ids", n)
	}
}
