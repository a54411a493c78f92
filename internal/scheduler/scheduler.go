package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"FareSentinel/internal/notifier"
	"FareSentinel/internal/snapshot"
	"FareSentinel/internal/tracker"
)

// Runner is the tracker surface the scheduler drives.
type Runner interface {
	Run(ctx context.Context) (*tracker.Result, error)
	Last(ctx context.Context) (*snapshot.Snapshot, error)
}

// Scheduler manages the daily tracker run and on-demand commands.
type Scheduler struct {
	Cron     *cron.Cron
	Tracker  Runner
	Currency string
	Ctx      context.Context

	running  atomic.Bool
	inflight sync.WaitGroup
}

// NewScheduler creates a Scheduler evaluating cron specs in loc.
func NewScheduler(ctx context.Context, tr Runner, loc *time.Location, currency string) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		Tracker:  tr,
		Currency: currency,
		Ctx:      ctx,
	}
}

// Register registers the daily run.
func (s *Scheduler) Register(dailyCron string) error {
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	for _, e := range s.Cron.Entries() {
		log.Printf("[INFO] scheduler started, next run %s", e.Next.Format(time.RFC1123))
	}
}

// Stop stops the cron scheduler and waits for running tasks, including
// ones started with RunAsync.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.inflight.Wait()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes a tracker pass immediately (manual trigger / RUN_ON_START).
// It reports false if a pass is already in progress.
func (s *Scheduler) RunNow() bool {
	return s.run("manual")
}

// RunAsync starts a pass in the background. Stop waits for it to finish.
func (s *Scheduler) RunAsync() {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		s.RunNow()
	}()
}

func (s *Scheduler) dailyTask() {
	s.run("daily")
}

func (s *Scheduler) run(trigger string) bool {
	if !s.running.CompareAndSwap(false, true) {
		log.Printf("[WARN] %s run skipped, previous run still in progress", trigger)
		return false
	}
	defer s.running.Store(false)

	log.Printf("[INFO] running %s tracker pass", trigger)
	if _, err := s.Tracker.Run(s.Ctx); err != nil {
		log.Printf("[ERROR] %s run: %v", trigger, err)
	}
	return true
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	var cmd string
	if fields := strings.Fields(command); len(fields) > 0 {
		cmd = strings.ToLower(fields[0])
	}
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i] // "/check@FareBot"
	}
	switch cmd {
	case "/check":
		if s.running.Load() {
			return "A check is already running."
		}
		s.RunAsync()
		return "Running a check now, the report follows shortly."
	case "/status":
		last, err := s.Tracker.Last(ctx)
		if err != nil {
			log.Printf("[ERROR] load status: %v", err)
			return "Could not load the last snapshot."
		}
		return notifier.FormatStatus(last, s.Currency)
	default:
		return "Available commands:\n• /check, run the tracker now\n• /status, last tracked values"
	}
}
