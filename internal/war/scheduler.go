package war

import (
	"context"
	"errors"
	"log"
	"time"
)

// Scheduler is the time-triggered driver for the war lifecycle. It runs
// three independent jobs: a startup reconciliation, a daily creation
// trigger at the configured start time, and a minute sweep that closes
// expired wars. Every failure is logged and retried on the next trigger;
// nothing here is fatal to the process.
type Scheduler struct {
	service *Service

	// SweepInterval defaults to one minute; tests shorten it.
	SweepInterval time.Duration
}

// NewScheduler builds a scheduler around the given war service.
func NewScheduler(service *Service) *Scheduler {
	return &Scheduler{
		service:       service,
		SweepInterval: time.Minute,
	}
}

// Start launches the background jobs. They all stop when ctx is cancelled.
func (sch *Scheduler) Start(ctx context.Context) {
	go sch.runStartupReconciliation(ctx)
	go sch.runDailyTrigger(ctx)
	go sch.runSweep(ctx)
}

// runStartupReconciliation ensures today's war exists once, shortly after
// boot, so a restart after the daily trigger time doesn't lose the day.
func (sch *Scheduler) runStartupReconciliation(ctx context.Context) {
	timer := time.NewTimer(5 * time.Second)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}
	sch.ensureTodayWar("startup")
}

// runDailyTrigger fires once per day at the configured wall-clock time.
func (sch *Scheduler) runDailyTrigger(ctx context.Context) {
	for {
		wait := sch.untilNextFire(sch.service.clock.Now())
		timer := time.NewTimer(wait)

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			sch.ensureTodayWar("daily trigger")
		}
	}
}

// untilNextFire returns how long to wait for the next daily fire time.
func (sch *Scheduler) untilNextFire(now time.Time) time.Duration {
	local := now.In(sch.service.loc)
	y, m, d := local.Date()
	fire := time.Date(y, m, d, sch.service.startHour, sch.service.startMin, 0, 0, sch.service.loc)
	if !fire.After(local) {
		fire = fire.AddDate(0, 0, 1)
	}
	return fire.Sub(local)
}

// runSweep closes expired wars once per sweep interval. This is the
// liveness backstop for status transitions when no traffic arrives.
func (sch *Scheduler) runSweep(ctx context.Context) {
	ticker := time.NewTicker(sch.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			closed, err := sch.service.CloseExpiredWars()
			if err != nil {
				log.Printf("war sweep failed: %v", err)
				continue
			}
			if closed > 0 {
				log.Printf("war sweep closed %d war(s)", closed)
			}
		}
	}
}

func (sch *Scheduler) ensureTodayWar(trigger string) {
	_, err := sch.service.EnsureTodayWar()
	if err != nil {
		if errors.Is(err, ErrInsufficientCandidates) {
			log.Printf("%s: no war today yet: %v", trigger, err)
		} else {
			log.Printf("%s: failed to ensure today's war: %v", trigger, err)
		}
		return
	}
	log.Printf("%s: today's war is in place", trigger)
}
