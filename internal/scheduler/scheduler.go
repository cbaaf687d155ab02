// Package scheduler drives the recurring cycles: scraping, delivery and
// retention. It wraps robfig/cron with overlap protection so a slow scrape
// cycle never stacks on top of itself.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Cycle is one recurring unit of work.
type Cycle struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error

	// RunAtStart fires the cycle once right after Start, without waiting
	// for the first cron tick.
	RunAtStart bool
}

type Scheduler struct {
	cron   *cron.Cron
	cycles []Cycle
	log    *zap.SugaredLogger
}

func New(loc *time.Location, log *zap.SugaredLogger, cycles ...Cycle) *Scheduler {
	cl := &cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			cron.WithChain(
				cron.SkipIfStillRunning(cl),
				cron.Recover(cl),
			),
		),
		cycles: cycles,
		log:    log,
	}
}

// Start registers every cycle and starts the cron loop. ctx bounds each
// cycle run; cancel it before Stop on shutdown.
func (s *Scheduler) Start(ctx context.Context) error {
	var startNow []cron.EntryID
	for _, c := range s.cycles {
		c := c
		id, err := s.cron.AddFunc(c.Spec, func() {
			started := time.Now()
			if err := c.Run(ctx); err != nil {
				s.log.Errorw("cycle failed", "cycle", c.Name, "error", err)
				return
			}
			s.log.Infow("cycle done", "cycle", c.Name, "elapsed", time.Since(started).Round(time.Millisecond))
		})
		if err != nil {
			return fmt.Errorf("register cycle %s (%q): %w", c.Name, c.Spec, err)
		}
		if c.RunAtStart {
			startNow = append(startNow, id)
		}
	}

	s.cron.Start()
	s.log.Infow("scheduler started", "cycles", len(s.cycles))

	// Immediate first runs go through the wrapped job so the overlap guard
	// also covers a cron tick landing while the startup run is in flight.
	for _, id := range startNow {
		go s.cron.Entry(id).WrappedJob.Run()
	}
	return nil
}

// Stop halts scheduling and waits for in-flight cycles to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Infow("scheduler stopped")
}

// cronLogger adapts zap to cron's logging interface.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l *cronLogger) Info(msg string, kv ...any)             { l.log.Debugw("cron: "+msg, kv...) }
func (l *cronLogger) Error(err error, msg string, kv ...any) { l.log.Errorw("cron: "+msg, append(kv, "error", err)...) }
