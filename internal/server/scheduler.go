package server

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartScheduler runs the background jobs: the matchmaking tick, the hourly
// recovery-state garbage collection, and the stalled-room sweep. The returned
// scheduler should be shut down when the process exits.
func (s *Server) StartScheduler() (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(time.Duration(s.cfg.MatchTickSeconds)*time.Second),
		gocron.NewTask(func() {
			s.matchmaker.Tick()
		}),
	)
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(time.Duration(s.cfg.RecoverySweepSeconds)*time.Second),
		gocron.NewTask(func() {
			s.recoverer.Sweep()
		}),
	)
	if err != nil {
		return nil, err
	}

	_, err = sched.NewJob(
		gocron.DurationJob(time.Duration(s.cfg.StalledSweepSeconds)*time.Second),
		gocron.NewTask(func() {
			s.recoverer.SweepStalledRooms()
		}),
	)
	if err != nil {
		return nil, err
	}

	sched.Start()
	log.Printf("scheduler started match_tick=%ds recovery_sweep=%ds stalled_sweep=%ds",
		s.cfg.MatchTickSeconds, s.cfg.RecoverySweepSeconds, s.cfg.StalledSweepSeconds)
	return sched, nil
}
