// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

// Package scheduler runs registered jobs at the instants computed from their
// cron patterns. One cooperating worker goroutine is born per job; workers
// share nothing but the logger.
package scheduler

import (
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/rdkcentral/dcm-agent/pkg/crontab"
	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

// Scheduler owns the registered jobs
type Scheduler struct {
	clk  clock.Clock
	m    sync.RWMutex
	jobs map[string]*job
}

// New returns a scheduler on the real clock
func New() *Scheduler {
	return NewWithClock(clock.New())
}

// NewWithClock returns a scheduler on the given clock; tests pass a mock
func NewWithClock(clk clock.Clock) *Scheduler {
	return &Scheduler{
		clk:  clk,
		jobs: make(map[string]*job),
	}
}

// Add registers a named job and starts its worker. The job is born disarmed.
func (s *Scheduler) Add(name string, cb Callback, arg interface{}) error {
	if cb == nil {
		return errors.New("scheduler: nil callback")
	}

	s.m.Lock()
	defer s.m.Unlock()

	if _, ok := s.jobs[name]; ok {
		return errors.Errorf("scheduler: job %q already registered", name)
	}

	j := newJob(name, cb, arg)
	s.jobs[name] = j
	go j.run(s.clk)

	log.Debugf("scheduler: registered job %q", name)
	return nil
}

// Arm parses cronText, atomically replaces the job's pattern and wakes the
// worker. On a parse error the job ends up disarmed and the previous pattern
// is discarded.
func (s *Scheduler) Arm(name, cronText string) error {
	j, err := s.get(name)
	if err != nil {
		return err
	}

	pattern, parseErr := crontab.Parse(cronText)

	j.mu.Lock()
	if parseErr != nil {
		j.pattern = nil
		j.armed = false
	} else {
		j.pattern = pattern
		j.armed = true
	}
	j.mu.Unlock()
	j.cond.Broadcast()

	if parseErr != nil {
		return errors.Wrapf(parseErr, "scheduler: cannot arm job %q", name)
	}
	log.Infof("scheduler: armed job %q with %q", name, cronText)
	return nil
}

// Disarm stops future fires of the job; the worker stays parked until the
// job is armed again or removed.
func (s *Scheduler) Disarm(name string) error {
	j, err := s.get(name)
	if err != nil {
		return err
	}

	j.mu.Lock()
	j.armed = false
	j.mu.Unlock()
	j.cond.Broadcast()

	log.Infof("scheduler: disarmed job %q", name)
	return nil
}

// Remove terminates the job's worker and unregisters the job. It returns
// only once the worker goroutine has exited; an in-flight callback finishes
// first.
func (s *Scheduler) Remove(name string) error {
	s.m.Lock()
	j, ok := s.jobs[name]
	if ok {
		delete(s.jobs, name)
	}
	s.m.Unlock()

	if !ok {
		return errors.Errorf("scheduler: unknown job %q", name)
	}

	j.mu.Lock()
	j.terminate = true
	j.mu.Unlock()
	j.cond.Broadcast()

	<-j.done
	log.Debugf("scheduler: removed job %q", name)
	return nil
}

// Stop removes every registered job, joining all workers
func (s *Scheduler) Stop() {
	s.m.RLock()
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	s.m.RUnlock()

	for _, name := range names {
		if err := s.Remove(name); err != nil {
			log.Warnf("scheduler: %v", err)
		}
	}
}

// Armed reports whether the named job currently has a pattern and is armed
func (s *Scheduler) Armed(name string) bool {
	j, err := s.get(name)
	if err != nil {
		return false
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	return j.armed
}

func (s *Scheduler) get(name string) (*job, error) {
	s.m.RLock()
	defer s.m.RUnlock()

	j, ok := s.jobs[name]
	if !ok {
		return nil, errors.Errorf("scheduler: unknown job %q", name)
	}
	return j, nil
}
