// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/rdkcentral/dcm-agent/pkg/crontab"
	"github.com/rdkcentral/dcm-agent/pkg/util/log"
)

// Callback is the only injection point of the scheduler. It runs in the
// job's worker context; the job mutex is not held during the call.
type Callback func(name string, arg interface{})

// job is a named unit owned by the scheduler. All mutable state is
// serialized by mu; one worker goroutine runs per job.
type job struct {
	name     string
	callback Callback
	arg      interface{}

	mu   sync.Mutex
	cond *sync.Cond

	pattern   *crontab.Expression
	armed     bool
	terminate bool

	// timedWait bookkeeping
	waitSeq    uint64
	timerFired bool

	done chan struct{}
}

func newJob(name string, cb Callback, arg interface{}) *job {
	j := &job{
		name:     name,
		callback: cb,
		arg:      arg,
		done:     make(chan struct{}),
	}
	j.cond = sync.NewCond(&j.mu)
	return j
}

// run is the worker protocol: exit on terminate, block while disarmed,
// otherwise sleep until the next fire instant and invoke the callback
// outside the critical section.
func (j *job) run(clk clock.Clock) {
	defer close(j.done)

	j.mu.Lock()
	for {
		if j.terminate {
			j.mu.Unlock()
			log.Debugf("scheduler: worker for job %q exiting", j.name)
			return
		}

		if !j.armed || j.pattern == nil {
			j.cond.Wait()
			continue
		}

		due := j.pattern.Next(clk.Now())
		if due.IsZero() {
			// the pattern can never fire again within the horizon
			log.Warnf("scheduler: job %q has no next fire time, disarming", j.name)
			j.armed = false
			continue
		}

		if !j.timedWait(clk, due.Sub(clk.Now())) {
			// woken by a signal: state may have changed, re-evaluate
			continue
		}

		if j.terminate || !j.armed {
			continue
		}

		cb, name, arg := j.callback, j.name, j.arg
		j.mu.Unlock()
		invoke(cb, name, arg)
		j.mu.Lock()
	}
}

// timedWait waits on the job condition for at most d. It returns true when
// the full duration elapsed (the job is due) and false when the wait was cut
// short by a signal. Called and returns with mu held.
func (j *job) timedWait(clk clock.Clock, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	j.waitSeq++
	seq := j.waitSeq
	j.timerFired = false

	timer := clk.AfterFunc(d, func() {
		j.mu.Lock()
		if j.waitSeq == seq {
			j.timerFired = true
		}
		j.mu.Unlock()
		j.cond.Broadcast()
	})
	defer timer.Stop()

	j.cond.Wait()
	return j.timerFired
}

func invoke(cb Callback, name string, arg interface{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("scheduler: job %q callback panicked: %v", name, r)
		}
	}()
	cb(name, arg)
}

func (j *job) String() string {
	return fmt.Sprintf("job %q (armed: %t)", j.name, j.armed)
}
