// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed for the RDK project.
// Copyright 2024 RDK Management.

package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// settle gives the worker goroutine a chance to park on its condition and
// register its wakeup timer before the mock clock is advanced.
func settle() {
	time.Sleep(20 * time.Millisecond)
}

func TestFiresOncePerMinute(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 5, 17, 10, 0, 30, 0, time.UTC))
	s := NewWithClock(mock)
	defer s.Stop()

	var count int64
	require.NoError(t, s.Add("log-upload", func(name string, arg interface{}) {
		atomic.AddInt64(&count, 1)
	}, nil))
	require.NoError(t, s.Arm("log-upload", "* * * * *"))
	settle()

	// t0+65s covers exactly one minute boundary (10:01:00)
	for i := 0; i < 65; i++ {
		mock.Add(time.Second)
		settle()
	}

	assert.Equal(t, int64(1), atomic.LoadInt64(&count))
}

func TestCallbacksNeverOverlap(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC))
	s := NewWithClock(mock)
	defer s.Stop()

	var inflight, maxInflight int64
	require.NoError(t, s.Add("busy", func(name string, arg interface{}) {
		n := atomic.AddInt64(&inflight, 1)
		if n > atomic.LoadInt64(&maxInflight) {
			atomic.StoreInt64(&maxInflight, n)
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&inflight, -1)
	}, nil))
	require.NoError(t, s.Arm("busy", "* * * * * *"))
	settle()

	for i := 0; i < 10; i++ {
		mock.Add(time.Second)
		settle()
	}

	assert.LessOrEqual(t, atomic.LoadInt64(&maxInflight), int64(1))
}

func TestArmBadSyntaxLeavesJobDisarmed(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC))
	s := NewWithClock(mock)
	defer s.Stop()

	var count int64
	require.NoError(t, s.Add("job", func(string, interface{}) { atomic.AddInt64(&count, 1) }, nil))
	require.NoError(t, s.Arm("job", "* * * * *"))
	settle()

	// a bad expression discards the previous pattern too
	assert.Error(t, s.Arm("job", "not a cron"))
	assert.False(t, s.Armed("job"))

	for i := 0; i < 3; i++ {
		mock.Add(time.Minute)
		settle()
	}
	assert.Zero(t, atomic.LoadInt64(&count))
}

func TestDisarmStopsFiring(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC))
	s := NewWithClock(mock)
	defer s.Stop()

	var count int64
	require.NoError(t, s.Add("job", func(string, interface{}) { atomic.AddInt64(&count, 1) }, nil))
	require.NoError(t, s.Arm("job", "* * * * * *"))
	settle()

	mock.Add(time.Second)
	settle()
	require.Equal(t, int64(1), atomic.LoadInt64(&count))

	require.NoError(t, s.Disarm("job"))
	settle()
	for i := 0; i < 5; i++ {
		mock.Add(time.Second)
		settle()
	}
	assert.Equal(t, int64(1), atomic.LoadInt64(&count))
}

func TestRemoveJoinsWorker(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC))
	s := NewWithClock(mock)

	require.NoError(t, s.Add("job", func(string, interface{}) {}, nil))
	require.NoError(t, s.Arm("job", "* * * * *"))
	settle()

	require.NoError(t, s.Remove("job"))

	// the worker is gone: the job is unknown from now on
	assert.Error(t, s.Arm("job", "* * * * *"))
	assert.Error(t, s.Remove("job"))
}

func TestCallbackPanicDoesNotKillWorker(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC))
	s := NewWithClock(mock)
	defer s.Stop()

	var count int64
	require.NoError(t, s.Add("job", func(string, interface{}) {
		if atomic.AddInt64(&count, 1) == 1 {
			panic("first run blows up")
		}
	}, nil))
	require.NoError(t, s.Arm("job", "* * * * * *"))
	settle()

	for i := 0; i < 3; i++ {
		mock.Add(time.Second)
		settle()
	}
	assert.GreaterOrEqual(t, atomic.LoadInt64(&count), int64(2))
}

func TestAddDuplicateName(t *testing.T) {
	s := New()
	defer s.Stop()

	require.NoError(t, s.Add("job", func(string, interface{}) {}, nil))
	assert.Error(t, s.Add("job", func(string, interface{}) {}, nil))
}

func TestUserDataIsPassedThrough(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2024, 5, 17, 10, 0, 0, 0, time.UTC))
	s := NewWithClock(mock)
	defer s.Stop()

	type daemonHandle struct{ id int }
	h := &daemonHandle{id: 42}

	got := make(chan interface{}, 1)
	require.NoError(t, s.Add("job", func(name string, arg interface{}) {
		select {
		case got <- arg:
		default:
		}
	}, h))
	require.NoError(t, s.Arm("job", "* * * * * *"))
	settle()

	mock.Add(time.Second)
	settle()

	select {
	case arg := <-got:
		assert.Same(t, h, arg)
	default:
		t.Fatal("callback did not run")
	}
}
