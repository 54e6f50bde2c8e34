package usecase

import (
	"sync"
	"time"
)

// Scheduler runs delayed tasks. Scheduling under a key replaces the pending task of that key.
type Scheduler interface {
	Schedule(key string, delay time.Duration, task func())
	Cancel(key string)
}

type timerScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewTimerScheduler() Scheduler {
	return &timerScheduler{
		timers: make(map[string]*time.Timer),
	}
}

func (that *timerScheduler) Schedule(key string, delay time.Duration, task func()) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if timer, ok := that.timers[key]; ok {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		that.mu.Lock()
		if that.timers[key] == timer {
			delete(that.timers, key)
		}
		that.mu.Unlock()

		task()
	})

	that.timers[key] = timer
}

func (that *timerScheduler) Cancel(key string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if timer, ok := that.timers[key]; ok {
		timer.Stop()
		delete(that.timers, key)
	}
}

// keyedMutex hands out one mutex per key and forgets it once nobody holds or waits for it.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{
		locks: make(map[string]*refMutex),
	}
}

// Lock blocks until key is free and returns its unlock function.
func (that *keyedMutex) Lock(key string) func() {
	that.mu.Lock()
	lock, ok := that.locks[key]
	if !ok {
		lock = &refMutex{}
		that.locks[key] = lock
	}
	lock.refs++
	that.mu.Unlock()

	lock.Lock()

	return func() {
		lock.Unlock()

		that.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(that.locks, key)
		}
		that.mu.Unlock()
	}
}
