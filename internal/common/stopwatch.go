package common

import (
	"time"
)

// This stopwatch keeps track of time. You can set a timeout for it,
// make it start counting time, and ask it if the timeout has been reached
type Stopwatch struct {
	Timeout   time.Duration
	startTime time.Time
	Running   bool
	clock     Clock
}

func NewStopwatch(timeout time.Duration, clock Clock) Stopwatch {
	if clock == nil {
		clock = RealClock{}
	}
	return Stopwatch{Timeout: timeout, clock: clock}
}

func (s *Stopwatch) Start() {
	if s.clock == nil {
		s.clock = RealClock{}
	}
	s.Running = true
	s.startTime = s.clock.Now()
}

func (s *Stopwatch) Stop() {
	s.Running = false
}

// Time counted since the last start
func (s *Stopwatch) Elapsed() time.Duration {
	if !s.Running {
		return 0
	}
	return s.clock.Now().Sub(s.startTime)
}

// Report if the timeout has been reached, and how long ago.
// A stopwatch that is not running is considered stopped
func (s *Stopwatch) Stopped() (bool, time.Duration) {
	if !s.Running {
		return true, 0
	}
	over := s.Elapsed() - s.Timeout
	return over >= 0, over
}
