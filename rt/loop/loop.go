package loop

import (
	"time"

	"github.com/gekko3d/orrery/rt/logging"
)

type State int

const (
	StateRunning State = iota
	StateClosed
)

func (s State) String() string {
	if s == StateClosed {
		return "closed"
	}
	return "running"
}

// Frame is what the loop drives once per iteration.
type Frame interface {
	PollEvents()
	ShouldClose() bool
	Update()
	Render()
	Present()
}

type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type SystemClock struct{}

func (SystemClock) Now() time.Time        { return time.Now() }
func (SystemClock) Sleep(d time.Duration) { time.Sleep(d) }

type Time struct {
	Time time.Time
	Dt   time.Duration
}

// Pacer holds frames to a fixed target duration.
type Pacer struct {
	Target time.Duration
	clock  Clock
}

func NewPacer(frameRate int, clock Clock) *Pacer {
	if frameRate <= 0 {
		frameRate = 60
	}
	return &Pacer{
		Target: time.Second / time.Duration(frameRate),
		clock:  clock,
	}
}

// Pace sleeps for max(0, Target - elapsed since start) and returns the
// duration it slept.
func (p *Pacer) Pace(start time.Time) time.Duration {
	elapsed := p.clock.Now().Sub(start)
	wait := p.Target - elapsed
	if wait <= 0 {
		return 0
	}
	p.clock.Sleep(wait)
	return wait
}

type Loop struct {
	State  State
	Frames uint64
	Time   Time

	clock Clock
	pacer *Pacer
	log   logging.Logger
}

func New(frameRate int, clock Clock, log logging.Logger) *Loop {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Loop{
		State: StateRunning,
		clock: clock,
		pacer: NewPacer(frameRate, clock),
		log:   logging.OrNop(log),
	}
}

func (l *Loop) Pacer() *Pacer {
	return l.pacer
}

// Step runs one iteration and returns the resulting state. A closed loop
// stays closed.
func (l *Loop) Step(f Frame) State {
	if l.State == StateClosed {
		return l.State
	}

	start := l.clock.Now()
	if !l.Time.Time.IsZero() {
		l.Time.Dt = start.Sub(l.Time.Time)
	}
	l.Time.Time = start

	f.PollEvents()
	if f.ShouldClose() {
		l.State = StateClosed
		l.log.Infof("window closed after %d frames", l.Frames)
		return l.State
	}

	f.Update()
	f.Render()
	f.Present()
	l.Frames++

	if slept := l.pacer.Pace(start); slept == 0 && l.log.DebugEnabled() {
		l.log.Debugf("frame %d over budget (%v, dt %v)", l.Frames, l.clock.Now().Sub(start), l.Time.Dt)
	}
	return l.State
}

func (l *Loop) Run(f Frame) {
	for l.Step(f) == StateRunning {
	}
}
