package executor

import (
	"context"

	"github.com/kbukum/ticksim/message"
)

// State is the executor's occupancy.
type State int

const (
	Idle State = iota
	Busy
)

func (s State) String() string {
	if s == Busy {
		return "busy"
	}
	return "idle"
}

// Stepper is a tick-driven executor a driver can submit to and step.
type Stepper interface {
	Name() string
	Clock() message.Tick
	IsFree() bool
	State() State
	Pending() int
	Current() (message.Action, bool)
	Submit(earliest message.Tick, action message.Action, received message.Tick)
	Step(ctx context.Context) []message.Result
}

// Executor is the state shared by every executor kind: a clock, a pending
// queue and the action in progress. Concrete executors embed it and
// implement Step.
type Executor struct {
	name  string
	clock message.Tick
	queue Queue

	current   *message.Action
	received  message.Tick
	remaining int
}

// NewExecutor creates an idle executor at tick 0.
func NewExecutor(name string) *Executor {
	return &Executor{name: name}
}

// Name returns the executor name.
func (e *Executor) Name() string { return e.name }

// Clock returns the current tick.
func (e *Executor) Clock() message.Tick { return e.clock }

// IsFree reports whether no action is in progress.
func (e *Executor) IsFree() bool { return e.current == nil }

// State returns Idle or Busy.
func (e *Executor) State() State {
	if e.IsFree() {
		return Idle
	}
	return Busy
}

// Pending returns the number of queued requests.
func (e *Executor) Pending() int { return e.queue.Len() }

// Queued returns the queued requests in the order they would be examined.
func (e *Executor) Queued() []Entry { return e.queue.Entries() }

// Current returns the action in progress.
func (e *Executor) Current() (message.Action, bool) {
	if e.current == nil {
		return message.Action{}, false
	}
	return *e.current, true
}

// Remaining returns the ticks left on the action in progress.
func (e *Executor) Remaining() int { return e.remaining }

// Submit enqueues action, eligible from tick earliest, received at tick received.
func (e *Executor) Submit(earliest message.Tick, action message.Action, received message.Tick) {
	e.queue.Push(earliest, action, received)
}

func (e *Executor) admit(entry Entry, cost int) {
	action := entry.Action
	e.current = &action
	e.received = entry.Received
	e.remaining = cost
}

// work advances the action in progress by one tick and reports the finished
// action, if any.
func (e *Executor) work() (message.Action, message.Tick, bool) {
	e.remaining--
	if e.remaining > 0 {
		return message.Action{}, 0, false
	}
	done := *e.current
	e.current = nil
	e.remaining = 0
	return done, e.received, true
}

func (e *Executor) tick() { e.clock++ }
