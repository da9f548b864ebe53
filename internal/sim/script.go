package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/debug-agent/console/internal/protocol"
)

// Start runs the scripted debugging session until ctx is cancelled. One
// script step is applied per tick; when the script ends it wraps around so a
// long-running simulator keeps producing traffic.
func (a *Agent) Start(ctx context.Context, interval time.Duration) {
	go a.run(ctx, interval)
}

func (a *Agent) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.Advance()
		}
	}
}

// Advance applies the next script step.
func (a *Agent) Advance() {
	a.mu.Lock()
	defer a.mu.Unlock()

	steps := script()
	steps[a.scriptPos%len(steps)](a)
	a.scriptPos++
}

// script is the canned debugging session: attach to a target, set a
// breakpoint, hit it, step, crash, detach, then start over.
func script() []func(*Agent) {
	return []func(*Agent){
		func(a *Agent) {
			a.state = StateIdle
			a.attached = false
			a.breakpoints = 0
			a.emitLocked(protocol.EventSystem, "Debug Agent simulator ready")
		},
		func(a *Agent) {
			pid, name := findTarget()
			a.targetPID = pid
			a.targetName = name
			a.state = StateRunning
			a.attached = true
			a.emitLocked(protocol.EventStateChange, fmt.Sprintf("Attached to %s (pid %d), state: running", name, pid))
		},
		func(a *Agent) {
			a.emitLocked(protocol.EventInput, "break main.py:42")
			a.breakpoints++
			a.emitLocked(protocol.EventOutput, "Breakpoint 1 set at main.py:42")
		},
		func(a *Agent) {
			a.state = StatePaused
			a.emitLocked(protocol.EventBreakpointHit, "Breakpoint 1 hit at main.py:42 in compute()")
		},
		func(a *Agent) {
			a.emitLocked(protocol.EventInput, "next")
			a.emitLocked(protocol.EventOutput, "43\t    result = total / count")
		},
		func(a *Agent) {
			a.emitLocked(protocol.EventInput, "print(count)")
			a.emitLocked(protocol.EventOutput, "0")
		},
		func(a *Agent) {
			a.state = StateCrashed
			a.emitLocked(protocol.EventException, "ZeroDivisionError: division by zero at main.py:43")
		},
		func(a *Agent) {
			a.state = StateTerminated
			a.attached = false
			a.emitLocked(protocol.EventProcessTerminated, fmt.Sprintf("Process %d exited with code 1", a.targetPID))
		},
	}
}
