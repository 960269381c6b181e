package eval

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"src.tide.sh/pkg/eval/errs"
)

// ErrInterrupted is raised when evaluation is interrupted.
var ErrInterrupted = errs.ErrInterrupted

// Interrupts returns a channel that is closed when the evaluation is
// interrupted.
func (fm *Frame) Interrupts() <-chan struct{} {
	return fm.intr
}

// IsInterrupted reports whether there has been an interrupt.
func (fm *Frame) IsInterrupted() bool {
	select {
	case <-fm.intr:
		return true
	default:
		return false
	}
}

// Interrupt interrupts the evaluation running in the Evaler, if any. It is
// safe to call from any goroutine.
func (ev *Evaler) Interrupt() {
	ev.intr.interrupt()
}

// Holds the interrupt channel of the current evaluation.
type interrupter struct {
	mu     sync.Mutex
	ch     chan struct{}
	closed bool
}

// Starts a new evaluation, returning its interrupt channel and a function to
// call when the evaluation ends.
func (in *interrupter) reset() (<-chan struct{}, func()) {
	in.mu.Lock()
	defer in.mu.Unlock()
	ch := make(chan struct{})
	in.ch, in.closed = ch, false
	return ch, func() {
		in.mu.Lock()
		defer in.mu.Unlock()
		if in.ch == ch {
			in.ch = nil
		}
	}
}

func (in *interrupter) interrupt() {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.ch != nil && !in.closed {
		close(in.ch)
		in.closed = true
	}
}

// Starts to listen to terminal interrupts, calling f on every SIGINT or
// SIGQUIT. Returns a function that stops listening.
func listenInterrupts(f func()) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGQUIT)

	// Closed in the cleanup function to request the relaying goroutine to stop.
	stop := make(chan struct{})
	// Closed in the relaying goroutine to signal that it has stopped.
	stopped := make(chan struct{})

	go func() {
	loop:
		for {
			select {
			case sig := <-sigCh:
				logger.Println("got signal", sig)
				f()
			case <-stop:
				break loop
			}
		}
		signal.Stop(sigCh)
		close(stopped)
	}()

	return func() {
		close(stop)
		<-stopped
	}
}
