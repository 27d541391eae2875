// Package console reports a single calculate operation on plain writers.
package console

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"bmi-client/internal/bmi"
	"bmi-client/internal/coordinator"
)

// ErrFailed is wrapped by Err when the request failed.
var ErrFailed = errors.New("calculation failed")

// Collaborator prints the outcome of one operation. The summary goes to out,
// status lines and notices to errOut.
type Collaborator struct {
	out    io.Writer
	errOut io.Writer

	mu   sync.Mutex
	err  error
	once sync.Once
	done chan struct{}
}

func New(out, errOut io.Writer) *Collaborator {
	return &Collaborator{out: out, errOut: errOut, done: make(chan struct{})}
}

// Done is closed once the operation finished or input was rejected.
func (c *Collaborator) Done() <-chan struct{} { return c.done }

// Err is the outcome after Done: nil, a *bmi.ValidationError, or an error
// wrapping ErrFailed.
func (c *Collaborator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Collaborator) OnValidationError(err *bmi.ValidationError) {
	fmt.Fprintf(c.errOut, "%s: %s\n", err.Title(), err.Message())
	c.setErr(err)
	c.finish()
}

func (c *Collaborator) OnOperationStarted() {
	fmt.Fprintln(c.errOut, coordinator.StatusSending)
}

func (c *Collaborator) OnOperationSucceeded(rendered string) {
	fmt.Fprint(c.out, rendered)
	if len(rendered) > 0 && rendered[len(rendered)-1] != '\n' {
		fmt.Fprintln(c.out)
	}
	fmt.Fprintln(c.errOut, coordinator.StatusDone)
}

func (c *Collaborator) OnOperationFailed(message string) {
	fmt.Fprintf(c.errOut, "%s\n%s\n", coordinator.StatusError, message)
	c.setErr(fmt.Errorf("%w: %s", ErrFailed, message))
}

func (c *Collaborator) OnOperationFinished() { c.finish() }

func (c *Collaborator) setErr(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

func (c *Collaborator) finish() {
	c.once.Do(func() { close(c.done) })
}

var _ coordinator.Collaborator = (*Collaborator)(nil)
