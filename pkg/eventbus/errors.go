package eventbus

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument is wrapped by every argument validation error.
var ErrInvalidArgument = errors.New("invalid argument")

// Sentinel errors for argument validation.
var (
	// ErrEmptyEventType indicates Subscribe or Publish was called with "".
	ErrEmptyEventType = fmt.Errorf("%w: event type is empty", ErrInvalidArgument)

	// ErrNilEvent indicates Publish was called without an event.
	ErrNilEvent = fmt.Errorf("%w: event is nil", ErrInvalidArgument)

	// ErrNilHandler indicates Subscribe was called without a handler.
	ErrNilHandler = fmt.Errorf("%w: handler is nil", ErrInvalidArgument)

	// ErrNilUpstream indicates NewQueuedPublisher was called without an upstream.
	ErrNilUpstream = fmt.Errorf("%w: upstream publisher is nil", ErrInvalidArgument)
)

// ErrClosed indicates a QueuedPublisher has been closed.
var ErrClosed = errors.New("queued publisher closed")

// HandlerError records one subscriber failure during a dispatch.
type HandlerError struct {
	// EventType is the type being dispatched.
	EventType string
	// SubscriptionID identifies the failing subscription.
	SubscriptionID uint64
	// Index is the handler's position in the dispatch order.
	Index int
	// Err is what the handler returned, or a *PanicError.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %d (subscription %d) for %s: %v", e.Index, e.SubscriptionID, e.EventType, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// DispatchError aggregates every handler failure of a single Publish.
// All handlers ran; Failures lists the ones that failed, in dispatch order.
type DispatchError struct {
	EventType string
	Failures  []*HandlerError
}

// Error implements the error interface.
func (e *DispatchError) Error() string {
	if len(e.Failures) == 1 {
		return fmt.Sprintf("dispatch %s: %v", e.EventType, e.Failures[0])
	}
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Error()
	}
	return fmt.Sprintf("dispatch %s: %d handlers failed: %s", e.EventType, len(e.Failures), strings.Join(msgs, "; "))
}

// Unwrap exposes each failure to errors.Is and errors.As.
func (e *DispatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// PanicError captures a panic recovered from a handler.
type PanicError struct {
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panicked: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
