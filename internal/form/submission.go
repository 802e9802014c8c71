package form

import (
	"context"
	"errors"
)

var (
	ErrSubmissionFailed    = errors.New("submission failed")
	ErrSubmissionCancelled = errors.New("submission cancelled")
)

// Outcome is what a successful submission produced.
type Outcome struct {
	ID uint `json:"id"`
	// Redirect overrides the schema's success path when set.
	Redirect string `json:"redirect,omitempty"`
}

// Submitter persists collected form data.
type Submitter interface {
	Submit(ctx context.Context, data Data) (Outcome, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, data Data) (Outcome, error)

func (f SubmitterFunc) Submit(ctx context.Context, data Data) (Outcome, error) {
	return f(ctx, data)
}

// SubmitError wraps a persistence failure. It matches ErrSubmissionFailed.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return "submission failed: " + e.Err.Error()
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

func (e *SubmitError) Is(target error) bool {
	return target == ErrSubmissionFailed
}

// Submission is an in-flight call to a Submitter.
type Submission struct {
	done    chan struct{}
	cancel  context.CancelFunc
	outcome Outcome
	err     error
}

func newSubmission(cancel context.CancelFunc) *Submission {
	return &Submission{done: make(chan struct{}), cancel: cancel}
}

// Done is closed once the submission has settled.
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Cancel aborts the submission. It is a no-op once settled.
func (s *Submission) Cancel() {
	s.cancel()
}

// Wait blocks until the submission settles or ctx ends. Cancelling ctx does
// not cancel the submission.
func (s *Submission) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-s.done:
		return s.outcome, s.err
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}

func (s *Submission) settle(outcome Outcome, err error) {
	s.outcome = outcome
	s.err = err
	close(s.done)
	s.cancel()
}
