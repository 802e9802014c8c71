// Package form drives multi-step record forms: per-field validation, step
// gating, and a single cancellable submission on the last step.
package form

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	ErrNotLastStep       = errors.New("submit is only available on the last step")
	ErrSubmissionPending = errors.New("a submission is already in progress")
	ErrAlreadySubmitted  = errors.New("form was already submitted")
	ErrClosed            = errors.New("form is closed")
	ErrIndexOutOfRange   = errors.New("item index out of range")
)

// Status of the most recent submission.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// Navigator receives navigation requests; it never exposes routing internals.
type Navigator interface {
	Go(path string)
	Back()
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now for date rules.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithNavigator sets where post-submit navigation requests go.
func WithNavigator(n Navigator) Option {
	return func(c *Controller) { c.navigator = n }
}

// WithRedirectDelay sets the pause between a successful submission and the
// navigation request.
func WithRedirectDelay(d time.Duration) Option {
	return func(c *Controller) { c.redirectDelay = d }
}

// Controller holds the state of one open form.
type Controller struct {
	mu sync.Mutex

	schema     *Schema
	values     Values
	lists      map[string][]string
	touched    map[string]bool
	violations map[string]Violation
	step       int

	submitter     Submitter
	navigator     Navigator
	now           func() time.Time
	redirectDelay time.Duration

	ctx        context.Context
	cancel     context.CancelFunc
	submission *Submission
	status     Status
	lastErr    error
	outcome    Outcome
	redirect   *time.Timer
	closed     bool
}

// New opens a form. initial overrides the schema defaults (edit mode passes
// the stored record here).
func New(schema *Schema, submitter Submitter, initial Data, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		schema:     schema,
		values:     Values{},
		lists:      map[string][]string{},
		touched:    map[string]bool{},
		violations: map[string]Violation{},
		submitter:  submitter,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
		status:     StatusIdle,
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, f := range schema.Fields {
		if f.List {
			c.lists[f.Name] = append([]string(nil), initial.Lists[f.Name]...)
			continue
		}
		value, ok := initial.Values[f.Name]
		if !ok {
			value = schema.Defaults[f.Name]
		}
		c.values[f.Name] = value
		c.revalidate(f)
	}
	return c
}

func (c *Controller) Schema() *Schema {
	return c.schema
}

func (c *Controller) field(name string) (Field, error) {
	f, ok := c.schema.Field(name)
	if !ok {
		return Field{}, fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return f, nil
}

func (c *Controller) revalidate(f Field) {
	if v := f.Check(c.values[f.Name], c.now()); v != nil {
		c.violations[f.Name] = *v
	} else {
		delete(c.violations, f.Name)
	}
}

// SetField updates a scalar value and re-runs that field's rules.
func (c *Controller) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := c.field(name)
	if err != nil {
		return err
	}
	if f.List {
		return fmt.Errorf("%w: %s", ErrListField, name)
	}
	c.values[name] = value
	c.revalidate(f)
	return nil
}

// BlurField marks a field as touched and re-runs its rules.
func (c *Controller) BlurField(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := c.field(name)
	if err != nil {
		return err
	}
	c.touched[name] = true
	if !f.List {
		c.revalidate(f)
	}
	return nil
}

// AddItem appends a trimmed value to a list field. Blank values are ignored
// and reported as not added.
func (c *Controller) AddItem(name, value string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := c.field(name)
	if err != nil {
		return false, err
	}
	if !f.List {
		return false, fmt.Errorf("%w: %s", ErrNotListField, name)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return false, nil
	}
	c.lists[name] = append(c.lists[name], value)
	return true, nil
}

// RemoveItem deletes the item at index from a list field.
func (c *Controller) RemoveItem(name string, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := c.field(name)
	if err != nil {
		return err
	}
	if !f.List {
		return fmt.Errorf("%w: %s", ErrNotListField, name)
	}
	items := c.lists[name]
	if index < 0 || index >= len(items) {
		return ErrIndexOutOfRange
	}
	c.lists[name] = append(items[:index:index], items[index+1:]...)
	return nil
}

// stepValid: every gated field of the step is either untouched with a
// non-empty value, or touched without a violation.
func (c *Controller) stepValid() bool {
	for _, f := range c.schema.StepFields(c.step) {
		if f.Optional {
			continue
		}
		if !c.touched[f.Name] {
			if f.List {
				if len(c.lists[f.Name]) == 0 {
					return false
				}
				continue
			}
			if c.values[f.Name] == "" {
				return false
			}
			continue
		}
		if _, bad := c.violations[f.Name]; bad {
			return false
		}
	}
	return true
}

func (c *Controller) StepValid() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stepValid()
}

func (c *Controller) Step() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

// Advance moves to the next step when the current one is valid. It reports
// whether the step changed.
func (c *Controller) Advance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.stepValid() || c.step >= c.schema.LastStep() {
		return false
	}
	c.step++
	return true
}

// Retreat moves to the previous step, stopping at the first one.
func (c *Controller) Retreat() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.step == 0 {
		return false
	}
	c.step--
	return true
}

// Submit validates every field of every step and, if they all pass, starts
// the submission. A failed or cancelled submission may be retried by calling
// Submit again; entered values are kept.
func (c *Controller) Submit() (*Submission, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.closed:
		return nil, ErrClosed
	case c.step != c.schema.LastStep():
		return nil, ErrNotLastStep
	case c.status == StatusPending:
		return nil, ErrSubmissionPending
	case c.status == StatusSucceeded:
		return nil, ErrAlreadySubmitted
	}

	for _, f := range c.schema.Fields {
		c.touched[f.Name] = true
	}
	c.violations = c.schema.Validate(c.values, c.now())
	if err := NewValidationError(c.copyViolations()); err != nil {
		return nil, err
	}

	data := c.snapshot()
	ctx, cancel := context.WithCancel(c.ctx)
	sub := newSubmission(cancel)
	c.submission = sub
	c.status = StatusPending
	c.lastErr = nil

	go c.run(ctx, sub, data)
	return sub, nil
}

func (c *Controller) run(ctx context.Context, sub *Submission, data Data) {
	outcome, err := c.submitter.Submit(ctx, data)

	c.mu.Lock()
	var verr *ValidationError
	switch {
	case err == nil:
		c.status = StatusSucceeded
		c.outcome = outcome
		c.scheduleRedirect(outcome)
	case errors.Is(err, context.Canceled):
		err = ErrSubmissionCancelled
		c.status = StatusCancelled
	case errors.As(err, &verr):
		for name, v := range verr.Fields {
			c.violations[name] = v
			c.touched[name] = true
		}
		c.status = StatusFailed
	default:
		err = &SubmitError{Err: err}
		c.status = StatusFailed
	}
	c.lastErr = err
	c.mu.Unlock()

	sub.settle(outcome, err)
}

func (c *Controller) scheduleRedirect(outcome Outcome) {
	if c.navigator == nil || c.closed {
		return
	}
	path := outcome.Redirect
	if path == "" {
		path = c.schema.SuccessPath
	}
	nav := c.navigator
	c.redirect = time.AfterFunc(c.redirectDelay, func() { nav.Go(path) })
}

// Cancel aborts a pending submission, if any.
func (c *Controller) Cancel() {
	c.mu.Lock()
	sub := c.submission
	c.mu.Unlock()
	if sub != nil {
		sub.Cancel()
	}
}

// Close tears the form down: the pending submission and any scheduled
// navigation are cancelled.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.cancel()
	if c.redirect != nil {
		c.redirect.Stop()
	}
}

func (c *Controller) copyViolations() map[string]Violation {
	out := make(map[string]Violation, len(c.violations))
	for k, v := range c.violations {
		out[k] = v
	}
	return out
}

func (c *Controller) snapshot() Data {
	values := make(Values, len(c.values))
	for k, v := range c.values {
		values[k] = v
	}
	lists := make(map[string][]string, len(c.lists))
	for k, v := range c.lists {
		lists[k] = append([]string(nil), v...)
	}
	return Data{Values: values, Lists: lists}
}

// SubmissionState is the client-visible result of the last submission.
type SubmissionState struct {
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
	// Retryable is set for failures the user can retry without edits.
	Retryable bool `json:"retryable,omitempty"`
	ID        uint `json:"id,omitempty"`
}

// State is a snapshot of the form for rendering. Errors only lists touched
// fields, matching what an input shows inline.
type State struct {
	Form       string               `json:"form"`
	Step       int                  `json:"step"`
	Steps      []string             `json:"steps"`
	Values     Values               `json:"values"`
	Lists      map[string][]string  `json:"lists,omitempty"`
	Touched    map[string]bool      `json:"touched"`
	Errors     map[string]Violation `json:"errors"`
	StepValid  bool                 `json:"stepValid"`
	CanAdvance bool                 `json:"canAdvance"`
	CanRetreat bool                 `json:"canRetreat"`
	CanSubmit  bool                 `json:"canSubmit"`
	Submission SubmissionState      `json:"submission"`
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	data := c.snapshot()
	touched := make(map[string]bool, len(c.touched))
	errs := map[string]Violation{}
	for name, t := range c.touched {
		touched[name] = t
		if v, ok := c.violations[name]; ok && t {
			errs[name] = v
		}
	}

	valid := c.stepValid()
	last := c.step == c.schema.LastStep()
	settled := c.status != StatusPending && c.status != StatusSucceeded

	sub := SubmissionState{Status: c.status, ID: c.outcome.ID}
	if c.lastErr != nil {
		sub.Error = c.lastErr.Error()
		sub.Retryable = errors.Is(c.lastErr, ErrSubmissionFailed) || errors.Is(c.lastErr, ErrSubmissionCancelled)
	}

	return State{
		Form:       c.schema.Name,
		Step:       c.step,
		Steps:      append([]string(nil), c.schema.Steps...),
		Values:     data.Values,
		Lists:      data.Lists,
		Touched:    touched,
		Errors:     errs,
		StepValid:  valid,
		CanAdvance: valid && !last,
		CanRetreat: c.step > 0,
		CanSubmit:  valid && last && settled && !c.closed,
		Submission: sub,
	}
}
