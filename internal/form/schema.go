package form

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrListField    = errors.New("field holds a list")
	ErrNotListField = errors.New("field does not hold a list")
)

// Values holds scalar field values keyed by field name.
type Values map[string]string

// Data is everything a form collected, handed to a Submitter.
type Data struct {
	Values Values              `json:"values"`
	Lists  map[string][]string `json:"lists,omitempty"`
}

// Field is one input of a form.
type Field struct {
	Name string
	Step int
	// Optional fields never gate step navigation.
	Optional bool
	// List fields collect an ordered list of strings (duplicates allowed).
	List  bool
	Rules []Rule
}

// Check runs the field's rules in order and returns the first violation.
func (f Field) Check(value string, now time.Time) *Violation {
	for _, rule := range f.Rules {
		if v := rule(value, now); v != nil {
			return v
		}
	}
	return nil
}

// Schema describes a multi-step form.
type Schema struct {
	Name string
	// Steps holds the i18n key of each step title.
	Steps  []string
	Fields []Field
	// Defaults seeds a new (create-mode) form.
	Defaults Values
	// SuccessPath is where the client is sent after a successful submission.
	SuccessPath string
}

func (s *Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (s *Schema) StepFields(step int) []Field {
	var out []Field
	for _, f := range s.Fields {
		if f.Step == step {
			out = append(out, f)
		}
	}
	return out
}

func (s *Schema) LastStep() int {
	return len(s.Steps) - 1
}

// Validate runs every rule of every scalar field. The returned map is empty
// when the values pass.
func (s *Schema) Validate(values Values, now time.Time) map[string]Violation {
	out := map[string]Violation{}
	for _, f := range s.Fields {
		if f.List {
			continue
		}
		if v := f.Check(values[f.Name], now); v != nil {
			out[f.Name] = *v
		}
	}
	return out
}

// ValidationError carries per-field violations. It never aborts the other
// fields: every failing field is reported.
type ValidationError struct {
	Fields map[string]Violation
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

// NewValidationError returns nil for an empty violation map.
func NewValidationError(fields map[string]Violation) error {
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}
