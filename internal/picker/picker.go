// Package picker implements search-and-select over a registry: an operator
// searches, sees every match, and commits exactly one candidate into a
// dependent form.
package picker

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var ErrNotACandidate = errors.New("selection is not among the current search results")

// State distinguishes "nothing searched yet" from "searched, nothing found".
type State string

const (
	StateNoQuery  State = "no_query"
	StateResults  State = "results"
	StateNoMatch  State = "no_match"
	StateSelected State = "selected"
)

// SearchFunc returns every match for a non-empty term.
type SearchFunc[T any] func(ctx context.Context, term string) ([]T, error)

// CommitFunc copies the selected item into the dependent form.
type CommitFunc[T any] func(item T) error

// Result is the picker's renderable state.
type Result[T any] struct {
	State    State  `json:"state"`
	Term     string `json:"term"`
	Matches  []T    `json:"matches"`
	Selected *T     `json:"selected,omitempty"`
}

type Picker[T any] struct {
	mu       sync.Mutex
	search   SearchFunc[T]
	id       func(T) uint
	commit   CommitFunc[T]
	term     string
	matches  []T
	state    State
	selected *T
}

func New[T any](search SearchFunc[T], id func(T) uint, commit CommitFunc[T]) *Picker[T] {
	return &Picker[T]{search: search, id: id, commit: commit, state: StateNoQuery, matches: []T{}}
}

// Search replaces the candidate list. A blank term resets to StateNoQuery
// without calling the search function.
func (p *Picker[T]) Search(ctx context.Context, term string) (Result[T], error) {
	term = strings.TrimSpace(term)
	if term == "" {
		p.mu.Lock()
		p.term = ""
		p.matches = []T{}
		p.state = StateNoQuery
		p.mu.Unlock()
		return p.Result(), nil
	}

	matches, err := p.search(ctx, term)
	if err != nil {
		return Result[T]{}, err
	}

	p.mu.Lock()
	p.term = term
	p.matches = append([]T{}, matches...)
	if len(matches) == 0 {
		p.state = StateNoMatch
	} else {
		p.state = StateResults
	}
	p.mu.Unlock()
	return p.Result(), nil
}

// Select commits the candidate with the given id and clears the candidate list.
func (p *Picker[T]) Select(id uint) (T, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var zero T
	for _, m := range p.matches {
		if p.id(m) != id {
			continue
		}
		if err := p.commit(m); err != nil {
			return zero, err
		}
		chosen := m
		p.selected = &chosen
		p.matches = []T{}
		p.state = StateSelected
		return chosen, nil
	}
	return zero, ErrNotACandidate
}

func (p *Picker[T]) Result() Result[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Result[T]{
		State:    p.state,
		Term:     p.term,
		Matches:  append([]T{}, p.matches...),
		Selected: p.selected,
	}
}
