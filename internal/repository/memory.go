package repository

import (
	"slices"
	"sync"
	"time"
)

// table is an insertion-ordered in-memory store keyed by auto-increment id.
// Rows go in and out through clone so callers never share slices with it.
type table[T any] struct {
	mu    sync.RWMutex
	rows  map[uint]T
	order []uint
	next  uint
	clone func(T) T
	setID func(*T, uint, time.Time)
}

func newTable[T any](clone func(T) T, setID func(*T, uint, time.Time)) *table[T] {
	return &table[T]{rows: map[uint]T{}, next: 1, clone: clone, setID: setID}
}

func (t *table[T]) list(keep func(T) bool) []T {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]T, 0, len(t.order))
	for _, id := range t.order {
		row := t.rows[id]
		if keep != nil && !keep(row) {
			continue
		}
		out = append(out, t.clone(row))
	}
	return out
}

func (t *table[T]) get(id uint) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	row, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, false
	}
	return t.clone(row), true
}

func (t *table[T]) find(match func(T) bool) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, id := range t.order {
		if row := t.rows[id]; match(row) {
			return t.clone(row), true
		}
	}
	var zero T
	return zero, false
}

// insert assigns the next id to row unless conflicts reports a clash with an
// existing row.
func (t *table[T]) insert(row *T, conflicts func(existing T) bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if conflicts != nil {
		for _, id := range t.order {
			if conflicts(t.rows[id]) {
				return ErrDuplicate
			}
		}
	}
	id := t.next
	t.next++
	t.setID(row, id, time.Now())
	t.rows[id] = t.clone(*row)
	t.order = append(t.order, id)
	return nil
}

// mutate applies fn to the stored row. A false return means id is unknown.
func (t *table[T]) mutate(id uint, fn func(row *T) error) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return false, nil
	}
	if err := fn(&row); err != nil {
		return true, err
	}
	t.rows[id] = t.clone(row)
	return true, nil
}

func (t *table[T]) remove(id uint) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	t.order = slices.DeleteFunc(t.order, func(v uint) bool { return v == id })
	return true
}

// update applies fn to row id once conflicts has cleared every other row.
func (t *table[T]) update(id uint, conflicts func(existing T) bool, fn func(row *T)) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	row, ok := t.rows[id]
	if !ok {
		return false, nil
	}
	if conflicts != nil {
		for _, other := range t.order {
			if other != id && conflicts(t.rows[other]) {
				return true, ErrDuplicate
			}
		}
	}
	fn(&row)
	t.rows[id] = t.clone(row)
	return true, nil
}
