package picker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	ID         uint
	NationalID string
	Name       string
	Insurance  string
}

var people = []person{
	{ID: 1, NationalID: "29012345678901", Name: "Ahmed Mohamed", Insurance: "Comprehensive"},
	{ID: 2, NationalID: "30112345678902", Name: "Sara Ahmed", Insurance: "Basic"},
	{ID: 3, NationalID: "28512345678903", Name: "Mahmoud Ali", Insurance: "Premium"},
}

func searchPeople(_ context.Context, term string) ([]person, error) {
	var out []person
	for _, p := range people {
		if strings.Contains(p.NationalID, term) || strings.Contains(strings.ToLower(p.Name), strings.ToLower(term)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestPicker(t *testing.T) {
	ctx := context.Background()
	form := map[string]string{}
	p := New(searchPeople, func(p person) uint { return p.ID }, func(p person) error {
		form["insuranceType"] = p.Insurance
		return nil
	})

	assert.Equal(t, StateNoQuery, p.Result().State)

	res, err := p.Search(ctx, "ahmed")
	require.NoError(t, err)
	assert.Equal(t, StateResults, res.State)
	assert.Len(t, res.Matches, 2)

	res, err = p.Search(ctx, "nobody")
	require.NoError(t, err)
	assert.Equal(t, StateNoMatch, res.State)
	assert.Empty(t, res.Matches)

	res, err = p.Search(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, StateNoQuery, res.State)

	res, err = p.Search(ctx, "   ")
	require.NoError(t, err)
	assert.Equal(t, StateNoQuery, res.State)
	assert.Empty(t, res.Matches)

	_, err = p.Search(ctx, "290123")
	require.NoError(t, err)

	_, err = p.Select(2)
	assert.ErrorIs(t, err, ErrNotACandidate)

	chosen, err := p.Select(1)
	require.NoError(t, err)
	assert.Equal(t, "Ahmed Mohamed", chosen.Name)
	assert.Equal(t, "Comprehensive", form["insuranceType"])

	res = p.Result()
	assert.Equal(t, StateSelected, res.State)
	assert.Empty(t, res.Matches)
	require.NotNil(t, res.Selected)
	assert.Equal(t, uint(1), res.Selected.ID)
}

func TestPickerPropagatesErrors(t *testing.T) {
	boom := errors.New("registry offline")
	p := New(func(context.Context, string) ([]person, error) { return nil, boom },
		func(p person) uint { return p.ID },
		func(person) error { return nil })

	_, err := p.Search(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StateNoQuery, p.Result().State)

	failing := New(searchPeople, func(p person) uint { return p.ID }, func(person) error { return boom })
	_, err = failing.Search(context.Background(), "sara")
	require.NoError(t, err)
	_, err = failing.Select(2)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, failing.Result().Matches, 1, "failed commit keeps the candidates")
}
