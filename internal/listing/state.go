package listing

// State is the mutable query behind one list view. Changing the term or any
// filter sends the view back to the first page.
type State struct {
	term    string
	filters map[string]string
	page    int
}

func NewState() *State {
	return &State{filters: map[string]string{}, page: 1}
}

func (s *State) SetTerm(term string) {
	s.term = term
	s.page = 1
}

// SetFilter sets or clears (value "") a filter.
func (s *State) SetFilter(name, value string) {
	if value == "" {
		delete(s.filters, name)
	} else {
		s.filters[name] = value
	}
	s.page = 1
}

// SetPage moves to page, clamped against the current match count.
func (s *State) SetPage(page, total, pageSize int) {
	s.page = ClampPage(page, total, pageSize)
}

func (s *State) Page() int {
	return s.page
}

// Query returns a copy of the current inputs.
func (s *State) Query() Query {
	filters := make(map[string]string, len(s.filters))
	for k, v := range s.filters {
		filters[k] = v
	}
	return Query{Term: s.term, Filters: filters, Page: s.page}
}
