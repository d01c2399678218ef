package state

import "github.com/rcliao/corelab/internal/model"

// Persons is the container state: the canonical person list and the current
// selection. The zero value is an empty, not-yet-loaded list.
type Persons struct {
	Items   []model.Person
	Loading bool
	Err     error

	selected *model.Person
}

// BeginLoad marks a full reload as in flight. The error of a previous
// attempt is kept until the reload resolves.
func (s *Persons) BeginLoad() {
	s.Loading = true
}

// Loaded replaces the list with the backend's result. A selection that is no
// longer present is cleared; one that is present is refreshed.
func (s *Persons) Loaded(items []model.Person) {
	if items == nil {
		items = []model.Person{}
	}
	s.Items = items
	s.Loading = false
	s.Err = nil

	if s.selected != nil {
		if p, ok := s.Get(s.selected.ID); ok {
			s.selected = &p
		} else {
			s.selected = nil
		}
	}
}

// LoadFailed records a failed reload. The previous list is kept.
func (s *Persons) LoadFailed(err error) {
	s.Loading = false
	s.Err = err
}

// Created appends a confirmed person. The selection is not changed.
func (s *Persons) Created(p model.Person) {
	items := make([]model.Person, 0, len(s.Items)+1)
	items = append(items, s.Items...)
	s.Items = append(items, p)
}

// Updated replaces the person with the same id in place and refreshes the
// selection when it points at that person. It reports whether a record was
// replaced.
func (s *Persons) Updated(p model.Person) bool {
	idx := s.index(p.ID)
	if idx < 0 {
		return false
	}
	items := make([]model.Person, len(s.Items))
	copy(items, s.Items)
	items[idx] = p
	s.Items = items

	if s.selected != nil && s.selected.ID == p.ID {
		sel := p
		s.selected = &sel
	}
	return true
}

// Select makes the person with id the selection. It returns false when no
// such person exists; changed reports whether the selected id differs from
// the previous one.
func (s *Persons) Select(id int64) (changed bool, ok bool) {
	p, found := s.Get(id)
	if !found {
		return false, false
	}
	changed = s.selected == nil || s.selected.ID != id
	s.selected = &p
	return changed, true
}

// Selected returns the selected person.
func (s *Persons) Selected() (model.Person, bool) {
	if s.selected == nil {
		return model.Person{}, false
	}
	return *s.selected, true
}

// Get returns the person with id.
func (s *Persons) Get(id int64) (model.Person, bool) {
	if idx := s.index(id); idx >= 0 {
		return s.Items[idx], true
	}
	return model.Person{}, false
}

// Len returns the number of persons.
func (s *Persons) Len() int {
	return len(s.Items)
}

func (s *Persons) index(id int64) int {
	for i, p := range s.Items {
		if p.ID == id {
			return i
		}
	}
	return -1
}
