package story

// Selection is the ordered set of assets chosen for one story's book.
// It is not safe for concurrent use; the Manager only touches it on its
// main queue.
type Selection struct {
	assets []Asset
	index  map[string]struct{}
}

func newSelection() *Selection {
	return &Selection{index: make(map[string]struct{})}
}

// Select appends assets that are not already selected.
func (s *Selection) Select(assets ...Asset) {
	for _, a := range assets {
		if _, ok := s.index[a.ID]; ok {
			continue
		}
		s.index[a.ID] = struct{}{}
		s.assets = append(s.assets, a)
	}
}

// Deselect removes the given asset IDs and returns how many were selected.
func (s *Selection) Deselect(ids ...string) int {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			drop[id] = struct{}{}
			delete(s.index, id)
		}
	}
	if len(drop) == 0 {
		return 0
	}

	kept := s.assets[:0]
	for _, a := range s.assets {
		if _, ok := drop[a.ID]; !ok {
			kept = append(kept, a)
		}
	}
	s.assets = kept
	return len(drop)
}

// DeselectAll empties the selection.
func (s *Selection) DeselectAll() {
	s.assets = nil
	s.index = make(map[string]struct{})
}

// Contains reports whether the asset is selected.
func (s *Selection) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Count returns the number of selected assets.
func (s *Selection) Count() int {
	return len(s.assets)
}

// Assets returns a copy of the selected assets in selection order.
func (s *Selection) Assets() []Asset {
	return append([]Asset(nil), s.assets...)
}

// OrderByDate sorts the selection by ascending asset date.
func (s *Selection) OrderByDate() {
	sortByDate(s.assets)
}
