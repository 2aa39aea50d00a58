package gallery

// State is an immutable snapshot of the controller. Transitions never modify a
// published State; they build a new one. Items must be treated as read-only.
type State struct {
	// Query is the last submitted search text.
	Query string

	// Submitted reports whether any query has been submitted yet.
	Submitted bool

	// Page is the last page applied to Items. Zero before the first success.
	Page int

	// Items holds the results in arrival order.
	Items []Item

	// TotalCount is the backend-reported total. Only meaningful if TotalKnown.
	TotalCount int
	TotalKnown bool

	// Loading is true while at least one fetch is in flight.
	Loading bool

	// Selection is the item shown in the overlay, or nil.
	Selection *Item
}

// Len returns the number of accumulated results.
func (s State) Len() int {
	return len(s.Items)
}

// Exhausted reports whether every reachable result has been loaded.
// An unknown total counts as exhausted: there is nothing to page through.
func (s State) Exhausted() bool {
	return !s.TotalKnown || len(s.Items) >= s.TotalCount
}

// ShowLoadMore reports whether the load-more affordance should be offered.
func (s State) ShowLoadMore() bool {
	return !s.Loading && len(s.Items) > 0
}

// OverlayVisible reports whether an item is open in the overlay.
func (s State) OverlayVisible() bool {
	return s.Selection != nil
}

// withItems returns a copy of s whose Items is a fresh slice, so appending
// never writes into a slice a previous snapshot still references.
func (s State) withItems(items []Item) State {
	next := make([]Item, len(items))
	copy(next, items)
	s.Items = next
	return s
}

func (s State) withAppended(items []Item) State {
	next := make([]Item, 0, len(s.Items)+len(items))
	next = append(next, s.Items...)
	next = append(next, items...)
	s.Items = next
	return s
}
