package folioevict

// Source yields folio snapshots produced by an external introspection tool.
// Next returns false once the sequence is exhausted. An entry the source
// could not read is returned as a fault item, never as a panic.
type Source interface {
	Next() (Item, bool)
}

// SliceSource replays a fixed slice of items.
type SliceSource struct {
	items []Item
	pos   int
}

func NewSliceSource(items []Item) *SliceSource {
	return &SliceSource{items: items}
}

// FolioSource wraps plain snapshots as a Source.
func FolioSource(folios ...*FolioSnapshot) *SliceSource {
	items := make([]Item, len(folios))
	for i, f := range folios {
		items[i] = SnapshotItem(f)
	}
	return NewSliceSource(items)
}

func (s *SliceSource) Next() (Item, bool) {
	if s.pos >= len(s.items) {
		return Item{}, false
	}
	it := s.items[s.pos]
	s.pos++
	return it, true
}

// Len returns the number of items not yet consumed.
func (s *SliceSource) Len() int {
	return len(s.items) - s.pos
}
