package folioevict

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/elastic/go-freelru"
)

// dupWindow remembers recently seen folio IDs. It is bounded, so a duplicate
// further back than the window goes unnoticed.
type dupWindow struct {
	seen *freelru.LRU[uint64, struct{}]
}

func hashFolioID(id uint64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], id)
	h := xxhash.Sum64(buf[:])
	return uint32(h ^ h>>32)
}

// newDupWindow returns nil when size is zero, which disables tracking.
func newDupWindow(size int) (*dupWindow, error) {
	if size == 0 {
		return nil, nil
	}
	lru, err := freelru.New[uint64, struct{}](uint32(size), hashFolioID)
	if err != nil {
		return nil, err
	}
	return &dupWindow{seen: lru}, nil
}

// observe records id and reports whether it was already in the window.
func (w *dupWindow) observe(id uint64) bool {
	if w == nil {
		return false
	}
	if _, ok := w.seen.Get(id); ok {
		return true
	}
	w.seen.Add(id, struct{}{})
	return false
}
