// Package snapshotfile reads folio snapshots dumped by an external
// introspection tool. The format is YAML; JSON documents parse as well.
//
//	mapping: 0xffff888102a3c6f8
//	page_size: 4096
//	folios:
//	  - id: 0xffffea0004a1b2c0
//	    flags: [PG_private, PG_uptodate, PG_lru]
//	    refcount: 2
//	    extent_buffer:
//	      start: 30408704
//	      flags: [tree_ref, uptodate]
//	      refcount: 1
//	  - fault: "FaultError: could not read memory from 0xffffea0004a1b300"
//
// Each folio entry decodes on its own. An entry that cannot be decoded is
// handed out as a fault item so the rest of the dump is still evaluated.
package snapshotfile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexhholmes/folioevict/internal/base"
)

var (
	ErrMissingID         = errors.New("missing folio id")
	ErrMissingRefcount   = errors.New("missing refcount")
	ErrMalformedDocument = errors.New("malformed snapshot document")
)

// File is a decoded dump. It yields its items in file order.
type File struct {
	Mapping  base.MappingID
	PageSize int

	items []base.Item
	pos   int
}

type document struct {
	Mapping  hexUint     `yaml:"mapping"`
	PageSize int         `yaml:"page_size"`
	Folios   []yaml.Node `yaml:"folios"`
}

type folioEntry struct {
	ID           *hexUint `yaml:"id"`
	Flags        []string `yaml:"flags"`
	Refcount     *int     `yaml:"refcount"`
	Mapping      *hexUint `yaml:"mapping"`
	ExtentBuffer *ebEntry `yaml:"extent_buffer"`
	Fault        string   `yaml:"fault"`
}

type ebEntry struct {
	Start    hexUint  `yaml:"start"`
	Flags    []string `yaml:"flags"`
	Refcount *int     `yaml:"refcount"`
}

// hexUint accepts decimal or 0x-prefixed integers, quoted or not.
type hexUint uint64

func (h *hexUint) UnmarshalYAML(node *yaml.Node) error {
	v, err := strconv.ParseUint(strings.TrimSpace(node.Value), 0, 64)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*h = hexUint(v)
	return nil
}

// Open reads and decodes the dump at path.
func Open(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode reads a whole dump from r. Only document-level problems return an
// error; bad folio entries become fault items.
func Decode(r io.Reader) (*File, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return &File{}, nil
		}
		return nil, fmt.Errorf("failed to parse snapshot: %w", err)
	}

	var doc document
	if err := root.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	file := &File{
		Mapping:  base.MappingID(doc.Mapping),
		PageSize: doc.PageSize,
		items:    make([]base.Item, 0, len(doc.Folios)),
	}
	for i := range doc.Folios {
		file.items = append(file.items, file.decodeEntry(&doc.Folios[i]))
	}
	return file, nil
}

func (f *File) decodeEntry(node *yaml.Node) base.Item {
	var entry folioEntry
	if err := node.Decode(&entry); err != nil {
		return base.FaultItem(fmt.Errorf("%w: line %d: %v", base.ErrSourceFault, node.Line, err))
	}
	if entry.Fault != "" {
		return base.FaultItem(fmt.Errorf("%w: %s", base.ErrSourceFault, entry.Fault))
	}

	folio, err := entry.snapshot(f.Mapping)
	if err != nil {
		return base.FaultItem(fmt.Errorf("%w: line %d: %v", base.ErrSourceFault, node.Line, err))
	}
	return base.SnapshotItem(folio)
}

func (e *folioEntry) snapshot(mapping base.MappingID) (*base.FolioSnapshot, error) {
	// Folio IDs key duplicate detection, so an entry without one is unusable
	if e.ID == nil {
		return nil, ErrMissingID
	}
	id := uint64(*e.ID)

	refcount, err := checkRefcount(e.Refcount)
	if err != nil {
		return nil, fmt.Errorf("folio %#x: %w", id, err)
	}

	folio := &base.FolioSnapshot{
		ID:       id,
		Refcount: refcount,
		Mapping:  mapping,
	}
	if e.Mapping != nil {
		folio.Mapping = base.MappingID(*e.Mapping)
	}

	for _, name := range e.Flags {
		bit, err := base.ParseFolioFlag(name)
		if err != nil {
			// Unmodelled page flags only feed the histograms
			folio.ExtraFlags = append(folio.ExtraFlags, strings.TrimSpace(name))
			continue
		}
		folio.Flags |= bit
	}

	if e.ExtentBuffer != nil {
		eb, err := e.ExtentBuffer.snapshot()
		if err != nil {
			return nil, fmt.Errorf("folio %#x: %w", id, err)
		}
		folio.ExtentBuffer = eb
	}
	return folio, nil
}

func (e *ebEntry) snapshot() (*base.ExtentBufferSnapshot, error) {
	refcount, err := checkRefcount(e.Refcount)
	if err != nil {
		return nil, fmt.Errorf("extent buffer %d: %w", uint64(e.Start), err)
	}

	eb := &base.ExtentBufferSnapshot{Start: uint64(e.Start), Refcount: refcount}
	for _, name := range e.Flags {
		bit, err := base.ParseExtentBufferFlag(name)
		if err != nil {
			return nil, err
		}
		eb.Flags |= bit
	}
	return eb, nil
}

func checkRefcount(rc *int) (int, error) {
	if rc == nil {
		return 0, ErrMissingRefcount
	}
	if *rc < 0 {
		return 0, fmt.Errorf("%w: %d", base.ErrNegativeRefcount, *rc)
	}
	return *rc, nil
}

// Next implements the runner's Source.
func (f *File) Next() (base.Item, bool) {
	if f.pos >= len(f.items) {
		return base.Item{}, false
	}
	it := f.items[f.pos]
	f.pos++
	return it, true
}

// Len returns the number of entries in the dump.
func (f *File) Len() int {
	return len(f.items)
}

// Faults counts entries that failed to decode.
func (f *File) Faults() int {
	n := 0
	for _, it := range f.items {
		if it.IsFault() {
			n++
		}
	}
	return n
}
