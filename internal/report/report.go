// Package report renders run totals for people (table) and tools (JSON, YAML).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alexhholmes/folioevict/internal/engine"
	"github.com/alexhholmes/folioevict/internal/stats"
)

// Format represents the output format type.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a string into a Format, returning an error if invalid.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
	}
}

// Amount is a byte total with the derived units the scanners print.
type Amount struct {
	Bytes uint64 `json:"bytes" yaml:"bytes"`
	MiB   uint64 `json:"mib" yaml:"mib"`
	Pages uint64 `json:"pages" yaml:"pages"`
}

type ReasonAmount struct {
	Reason engine.Reason `json:"reason" yaml:"reason"`
	Amount `yaml:",inline"`
}

type IntBucket struct {
	Refcount int    `json:"refcount" yaml:"refcount"`
	Count    uint64 `json:"count" yaml:"count"`
}

type StringBucket struct {
	Flags string `json:"flags" yaml:"flags"`
	Count uint64 `json:"count" yaml:"count"`
}

// Report is the serialisable view of a run.
type Report struct {
	Path       string `json:"path" yaml:"path"`
	UnitSize   uint64 `json:"unit_size" yaml:"unit_size"`
	Items      uint64 `json:"items" yaml:"items"`
	Duplicates uint64 `json:"duplicates" yaml:"duplicates"`

	Total    Amount         `json:"total" yaml:"total"`
	Evicted  Amount         `json:"evicted" yaml:"evicted"`
	Rejected []ReasonAmount `json:"rejected" yaml:"rejected"`

	FolioRefcounts []IntBucket    `json:"folio_refcounts" yaml:"folio_refcounts"`
	EBRefcounts    []IntBucket    `json:"eb_refcounts" yaml:"eb_refcounts"`
	FlagCounts     []StringBucket `json:"flags" yaml:"flags"`
	FlagCombos     []StringBucket `json:"flag_combinations" yaml:"flag_combinations"`

	// Accounting is "ok" or the completeness failure.
	Accounting string `json:"accounting" yaml:"accounting"`
}

// New builds a Report. accounting is the result of the completeness check.
func New(path engine.Path, acc *stats.Accumulator, accounting error) *Report {
	amount := func(bytes uint64) Amount {
		return Amount{Bytes: bytes, MiB: stats.MiB(bytes), Pages: acc.Pages(bytes)}
	}

	r := &Report{
		Path:       path.String(),
		UnitSize:   acc.UnitSize,
		Items:      acc.Items,
		Duplicates: acc.Duplicates,
		Total:      amount(acc.Total),
		Evicted:    amount(acc.Evicted),
		Accounting: "ok",
	}
	if accounting != nil {
		r.Accounting = accounting.Error()
	}

	// Known reasons first in vocabulary order, then anything unexpected
	seen := make(map[engine.Reason]bool)
	for _, reason := range engine.AllReasons() {
		seen[reason] = true
		if bytes := acc.Rejected[reason]; bytes > 0 {
			r.Rejected = append(r.Rejected, ReasonAmount{Reason: reason, Amount: amount(bytes)})
		}
	}
	for _, b := range stats.ByKey(acc.Rejected) {
		if !seen[b.Key] && b.Count > 0 {
			r.Rejected = append(r.Rejected, ReasonAmount{Reason: b.Key, Amount: amount(b.Count)})
		}
	}

	for _, b := range stats.ByKey(acc.FolioRefcounts) {
		r.FolioRefcounts = append(r.FolioRefcounts, IntBucket{Refcount: b.Key, Count: b.Count})
	}
	for _, b := range stats.ByKey(acc.EBRefcounts) {
		r.EBRefcounts = append(r.EBRefcounts, IntBucket{Refcount: b.Key, Count: b.Count})
	}
	for _, b := range stats.ByCount(acc.FlagCounts) {
		r.FlagCounts = append(r.FlagCounts, StringBucket{Flags: b.Key, Count: b.Count})
	}
	for _, b := range stats.ByCount(acc.FlagCombos) {
		r.FlagCombos = append(r.FlagCombos, StringBucket{Flags: b.Key, Count: b.Count})
	}
	return r
}

// Write renders r in the requested format.
func Write(w io.Writer, format Format, r *Report) error {
	switch format {
	case FormatTable:
		return writeTables(w, r)
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(r)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(r); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func u64(v uint64) string {
	return strconv.FormatUint(v, 10)
}
