// Package metrics exports run totals as Prometheus gauges.
//
// Runs are one-shot, so the usual target is node_exporter's textfile
// collector via WriteTextfile rather than a scrape endpoint.
package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/alexhholmes/folioevict/internal/engine"
	"github.com/alexhholmes/folioevict/internal/stats"
)

// Metrics holds the gauges for one registry.
type Metrics struct {
	bytes          *prometheus.GaugeVec
	rejectedBytes  *prometheus.GaugeVec
	items          *prometheus.GaugeVec
	duplicates     *prometheus.GaugeVec
	folioRefcounts *prometheus.GaugeVec
	ebRefcounts    *prometheus.GaugeVec
	flags          *prometheus.GaugeVec
	accountingOK   *prometheus.GaugeVec
}

// NewMetrics creates the gauges and registers them with registry.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		bytes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "folioevict_bytes",
				Help: "Bytes scanned and predicted evictable, by reclaim path",
			},
			[]string{"path", "outcome"}, // "total", "evicted", "rejected"
		),
		rejectedBytes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "folioevict_rejected_bytes",
				Help: "Bytes predicted unevictable, by first failing check",
			},
			[]string{"path", "reason"},
		),
		items: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "folioevict_items",
				Help: "Snapshot items evaluated, including source faults",
			},
			[]string{"path"},
		),
		duplicates: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "folioevict_duplicate_folios",
				Help: "Folios seen more than once within the duplicate window",
			},
			[]string{"path"},
		),
		folioRefcounts: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "folioevict_folio_refcount_folios",
				Help: "Folios by refcount compared against the reclaim budget",
			},
			[]string{"path", "refcount"},
		),
		ebRefcounts: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "folioevict_eb_refcount_buffers",
				Help: "Examined extent buffers by refcount",
			},
			[]string{"path", "refcount"},
		),
		flags: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "folioevict_flag_folios",
				Help: "Folios carrying each page flag",
			},
			[]string{"path", "flag"},
		),
		accountingOK: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "folioevict_accounting_ok",
				Help: "1 if evicted plus rejected bytes equal total bytes",
			},
			[]string{"path"},
		),
	}

	registry.MustRegister(
		m.bytes,
		m.rejectedBytes,
		m.items,
		m.duplicates,
		m.folioRefcounts,
		m.ebRefcounts,
		m.flags,
		m.accountingOK,
	)
	return m
}

// Publish sets every gauge from acc. Reasons with no rejected bytes are
// exported as zero so the full vocabulary is always present.
func (m *Metrics) Publish(path engine.Path, acc *stats.Accumulator, accounting error) {
	p := path.String()

	m.bytes.WithLabelValues(p, "total").Set(float64(acc.Total))
	m.bytes.WithLabelValues(p, "evicted").Set(float64(acc.Evicted))
	m.bytes.WithLabelValues(p, "rejected").Set(float64(acc.RejectedTotal()))

	for _, reason := range engine.AllReasons() {
		m.rejectedBytes.WithLabelValues(p, string(reason)).Set(float64(acc.Rejected[reason]))
	}

	m.items.WithLabelValues(p).Set(float64(acc.Items))
	m.duplicates.WithLabelValues(p).Set(float64(acc.Duplicates))

	for rc, n := range acc.FolioRefcounts {
		m.folioRefcounts.WithLabelValues(p, strconv.Itoa(rc)).Set(float64(n))
	}
	for rc, n := range acc.EBRefcounts {
		m.ebRefcounts.WithLabelValues(p, strconv.Itoa(rc)).Set(float64(n))
	}
	for flag, n := range acc.FlagCounts {
		m.flags.WithLabelValues(p, flag).Set(float64(n))
	}

	ok := 1.0
	if accounting != nil {
		ok = 0
	}
	m.accountingOK.WithLabelValues(p).Set(ok)
}

// WriteTextfile gathers registry and writes it atomically to filename.
func WriteTextfile(filename string, registry prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(filename, registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
