package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexhholmes/folioevict/internal/base"
	"github.com/alexhholmes/folioevict/internal/engine"
	"github.com/alexhholmes/folioevict/internal/stats"
)

const unit = 4096

func sampleStats() *stats.Accumulator {
	acc := stats.New(unit)
	acc.Record(&base.FolioSnapshot{Flags: base.FolioPrivate, Refcount: 2},
		engine.Outcome{FolioRefcount: 3, EBRefcount: 1, EBExamined: true})
	acc.Record(&base.FolioSnapshot{Flags: base.FolioDirty},
		engine.Outcome{Reason: engine.ReasonFolioDirty, FolioRefcount: 2})
	acc.RecordFault()
	return acc
}

func TestPublish(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	acc := sampleStats()
	m.Publish(engine.PathInvalidate, acc, acc.Check())

	assert.Equal(t, float64(3*unit), testutil.ToFloat64(m.bytes.WithLabelValues("invalidate", "total")))
	assert.Equal(t, float64(unit), testutil.ToFloat64(m.bytes.WithLabelValues("invalidate", "evicted")))
	assert.Equal(t, float64(2*unit), testutil.ToFloat64(m.bytes.WithLabelValues("invalidate", "rejected")))
	assert.Equal(t, float64(unit), testutil.ToFloat64(m.rejectedBytes.WithLabelValues("invalidate", "folio-dirty")))
	assert.Equal(t, float64(unit), testutil.ToFloat64(m.rejectedBytes.WithLabelValues("invalidate", "source-fault")))
	assert.Equal(t, float64(0), testutil.ToFloat64(m.rejectedBytes.WithLabelValues("invalidate", "eb-dirty")))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.items.WithLabelValues("invalidate")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.folioRefcounts.WithLabelValues("invalidate", "3")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ebRefcounts.WithLabelValues("invalidate", "1")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.flags.WithLabelValues("invalidate", "PG_dirty")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.accountingOK.WithLabelValues("invalidate")))

	// Every reason is exported, even at zero
	assert.Equal(t, len(engine.AllReasons()), testutil.CollectAndCount(m.rejectedBytes))
}

func TestPublishAccountingFailure(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	acc := sampleStats()
	acc.Evicted = 0

	m.Publish(engine.PathRelease, acc, acc.Check())
	assert.Equal(t, float64(0), testutil.ToFloat64(m.accountingOK.WithLabelValues("release")))
}

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	acc := sampleStats()
	m.Publish(engine.PathRelease, acc, nil)

	path := filepath.Join(t.TempDir(), "folioevict.prom")
	require.NoError(t, WriteTextfile(path, registry))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `folioevict_bytes{outcome="total",path="release"} 12288`)
	assert.Contains(t, string(data), `folioevict_rejected_bytes{path="release",reason="folio-dirty"} 4096`)

	assert.Error(t, WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"), registry))
}
