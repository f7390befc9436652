package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/alexhholmes/folioevict"
	"github.com/alexhholmes/folioevict/internal/base"
	"github.com/alexhholmes/folioevict/internal/config"
	"github.com/alexhholmes/folioevict/internal/metrics"
	"github.com/alexhholmes/folioevict/internal/report"
	"github.com/alexhholmes/folioevict/internal/snapshotfile"
)

// ErrAccounting is returned when a run finishes with broken totals. It is
// reported separately from any rejection reason.
var ErrAccounting = errors.New("accounting invariant violated")

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <snapshot.yaml|->",
	Short: "Predict reclaim outcomes for a folio snapshot",
	Long: `Evaluate every folio in a snapshot against one reclaim path and print
byte totals per outcome, refcount histograms and flag histograms.

The release path models direct release of an exclusively held folio. The
invalidate path models invalidate_mapping_pages and counts one extra pin held
by the lookup that found the folio (see --transient-pins).

Examples:
  # Release path, table output
  folioevict evaluate snapshot.yaml

  # Invalidate path against the mapping recorded in the snapshot
  folioevict evaluate --path invalidate snapshot.yaml

  # Read from stdin, JSON output, 4 workers
  drgn dump-btree-folios.py /mnt/btrfs | folioevict evaluate -o json --workers 4 -

  # Also write node_exporter textfile metrics
  folioevict evaluate --metrics-textfile /var/lib/node_exporter/folioevict.prom snapshot.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	def := config.GetDefaultConfig()

	flags := evaluateCmd.Flags()
	flags.String("path", def.Path, "Reclaim path to model: release or invalidate")
	flags.String("mapping", def.Mapping, "Mapping under test (default: the snapshot's mapping)")
	flags.Int("unit-size", def.UnitSize, "Bytes credited per folio (default: snapshot page_size, then host page size)")
	flags.Int("transient-pins", def.TransientPins, "Extra folio references held by the snapshot walk (invalidate path)")
	flags.Bool("require-tree-ref", def.RequireTreeRef, "Reject extent buffers without EXTENT_BUFFER_TREE_REF")
	flags.Int("workers", def.Workers, "Goroutines evaluating folios")
	flags.Int("duplicate-window", def.DuplicateWindow, "Recent folio IDs checked for duplicates (0 disables)")
	flags.StringP("output", "o", def.Output, "Output format: table, json or yaml")
	flags.String("log-level", def.Logging.Level, "Log level: DEBUG, INFO, WARN or ERROR")
	flags.String("log-backend", def.Logging.Backend, "Logger: zap or logrus")
	flags.String("metrics-textfile", def.Metrics.TextfilePath, "Write Prometheus metrics to this file")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	log, flush, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer flush()

	snap, err := openSnapshot(args[0])
	if err != nil {
		return err
	}
	if n := snap.Faults(); n > 0 {
		log.Warn("snapshot entries failed to decode", "count", n)
	}

	path, err := folioevict.ParsePath(cfg.Path)
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}

	mapping := snap.Mapping
	if override, ok, err := cfg.MappingID(); err != nil {
		return err
	} else if ok {
		mapping = override
	}

	unitSize := cfg.UnitSize
	if unitSize == 0 {
		unitSize = snap.PageSize
	}
	if unitSize == 0 {
		unitSize = base.PageSize()
	}

	res, err := folioevict.RunParallel(snap,
		folioevict.WithPath(path),
		folioevict.WithMapping(mapping),
		folioevict.WithTransientPins(cfg.TransientPins),
		folioevict.WithRequireTreeRef(cfg.RequireTreeRef),
		folioevict.WithUnitSize(unitSize),
		folioevict.WithWorkers(cfg.Workers),
		folioevict.WithDuplicateWindow(cfg.DuplicateWindow),
		folioevict.WithLogger(log),
		folioevict.WithProgress(0, func(scanned uint64) {
			log.Debug("scanning", "mib", scanned/base.MiB)
		}),
	)
	if err != nil {
		return err
	}

	if err := report.Write(cmd.OutOrStdout(), format, report.New(path, res.Stats, res.Accounting)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.Metrics.TextfilePath != "" {
		registry := prometheus.NewRegistry()
		metrics.NewMetrics(registry).Publish(path, res.Stats, res.Accounting)
		if err := metrics.WriteTextfile(cfg.Metrics.TextfilePath, registry); err != nil {
			return err
		}
	}

	if res.Accounting != nil {
		return fmt.Errorf("%w: %v", ErrAccounting, res.Accounting)
	}
	return nil
}

func openSnapshot(arg string) (*snapshotfile.File, error) {
	if arg == "-" {
		return snapshotfile.Decode(os.Stdin)
	}
	return snapshotfile.Open(arg)
}
