// Package logger adapts zap and logrus to folioevict's Logger interface, so a
// run's progress, duplicate and source fault warnings, and accounting
// failures land in the logger the host program already uses.
// The standard library's slog.Logger implements folioevict.Logger directly.
//
// Example with zap, modelling invalidation of a btree inode mapping whose
// snapshot was taken without holding any extra folio references:
//
//	import (
//	    "github.com/alexhholmes/folioevict"
//	    "github.com/alexhholmes/folioevict/logger"
//	    "go.uber.org/zap"
//	)
//
//	func main() {
//	    zapLogger, _ := zap.NewProduction()
//	    defer zapLogger.Sync()
//
//	    res, err := folioevict.Run(folioevict.FolioSource(folios...),
//	        folioevict.WithPath(folioevict.PathInvalidate),
//	        folioevict.WithMapping(btreeInodeMapping),
//	        folioevict.WithTransientPins(0),
//	        folioevict.WithLogger(logger.NewZap(zapLogger)),
//	    )
//	    if err != nil {
//	        panic(err)
//	    }
//	    if res.Accounting != nil {
//	        // Already logged at error level by the run
//	        os.Exit(1)
//	    }
//	    fmt.Printf("%d of %d bytes evictable\n", res.Stats.Evicted, res.Stats.Total)
//	}
package logger
