package folioevict

import (
	"fmt"
	"testing"
)

// Pre-build one large snapshot so benchmarks measure evaluation only
var benchItems = mixedItems(100000)

func BenchmarkRunRelease(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		res, err := Run(NewSliceSource(benchItems), WithUnitSize(testUnit))
		if err != nil {
			b.Fatalf("run failed: %v", err)
		}
		if res.Accounting != nil {
			b.Fatalf("accounting failed: %v", res.Accounting)
		}
	}
}

func BenchmarkRunInvalidate(b *testing.B) {
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		_, err := Run(NewSliceSource(benchItems),
			WithUnitSize(testUnit),
			WithPath(PathInvalidate),
			WithMapping(testMapping))
		if err != nil {
			b.Fatalf("run failed: %v", err)
		}
	}
}

func BenchmarkRunParallel(b *testing.B) {
	for _, workers := range []int{2, 4, 8} {
		b.Run(fmt.Sprintf("workers=%d", workers), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, err := RunParallel(NewSliceSource(benchItems),
					WithUnitSize(testUnit),
					WithWorkers(workers))
				if err != nil {
					b.Fatalf("run failed: %v", err)
				}
			}
		})
	}
}

func BenchmarkRunNoDuplicateWindow(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, err := Run(NewSliceSource(benchItems),
			WithUnitSize(testUnit),
			WithDuplicateWindow(0))
		if err != nil {
			b.Fatalf("run failed: %v", err)
		}
	}
}
