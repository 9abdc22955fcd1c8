package metric

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	resultLabel = "result"
)

var (
	Registry = prometheus.NewRegistry()

	BadBlocksSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "uidstore_media_bad_blocks_skipped_total",
			Help: "Number of bad erase blocks skipped while walking raw NAND.",
		},
	)

	EraseBlocks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "uidstore_media_erase_blocks_total",
			Help: "Number of erase blocks erased by media drivers.",
		},
	)

	StoreLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uidstore_store_load_total",
			Help: "Number of store loads by result (ok, empty, recovered, error).",
		},
		[]string{resultLabel},
	)

	StoreSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uidstore_store_save_total",
			Help: "Number of store saves by result (ok, error).",
		},
		[]string{resultLabel},
	)
)

func init() {
	Registry.MustRegister(
		BadBlocksSkipped,
		EraseBlocks,
		StoreLoads,
		StoreSaves,
	)
}
