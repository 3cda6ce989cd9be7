package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"

	"adcalc/internal/modules/history"
	"adcalc/internal/modules/portfolio"
)

// SnapshotAllJob captures a dated snapshot of every stored product so trend
// analysis has a regular series to work with even when nobody snapshots by
// hand.
type SnapshotAllJob struct {
	products  *portfolio.ProductRepository
	snapshots *history.SnapshotRepository
	log       zerolog.Logger
}

// NewSnapshotAllJob creates the daily snapshot job
func NewSnapshotAllJob(products *portfolio.ProductRepository, snapshots *history.SnapshotRepository, log zerolog.Logger) *SnapshotAllJob {
	return &SnapshotAllJob{
		products:  products,
		snapshots: snapshots,
		log:       log.With().Str("job", "snapshot_all").Logger(),
	}
}

// Name returns the job name
func (j *SnapshotAllJob) Name() string {
	return "snapshot_all"
}

// Run snapshots every product. A failure on one product does not stop the
// rest; the job reports the first error after trying them all.
func (j *SnapshotAllJob) Run() error {
	products, err := j.products.List()
	if err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	var firstErr error
	captured := 0
	for _, p := range products {
		snapshot, err := history.NewSnapshot(p, "", "scheduled")
		if err == nil {
			err = j.snapshots.Insert(snapshot)
		}
		if err != nil {
			j.log.Error().Err(err).Str("product_id", p.ID).Msg("Snapshot failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		captured++
	}

	j.log.Info().Int("captured", captured).Int("products", len(products)).Msg("Snapshot sweep complete")
	return firstErr
}
