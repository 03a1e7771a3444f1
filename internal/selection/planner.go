package selection

import (
	"strings"

	"shorepull/internal/discovery"
	"shorepull/internal/inventory"
)

// Batch is the transient result of planning: an ordered subset of pending
// records whose cumulative size stays inside the byte budget. Batches are
// never persisted and planning never mutates pull status.
type Batch struct {
	Records    []*inventory.Record
	TotalBytes int64
}

// Plan accumulates records greedily in store order, stopping at the first
// record whose size would push the cumulative total to or past the budget.
// The cushion has already been subtracted from the budget by the caller.
func Plan(records []*inventory.Record, budget uint64) Batch {
	var batch Batch
	for _, rec := range records {
		next := batch.TotalBytes + rec.SizeBytes
		if uint64(next) >= budget {
			break
		}
		batch.Records = append(batch.Records, rec)
		batch.TotalBytes = next
	}
	return batch
}

// Pick returns the records at the given 1-based indices, in ascending order.
func (b Batch) Pick(indices []int) []*inventory.Record {
	picked := make([]*inventory.Record, 0, len(indices))
	for _, idx := range indices {
		if idx < 1 || idx > len(b.Records) {
			continue
		}
		picked = append(picked, b.Records[idx-1])
	}
	return picked
}

// ManifestPath returns the checksum companion path for a package. The
// manifest always names the tar container, so a compression suffix is
// dropped first ("X.tar" and "X.tar.gz" both pair with "X.tar.md5").
func ManifestPath(packagePath string) string {
	base := strings.TrimSuffix(packagePath, ".gz")
	return base + discovery.ManifestSuffix
}
