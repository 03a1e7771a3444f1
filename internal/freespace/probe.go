// Package freespace probes filesystem capacity for budget and cushion checks.
package freespace

import (
	"golang.org/x/sys/unix"

	"shorepull/internal/services"
)

// Prober reports available bytes at a path.
type Prober interface {
	AvailableBytes(path string) (uint64, error)
}

// StatfsProber reads capacity from the filesystem backing a path.
type StatfsProber struct{}

// AvailableBytes returns the bytes available to unprivileged writers.
func (StatfsProber) AvailableBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, services.Wrap(services.ErrProbe, "freespace", "statfs", path, err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// Budget subtracts the cushion from the available bytes. The boolean reports
// whether any budget remains; the cushion itself is never spendable.
func Budget(available, cushion uint64) (uint64, bool) {
	if available <= cushion {
		return 0, false
	}
	return available - cushion, true
}
