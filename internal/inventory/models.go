package inventory

import (
	"strings"
	"time"
)

// DataType is the coarse classification assigned at enrichment time.
type DataType string

const (
	DataTypeWCSD      DataType = "WCSD"
	DataTypeMultibeam DataType = "Multibeam"
	DataTypeTrackline DataType = "Trackline"
)

var allDataTypes = []DataType{DataTypeWCSD, DataTypeMultibeam, DataTypeTrackline}

// AllDataTypes returns the ordered list of known data types.
func AllDataTypes() []DataType {
	cp := make([]DataType, len(allDataTypes))
	copy(cp, allDataTypes)
	return cp
}

// ParseDataType converts a string into a known DataType.
func ParseDataType(value string) (DataType, bool) {
	trimmed := strings.TrimSpace(value)
	for _, dt := range allDataTypes {
		if strings.EqualFold(trimmed, string(dt)) {
			return dt, true
		}
	}
	return "", false
}

// PullStatus tracks whether a package has been landed. The transition is
// monotonic: pending becomes pulled exactly once and is never reversed.
type PullStatus string

const (
	StatusPending PullStatus = "pending"
	StatusPulled  PullStatus = "pulled"
)

// Record is a dataset package persisted in the inventory. package_path is
// globally unique; records are append-only and never deleted.
type Record struct {
	ID             int64
	FilesetID      string
	CruiseID       string
	PlatformName   string
	InstrumentName string
	InstrumentType string
	SizeBytes      int64
	FileCount      int64
	PackagePath    string
	DateDir        string
	DataType       DataType
	PulledStatus   PullStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Stats aggregates inventory counts for diagnostic output.
type Stats struct {
	Total   int
	Pending int
	Pulled  int
	ByType  map[DataType]int
}
