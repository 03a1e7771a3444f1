package enrich

import (
	"strings"

	"shorepull/internal/inventory"
)

// Classify derives the data group from instrument metadata. The decision is
// order-sensitive and made exactly once, at enrichment time:
//
//  1. Multibeam Sonar defaults to Multibeam, overridden to WCSD when the
//     instrument name carries a water-column marker in any of its observed
//     case and spacing variants.
//  2. Splitbeam Sonar is always WCSD.
//  3. Everything else is Trackline.
func Classify(instrumentType, instrumentName string) inventory.DataType {
	switch instrumentType {
	case "Multibeam Sonar":
		name := strings.ToLower(instrumentName)
		if strings.Contains(name, "[water column]") || strings.Contains(name, "[watercolumn]") {
			return inventory.DataTypeWCSD
		}
		return inventory.DataTypeMultibeam
	case "Splitbeam Sonar":
		return inventory.DataTypeWCSD
	default:
		return inventory.DataTypeTrackline
	}
}
