package selection

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseChoices interprets a package selection: comma-separated 1-based
// indices with inclusive dash-ranges ("1,3,5-7"). Any unparsable or
// out-of-range token invalidates the entire selection; there is no partial
// acceptance. The result is sorted and de-duplicated.
func ParseChoices(input string, max int) ([]int, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, fmt.Errorf("empty selection")
	}

	chosen := make(map[int]struct{})
	for _, token := range strings.Split(trimmed, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, fmt.Errorf("empty token in selection %q", input)
		}
		if strings.Contains(token, "-") {
			parts := strings.SplitN(token, "-", 2)
			start, err := parseIndex(parts[0], max)
			if err != nil {
				return nil, err
			}
			end, err := parseIndex(parts[1], max)
			if err != nil {
				return nil, err
			}
			if end < start {
				return nil, fmt.Errorf("range %q runs backwards", token)
			}
			for i := start; i <= end; i++ {
				chosen[i] = struct{}{}
			}
			continue
		}
		idx, err := parseIndex(token, max)
		if err != nil {
			return nil, err
		}
		chosen[idx] = struct{}{}
	}

	indices := make([]int, 0, len(chosen))
	for idx := range chosen {
		indices = append(indices, idx)
	}
	sort.Ints(indices)
	return indices, nil
}

func parseIndex(token string, max int) (int, error) {
	idx, err := strconv.Atoi(strings.TrimSpace(token))
	if err != nil {
		return 0, fmt.Errorf("selection token %q is not a number", strings.TrimSpace(token))
	}
	if idx < 1 || idx > max {
		return 0, fmt.Errorf("selection %d is out of range 1-%d", idx, max)
	}
	return idx, nil
}
