package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransport marks remote listing or fetch failures after retry exhaustion.
	ErrTransport = errors.New("transport error")
	// ErrMetadata marks metadata provider failures (network or malformed response).
	ErrMetadata = errors.New("metadata error")
	// ErrPersistence marks inventory store write failures.
	ErrPersistence = errors.New("persistence error")
	// ErrValidation marks checksum or manifest format mismatches.
	ErrValidation = errors.New("validation error")
	// ErrRouting marks rule resolution, space, extraction, or sync failures.
	ErrRouting = errors.New("routing error")
	// ErrNotFound marks lookups that matched nothing.
	ErrNotFound = errors.New("not found")
	// ErrProbe marks free-space probe failures.
	ErrProbe = errors.New("probe error")
)

// Wrap builds an error message that includes run context while tagging it with
// the provided marker for later classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransport
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether an error should abort the whole run rather than be
// accumulated as a diagnostic. Only store-level failures qualify.
func Fatal(err error) bool {
	return errors.Is(err, ErrPersistence)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
