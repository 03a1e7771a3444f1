// Package logging wraps log/slog construction for shorepull. It owns level and
// format parsing, file/stderr output fan-out, attribute helper aliases, and the
// standardized field names shared across components. Loggers derive run-scoped
// fields (run_id, stage) from context via WithContext.
package logging
