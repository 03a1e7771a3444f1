package diag

import (
	"fmt"
	"strings"
)

// Diagnostic records a single non-fatal failure encountered during a run.
type Diagnostic struct {
	Stage   string
	Subject string
	Err     error
}

func (d Diagnostic) String() string {
	subject := strings.TrimSpace(d.Subject)
	if subject == "" {
		return fmt.Sprintf("%s: %v", d.Stage, d.Err)
	}
	return fmt.Sprintf("%s: %s: %v", d.Stage, subject, d.Err)
}

// Report accumulates per-stage counters and diagnostics across a run. It is a
// plain value threaded through component calls and merged at stage
// boundaries; components never share a global error list.
type Report struct {
	Discovered  int
	Enriched    int
	Selected    int
	Fetched     int
	Validated   int
	Routed      int
	Diagnostics []Diagnostic
}

// Add records a non-fatal failure.
func (r *Report) Add(stage, subject string, err error) {
	if err == nil {
		return
	}
	r.Diagnostics = append(r.Diagnostics, Diagnostic{Stage: stage, Subject: subject, Err: err})
}

// Merge folds another report into this one.
func (r *Report) Merge(other Report) {
	r.Discovered += other.Discovered
	r.Enriched += other.Enriched
	r.Selected += other.Selected
	r.Fetched += other.Fetched
	r.Validated += other.Validated
	r.Routed += other.Routed
	r.Diagnostics = append(r.Diagnostics, other.Diagnostics...)
}

// Failed reports whether any diagnostics were accumulated.
func (r *Report) Failed() bool {
	return len(r.Diagnostics) > 0
}

// Summary renders the end-of-run counts and the accumulated diagnostics.
// No diagnostic is ever dropped from the output.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "discovered %d, enriched %d, selected %d, fetched %d, validated %d, routed %d",
		r.Discovered, r.Enriched, r.Selected, r.Fetched, r.Validated, r.Routed)
	if len(r.Diagnostics) > 0 {
		fmt.Fprintf(&b, "\n%d problem(s):", len(r.Diagnostics))
		for _, d := range r.Diagnostics {
			b.WriteString("\n  - ")
			b.WriteString(d.String())
		}
	}
	return b.String()
}
