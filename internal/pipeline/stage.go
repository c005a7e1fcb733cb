package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"psacli/internal/config"
	"psacli/internal/exporter"
	"psacli/internal/files"
)

// Env holds the shared collaborators every stage runs against.
type Env struct {
	Config    *config.Config
	Paths     *config.Paths
	Discovery *files.Discovery
	CSV       *exporter.CSVWriter
	Workbook  *exporter.WorkbookWriter
	Tracer    trace.Tracer
	Logger    *slog.Logger
}

// Stage is one step of the batch run. Run iterates the stage's units of work
// and returns their aggregate outcome; it returns a non-nil error only for
// infrastructure failures that make the whole run pointless (an unreadable
// input tree), never for per-unit failures.
type Stage interface {
	ID() string
	Name() string
	Run(ctx context.Context, env *Env) (*StageResult, error)
}

// StageResult is the aggregate outcome of one stage. Counters are safe for
// concurrent updates from a parallel fan-out.
type StageResult struct {
	StageID  string
	Duration time.Duration

	mu        sync.Mutex
	Succeeded int
	Failed    int
	Skipped   int
}

// NewStageResult creates an empty result for one stage.
func NewStageResult(stageID string) *StageResult {
	return &StageResult{StageID: stageID}
}

// Success records one completed unit.
func (r *StageResult) Success() {
	r.mu.Lock()
	r.Succeeded++
	r.mu.Unlock()
}

// Skip records one unit whose output already existed.
func (r *StageResult) Skip() {
	r.mu.Lock()
	r.Skipped++
	r.mu.Unlock()
}

// Failure records one failed unit and logs it; the stage carries on with the
// remaining units.
func (r *StageResult) Failure(logger *slog.Logger, unit string, err error) {
	r.mu.Lock()
	r.Failed++
	r.mu.Unlock()

	logger.Error("unit failed, continuing batch",
		slog.String("stage", r.StageID),
		slog.String("unit", unit),
		slog.String("error", err.Error()))
}

// Counts returns the succeeded, failed and skipped unit counts.
func (r *StageResult) Counts() (succeeded, failed, skipped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Succeeded, r.Failed, r.Skipped
}

// Units returns the number of units the stage touched.
func (r *StageResult) Units() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Succeeded + r.Failed + r.Skipped
}

// OK reports whether the stage made acceptable progress: it either succeeded
// at some unit or failed at none. Skipped units count as progress, since they
// mean the work already exists.
func (r *StageResult) OK() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Failed == 0 || r.Succeeded > 0
}

// LogAttrs renders the result counters for a completion log line.
func (r *StageResult) LogAttrs() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return []any{
		slog.String("stage", r.StageID),
		slog.Int("succeeded", r.Succeeded),
		slog.Int("failed", r.Failed),
		slog.Int("skipped", r.Skipped),
		slog.Duration("duration", r.Duration),
	}
}
