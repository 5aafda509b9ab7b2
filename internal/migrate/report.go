package migrate

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Failure is one record that could not be migrated. The run continues past
// it; failures surface in the final report instead of aborting the job.
type Failure struct {
	Entity string
	ID     int
	Err    error
}

func (f Failure) String() string {
	return fmt.Sprintf("%s %d: %v", f.Entity, f.ID, f.Err)
}

// Report accounts for one migration run: per-phase counters plus every
// per-record failure. A run is successful when no structural error aborted
// it; individual failures do not make it unsuccessful.
type Report struct {
	RunID     string
	StartedAt time.Time
	EndedAt   time.Time
	Counts    map[string]int
	Failures  []Failure
}

func NewReport() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		Counts:    map[string]int{},
	}
}

func (r *Report) Add(entity string, n int) {
	r.Counts[entity] += n
}

func (r *Report) Fail(entity string, id int, err error) {
	r.Failures = append(r.Failures, Failure{Entity: entity, ID: id, Err: err})
}

func (r *Report) Finish() {
	r.EndedAt = time.Now().UTC()
}

func (r *Report) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// Migrated returns the counter for one entity kind.
func (r *Report) Migrated(entity string) int {
	return r.Counts[entity]
}
