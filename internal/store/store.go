// Package store persists finished simulation runs. Only the aggregate time
// series is kept: the model definition, the recorded proportions and the
// final degree-mass per type. Graph structure is never stored.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/nvandessel/prefgrow/internal/model"
	"github.com/nvandessel/prefgrow/internal/simulation"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = errors.New("run not found")

// Run is a stored simulation run.
type Run struct {
	ID         string             `json:"id"`
	Title      string             `json:"title,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	Seed       uint64             `json:"seed"`
	Definition model.Definition   `json:"definition"`
	Series     *simulation.Series `json:"series"`
}

// RunSummary is the list view of a stored run.
type RunSummary struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Title             string    `json:"title,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	Seed              uint64    `json:"seed"`
	Steps             int64     `json:"steps"`
	RecordingInterval int64     `json:"recording_interval"`
	Points            int       `json:"points"`
}

// RunStore defines the operations on the run store.
type RunStore interface {
	SaveRun(ctx context.Context, run Run) (string, error)
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)
	DeleteRun(ctx context.Context, id string) error
	Close() error
}
