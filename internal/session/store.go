package session

import (
	"context"
	"time"
)

// Outcome is how a run ended.
type Outcome string

const (
	OutcomeFinished Outcome = "finished"
	OutcomeStopped  Outcome = "stopped"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Run is the record of one bot run.
type Run struct {
	ID       string
	Bot      string
	Options  map[string]any
	Started  time.Time
	Finished time.Time
	Outcome  Outcome
	Progress float64
	Note     string
}

// RunStore records runs.
type RunStore interface {
	StartRun(ctx context.Context, r Run) error
	FinishRun(ctx context.Context, id string, outcome Outcome, finished time.Time, progress float64, note string) error
}

type nopStore struct{}

func (nopStore) StartRun(context.Context, Run) error { return nil }

func (nopStore) FinishRun(context.Context, string, Outcome, time.Time, float64, string) error {
	return nil
}
