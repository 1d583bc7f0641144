package stylize

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrPollTimeout marks a job that did not reach a terminal status before the
// poller's deadline. The job itself keeps running at the provider.
var ErrPollTimeout = errors.New("stylization did not complete before deadline")

const (
	defaultInterval = 1 * time.Second
	defaultDeadline = 5 * time.Minute
)

// PredictionGetter is the slice of Client the poller needs.
type PredictionGetter interface {
	GetPrediction(ctx context.Context, id string) (*Prediction, error)
}

// Poller checks job status at a fixed cadence until the job succeeds, fails,
// or the deadline passes.
type Poller struct {
	Getter   PredictionGetter
	Interval time.Duration
	Deadline time.Duration
}

func NewPoller(getter PredictionGetter) *Poller {
	return &Poller{
		Getter:   getter,
		Interval: defaultInterval,
		Deadline: defaultDeadline,
	}
}

// Wait polls the prediction until it succeeds. Any status other than
// "succeeded", "failed" or "canceled" means another poll after the interval.
func (p *Poller) Wait(ctx context.Context, id string) (*Prediction, error) {
	interval := p.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	deadline := p.Deadline
	if deadline <= 0 {
		deadline = defaultDeadline
	}

	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		pred, err := p.Getter.GetPrediction(ctx, id)
		if err != nil {
			// a degraded status endpoint aborts the whole flow
			return nil, err
		}

		switch pred.Status {
		case StatusSucceeded:
			return pred, nil
		case StatusFailed, StatusCanceled:
			return nil, fmt.Errorf("stylization %s: %s", pred.Status, pred.Error)
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrPollTimeout
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
