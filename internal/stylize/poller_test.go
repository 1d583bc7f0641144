package stylize

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type scriptedGetter struct {
	states []Prediction
	errs   []error
	calls  int
}

func (g *scriptedGetter) GetPrediction(ctx context.Context, id string) (*Prediction, error) {
	i := g.calls
	g.calls++
	if i >= len(g.states) {
		i = len(g.states) - 1
	}
	if g.errs != nil && g.errs[i] != nil {
		return nil, g.errs[i]
	}
	p := g.states[i]
	p.ID = id
	return &p, nil
}

func TestPoller_PollsUntilSucceeded(t *testing.T) {
	getter := &scriptedGetter{states: []Prediction{
		{Status: StatusStarting},
		{Status: StatusProcessing},
		{Status: StatusProcessing},
		{Status: StatusSucceeded, Output: []string{"https://x/y.webp"}},
	}}

	p := &Poller{Getter: getter, Interval: time.Millisecond, Deadline: time.Second}
	pred, err := p.Wait(context.Background(), "p1")
	if err != nil {
		t.Fatal(err)
	}
	if pred.Output[0] != "https://x/y.webp" {
		t.Fatalf("unexpected output: %v", pred.Output)
	}
	if getter.calls != 4 {
		t.Fatalf("expected 4 polls, got %d", getter.calls)
	}
}

func TestPoller_DeadlineIsTyped(t *testing.T) {
	getter := &scriptedGetter{states: []Prediction{{Status: StatusProcessing}}}

	p := &Poller{Getter: getter, Interval: 5 * time.Millisecond, Deadline: 25 * time.Millisecond}
	_, err := p.Wait(context.Background(), "p1")
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("want ErrPollTimeout, got %v", err)
	}
	if getter.calls < 2 {
		t.Fatalf("expected repeated polls before deadline, got %d", getter.calls)
	}
}

func TestPoller_FailedAborts(t *testing.T) {
	getter := &scriptedGetter{states: []Prediction{
		{Status: StatusProcessing},
		{Status: StatusFailed, Error: "NSFW content detected"},
	}}

	p := &Poller{Getter: getter, Interval: time.Millisecond, Deadline: time.Second}
	_, err := p.Wait(context.Background(), "p1")
	if err == nil || errors.Is(err, ErrPollTimeout) {
		t.Fatalf("want terminal failure, got %v", err)
	}
	if getter.calls != 2 {
		t.Fatalf("expected 2 polls, got %d", getter.calls)
	}
}

func TestPoller_StatusEndpointErrorAborts(t *testing.T) {
	getter := &scriptedGetter{
		states: []Prediction{{Status: StatusProcessing}, {}},
		errs:   []error{nil, fmt.Errorf("boom")},
	}

	p := &Poller{Getter: getter, Interval: time.Millisecond, Deadline: time.Second}
	_, err := p.Wait(context.Background(), "p1")
	if err == nil {
		t.Fatal("expected error from degraded status endpoint")
	}
}
