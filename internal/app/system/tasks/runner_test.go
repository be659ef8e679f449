package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRunnerRunsAndStops(t *testing.T) {
	ran := make(chan struct{}, 1)

	r := NewRunner(zap.NewNop(), Job{
		Name:     "tick",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			select {
			case ran <- struct{}{}:
			default:
			}
			return nil
		},
	})
	r.Start()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job never ran")
	}

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestRunnerSurvivesJobError(t *testing.T) {
	calls := make(chan struct{}, 2)

	r := NewRunner(zap.NewNop(), Job{
		Name:     "flaky",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			select {
			case calls <- struct{}{}:
			default:
			}
			return errors.New("boom")
		},
	})
	r.Start()
	defer r.Stop()

	// The job keeps being scheduled after a failure.
	for i := 0; i < 2; i++ {
		select {
		case <-calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("job run %d never happened", i+1)
		}
	}
}
