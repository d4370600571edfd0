package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/goleak"
)

type fakeService struct {
	name     string
	startErr error
	block    bool
	stopped  *[]string
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	if s.block {
		<-ctx.Done()
		return nil
	}
	return s.startErr
}

func (s *fakeService) Stop(context.Context) error {
	*s.stopped = append(*s.stopped, s.name)
	return nil
}

func TestRunnerStopsServicesInReverseOrderOnFailure(t *testing.T) {
	defer goleak.VerifyNone(t)
	var stopped []string
	boom := errors.New("boom")
	first := &fakeService{name: "http", block: true, stopped: &stopped}
	second := &fakeService{name: "worker", startErr: boom, stopped: &stopped}

	err := NewRunner(first, second).Run(context.Background(), time.Second, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected start error, got %v", err)
	}
	if len(stopped) != 2 || stopped[0] != "worker" || stopped[1] != "http" {
		t.Fatalf("unexpected stop order: %v", stopped)
	}
}

func TestRunnerReturnsNilWhenContextCanceled(t *testing.T) {
	defer goleak.VerifyNone(t)
	var stopped []string
	svc := &fakeService{name: "http", block: true, stopped: &stopped}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if err := NewRunner(svc).Run(ctx, time.Second, nil); err != nil {
		t.Fatalf("canceled context should stop cleanly, got %v", err)
	}
	if len(stopped) != 1 {
		t.Fatalf("service should be stopped once, got %v", stopped)
	}
}

func TestRunnerWithoutServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("expected error for empty runner")
	}
}

func TestNormalizeOptions(t *testing.T) {
	opts := normalizeOptions(Options{Mode: " API "})
	if opts.Mode != ModeAPI || opts.Logger == nil || opts.ShutdownTimeout != 10*time.Second {
		t.Fatalf("unexpected normalized options: %+v", opts)
	}
	if normalizeOptions(Options{}).Mode != ModeAll {
		t.Fatalf("empty mode should default to all")
	}
}

func TestBuildRunnerRequiresConfig(t *testing.T) {
	if _, err := BuildRunner(nil, ModeAll); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
