package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type fakeService struct {
	name     string
	startErr error
	started  atomic.Bool
	stopped  atomic.Bool
}

func (s *fakeService) Name() string { return s.name }

func (s *fakeService) Start(ctx context.Context) error {
	s.started.Store(true)
	if s.startErr != nil {
		return s.startErr
	}
	<-ctx.Done()
	return nil
}

func (s *fakeService) Stop(context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunnerStopsAllServicesOnCancel(t *testing.T) {
	a := &fakeService{name: "a"}
	b := &fakeService{name: "b"}
	closed := false
	runner := NewRunner(a, b).WithCloser(func() error {
		closed = true
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx, time.Second, nil) }()
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancel should exit cleanly, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runner did not stop")
	}
	if !a.stopped.Load() || !b.stopped.Load() {
		t.Fatalf("all services should be stopped")
	}
	if !closed {
		t.Fatalf("closer should run after stop")
	}
}

func TestRunnerPropagatesServiceError(t *testing.T) {
	failing := &fakeService{name: "broken", startErr: errors.New("listen failed")}
	healthy := &fakeService{name: "healthy"}

	err := NewRunner(failing, healthy).Run(context.Background(), time.Second, nil)
	if err == nil || !strings.Contains(err.Error(), "broken: listen failed") {
		t.Fatalf("expected wrapped service error, got %v", err)
	}
	if !healthy.stopped.Load() {
		t.Fatalf("healthy service should be stopped after peer failure")
	}
}

func TestRunnerRequiresServices(t *testing.T) {
	if err := NewRunner().Run(context.Background(), time.Second, nil); err == nil {
		t.Fatalf("expected error without services")
	}
}

func TestHTTPServiceGzip(t *testing.T) {
	body := strings.Repeat("storedesk ", 200)
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(body))
	})

	svc := NewHTTPService(":0", handler, true)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	svc.Handler().ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip encoding, headers=%v", w.Header())
	}

	plain := NewHTTPService(":0", handler, false)
	w = httptest.NewRecorder()
	plain.Handler().ServeHTTP(w, req)
	if w.Header().Get("Content-Encoding") != "" || w.Body.String() != body {
		t.Fatalf("plain service should not compress")
	}
}

func TestNormalizeOptions(t *testing.T) {
	opts := normalizeOptions(Options{})
	if opts.Mode != ModeAll || opts.ShutdownTimeout != 10*time.Second || opts.Logger == nil {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
	if isValidMode("both") || !isValidMode(ModeWorker) {
		t.Fatalf("unexpected mode validation")
	}
}
