package main

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestWithPanicGuardRecovers(t *testing.T) {
	var called atomic.Bool
	withPanicGuard("test.guard", func(any) {
		called.Store(true)
	}, func() {
		panic("boom")
	})
	if !called.Load() {
		t.Fatalf("panic callback was not called")
	}
}

func TestWithPanicGuardNoPanic(t *testing.T) {
	var called atomic.Bool
	withPanicGuard("test.guard.no_panic", func(any) {
		called.Store(true)
	}, func() {})
	if called.Load() {
		t.Fatalf("panic callback should not be called")
	}
}

func TestSafeGoRecoversPanic(t *testing.T) {
	done := make(chan struct{})
	safeGo("test.safe_go.panic", func() {
		defer close(done)
		panic("boom")
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("safeGo goroutine did not finish")
	}
}

func TestNilAppSafeGoFallsBack(t *testing.T) {
	var a *nollApp
	done := make(chan struct{})
	a.safeGo("test.nil_app", func() {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("safeGo goroutine did not run")
	}
}

func TestCancelActiveTracksLatestRun(t *testing.T) {
	a := &nollApp{}
	var first, second atomic.Bool
	id1 := a.setActiveCancel(func() { first.Store(true) })
	id2 := a.setActiveCancel(func() { second.Store(true) })
	if !first.Load() {
		t.Fatalf("starting a new run must cancel the previous one")
	}
	if a.isCurrentRun(id1) || !a.isCurrentRun(id2) {
		t.Fatalf("unexpected current run tracking")
	}
	a.clearActiveCancel(id1)
	a.cancelActive("test")
	if !second.Load() {
		t.Fatalf("cancelActive did not cancel the latest run")
	}
}
