package share

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestWindow_ExpiresExactlyOnce(t *testing.T) {
	w := NewWindowController(20 * time.Millisecond)
	owner := uuid.New()

	var fired atomic.Int32
	w.Start(owner, Share{Token: "t"}, func() { fired.Add(1) })

	time.Sleep(80 * time.Millisecond)

	if got := fired.Load(); got != 1 {
		t.Errorf("expected onExpire to fire exactly once, fired %d times", got)
	}
	if _, ok := w.Active(owner); ok {
		t.Error("expected no active share after expiry")
	}
}

func TestWindow_RestartCancelsPriorTimer(t *testing.T) {
	w := NewWindowController(40 * time.Millisecond)
	owner := uuid.New()

	var firstFired, secondFired atomic.Int32
	w.Start(owner, Share{Token: "first"}, func() { firstFired.Add(1) })
	time.Sleep(10 * time.Millisecond)
	w.Start(owner, Share{Token: "second"}, func() { secondFired.Add(1) })

	share, ok := w.Active(owner)
	if !ok || share.Token != "second" {
		t.Fatalf("expected second share active, got %+v ok=%v", share, ok)
	}

	time.Sleep(100 * time.Millisecond)

	if got := firstFired.Load(); got != 0 {
		t.Errorf("cancelled window fired %d times, want 0", got)
	}
	if got := secondFired.Load(); got != 1 {
		t.Errorf("replacement window fired %d times, want 1", got)
	}
}

func TestWindow_CancelHasNoSideEffect(t *testing.T) {
	w := NewWindowController(20 * time.Millisecond)
	owner := uuid.New()

	var fired atomic.Int32
	w.Start(owner, Share{Token: "t"}, func() { fired.Add(1) })
	w.Cancel(owner)

	if _, ok := w.Active(owner); ok {
		t.Error("expected no active share after cancel")
	}

	time.Sleep(60 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Errorf("cancelled window fired %d times, want 0", got)
	}
}

func TestWindow_PerOwnerIsolation(t *testing.T) {
	w := NewWindowController(time.Hour)
	a, b := uuid.New(), uuid.New()

	w.Start(a, Share{Token: "a"}, nil)
	w.Start(b, Share{Token: "b"}, nil)
	w.Cancel(a)

	if _, ok := w.Active(a); ok {
		t.Error("expected owner a cancelled")
	}
	if share, ok := w.Active(b); !ok || share.Token != "b" {
		t.Error("expected owner b unaffected")
	}
}
