package scraper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPollUntil_ReturnsValueOnceReady(t *testing.T) {
	// Arrange
	var calls int32
	check := func(ctx context.Context) (string, bool, error) {
		if atomic.AddInt32(&calls, 1) < 3 {
			return "", false, nil
		}
		return "ready", true, nil
	}

	// Act
	got, err := pollUntil(context.Background(), time.Millisecond, time.Second, check)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ready" {
		t.Errorf("value: got %q, want %q", got, "ready")
	}
	if calls != 3 {
		t.Errorf("calls: got %d, want 3", calls)
	}
}

func TestPollUntil_TimesOut(t *testing.T) {
	// Arrange
	check := func(ctx context.Context) (int, bool, error) { return 0, false, nil }

	// Act
	start := time.Now()
	_, err := pollUntil(context.Background(), 5*time.Millisecond, 30*time.Millisecond, check)

	// Assert
	if !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("error: got %v, want ErrPollTimeout", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("poll ran for %v, expected it to stop near its timeout", elapsed)
	}
}

func TestPollUntil_ParentCancellationIsNotATimeout(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	check := func(context.Context) (bool, bool, error) {
		cancel()
		return false, false, nil
	}

	// Act
	_, err := pollUntil(ctx, 5*time.Millisecond, time.Second, check)

	// Assert
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error: got %v, want context.Canceled", err)
	}
}

func TestPollUntil_ProbeErrorStopsImmediately(t *testing.T) {
	// Arrange
	boom := errors.New("boom")
	var calls int32
	check := func(context.Context) (int, bool, error) {
		atomic.AddInt32(&calls, 1)
		return 0, false, boom
	}

	// Act
	_, err := pollUntil(context.Background(), time.Millisecond, time.Second, check)

	// Assert
	if !errors.Is(err, boom) {
		t.Errorf("error: got %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Errorf("calls: got %d, want 1", calls)
	}
}

func TestPollUntil_AlreadyCanceled(t *testing.T) {
	// Arrange
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	called := false

	// Act
	_, err := pollUntil(ctx, time.Millisecond, time.Second, func(context.Context) (int, bool, error) {
		called = true
		return 1, true, nil
	})

	// Assert
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error: got %v, want context.Canceled", err)
	}
	if called {
		t.Error("check should not run on a canceled context")
	}
}
