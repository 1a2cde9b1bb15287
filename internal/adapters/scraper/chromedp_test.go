package scraper

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"postgrab/internal/domain"
)

type ctxKey struct{}

// fakeStarts counts browser starts and teardowns without launching Chrome.
type fakeStarts struct {
	started  int32
	stopped  int32
	startErr error
}

func (f *fakeStarts) start(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if f.startErr != nil {
		return nil, nil, f.startErr
	}
	atomic.AddInt32(&f.started, 1)
	sessionCtx, cancel := context.WithCancel(context.WithValue(ctx, ctxKey{}, "session"))
	return sessionCtx, func() {
		cancel()
		atomic.AddInt32(&f.stopped, 1)
	}, nil
}

func newTestLauncher(maxSessions int, starts *fakeStarts) *Launcher {
	return &Launcher{
		sessions: make(chan struct{}, maxSessions),
		start:    starts.start,
	}
}

func TestWithSession_Backpressure_RespectsMaxSessions(t *testing.T) {
	for _, maxSessions := range []int{1, 2} {
		// Arrange
		launcher := newTestLauncher(maxSessions, &fakeStarts{})
		var current, peak int32
		var wg sync.WaitGroup

		// Act
		for i := 0; i < 6; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = launcher.WithSession(context.Background(), func(ctx context.Context) error {
					n := atomic.AddInt32(&current, 1)
					for {
						p := atomic.LoadInt32(&peak)
						if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
							break
						}
					}
					time.Sleep(10 * time.Millisecond)
					atomic.AddInt32(&current, -1)
					return nil
				})
			}()
		}
		wg.Wait()

		// Assert
		if peak > int32(maxSessions) {
			t.Errorf("max %d: peak concurrent sessions %d", maxSessions, peak)
		}
	}
}

func TestWithSession_TearsDownOnEveryPath(t *testing.T) {
	// Arrange
	starts := &fakeStarts{}
	launcher := newTestLauncher(1, starts)
	boom := errors.New("boom")

	// Act
	_ = launcher.WithSession(context.Background(), func(context.Context) error { return nil })
	errRet := launcher.WithSession(context.Background(), func(context.Context) error { return boom })
	func() {
		defer func() { _ = recover() }()
		_ = launcher.WithSession(context.Background(), func(context.Context) error { panic("crash") })
	}()

	// Assert
	if !errors.Is(errRet, boom) {
		t.Errorf("error: got %v, want %v", errRet, boom)
	}
	if starts.started != 3 || starts.stopped != 3 {
		t.Errorf("started %d, stopped %d, want 3 and 3", starts.started, starts.stopped)
	}

	done := make(chan struct{})
	go func() {
		_ = launcher.WithSession(context.Background(), func(context.Context) error { return nil })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("session slot was not released after panic")
	}
}

func TestWithSession_ContextCanceled_WhileWaitingForSlot(t *testing.T) {
	// Arrange
	launcher := newTestLauncher(1, &fakeStarts{})
	release := make(chan struct{})
	holding := make(chan struct{})
	go func() {
		_ = launcher.WithSession(context.Background(), func(context.Context) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	executed := false

	// Act
	err := launcher.WithSession(ctx, func(context.Context) error {
		executed = true
		return nil
	})

	// Assert
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error: got %v, want context.DeadlineExceeded", err)
	}
	if executed {
		t.Error("function must not run when the slot was never acquired")
	}
}

func TestWithSession_StartFailure_IsUpstream(t *testing.T) {
	// Arrange
	launcher := newTestLauncher(1, &fakeStarts{startErr: errors.New("exec: chrome not found")})

	// Act
	err := launcher.WithSession(context.Background(), func(context.Context) error { return nil })

	// Assert
	if !errors.Is(err, domain.ErrUpstream) {
		t.Errorf("error: got %v, want ErrUpstream", err)
	}
}

func TestWithSession_SessionContextPassedToFunction(t *testing.T) {
	// Arrange
	launcher := newTestLauncher(1, &fakeStarts{})
	var got any

	// Act
	_ = launcher.WithSession(context.Background(), func(ctx context.Context) error {
		got = ctx.Value(ctxKey{})
		return nil
	})

	// Assert
	if got != "session" {
		t.Errorf("session context value: got %v, want %q", got, "session")
	}
}

func TestNewLauncher_ClampsMaxSessions(t *testing.T) {
	// Act
	launcher := NewLauncher(LauncherOptions{MaxSessions: 0})

	// Assert
	if cap(launcher.sessions) != 1 {
		t.Errorf("capacity: got %d, want 1", cap(launcher.sessions))
	}
	if launcher.start == nil {
		t.Error("expected a start function")
	}
}
