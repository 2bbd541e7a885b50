package timeline

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/texshare"
)

func TestCounter_InitialValue(t *testing.T) {
	c := New(5)
	if got := c.Value(); got != 5 {
		t.Errorf("Value() = %d, want 5", got)
	}
}

func TestCounter_SignalMonotonic(t *testing.T) {
	c := New(0)
	if err := c.Signal(3); err != nil {
		t.Fatalf("Signal(3): %v", err)
	}
	if got := c.Value(); got != 3 {
		t.Errorf("Value() = %d, want 3", got)
	}

	// Equal and smaller values are both rejected.
	if err := c.Signal(3); !errors.Is(err, texshare.ErrNonMonotonicSignal) {
		t.Errorf("Signal(3) again = %v, want ErrNonMonotonicSignal", err)
	}
	if err := c.Signal(1); !errors.Is(err, texshare.ErrNonMonotonicSignal) {
		t.Errorf("Signal(1) = %v, want ErrNonMonotonicSignal", err)
	}
	if got := c.Value(); got != 3 {
		t.Errorf("rejected signal must not move the counter: Value() = %d", got)
	}
}

func TestCounter_WaitAlreadyReached(t *testing.T) {
	c := New(10)
	if err := c.Wait(10, 0); err != nil {
		t.Errorf("Wait at target with zero timeout: %v", err)
	}
	if err := c.Wait(4, 0); err != nil {
		t.Errorf("Wait below target: %v", err)
	}
}

func TestCounter_WaitPollTimeout(t *testing.T) {
	c := New(0)
	err := c.Wait(1, 0)
	if !errors.Is(err, texshare.ErrTimeout) {
		t.Errorf("poll below target = %v, want ErrTimeout", err)
	}
}

func TestCounter_WaitTimeout(t *testing.T) {
	c := New(0)
	start := time.Now()
	err := c.Wait(1, 20*time.Millisecond)
	if !errors.Is(err, texshare.ErrTimeout) {
		t.Fatalf("Wait = %v, want ErrTimeout", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("Wait returned before the timeout elapsed")
	}
}

func TestCounter_WaitWakesOnSignal(t *testing.T) {
	c := New(0)
	done := make(chan error, 1)
	go func() {
		done <- c.Wait(7, 5*time.Second)
	}()

	time.Sleep(10 * time.Millisecond)
	if err := c.Signal(7); err != nil {
		t.Fatalf("Signal: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Wait after signal: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not wake")
	}
}

func TestCounter_WaitForever(t *testing.T) {
	c := New(0)
	done := make(chan error, 1)
	go func() {
		done <- c.Wait(2, texshare.WaitForever)
	}()

	// Two intermediate signals; the waiter must only wake at >= 2.
	time.Sleep(5 * time.Millisecond)
	if err := c.Signal(1); err != nil {
		t.Fatalf("Signal(1): %v", err)
	}
	select {
	case err := <-done:
		t.Fatalf("Wait woke below target: %v", err)
	case <-time.After(20 * time.Millisecond):
	}

	if err := c.Signal(2); err != nil {
		t.Fatalf("Signal(2): %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Wait: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Wait did not wake at target")
	}
}

func TestCounter_ConcurrentWaiters(t *testing.T) {
	c := New(0)
	const waiters = 8

	var wg sync.WaitGroup
	errs := make(chan error, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(target uint64) {
			defer wg.Done()
			errs <- c.Wait(target, 5*time.Second)
		}(uint64(i + 1))
	}

	for v := uint64(1); v <= waiters; v++ {
		if err := c.Signal(v); err != nil {
			t.Fatalf("Signal(%d): %v", v, err)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Errorf("waiter: %v", err)
		}
	}
}
