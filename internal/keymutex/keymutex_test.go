package keymutex

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestWithLock_SameKeySerializes(t *testing.T) {
	km := New()

	const goroutines = 16
	var (
		wg      sync.WaitGroup
		active  int
		max     int
		counter int
		mu      sync.Mutex
	)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = km.WithLock("cart-1", func() error {
				mu.Lock()
				active++
				if active > max {
					max = active
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				counter++
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	if max != 1 {
		t.Fatalf("expected at most 1 concurrent holder, observed %d", max)
	}
	if counter != goroutines {
		t.Fatalf("expected %d completed sections, got %d", goroutines, counter)
	}
}

func TestWithLock_DifferentKeysDoNotBlock(t *testing.T) {
	km := New()

	releaseA := make(chan struct{})
	holdingA := make(chan struct{})
	go func() {
		_ = km.WithLock("a", func() error {
			close(holdingA)
			<-releaseA
			return nil
		})
	}()
	<-holdingA

	done := make(chan struct{})
	go func() {
		_ = km.WithLock("b", func() error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on different key blocked")
	}
	close(releaseA)
}

func TestWithLock_PropagatesErrorAndReleases(t *testing.T) {
	km := New()
	sentinel := errors.New("boom")

	if err := km.WithLock("cart-1", func() error { return sentinel }); !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel error, got %v", err)
	}

	// После ошибки lock освобождён и взять его можно немедленно.
	done := make(chan struct{})
	go func() {
		_ = km.WithLock("cart-1", func() error { return nil })
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock was not released after error")
	}
}

func TestLock_EntryRemovedWhenIdle(t *testing.T) {
	km := New()

	unlock := km.Lock("cart-1")
	if got := km.Len(); got != 1 {
		t.Fatalf("expected 1 active key, got %d", got)
	}
	unlock()

	if got := km.Len(); got != 0 {
		t.Fatalf("expected empty map after release, got %d keys", got)
	}
}

func TestLock_UnlockIsIdempotent(t *testing.T) {
	km := New()

	unlock := km.Lock("cart-1")
	unlock()
	unlock() // повторный вызов не паникует и не ломает счётчик

	if got := km.Len(); got != 0 {
		t.Fatalf("expected empty map, got %d keys", got)
	}
}
