package cache

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

func TestUniqueSorted(t *testing.T) {
	got := uniqueSorted([]string{"tester:b", "product:z", "tester:b", "product:a"})
	want := []string{"product:a", "product:z", "tester:b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestLocalLocker_SerializesSameKey(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	var (
		mu      sync.Mutex
		inside  int
		maxSeen int
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "tester:1", "product:1")
			if err != nil {
				t.Errorf("lock failed: %v", err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(2 * time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()

	if maxSeen != 1 {
		t.Errorf("expected at most 1 holder at a time, saw %d", maxSeen)
	}
	if len(l.locks) != 0 {
		t.Errorf("expected lock table to be empty, has %d entries", len(l.locks))
	}
}

func TestLocalLocker_HonorsContext(t *testing.T) {
	l := NewLocalLocker()
	unlock, err := l.Lock(context.Background(), "tester:1")
	if err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "product:9", "tester:1"); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	// product:9 must have been released after the failed attempt.
	u2, err := l.Lock(context.Background(), "product:9")
	if err != nil {
		t.Fatalf("expected product:9 to be free, got %v", err)
	}
	u2()
}

func TestLocalLocker_DisjointKeysDoNotBlock(t *testing.T) {
	l := NewLocalLocker()
	u1, err := l.Lock(context.Background(), "tester:1")
	if err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	defer u1()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	u2, err := l.Lock(ctx, "tester:2")
	if err != nil {
		t.Fatalf("expected disjoint key to be free, got %v", err)
	}
	u2()
}
