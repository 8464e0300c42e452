package lock

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLocalSerializes(t *testing.T) {
	l := NewLocal()
	ctx := context.Background()

	var mu sync.Mutex
	inside, maxInside := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "MainPurch")
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	if maxInside != 1 {
		t.Errorf("max holders = %d, want 1", maxInside)
	}
}

func TestLocalHonoursContext(t *testing.T) {
	l := NewLocal()
	unlock, err := l.Lock(context.Background(), "AllPurch")
	if err != nil {
		t.Fatal(err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "AllPurch"); err == nil {
		t.Fatal("second Lock() should time out")
	}
	other, err := l.Lock(context.Background(), "OtherPurch")
	if err != nil {
		t.Fatalf("different names must not block each other: %v", err)
	}
	other()
}

func TestLocalUnlockIsIdempotent(t *testing.T) {
	l := NewLocal()
	unlock, _ := l.Lock(context.Background(), "x")
	unlock()
	unlock()
	again, err := l.Lock(context.Background(), "x")
	if err != nil {
		t.Fatal(err)
	}
	again()
}

func TestNewRedisFailsWithoutServer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewRedis(ctx, "127.0.0.1:1", "", 0, time.Second); err == nil {
		t.Error("NewRedis() against a closed port should fail")
	}
}
