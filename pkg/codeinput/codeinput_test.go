package codeinput

import (
	"errors"
	"sync"
	"testing"
)

func TestManual(t *testing.T) {
	got, err := Manual("  ab12cd34 \n")
	if err != nil || got != "ab12cd34" {
		t.Fatalf("Manual = %q, %v", got, err)
	}
	for _, in := range []string{"", "   ", "\t\n"} {
		if _, err := Manual(in); !errors.Is(err, ErrEmptyCode) {
			t.Errorf("Manual(%q) err = %v, want ErrEmptyCode", in, err)
		}
	}
}

func TestScanLockAdmitsOnePayloadUntilReset(t *testing.T) {
	var lock ScanLock

	if _, ok := lock.Accept("   "); ok {
		t.Fatal("blank payload must not take the lock")
	}
	if lock.Locked() {
		t.Fatal("lock taken by blank payload")
	}

	code, ok := lock.Accept(" QR123456 ")
	if !ok || code != "QR123456" {
		t.Fatalf("first scan = %q, %v", code, ok)
	}
	if _, ok := lock.Accept("QR123456"); ok {
		t.Fatal("same code still in frame was accepted twice")
	}
	if _, ok := lock.Accept("OTHER999"); ok {
		t.Fatal("locked scanner accepted a new code")
	}

	lock.Reset()
	if _, ok := lock.Accept("OTHER999"); !ok {
		t.Fatal("scanner did not accept after reset")
	}
}

func TestScanLockConcurrentFrames(t *testing.T) {
	var lock ScanLock
	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := lock.Accept("SAMECODE"); ok {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if accepted != 1 {
		t.Fatalf("accepted %d frames, want 1", accepted)
	}
}
