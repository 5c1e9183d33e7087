package idgen

import (
	"errors"
	"testing"
	"time"
)

type MockClock struct {
	CurrentTime int64
}

func (m *MockClock) Now() int64 {
	return m.CurrentTime
}

func TestSnowflake_Next(t *testing.T) {
	clock := &MockClock{CurrentTime: Epoch + 1000}
	sf, err := New(1, clock)
	if err != nil {
		t.Fatalf("Failed to create Snowflake: %v", err)
	}

	id1, err := sf.Next()
	if err != nil {
		t.Fatalf("Failed to generate ID: %v", err)
	}

	id2, err := sf.Next()
	if err != nil {
		t.Fatalf("Failed to generate ID: %v", err)
	}

	if id1 == id2 {
		t.Errorf("IDs must be unique")
	}

	if id1 >= id2 {
		t.Errorf("IDs must be monotonic increasing")
	}

	clock.CurrentTime++
	id3, err := sf.Next()
	if err != nil {
		t.Fatalf("Failed to generate ID: %v", err)
	}
	if id3 <= id2 {
		t.Errorf("IDs must increase across milliseconds")
	}
}

func TestSnowflake_NodeIDTooLarge(t *testing.T) {
	_, err := New(1024, nil)
	if err != ErrNodeIDTooLarge {
		t.Errorf("Expected ErrNodeIDTooLarge, got %v", err)
	}
}

func TestSnowflake_ClockMovedBack(t *testing.T) {
	clock := &MockClock{CurrentTime: Epoch + 2000}
	sf, _ := New(1, clock)

	_, _ = sf.Next()

	clock.CurrentTime = Epoch + 1000
	_, err := sf.Next()

	if !errors.Is(err, ErrClockMovedBack) {
		t.Errorf("Expected ErrClockMovedBack, got %v", err)
	}
}

func TestSnowflake_ToleratesSmallDrift(t *testing.T) {
	clock := &MockClock{CurrentTime: Epoch + 2000}
	sf, _ := New(1, clock)

	id1, _ := sf.Next()
	clock.CurrentTime -= 10
	id2, err := sf.Next()
	if err != nil {
		t.Fatalf("small drift should not fail: %v", err)
	}
	if id2 <= id1 {
		t.Errorf("IDs must keep increasing across a small backward step")
	}
}

func TestSnowflake_CounterOverflowBorrowsNextMillisecond(t *testing.T) {
	clock := &MockClock{CurrentTime: Epoch + 3000}
	sf, _ := New(1, clock)

	var last int64
	for i := 0; i <= maxSequence+1; i++ {
		id, err := sf.Next()
		if err != nil {
			t.Fatalf("Next failed at %d: %v", i, err)
		}
		if id <= last {
			t.Fatalf("IDs must be strictly increasing, got %d after %d", id, last)
		}
		last = id
	}
	if got := last >> timestampShift; got != 3001 {
		t.Errorf("expected the borrowed millisecond 3001, got %d", got)
	}
}

func TestSnowflake_Concurrency(t *testing.T) {
	sf, _ := New(1, &SystemClock{})
	numGoroutines := 50
	numIDs := 1000
	ids := make(chan int64, numGoroutines*numIDs)

	for i := 0; i < numGoroutines; i++ {
		go func() {
			for j := 0; j < numIDs; j++ {
				id, err := sf.Next()
				if err != nil {
					t.Errorf("Concurrent generation failed: %v", err)
				}
				ids <- id
			}
		}()
	}

	uniqueMap := make(map[int64]bool)
	expectedCount := numGoroutines * numIDs
	for i := 0; i < expectedCount; i++ {
		select {
		case id := <-ids:
			if uniqueMap[id] {
				t.Errorf("Duplicate ID generated: %d", id)
			}
			uniqueMap[id] = true
		case <-time.After(5 * time.Second):
			t.Fatalf("Timeout waiting for IDs")
		}
	}
}
