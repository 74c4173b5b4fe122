package passthrough

import (
	"testing"
	"time"
)

func TestWindowRecordContains(t *testing.T) {
	w := newTimestampWindow(maxDecodeHistory)

	w.Record(100 * time.Microsecond)
	if !w.Contains(100 * time.Microsecond) {
		t.Fatal("recorded timestamp not found")
	}
	if w.Contains(200 * time.Microsecond) {
		t.Fatal("unrecorded timestamp found")
	}
}

func TestWindowEvictsOldest(t *testing.T) {
	w := newTimestampWindow(maxDecodeHistory)

	for i := 1; i <= maxDecodeHistory+1; i++ {
		w.Record(time.Duration(i) * time.Microsecond)
	}

	if w.Len() != maxDecodeHistory {
		t.Fatalf("Len = %d, want %d", w.Len(), maxDecodeHistory)
	}
	if w.Contains(1 * time.Microsecond) {
		t.Error("oldest timestamp still present after eviction")
	}
	for i := 2; i <= maxDecodeHistory+1; i++ {
		if !w.Contains(time.Duration(i) * time.Microsecond) {
			t.Errorf("timestamp %d evicted too early", i)
		}
	}
}

func TestWindowClear(t *testing.T) {
	w := newTimestampWindow(maxDecodeHistory)
	w.Record(1 * time.Microsecond)
	w.Record(2 * time.Microsecond)

	w.Clear()
	if w.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", w.Len())
	}
	if w.Contains(1 * time.Microsecond) {
		t.Error("cleared timestamp still present")
	}
}
