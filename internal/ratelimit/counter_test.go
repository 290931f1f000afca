package ratelimit

import (
	"testing"
	"time"
)

func TestCounterThrottles(t *testing.T) {
	c := NewCounter(time.Hour)
	if total, ok := c.Inc(); !ok || total != 1 {
		t.Fatalf("first event should log: total=%d ok=%v", total, ok)
	}
	for i := 0; i < 3; i++ {
		if _, ok := c.Inc(); ok {
			t.Fatalf("event %d should be throttled", i+2)
		}
	}
	if c.Total() != 4 {
		t.Fatalf("expected total 4, got %d", c.Total())
	}
}

func TestCounterWithoutIntervalAlwaysLogs(t *testing.T) {
	c := NewCounter(0)
	for i := 0; i < 3; i++ {
		if _, ok := c.Inc(); !ok {
			t.Fatalf("event %d should log", i+1)
		}
	}
}

func TestNilCounter(t *testing.T) {
	var c *Counter
	if total, ok := c.Inc(); ok || total != 0 {
		t.Fatalf("nil counter should never admit")
	}
	if c.Total() != 0 {
		t.Fatalf("nil counter total should be 0")
	}
}
