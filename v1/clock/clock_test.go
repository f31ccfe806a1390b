package clock

import (
	"testing"
	"time"
)

func TestSystemMovesForward(t *testing.T) {
	c := System()
	start := c.Now()
	time.Sleep(5 * time.Millisecond)
	if c.Since(start) <= 0 {
		t.Fatal("system clock did not advance")
	}
}

func TestManualAdvance(t *testing.T) {
	start := time.Now()
	c := NewManual(start)
	if got := c.Since(start); got != 0 {
		t.Fatalf("expected zero elapsed, got %v", got)
	}
	c.Advance(250 * time.Millisecond)
	if got := c.Since(start); got != 250*time.Millisecond {
		t.Fatalf("expected 250ms elapsed, got %v", got)
	}
	if !c.Now().Equal(start.Add(250 * time.Millisecond)) {
		t.Fatal("Now does not reflect advanced time")
	}
}
