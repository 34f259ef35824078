package utils

import (
	"testing"
	"time"
)

func TestPacerDelayWithinBounds(t *testing.T) {
	p := NewPacer(100*time.Millisecond, 300*time.Millisecond)

	for i := 0; i < 100; i++ {
		d := p.Delay()
		if d < 100*time.Millisecond || d > 300*time.Millisecond {
			t.Fatalf("delay %v outside [100ms, 300ms]", d)
		}
	}
}

func TestPacerDegenerateBounds(t *testing.T) {
	p := NewPacer(50*time.Millisecond, 50*time.Millisecond)
	if d := p.Delay(); d != 50*time.Millisecond {
		t.Errorf("delay = %v; want 50ms", d)
	}

	// max below min collapses to min
	p = NewPacer(80*time.Millisecond, 10*time.Millisecond)
	if d := p.Delay(); d != 80*time.Millisecond {
		t.Errorf("delay = %v; want 80ms", d)
	}
}

func TestURLSetAdd(t *testing.T) {
	s := NewURLSet()

	if !s.Add("https://example.com/p/1") {
		t.Error("first Add should return true")
	}
	if s.Add("https://example.com/p/1") {
		t.Error("second Add of same URL should return false")
	}
	if !s.Contains("https://example.com/p/1") {
		t.Error("Contains should report added URL")
	}
	if s.Size() != 1 {
		t.Errorf("Size = %d; want 1", s.Size())
	}
}
