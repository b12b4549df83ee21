package layout

import (
	"testing"
)

func TestRegistryUnmeasuredIsAbsent(t *testing.T) {
	r := NewRegistry(5)

	if _, ok := r.Frame(2); ok {
		t.Error("unmeasured item reported a frame")
	}
	if r.MeasuredCount() != 0 {
		t.Errorf("MeasuredCount = %d, want 0", r.MeasuredCount())
	}
}

func TestRegistryZeroLengthIsMeasured(t *testing.T) {
	r := NewRegistry(3)
	r.SetLength(1, 0)

	frame, ok := r.Frame(1)
	if !ok {
		t.Fatal("zero-length measurement reported absent")
	}
	if frame.Length != 0 {
		t.Errorf("Length = %v, want 0", frame.Length)
	}
	if r.MeasuredCount() != 1 {
		t.Errorf("MeasuredCount = %d, want 1", r.MeasuredCount())
	}
}

func TestRegistryOffsets(t *testing.T) {
	r := NewRegistry(4)
	r.SetLength(0, 10)
	r.SetLength(1, 20)
	r.SetLength(2, 5)
	r.SetLength(3, 15)

	tests := []struct {
		index      int
		wantOffset float64
		wantLength float64
	}{
		{0, 0, 10},
		{1, 10, 20},
		{2, 30, 5},
		{3, 35, 15},
	}

	for _, tt := range tests {
		frame, ok := r.Frame(tt.index)
		if !ok {
			t.Fatalf("Frame(%d) absent", tt.index)
		}
		if frame.Offset != tt.wantOffset || frame.Length != tt.wantLength {
			t.Errorf("Frame(%d) = {%v, %v}, want {%v, %v}",
				tt.index, frame.Offset, frame.Length, tt.wantOffset, tt.wantLength)
		}
	}

	if r.TotalLength() != 50 {
		t.Errorf("TotalLength = %v, want 50", r.TotalLength())
	}
}

func TestRegistryUnmeasuredGapDoesNotShiftFollowers(t *testing.T) {
	r := NewRegistry(3)
	r.SetLength(0, 10)
	r.SetLength(2, 10)

	// Item 1 is unmeasured and occupies no space yet.
	frame, ok := r.Frame(2)
	if !ok {
		t.Fatal("Frame(2) absent")
	}
	if frame.Offset != 10 {
		t.Errorf("Frame(2).Offset = %v, want 10", frame.Offset)
	}

	// Measuring the gap shifts the follower.
	r.SetLength(1, 25)
	frame, _ = r.Frame(2)
	if frame.Offset != 35 {
		t.Errorf("Frame(2).Offset after measuring gap = %v, want 35", frame.Offset)
	}
}

func TestRegistryRemeasure(t *testing.T) {
	r := NewRegistry(2)
	r.SetLength(0, 10)
	r.SetLength(1, 10)

	r.SetLength(0, 30)
	frame, _ := r.Frame(1)
	if frame.Offset != 30 {
		t.Errorf("Frame(1).Offset after remeasure = %v, want 30", frame.Offset)
	}
}

func TestRegistryInvalidate(t *testing.T) {
	r := NewRegistry(2)
	r.SetLength(0, 10)
	r.SetLength(1, 10)

	r.Invalidate(0)
	if _, ok := r.Frame(0); ok {
		t.Error("invalidated item still reported a frame")
	}
	frame, _ := r.Frame(1)
	if frame.Offset != 0 {
		t.Errorf("Frame(1).Offset after invalidation = %v, want 0", frame.Offset)
	}
}

func TestRegistryResize(t *testing.T) {
	r := NewRegistry(2)
	r.SetLength(0, 10)
	r.SetLength(1, 20)

	r.Resize(4)
	if r.Len() != 4 {
		t.Errorf("Len = %d, want 4", r.Len())
	}
	if _, ok := r.Frame(3); ok {
		t.Error("new slot should start unmeasured")
	}
	frame, ok := r.Frame(1)
	if !ok || frame.Length != 20 {
		t.Error("existing measurement lost on grow")
	}

	r.Resize(1)
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
	if _, ok := r.Frame(1); ok {
		t.Error("truncated index still reported a frame")
	}
}

func TestRegistryIgnoresBadInput(t *testing.T) {
	r := NewRegistry(2)
	r.SetLength(-1, 10)
	r.SetLength(5, 10)
	r.SetLength(0, -3)
	r.Invalidate(9)

	if r.MeasuredCount() != 0 {
		t.Errorf("MeasuredCount = %d, want 0", r.MeasuredCount())
	}

	empty := NewRegistry(-4)
	if empty.Len() != 0 {
		t.Errorf("Len = %d, want 0", empty.Len())
	}
}
