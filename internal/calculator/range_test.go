package calculator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testBands() Bands[string] {
	return Bands[string]{
		Points: []Band[string]{
			{Upper: 10, From: 0, To: 0, Tag: "floor"},
			{Upper: 20, From: 0, To: 50, Tag: "rise"},
			{Upper: 20, From: 50, To: 60, Tag: "empty"},
			{Upper: 40, From: 60, To: 100, Tag: "top"},
		},
		Overflow:    100,
		OverflowTag: "over",
	}
}

func TestBandsLocate(t *testing.T) {
	tests := []struct {
		x        float64
		value    float64
		tag      string
		overflow bool
	}{
		{-5, 0, "floor", false},
		{10, 0, "floor", false},
		{15, 25, "rise", false},
		{20, 50, "rise", false},
		{30, 80, "top", false},
		{40, 100, "top", false},
		{41, 100, "over", true},
	}
	b := testBands()
	for _, tt := range tests {
		pos := b.Locate(tt.x)
		assert.InDelta(t, tt.value, pos.Value, 1e-9, "x=%v", tt.x)
		assert.Equal(t, tt.tag, pos.Tag, "x=%v", tt.x)
		assert.Equal(t, tt.overflow, pos.Overflow, "x=%v", tt.x)
	}
}

func TestBandsLocate_NarrowBandUsesUnitWidth(t *testing.T) {
	b := Bands[string]{
		Points: []Band[string]{
			{Upper: 100, From: 0, To: 0},
			{Upper: 100.5, From: 0, To: 10},
		},
		Overflow: 10,
	}
	pos := b.Locate(100.25)
	assert.InDelta(t, 2.5, pos.Value, 1e-9)
}

// assertMonotone sweeps [lo, hi] and fails on any decrease.
func assertMonotone[T any](t *testing.T, b Bands[T], lo, hi, step float64) {
	t.Helper()
	prev := b.Locate(lo).Value
	for x := lo + step; x <= hi; x += step {
		v := b.Locate(x).Value
		if v < prev {
			t.Fatalf("decrease at x=%v: %v -> %v", x, prev, v)
		}
		prev = v
	}
}

func TestBandsLocate_Monotone(t *testing.T) {
	assertMonotone(t, testBands(), -10, 60, 0.25)
}
