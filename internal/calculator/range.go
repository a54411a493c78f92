package calculator

import "math"

// Band is one interval of a piecewise scale. It covers x in (previous band's
// Upper, Upper]; the first band covers everything up to its Upper.
// Inside the band the output moves linearly from From to To. A band with
// From == To is flat.
type Band[T any] struct {
	Upper float64
	From  float64
	To    float64
	Tag   T
}

// Bands is an ordered piecewise-linear scale with an overflow value for x
// above the last band.
type Bands[T any] struct {
	Points      []Band[T]
	Overflow    float64
	OverflowTag T
}

// Position is where a value landed on a Bands scale.
type Position[T any] struct {
	Value    float64
	Tag      T
	Band     int  // index into Points, len(Points) on overflow
	Overflow bool
	Flat     bool
}

// Locate places x on the scale. Bands whose width is below 1 use a width
// of 1 so degenerate control points never divide by zero.
func (b Bands[T]) Locate(x float64) Position[T] {
	for i, band := range b.Points {
		if x > band.Upper {
			continue
		}
		if i == 0 || band.From == band.To {
			return Position[T]{Value: band.From, Tag: band.Tag, Band: i, Flat: true}
		}
		lower := b.Points[i-1].Upper
		ratio := (x - lower) / math.Max(band.Upper-lower, 1)
		ratio = math.Max(0, math.Min(ratio, 1))
		return Position[T]{
			Value: band.From + ratio*(band.To-band.From),
			Tag:   band.Tag,
			Band:  i,
		}
	}
	return Position[T]{Value: b.Overflow, Tag: b.OverflowTag, Band: len(b.Points), Overflow: true, Flat: true}
}
