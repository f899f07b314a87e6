package model

import (
	"time"

	"github.com/moznion/go-optional"
)

// Point is one dated indicator value. Value is None during warm-up.
type Point struct {
	Time  time.Time                `json:"time"`
	Value optional.Option[float64] `json:"value"`
}

// IndicatorSeries is aligned bar-for-bar with the PriceSeries it was computed from.
type IndicatorSeries struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Len returns the number of points, defined or not.
func (s IndicatorSeries) Len() int { return len(s.Points) }

// At returns the value at index i, None when out of range.
func (s IndicatorSeries) At(i int) optional.Option[float64] {
	if i < 0 || i >= len(s.Points) {
		return optional.None[float64]()
	}
	return s.Points[i].Value
}

// Latest returns the value at the last index.
func (s IndicatorSeries) Latest() optional.Option[float64] {
	return s.At(len(s.Points) - 1)
}

// Defined counts points that carry a value.
func (s IndicatorSeries) Defined() int {
	n := 0
	for _, p := range s.Points {
		if p.Value.IsSome() {
			n++
		}
	}
	return n
}
