package calculator

import (
	"github.com/moznion/go-optional"

	"StockLens/internal/model"
)

// undefinedSeries returns a series aligned with prices where every value is None.
func undefinedSeries(name string, prices *model.PriceSeries) model.IndicatorSeries {
	points := make([]model.Point, len(prices.Bars))
	for i, b := range prices.Bars {
		points[i] = model.Point{Time: b.Time, Value: optional.None[float64]()}
	}
	return model.IndicatorSeries{Name: name, Points: points}
}
