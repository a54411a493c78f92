package calculator

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"

	"FareSentinel/internal/model"
	"FareSentinel/internal/money"
)

// UnavailableLabel is returned when no usable distribution exists.
const UnavailableLabel = "price data unavailable"

// ContextEstimator places per-person prices within a PriceDistribution.
type ContextEstimator struct {
	Currency string
}

// NewContextEstimator returns an estimator labelling amounts in currency.
func NewContextEstimator(currency string) *ContextEstimator {
	if currency == "" {
		currency = "AUD"
	}
	return &ContextEstimator{Currency: currency}
}

// percentileBands builds the five-point scale for dist.
func percentileBands(dist *model.PriceDistribution) Bands[model.Rating] {
	return Bands[model.Rating]{
		Points: []Band[model.Rating]{
			{Upper: dist.Min, From: 10, To: 10, Tag: model.RatingFavorable},
			{Upper: dist.Low, From: 25, To: 25, Tag: model.RatingFavorable},
			{Upper: dist.Median, From: 25, To: 50, Tag: model.RatingFavorable},
			{Upper: dist.High, From: 50, To: 75, Tag: model.RatingNeutral},
			{Upper: dist.Max, From: 75, To: 100, Tag: model.RatingUnfavorable},
		},
		Overflow:    100,
		OverflowTag: model.RatingUnfavorable,
	}
}

// Estimate returns the price context of pricePP against dist. A nil
// distribution or one without a median is reported as unavailable.
func (e *ContextEstimator) Estimate(pricePP float64, dist *model.PriceDistribution) (model.PriceContext, error) {
	if math.IsNaN(pricePP) || math.IsInf(pricePP, 0) || pricePP < 0 {
		return model.PriceContext{}, model.NewInputError("price_per_person", pricePP, "must be a finite non-negative number")
	}
	if dist == nil || dist.Median == 0 {
		return model.PriceContext{Currency: e.Currency, Description: UnavailableLabel}, nil
	}
	if err := validateDistribution(dist); err != nil {
		return model.PriceContext{}, err
	}

	pos := percentileBands(dist).Locate(pricePP)

	label := ">95th"
	if !pos.Overflow {
		label = "~" + humanize.Ordinal(int(pos.Value))
	}

	vs := pricePP - dist.Median
	return model.PriceContext{
		Available:   true,
		Percentile:  pos.Value,
		Label:       label,
		Rating:      pos.Tag,
		VsMedian:    vs,
		Currency:    e.Currency,
		Description: fmt.Sprintf("%s percentile · %s", label, e.medianNote(vs)),
	}, nil
}

// Label is Estimate reduced to its description. Invalid prices render as
// unavailable.
func (e *ContextEstimator) Label(pricePP float64, dist *model.PriceDistribution) string {
	pc, err := e.Estimate(pricePP, dist)
	if err != nil {
		return UnavailableLabel
	}
	return pc.Description
}

func (e *ContextEstimator) medianNote(vs float64) string {
	switch {
	case money.Round(vs) > 0:
		return fmt.Sprintf("%s above median", money.Format(e.Currency, vs))
	case money.Round(vs) < 0:
		return fmt.Sprintf("%s below median", money.Format(e.Currency, -vs))
	default:
		return "at median"
	}
}

func validateDistribution(d *model.PriceDistribution) error {
	fields := []struct {
		name string
		v    float64
	}{
		{"distribution.min", d.Min},
		{"distribution.low", d.Low},
		{"distribution.median", d.Median},
		{"distribution.high", d.High},
		{"distribution.max", d.Max},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return model.NewInputError(f.name, f.v, "must be finite")
		}
	}
	return nil
}
