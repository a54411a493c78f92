package collector

import (
	"fmt"
	"sort"
	"strings"

	"FareSentinel/internal/calculator"
	"FareSentinel/internal/model"
	"FareSentinel/internal/money"
)

// Rules turns candidates into canonical offers, dropping those outside the
// tracked carriers, stop ceiling or program.
type Rules struct {
	Allowed    []string
	Preferred  string
	MaxStops   int
	Program    string
	Passengers int
}

func (r Rules) allowed(code string) bool {
	return model.HasCarrier(r.Allowed, code)
}

func (r Rules) party() int {
	if r.Passengers < 1 {
		return 1
	}
	return r.Passengers
}

// Cash converts c. ok is false when c is filtered out.
func (r Rules) Cash(c CashCandidate) (model.CashOffer, bool) {
	if len(c.Segments) == 0 || len(c.Segments) > r.MaxStops+1 {
		return model.CashOffer{}, false
	}

	seen := make(map[string]struct{}, len(c.Segments))
	codes := make([]string, 0, len(c.Segments))
	flights := make([]string, 0, len(c.Segments))
	for _, seg := range c.Segments {
		if !r.allowed(seg.Carrier) {
			return model.CashOffer{}, false
		}
		if _, dup := seen[seg.Carrier]; !dup {
			seen[seg.Carrier] = struct{}{}
			codes = append(codes, seg.Carrier)
		}
		flights = append(flights, seg.Number)
	}
	sort.Strings(codes)

	first, last := c.Segments[0], c.Segments[len(c.Segments)-1]
	o := model.CashOffer{
		Cabin:        c.Cabin,
		CarrierCodes: codes,
		IsPreferred:  model.HasCarrier(codes, r.Preferred),
		Flights:      flights,
		Stops:        len(c.Segments) - 1,
		Duration:     c.Duration,
		DepartAt:     first.Depart,
		ArriveAt:     last.Arrive,
		TotalPrice:   c.TotalPrice,
		PricePP:      money.PerPerson(c.TotalPrice, r.party()),
	}
	if len(c.Segments) > 1 {
		o.Via = c.Segments[1].From
		if layover := c.Segments[1].Depart.Sub(first.Arrive); layover > 0 {
			o.Layover = layover
		}
	}
	return o, true
}

// Reward converts c and prices its points through table. ok is false when
// c is filtered out.
func (r Rules) Reward(c RewardCandidate, table *calculator.BoosterTable) (model.RewardOffer, bool, error) {
	if !strings.EqualFold(c.Source, r.Program) || !c.Available {
		return model.RewardOffer{}, false, nil
	}
	hasAllowed := false
	for _, code := range c.Carriers {
		if r.allowed(code) {
			hasAllowed = true
			break
		}
	}
	if !hasAllowed {
		return model.RewardOffer{}, false, nil
	}

	party := r.party()
	total := c.PointsPP * party
	taxes := money.Times(c.TaxesPP, party)
	bought, cost, err := table.Cost(total)
	if err != nil {
		return model.RewardOffer{}, false, fmt.Errorf("booster cost for %d points: %w", total, err)
	}
	return model.RewardOffer{
		Cabin:          c.Cabin,
		Program:        strings.ToLower(c.Source),
		CarrierCodes:   c.Carriers,
		IsPreferred:    model.HasCarrier(c.Carriers, r.Preferred),
		Flights:        c.Flights,
		SeatsAvailable: max(c.Seats, 0),
		PointsPP:       c.PointsPP,
		TaxesPP:        c.TaxesPP,
		TotalPoints:    total,
		TotalTaxes:     taxes,
		PointsBought:   bought,
		PurchaseCost:   float64(cost),
		AllInCost:      money.Sum(float64(cost), taxes),
	}, true, nil
}
