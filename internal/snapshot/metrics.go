package snapshot

import (
	"FareSentinel/internal/model"
	"FareSentinel/internal/money"
)

// Unit is the measure a metric is expressed in.
type Unit string

const (
	UnitCurrency Unit = "currency"
	UnitPoints   Unit = "points"
	UnitSeats    Unit = "seats"
)

// Metric is one tracked scalar projected from a selection.
type Metric struct {
	Name  string
	Label string
	Unit  Unit
	Query model.QueryKey

	cash   func(model.CashOffer) float64
	reward func(model.RewardOffer) float64
}

// HigherIsBetter reports whether an increase is an improvement.
func (m Metric) HigherIsBetter() bool {
	return m.Unit == UnitSeats
}

func cashPP(o model.CashOffer) float64     { return money.Round(o.PricePP) }
func pointsPP(o model.RewardOffer) float64 { return float64(o.PointsPP) }
func seats(o model.RewardOffer) float64    { return float64(o.SeatsAvailable) }

func key(seg model.Segment, cabin model.Cabin, kind model.OfferKind) model.QueryKey {
	return model.QueryKey{Segment: seg, Cabin: cabin, Kind: kind}
}

// Catalog is the fixed, ordered set of tracked metrics. Diff output follows
// this order.
var Catalog = []Metric{
	{
		Name: "biz_cash_pp", Label: "Business cash (pp)", Unit: UnitCurrency,
		Query: key(model.SegmentThrough, model.CabinBusiness, model.KindCash), cash: cashPP,
	},
	{
		Name: "biz_pts_pp_through", Label: "Business points through (pp)", Unit: UnitPoints,
		Query: key(model.SegmentThrough, model.CabinBusiness, model.KindReward), reward: pointsPP,
	},
	{
		Name: "biz_pts_pp_priority_leg", Label: "Priority leg points (pp)", Unit: UnitPoints,
		Query: key(model.SegmentPriorityLeg, model.CabinBusiness, model.KindReward), reward: pointsPP,
	},
	{
		Name: "eco_cash_pp", Label: "Economy cash (pp)", Unit: UnitCurrency,
		Query: key(model.SegmentThrough, model.CabinEconomy, model.KindCash), cash: cashPP,
	},
	{
		Name: "eco_pts_pp", Label: "Economy points (pp)", Unit: UnitPoints,
		Query: key(model.SegmentThrough, model.CabinEconomy, model.KindReward), reward: pointsPP,
	},
	{
		Name: "biz_seats_through", Label: "Business seats (through)", Unit: UnitSeats,
		Query: key(model.SegmentThrough, model.CabinBusiness, model.KindReward), reward: seats,
	},
	{
		Name: "biz_seats_priority_leg", Label: "Business seats (priority leg)", Unit: UnitSeats,
		Query: key(model.SegmentPriorityLeg, model.CabinBusiness, model.KindReward), reward: seats,
	},
}

// legacyNames maps version 1 state keys to their current names.
var legacyNames = map[string]string{
	"biz_pts_pp_doh_syd": "biz_pts_pp_priority_leg",
	"biz_seats_doh_syd":  "biz_seats_priority_leg",
}

// Lookup returns the catalog metric called name.
func Lookup(name string) (Metric, bool) {
	for _, m := range Catalog {
		if m.Name == name {
			return m, true
		}
	}
	return Metric{}, false
}
