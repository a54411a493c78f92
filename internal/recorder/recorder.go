package recorder

import (
	"strings"
	"time"

	"FareSentinel/internal/model"
	"FareSentinel/internal/snapshot"
)

// RunRecord holds everything one tracker run produced.
type RunRecord struct {
	RunID     string
	StartedAt time.Time
	Trip      model.Trip
	Snapshot  snapshot.Snapshot
	Diff      []snapshot.DiffEntry
	Offers    []OfferRow
	Errors    int
	Notified  bool
}

// OfferRow is one selected offer, flattened for storage.
type OfferRow struct {
	Segment  model.Segment
	Cabin    model.Cabin
	Kind     model.OfferKind
	Role     string // "preferred" or "other"
	Route    string
	Carriers string
	Flights  string
	PricePP  float64 // cash fare per person, 0 for rewards
	PointsPP int
	TaxesPP  float64
	Seats    int
	AllIn    float64 // booster purchase plus taxes, rewards only
}

// OfferRows flattens every selection in set, preferred offers first.
func OfferRows(set *model.SelectionSet) []OfferRow {
	var rows []OfferRow
	for _, q := range set.Trip.Plan() {
		route := q.Route.String()
		switch q.Kind {
		case model.KindCash:
			sel := set.Cash[q.QueryKey]
			add := func(role string, o *model.CashOffer) {
				if o == nil {
					return
				}
				rows = append(rows, OfferRow{
					Segment: q.Segment, Cabin: q.Cabin, Kind: q.Kind, Role: role, Route: route,
					Carriers: strings.Join(o.CarrierCodes, ","),
					Flights:  strings.Join(o.Flights, ","),
					PricePP:  o.PricePP,
				})
			}
			add("preferred", sel.Preferred)
			add("other", sel.Other)
		case model.KindReward:
			sel := set.Reward[q.QueryKey]
			add := func(role string, o *model.RewardOffer) {
				if o == nil {
					return
				}
				rows = append(rows, OfferRow{
					Segment: q.Segment, Cabin: q.Cabin, Kind: q.Kind, Role: role, Route: route,
					Carriers: strings.Join(o.CarrierCodes, ","),
					Flights:  strings.Join(o.Flights, ","),
					PointsPP: o.PointsPP,
					TaxesPP:  o.TaxesPP,
					Seats:    o.SeatsAvailable,
					AllIn:    o.AllInCost,
				})
			}
			add("preferred", sel.Preferred)
			add("other", sel.Other)
		}
	}
	return rows
}

// Recorder persists run history for analysis.
type Recorder interface {
	RecordRun(rec *RunRecord) error
	Close() error
}
