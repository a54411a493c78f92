package model

import "fmt"

// Segment names which part of the trip a query covers.
type Segment string

const (
	SegmentThrough     Segment = "through"      // origin -> destination on one ticket
	SegmentFirstLeg    Segment = "first_leg"    // origin -> hub
	SegmentPriorityLeg Segment = "priority_leg" // hub -> destination
)

// Route is an origin/destination airport pair.
type Route struct {
	Origin      string
	Destination string
}

func (r Route) String() string {
	return fmt.Sprintf("%s→%s", r.Origin, r.Destination)
}

// QueryKey identifies one selector invocation independent of airports.
type QueryKey struct {
	Segment Segment
	Cabin   Cabin
	Kind    OfferKind
}

func (k QueryKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Segment, k.Cabin, k.Kind)
}

// Query is a QueryKey bound to a concrete route.
type Query struct {
	QueryKey
	Route Route
}

func (q Query) String() string {
	return fmt.Sprintf("%s %s %s", q.Route, q.Cabin, q.Kind)
}

// Trip describes the itinerary being tracked.
type Trip struct {
	Origin      string
	Destination string
	Hub         string
	Date        string // YYYY-MM-DD
	Passengers  int
}

// Routes returns the route for each segment of the trip.
func (t Trip) Routes() map[Segment]Route {
	return map[Segment]Route{
		SegmentThrough:     {Origin: t.Origin, Destination: t.Destination},
		SegmentFirstLeg:    {Origin: t.Origin, Destination: t.Hub},
		SegmentPriorityLeg: {Origin: t.Hub, Destination: t.Destination},
	}
}

// Plan lists every query of a run in report order.
func (t Trip) Plan() []Query {
	routes := t.Routes()
	keys := []QueryKey{
		{SegmentThrough, CabinBusiness, KindCash},
		{SegmentThrough, CabinBusiness, KindReward},
		{SegmentFirstLeg, CabinBusiness, KindCash},
		{SegmentFirstLeg, CabinBusiness, KindReward},
		{SegmentPriorityLeg, CabinBusiness, KindCash},
		{SegmentPriorityLeg, CabinBusiness, KindReward},
		{SegmentThrough, CabinEconomy, KindCash},
		{SegmentThrough, CabinEconomy, KindReward},
	}
	plan := make([]Query, 0, len(keys))
	for _, k := range keys {
		if k.Segment != SegmentThrough && t.Hub == "" {
			continue
		}
		plan = append(plan, Query{QueryKey: k, Route: routes[k.Segment]})
	}
	return plan
}
