package collector

import (
	"context"
	"time"

	"FareSentinel/internal/model"
)

// SearchRequest is one route/cabin lookup.
type SearchRequest struct {
	Route      model.Route
	Date       string // YYYY-MM-DD
	Passengers int
	Cabin      model.Cabin
}

// FlightSegment is one flown leg of a cash itinerary.
type FlightSegment struct {
	Carrier string // operating carrier, falling back to marketing
	Number  string // marketing designator, e.g. "QR148"
	From    string
	To      string
	Depart  time.Time
	Arrive  time.Time
}

// CashCandidate is a cash itinerary as parsed from a fare source.
type CashCandidate struct {
	Cabin      model.Cabin
	Segments   []FlightSegment
	Duration   time.Duration
	TotalPrice float64
}

// RewardCandidate is one reward availability record.
type RewardCandidate struct {
	Source    string
	Cabin     model.Cabin
	Available bool
	Carriers  []string
	Flights   []string
	Seats     int
	PointsPP  int
	TaxesPP   float64
}

// CashFetcher fetches cash fares.
type CashFetcher interface {
	Name() string
	FetchCash(ctx context.Context, req SearchRequest) ([]CashCandidate, error)
}

// RewardFetcher fetches reward seat availability.
type RewardFetcher interface {
	Name() string
	FetchRewards(ctx context.Context, req SearchRequest) ([]RewardCandidate, error)
}

// DistributionFetcher fetches historical price distributions. A nil
// distribution with a nil error means no data.
type DistributionFetcher interface {
	Name() string
	FetchDistribution(ctx context.Context, route model.Route, date string, cabin model.Cabin) (*model.PriceDistribution, error)
}
