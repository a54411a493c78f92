package collector

import (
	"context"
	"fmt"
	"time"

	"FareSentinel/internal/model"
)

// MockFetcher returns fixed pools keyed by MockKey, for dry runs and tests.
type MockFetcher struct {
	Cash          map[string][]CashCandidate
	Rewards       map[string][]RewardCandidate
	Distributions map[string]*model.PriceDistribution
	Err           error
	Calls         int
}

// MockKey is the MockFetcher map key for a route and cabin.
func MockKey(route model.Route, cabin model.Cabin) string {
	return fmt.Sprintf("%s-%s/%s", route.Origin, route.Destination, cabin)
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCash(_ context.Context, req SearchRequest) ([]CashCandidate, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Cash[MockKey(req.Route, req.Cabin)], nil
}

func (m *MockFetcher) FetchRewards(_ context.Context, req SearchRequest) ([]RewardCandidate, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Rewards[MockKey(req.Route, req.Cabin)], nil
}

func (m *MockFetcher) FetchDistribution(_ context.Context, route model.Route, _ string, cabin model.Cabin) (*model.PriceDistribution, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Distributions[MockKey(route, cabin)], nil
}

// NewSampleMock returns a MockFetcher with a plausible pool for every
// query of trip. It backs dry runs when no API credentials are set.
func NewSampleMock(trip model.Trip) *MockFetcher {
	routes := trip.Routes()
	through := routes[model.SegmentThrough]
	first := routes[model.SegmentFirstLeg]
	priority := routes[model.SegmentPriorityLeg]
	dep, err := time.Parse("2006-01-02", trip.Date)
	if err != nil {
		dep = time.Now().Truncate(24 * time.Hour)
	}
	dep = dep.Add(8 * time.Hour)
	party := float64(max(trip.Passengers, 1))

	oneStop := func(carrier, n1, n2 string, pp float64, cabin model.Cabin) CashCandidate {
		return CashCandidate{
			Cabin: cabin,
			Segments: []FlightSegment{
				{Carrier: carrier, Number: n1, From: through.Origin, To: trip.Hub, Depart: dep, Arrive: dep.Add(7 * time.Hour)},
				{Carrier: carrier, Number: n2, From: trip.Hub, To: through.Destination, Depart: dep.Add(10 * time.Hour), Arrive: dep.Add(24 * time.Hour)},
			},
			Duration:   24 * time.Hour,
			TotalPrice: pp * party,
		}
	}
	direct := func(r model.Route, carrier, number string, pp float64, hours int, cabin model.Cabin) CashCandidate {
		return CashCandidate{
			Cabin: cabin,
			Segments: []FlightSegment{
				{Carrier: carrier, Number: number, From: r.Origin, To: r.Destination, Depart: dep, Arrive: dep.Add(time.Duration(hours) * time.Hour)},
			},
			Duration:   time.Duration(hours) * time.Hour,
			TotalPrice: pp * party,
		}
	}
	reward := func(carrier, flights string, pts int, taxes float64, seats int, cabin model.Cabin) RewardCandidate {
		return RewardCandidate{
			Source:    "velocity",
			Cabin:     cabin,
			Available: true,
			Carriers:  []string{carrier},
			Flights:   splitList(flights),
			Seats:     seats,
			PointsPP:  pts,
			TaxesPP:   taxes,
		}
	}

	biz, eco := model.CabinBusiness, model.CabinEconomy
	return &MockFetcher{
		Cash: map[string][]CashCandidate{
			MockKey(through, biz): {
				oneStop("QR", "QR148", "QR908", 5200, biz),
				oneStop("EK", "EK142", "EK414", 4900, biz),
			},
			MockKey(first, biz): {direct(first, "QR", "QR148", 1200, 7, biz)},
			MockKey(priority, biz): {
				direct(priority, "QR", "QR908", 2800, 14, biz),
				direct(priority, "EK", "EK414", 3100, 14, biz),
			},
			MockKey(through, eco): {oneStop("QR", "QR148", "QR908", 1500, eco)},
		},
		Rewards: map[string][]RewardCandidate{
			MockKey(through, biz):   {reward("QR", "QR148, QR908", 97500, 310, 2, biz)},
			MockKey(first, biz):     {reward("QR", "QR148", 42500, 180, 4, biz)},
			MockKey(priority, biz):  {reward("QR", "QR908", 67500, 250, 3, biz)},
			MockKey(through, eco):   {reward("QR", "QR148, QR908", 45000, 210, 6, eco)},
		},
		Distributions: map[string]*model.PriceDistribution{
			MockKey(through, biz):  {Min: 4200, Low: 4700, Median: 5100, High: 5800, Max: 7000},
			MockKey(priority, biz): {Min: 2000, Low: 2400, Median: 2700, High: 3200, Max: 4000},
			MockKey(through, eco):  {Min: 1100, Low: 1300, Median: 1450, High: 1700, Max: 2100},
		},
	}
}
