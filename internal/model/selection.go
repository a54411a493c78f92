package model

// Selection is the result of picking from one offer pool: the cheapest
// preferred-carrier offer and the cheapest offer without it.
type Selection[T any] struct {
	Preferred *T
	Other     *T
}

// Offers returns the selected offers, preferred first.
func (s Selection[T]) Offers() []T {
	out := make([]T, 0, 2)
	if s.Preferred != nil {
		out = append(out, *s.Preferred)
	}
	if s.Other != nil {
		out = append(out, *s.Other)
	}
	return out
}

// Empty reports whether nothing was selected.
func (s Selection[T]) Empty() bool {
	return s.Preferred == nil && s.Other == nil
}

// PreferredOrFirst returns the preferred offer, falling back to the other one.
func (s Selection[T]) PreferredOrFirst() *T {
	if s.Preferred != nil {
		return s.Preferred
	}
	return s.Other
}

// SelectionSet aggregates every selection of one run.
type SelectionSet struct {
	Trip    Trip
	Routes  map[Segment]Route
	Cash    map[QueryKey]Selection[CashOffer]
	Reward  map[QueryKey]Selection[RewardOffer]
	Context map[QueryKey]PriceContext
	Errors  map[QueryKey]error
}

// NewSelectionSet returns an empty set for trip.
func NewSelectionSet(trip Trip) *SelectionSet {
	return &SelectionSet{
		Trip:    trip,
		Routes:  trip.Routes(),
		Cash:    make(map[QueryKey]Selection[CashOffer]),
		Reward:  make(map[QueryKey]Selection[RewardOffer]),
		Context: make(map[QueryKey]PriceContext),
		Errors:  make(map[QueryKey]error),
	}
}

// CashFor returns the cash selection for a segment and cabin.
func (s *SelectionSet) CashFor(seg Segment, cabin Cabin) Selection[CashOffer] {
	return s.Cash[QueryKey{Segment: seg, Cabin: cabin, Kind: KindCash}]
}

// RewardFor returns the reward selection for a segment and cabin.
func (s *SelectionSet) RewardFor(seg Segment, cabin Cabin) Selection[RewardOffer] {
	return s.Reward[QueryKey{Segment: seg, Cabin: cabin, Kind: KindReward}]
}

// ContextFor returns the price context of the preferred cash offer, if any.
func (s *SelectionSet) ContextFor(seg Segment, cabin Cabin) (PriceContext, bool) {
	pc, ok := s.Context[QueryKey{Segment: seg, Cabin: cabin, Kind: KindCash}]
	return pc, ok
}
