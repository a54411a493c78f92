// Package selector picks the cheapest preferred-carrier offer and the
// cheapest alternative from an offer pool.
package selector

import (
	"math"

	"FareSentinel/internal/model"
)

// Ranker extracts the ascending ranking key of an offer. Field names the
// key in errors.
type Ranker[T any] struct {
	Field string
	Key   func(T) float64
}

// CashRanker ranks cash fares by total price.
var CashRanker = Ranker[model.CashOffer]{
	Field: "total_price",
	Key:   func(o model.CashOffer) float64 { return o.TotalPrice },
}

// RewardRanker ranks reward seats by points per person.
var RewardRanker = Ranker[model.RewardOffer]{
	Field: "points_pp",
	Key:   func(o model.RewardOffer) float64 { return float64(o.PointsPP) },
}

// Select returns the lowest-ranked offer for which preferred holds and the
// lowest-ranked offer for which it does not. Ties keep the earlier offer.
// An empty pool yields an empty selection.
func Select[T any](pool []T, rank Ranker[T], preferred func(T) bool) (model.Selection[T], error) {
	var sel model.Selection[T]
	bestPref, bestOther := math.Inf(1), math.Inf(1)

	for i := range pool {
		key := rank.Key(pool[i])
		if math.IsNaN(key) || key < 0 {
			return model.Selection[T]{}, model.NewInputError(rank.Field, key, "rank key must be a non-negative number")
		}
		offer := pool[i]
		if preferred(offer) {
			if sel.Preferred == nil || key < bestPref {
				sel.Preferred, bestPref = &offer, key
			}
			continue
		}
		if sel.Other == nil || key < bestOther {
			sel.Other, bestOther = &offer, key
		}
	}
	return sel, nil
}

// Cash selects from a pool of cash fares.
func Cash(pool []model.CashOffer) (model.Selection[model.CashOffer], error) {
	return Select(pool, CashRanker, func(o model.CashOffer) bool { return o.IsPreferred })
}

// Reward selects from a pool of reward seats.
func Reward(pool []model.RewardOffer) (model.Selection[model.RewardOffer], error) {
	return Select(pool, RewardRanker, func(o model.RewardOffer) bool { return o.IsPreferred })
}
