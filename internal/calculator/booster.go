package calculator

import (
	"errors"
	"fmt"
	"sort"

	"FareSentinel/internal/model"
)

// BoosterTier is one purchasable points bundle.
type BoosterTier struct {
	Points int
	Price  int // whole currency units, tax inclusive
}

// BoosterTable is a points-purchase price list sorted by ascending Points.
// A single purchase is capped at the largest tier.
type BoosterTable struct {
	tiers []BoosterTier
}

// defaultBoosterPrices is the standard no-promo Velocity Points Booster
// price list in AUD including GST.
var defaultBoosterPrices = map[int]int{
	1_000: 36, 1_500: 51, 2_000: 68, 2_500: 85,
	3_000: 101, 3_500: 118, 4_000: 135, 4_500: 152,
	5_000: 168, 6_000: 201, 7_000: 233, 8_000: 264,
	9_000: 296, 10_000: 325, 11_000: 353, 12_000: 375,
	13_000: 399, 14_000: 427, 15_000: 452, 16_000: 469,
	17_000: 492, 18_000: 512, 19_000: 535, 20_000: 555,
	21_000: 580, 22_000: 605, 23_000: 629, 24_000: 653,
	25_000: 677, 26_000: 698, 27_000: 720, 28_000: 743,
	29_000: 765, 30_000: 787, 35_000: 894, 40_000: 994,
	45_000: 1_086, 50_000: 1_172, 60_000: 1_404, 70_000: 1_638,
	80_000: 1_872, 90_000: 2_106, 100_000: 2_340,
	150_000: 3_510, 200_000: 4_680, 250_000: 5_850,
}

// DefaultBoosterTable returns the standard price list.
func DefaultBoosterTable() *BoosterTable {
	t, err := NewBoosterTable(defaultBoosterPrices)
	if err != nil {
		panic(err) // static table
	}
	return t
}

// NewBoosterTable builds a table from a points -> price map.
func NewBoosterTable(prices map[int]int) (*BoosterTable, error) {
	if len(prices) == 0 {
		return nil, errors.New("booster table is empty")
	}
	tiers := make([]BoosterTier, 0, len(prices))
	for pts, price := range prices {
		if pts <= 0 {
			return nil, fmt.Errorf("booster tier %d: points must be positive", pts)
		}
		if price < 0 {
			return nil, fmt.Errorf("booster tier %d: negative price %d", pts, price)
		}
		tiers = append(tiers, BoosterTier{Points: pts, Price: price})
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].Points < tiers[j].Points })
	return &BoosterTable{tiers: tiers}, nil
}

// Tiers returns a copy of the sorted tier list.
func (t *BoosterTable) Tiers() []BoosterTier {
	out := make([]BoosterTier, len(t.tiers))
	copy(out, t.tiers)
	return out
}

// Cap is the largest amount a single purchase can cover.
func (t *BoosterTable) Cap() int {
	return t.tiers[len(t.tiers)-1].Points
}

// tierFor returns the smallest tier covering chunk, or the largest tier.
func (t *BoosterTable) tierFor(chunk int) BoosterTier {
	i := sort.Search(len(t.tiers), func(i int) bool { return t.tiers[i].Points >= chunk })
	if i == len(t.tiers) {
		return t.tiers[len(t.tiers)-1]
	}
	return t.tiers[i]
}

// Cost returns the points purchased and the total price paid to cover
// pointsNeeded. Requirements above Cap are split into repeated purchases.
// purchased may exceed pointsNeeded because of tier rounding.
func (t *BoosterTable) Cost(pointsNeeded int) (purchased, price int, err error) {
	if pointsNeeded < 0 {
		return 0, 0, model.NewInputError("points_needed", pointsNeeded, "must not be negative")
	}
	limit := t.Cap()
	remaining := pointsNeeded
	for remaining > 0 {
		chunk := min(remaining, limit)
		tier := t.tierFor(chunk)
		purchased += tier.Points
		price += tier.Price
		remaining -= chunk
	}
	return purchased, price, nil
}
