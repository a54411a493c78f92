package collector

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FareSentinel/internal/calculator"
	"FareSentinel/internal/model"
)

var testRules = Rules{
	Allowed:    []string{"QR", "EK", "EY", "SQ"},
	Preferred:  "QR",
	MaxStops:   1,
	Program:    "velocity",
	Passengers: 2,
}

func seg(carrier, number, from, to string, dep, arr time.Time) FlightSegment {
	return FlightSegment{Carrier: carrier, Number: number, From: from, To: to, Depart: dep, Arrive: arr}
}

func TestRulesCash_OneStop(t *testing.T) {
	d := time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC)
	c := CashCandidate{
		Cabin: model.CabinBusiness,
		Segments: []FlightSegment{
			seg("QR", "QR148", "MAD", "DOH", d, d.Add(6*time.Hour)),
			seg("QR", "QR908", "DOH", "SYD", d.Add(9*time.Hour), d.Add(23*time.Hour)),
		},
		Duration:   23 * time.Hour,
		TotalPrice: 5600,
	}
	o, ok := testRules.Cash(c)
	require.True(t, ok)
	assert.Equal(t, []string{"QR"}, o.CarrierCodes)
	assert.True(t, o.IsPreferred)
	assert.Equal(t, []string{"QR148", "QR908"}, o.Flights)
	assert.Equal(t, "DOH", o.Via)
	assert.Equal(t, 1, o.Stops)
	assert.Equal(t, 3*time.Hour, o.Layover)
	assert.Equal(t, 2800.0, o.PricePP)
}

func TestRulesCash_Filtered(t *testing.T) {
	d := time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		segs []FlightSegment
	}{
		{"no segments", nil},
		{"too many stops", []FlightSegment{
			seg("QR", "QR1", "MAD", "DOH", d, d),
			seg("QR", "QR2", "DOH", "SIN", d, d),
			seg("QR", "QR3", "SIN", "SYD", d, d),
		}},
		{"disallowed carrier", []FlightSegment{
			seg("QR", "QR1", "MAD", "DOH", d, d),
			seg("QF", "QF2", "DOH", "SYD", d, d),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := testRules.Cash(CashCandidate{Cabin: model.CabinBusiness, Segments: tt.segs, TotalPrice: 100})
			assert.False(t, ok)
		})
	}
}

func TestRulesCash_MixedCarriersSorted(t *testing.T) {
	d := time.Date(2026, 9, 14, 8, 0, 0, 0, time.UTC)
	o, ok := testRules.Cash(CashCandidate{
		Cabin: model.CabinEconomy,
		Segments: []FlightSegment{
			seg("QR", "QR148", "MAD", "DOH", d, d.Add(6*time.Hour)),
			seg("EK", "EK414", "DOH", "SYD", d.Add(5*time.Hour), d.Add(20*time.Hour)),
		},
		TotalPrice: 2000,
	})
	require.True(t, ok)
	assert.Equal(t, []string{"EK", "QR"}, o.CarrierCodes)
	assert.True(t, o.IsPreferred)
	assert.Zero(t, o.Layover, "overlapping times give no layover")
}

func TestRulesReward_Pricing(t *testing.T) {
	o, ok, err := testRules.Reward(RewardCandidate{
		Source:    "Velocity",
		Cabin:     model.CabinBusiness,
		Available: true,
		Carriers:  []string{"QR"},
		Flights:   []string{"QR148"},
		Seats:     3,
		PointsPP:  67500,
		TaxesPP:   250,
	}, calculator.DefaultBoosterTable())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "velocity", o.Program)
	assert.True(t, o.IsPreferred)
	assert.Equal(t, 135000, o.TotalPoints)
	assert.Equal(t, 500.0, o.TotalTaxes)
	assert.Equal(t, 150000, o.PointsBought)
	assert.Equal(t, 3510.0, o.PurchaseCost)
	assert.Equal(t, 4010.0, o.AllInCost)
	assert.Equal(t, 3, o.SeatsAvailable)
}

func TestRulesReward_Filtered(t *testing.T) {
	table := calculator.DefaultBoosterTable()
	tests := []struct {
		name string
		c    RewardCandidate
	}{
		{"other program", RewardCandidate{Source: "aeroplan", Available: true, Carriers: []string{"QR"}, PointsPP: 1000}},
		{"unavailable", RewardCandidate{Source: "velocity", Carriers: []string{"QR"}, PointsPP: 1000}},
		{"no allowed carrier", RewardCandidate{Source: "velocity", Available: true, Carriers: []string{"QF"}, PointsPP: 1000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := testRules.Reward(tt.c, table)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestRulesReward_NegativePoints(t *testing.T) {
	_, ok, err := testRules.Reward(RewardCandidate{
		Source: "velocity", Available: true, Carriers: []string{"QR"}, PointsPP: -5,
	}, calculator.DefaultBoosterTable())
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}
