package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FareSentinel/internal/model"
)

func sampleSet() *model.SelectionSet {
	set := model.NewSelectionSet(model.Trip{Origin: "MAD", Destination: "SYD", Hub: "DOH", Date: "2026-09-14", Passengers: 2})

	qr := model.CashOffer{CarrierCodes: []string{"QR"}, IsPreferred: true, TotalPrice: 5601, PricePP: 2800.5}
	ek := model.CashOffer{CarrierCodes: []string{"EK"}, TotalPrice: 6200, PricePP: 3100}
	set.Cash[model.QueryKey{Segment: model.SegmentThrough, Cabin: model.CabinBusiness, Kind: model.KindCash}] =
		model.Selection[model.CashOffer]{Preferred: &qr, Other: &ek}

	// economy cash has only a non-preferred offer
	eco := model.CashOffer{CarrierCodes: []string{"EY"}, TotalPrice: 2400, PricePP: 1200}
	set.Cash[model.QueryKey{Segment: model.SegmentThrough, Cabin: model.CabinEconomy, Kind: model.KindCash}] =
		model.Selection[model.CashOffer]{Other: &eco}

	pts := model.RewardOffer{CarrierCodes: []string{"QR"}, IsPreferred: true, PointsPP: 135_000, SeatsAvailable: 2}
	set.Reward[model.QueryKey{Segment: model.SegmentPriorityLeg, Cabin: model.CabinBusiness, Kind: model.KindReward}] =
		model.Selection[model.RewardOffer]{Preferred: &pts}
	return set
}

func TestBuild(t *testing.T) {
	s := Build(sampleSet())

	v, ok := s.Get("biz_cash_pp")
	require.True(t, ok)
	assert.Equal(t, 2800.0, v, "half-even rounding of 2800.5")

	v, ok = s.Get("biz_pts_pp_priority_leg")
	require.True(t, ok)
	assert.Equal(t, 135_000.0, v)

	v, ok = s.Get("biz_seats_priority_leg")
	require.True(t, ok)
	assert.Equal(t, 2.0, v)

	for _, absent := range []string{"eco_cash_pp", "biz_pts_pp_through", "eco_pts_pp", "biz_seats_through"} {
		_, ok := s.Get(absent)
		assert.False(t, ok, absent)
	}
	assert.Equal(t, 3, s.Len())
}

func TestBuild_Deterministic(t *testing.T) {
	assert.Equal(t, Build(sampleSet()).Values(), Build(sampleSet()).Values())
	assert.Equal(t, 0, Build(nil).Len())
}

func TestNew_DropsUnknownNames(t *testing.T) {
	s := New(map[string]float64{"biz_cash_pp": 1, "bogus": 2})
	assert.Equal(t, 1, s.Len())
}

func TestSnapshotJSON_RoundTrip(t *testing.T) {
	s := Build(sampleSet())
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"version":2`)
	assert.Contains(t, string(data), `"eco_cash_pp":null`)

	var back Snapshot
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s.Values(), back.Values())
}

func TestSnapshotJSON_Legacy(t *testing.T) {
	legacy := `{
		"biz_cash_pp": 2800,
		"biz_pts_pp_through": null,
		"biz_pts_pp_doh_syd": 135000,
		"eco_cash_pp": 1250,
		"eco_pts_pp": null,
		"biz_seats_through": 0,
		"biz_seats_doh_syd": 2
	}`
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(legacy), &s))

	v, ok := s.Get("biz_pts_pp_priority_leg")
	require.True(t, ok)
	assert.Equal(t, 135_000.0, v)
	v, ok = s.Get("biz_seats_priority_leg")
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
	_, ok = s.Get("biz_pts_pp_through")
	assert.False(t, ok)
	_, ok = s.Get("biz_seats_through")
	assert.False(t, ok, "zero legacy seats mean no offer")
}

func TestSnapshotJSON_LegacyZeroSeatsNoChange(t *testing.T) {
	legacy := `{"biz_cash_pp": 2800, "biz_seats_through": 0, "biz_seats_doh_syd": 0}`
	var prev Snapshot
	require.NoError(t, json.Unmarshal([]byte(legacy), &prev))

	cur := New(map[string]float64{"biz_cash_pp": 2800})
	entries := Diff(cur, &prev)
	require.Len(t, entries, 1)
	assert.Equal(t, SentinelNoChanges, entries[0].Sentinel)
}

func TestSnapshotJSON_VersionedZeroSeatsKept(t *testing.T) {
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{"version":2,"metrics":{"biz_seats_through":0}}`), &s))
	v, ok := s.Get("biz_seats_through")
	require.True(t, ok)
	assert.Equal(t, 0.0, v)
}

func TestSnapshotJSON_RejectsNewerVersion(t *testing.T) {
	var s Snapshot
	err := json.Unmarshal([]byte(`{"version":99,"metrics":{}}`), &s)
	assert.Error(t, err)
}
