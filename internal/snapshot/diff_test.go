package snapshot

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiff_FirstRun(t *testing.T) {
	for _, s := range []Snapshot{{}, Build(sampleSet())} {
		entries := Diff(s, nil)
		require.Len(t, entries, 1)
		assert.Equal(t, SentinelFirstRun, entries[0].Sentinel)
		assert.True(t, entries[0].IsSentinel())
	}
}

func TestDiff_EmptyPreviousIsFirstRun(t *testing.T) {
	var prev Snapshot
	require.NoError(t, json.Unmarshal([]byte(`{}`), &prev))

	entries := Diff(Build(sampleSet()), &prev)
	require.Len(t, entries, 1)
	assert.Equal(t, SentinelFirstRun, entries[0].Sentinel)
}

func TestDiff_Identical(t *testing.T) {
	s := Build(sampleSet())
	prev := s
	entries := Diff(s, &prev)
	require.Len(t, entries, 1)
	assert.Equal(t, SentinelNoChanges, entries[0].Sentinel)
	assert.Equal(t, DirectionUnchanged, entries[0].Direction)
}

func TestDiff_Directions(t *testing.T) {
	prev := New(map[string]float64{
		"biz_cash_pp":            3100,
		"biz_pts_pp_through":     139_000,
		"eco_cash_pp":            1200,
		"biz_seats_through":      4,
		"biz_seats_priority_leg": 1,
	})
	cur := New(map[string]float64{
		"biz_cash_pp":            2900,
		"biz_pts_pp_through":     144_500,
		"eco_pts_pp":             40_000,
		"biz_seats_through":      2,
		"biz_seats_priority_leg": 3,
	})

	entries := Diff(cur, &prev)
	got := make(map[string]DiffEntry, len(entries))
	order := make([]string, 0, len(entries))
	for _, e := range entries {
		got[e.Field] = e
		order = append(order, e.Field)
	}

	assert.Equal(t, []string{
		"biz_cash_pp", "biz_pts_pp_through", "eco_cash_pp", "eco_pts_pp",
		"biz_seats_through", "biz_seats_priority_leg",
	}, order)

	assert.Equal(t, DirectionImproved, got["biz_cash_pp"].Direction)
	assert.Equal(t, -200.0, got["biz_cash_pp"].Delta)
	assert.Equal(t, DirectionWorsened, got["biz_pts_pp_through"].Direction)
	assert.Equal(t, 5_500.0, got["biz_pts_pp_through"].Delta)
	assert.Equal(t, DirectionGone, got["eco_cash_pp"].Direction)
	assert.Nil(t, got["eco_cash_pp"].Current)
	assert.Equal(t, DirectionNew, got["eco_pts_pp"].Direction)
	assert.Nil(t, got["eco_pts_pp"].Previous)
	assert.Equal(t, DirectionWorsened, got["biz_seats_through"].Direction)
	assert.Equal(t, DirectionImproved, got["biz_seats_priority_leg"].Direction)
}

func TestDiff_Deterministic(t *testing.T) {
	prev := New(map[string]float64{"biz_cash_pp": 1, "eco_cash_pp": 2, "eco_pts_pp": 3})
	cur := New(map[string]float64{"biz_seats_through": 1, "eco_pts_pp": 5})
	first := Diff(cur, &prev)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Diff(cur, &prev))
	}
}

func TestDiffEntry_Render(t *testing.T) {
	prev := New(map[string]float64{
		"biz_cash_pp":        3100,
		"biz_pts_pp_through": 139_000,
		"biz_seats_through":  2,
		"eco_cash_pp":        1200,
	})
	cur := New(map[string]float64{
		"biz_cash_pp":        2900,
		"biz_pts_pp_through": 144_000,
		"biz_seats_through":  4,
		"eco_pts_pp":         40_000,
	})
	var lines []string
	for _, e := range Diff(cur, &prev) {
		lines = append(lines, e.Render("AUD"))
	}
	assert.Equal(t, []string{
		"Business cash (pp): AUD $3,100 → AUD $2,900 (-AUD $200)",
		"Business points through (pp): 139,000 → 144,000 (+5,000 pts)",
		"Economy cash (pp): no longer available",
		"Economy points (pp): now available (40,000 pts)",
		"Business seats (through): 2 → 4 (+2 seats)",
	}, lines)

	assert.Equal(t, "first run, no previous data", Diff(cur, nil)[0].Render("AUD"))
	assert.Equal(t, "No changes since last run", Diff(cur, &cur)[0].Render("AUD"))
}

func TestDiffEntry_RenderNewCurrency(t *testing.T) {
	prev := New(nil)
	cur := New(map[string]float64{"biz_cash_pp": 2800})
	entries := Diff(cur, &prev)
	require.Len(t, entries, 1)
	assert.Equal(t, "Business cash (pp): now available (AUD $2,800)", entries[0].Render("AUD"))
}
