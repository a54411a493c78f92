package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FareSentinel/internal/model"
	"FareSentinel/internal/snapshot"
)

var recTrip = model.Trip{Origin: "MAD", Destination: "SYD", Hub: "DOH", Date: "2026-09-14", Passengers: 2}

func sampleRecord(id string) *RunRecord {
	prev := snapshot.New(map[string]float64{"biz_cash_pp": 3100, "eco_cash_pp": 1500})
	cur := snapshot.New(map[string]float64{"biz_cash_pp": 2900, "biz_seats_through": 2})

	set := model.NewSelectionSet(recTrip)
	set.Cash[model.QueryKey{Segment: model.SegmentThrough, Cabin: model.CabinBusiness, Kind: model.KindCash}] = model.Selection[model.CashOffer]{
		Preferred: &model.CashOffer{CarrierCodes: []string{"QR"}, Flights: []string{"QR148", "QR908"}, PricePP: 2900},
		Other:     &model.CashOffer{CarrierCodes: []string{"EK"}, Flights: []string{"EK142"}, PricePP: 2700},
	}
	set.Reward[model.QueryKey{Segment: model.SegmentThrough, Cabin: model.CabinBusiness, Kind: model.KindReward}] = model.Selection[model.RewardOffer]{
		Preferred: &model.RewardOffer{CarrierCodes: []string{"QR"}, Flights: []string{"QR908"}, PointsPP: 97500, SeatsAvailable: 2, AllInCost: 5300},
	}

	return &RunRecord{
		RunID:     id,
		StartedAt: time.Date(2026, 9, 1, 6, 0, 0, 0, time.UTC),
		Trip:      recTrip,
		Snapshot:  cur,
		Diff:      snapshot.Diff(cur, &prev),
		Offers:    OfferRows(set),
		Notified:  true,
	}
}

func count(t *testing.T, r *SQLiteRecorder, table string) int {
	t.Helper()
	var n int
	require.NoError(t, r.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestSQLiteRecorder_RecordRun(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "data", "runs.db"))
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.RecordRun(sampleRecord("run-1")))

	assert.Equal(t, 1, count(t, r, "runs"))
	assert.Equal(t, 2, count(t, r, "run_metrics"))
	assert.Equal(t, 3, count(t, r, "run_diffs"))
	assert.Equal(t, 3, count(t, r, "run_offers"))

	var price float64
	require.NoError(t, r.db.QueryRow(
		`SELECT value FROM run_metrics WHERE run_id = ? AND name = ?`, "run-1", "biz_cash_pp").Scan(&price))
	assert.Equal(t, 2900.0, price)

	var role, carriers string
	require.NoError(t, r.db.QueryRow(
		`SELECT role, carriers FROM run_offers WHERE kind = 'cash' AND price_pp = 2700`).Scan(&role, &carriers))
	assert.Equal(t, "other", role)
	assert.Equal(t, "EK", carriers)
}

func TestSQLiteRecorder_DuplicateRunRollsBack(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer r.Close()

	require.NoError(t, r.RecordRun(sampleRecord("run-1")))
	assert.Error(t, r.RecordRun(sampleRecord("run-1")))
	assert.Equal(t, 2, count(t, r, "run_metrics"), "failed run leaves no partial rows")
}

func TestSQLiteRecorder_FirstRunHasNoDiffRows(t *testing.T) {
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer r.Close()

	rec := sampleRecord("run-1")
	rec.Diff = snapshot.Diff(rec.Snapshot, nil)
	require.NoError(t, r.RecordRun(rec))
	assert.Equal(t, 0, count(t, r, "run_diffs"))
}

func TestOfferRows_Order(t *testing.T) {
	rows := sampleRecord("x").Offers
	require.Len(t, rows, 3)
	assert.Equal(t, "preferred", rows[0].Role)
	assert.Equal(t, model.KindCash, rows[0].Kind)
	assert.Equal(t, "MAD→SYD", rows[0].Route)
	assert.Equal(t, "QR148,QR908", rows[0].Flights)
	assert.Equal(t, "other", rows[1].Role)
	assert.Equal(t, model.KindReward, rows[2].Kind)
	assert.Equal(t, 97500, rows[2].PointsPP)
}

func TestRebind(t *testing.T) {
	assert.Equal(t, "INSERT INTO t (a, b) VALUES ($1,$2)", rebind("INSERT INTO t (a, b) VALUES (?,?)"))
	assert.Equal(t, "SELECT 1", rebind("SELECT 1"))
}
