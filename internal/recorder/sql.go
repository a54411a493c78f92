package recorder

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"FareSentinel/internal/snapshot"
)

// schema is shared by the SQLite and Postgres recorders.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id          TEXT PRIMARY KEY,
		timestamp   BIGINT NOT NULL,
		origin      TEXT,
		destination TEXT,
		hub         TEXT,
		travel_date TEXT,
		passengers  INTEGER,
		errors      INTEGER,
		notified    BOOLEAN,
		snapshot    TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

	`CREATE TABLE IF NOT EXISTS run_metrics (
		run_id    TEXT NOT NULL,
		timestamp BIGINT NOT NULL,
		name      TEXT NOT NULL,
		value     DOUBLE PRECISION
	)`,
	`CREATE INDEX IF NOT EXISTS idx_metrics_name_ts ON run_metrics(name, timestamp)`,

	`CREATE TABLE IF NOT EXISTS run_diffs (
		run_id    TEXT NOT NULL,
		field     TEXT NOT NULL,
		previous  DOUBLE PRECISION,
		current   DOUBLE PRECISION,
		delta     DOUBLE PRECISION,
		direction TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_diffs_run ON run_diffs(run_id)`,

	`CREATE TABLE IF NOT EXISTS run_offers (
		run_id    TEXT NOT NULL,
		segment   TEXT,
		cabin     TEXT,
		kind      TEXT,
		role      TEXT,
		route     TEXT,
		carriers  TEXT,
		flights   TEXT,
		price_pp  DOUBLE PRECISION,
		points_pp INTEGER,
		taxes_pp  DOUBLE PRECISION,
		seats     INTEGER,
		all_in    DOUBLE PRECISION
	)`,
	`CREATE INDEX IF NOT EXISTS idx_offers_run ON run_offers(run_id)`,
}

func migrate(db *sql.DB) error {
	for _, s := range schema {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for Postgres.
func rebind(query string) string {
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// writeRun inserts rec in a single transaction. bind adapts placeholders.
func writeRun(db *sql.DB, rec *RunRecord, bind func(string) string) (err error) {
	snap, err := json.Marshal(rec.Snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	ts := rec.StartedAt.Unix()
	trip := rec.Trip
	if _, err = tx.Exec(bind(`INSERT INTO runs
		(id, timestamp, origin, destination, hub, travel_date, passengers, errors, notified, snapshot)
		VALUES (?,?,?,?,?,?,?,?,?,?)`),
		rec.RunID, ts, trip.Origin, trip.Destination, trip.Hub, trip.Date, trip.Passengers,
		rec.Errors, rec.Notified, string(snap),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	metric, err := tx.Prepare(bind(`INSERT INTO run_metrics (run_id, timestamp, name, value) VALUES (?,?,?,?)`))
	if err != nil {
		return fmt.Errorf("prepare metrics: %w", err)
	}
	defer metric.Close()
	values := rec.Snapshot.Values()
	for _, m := range snapshot.Catalog {
		v, ok := values[m.Name]
		if !ok {
			continue
		}
		if _, err = metric.Exec(rec.RunID, ts, m.Name, v); err != nil {
			return fmt.Errorf("insert metric %s: %w", m.Name, err)
		}
	}

	diff, err := tx.Prepare(bind(`INSERT INTO run_diffs
		(run_id, field, previous, current, delta, direction) VALUES (?,?,?,?,?,?)`))
	if err != nil {
		return fmt.Errorf("prepare diffs: %w", err)
	}
	defer diff.Close()
	for _, e := range rec.Diff {
		if e.IsSentinel() {
			continue
		}
		if _, err = diff.Exec(rec.RunID, e.Field, nullable(e.Previous), nullable(e.Current), e.Delta, string(e.Direction)); err != nil {
			return fmt.Errorf("insert diff %s: %w", e.Field, err)
		}
	}

	offer, err := tx.Prepare(bind(`INSERT INTO run_offers
		(run_id, segment, cabin, kind, role, route, carriers, flights, price_pp, points_pp, taxes_pp, seats, all_in)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`))
	if err != nil {
		return fmt.Errorf("prepare offers: %w", err)
	}
	defer offer.Close()
	for _, o := range rec.Offers {
		if _, err = offer.Exec(rec.RunID, string(o.Segment), string(o.Cabin), string(o.Kind), o.Role, o.Route,
			o.Carriers, o.Flights, o.PricePP, o.PointsPP, o.TaxesPP, o.Seats, o.AllIn); err != nil {
			return fmt.Errorf("insert offer: %w", err)
		}
	}

	return tx.Commit()
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
