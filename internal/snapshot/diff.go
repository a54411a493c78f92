package snapshot

import (
	"fmt"

	"FareSentinel/internal/money"
)

// Direction classifies a change from the tracker's point of view.
type Direction string

const (
	DirectionImproved  Direction = "improved"
	DirectionWorsened  Direction = "worsened"
	DirectionNew       Direction = "new"
	DirectionGone      Direction = "gone"
	DirectionUnchanged Direction = "unchanged"
)

// Sentinel marks entries that stand for the whole diff.
type Sentinel string

const (
	SentinelFirstRun  Sentinel = "first_run"
	SentinelNoChanges Sentinel = "no_changes"
)

// DiffEntry is one labelled change between two snapshots.
type DiffEntry struct {
	Field     string    `json:"field,omitempty"`
	Label     string    `json:"label,omitempty"`
	Unit      Unit      `json:"unit,omitempty"`
	Previous  *float64  `json:"previous"`
	Current   *float64  `json:"current"`
	Delta     float64   `json:"delta"`
	Direction Direction `json:"direction"`
	Sentinel  Sentinel  `json:"sentinel,omitempty"`
}

// IsSentinel reports whether e is a first-run or no-changes marker.
func (e DiffEntry) IsSentinel() bool { return e.Sentinel != "" }

// Diff compares current against previous in catalog order. A nil or empty
// previous yields a single first-run entry; no differences yield a single
// no-changes entry.
func Diff(current Snapshot, previous *Snapshot) []DiffEntry {
	if previous == nil || previous.Len() == 0 {
		return []DiffEntry{{Direction: DirectionUnchanged, Sentinel: SentinelFirstRun}}
	}

	var entries []DiffEntry
	for _, m := range Catalog {
		cur, curOK := current.Get(m.Name)
		prev, prevOK := previous.Get(m.Name)

		entry := DiffEntry{Field: m.Name, Label: m.Label, Unit: m.Unit}
		switch {
		case !curOK && !prevOK:
			continue
		case curOK && prevOK && cur == prev:
			continue
		case curOK && !prevOK:
			entry.Current = &cur
			entry.Direction = DirectionNew
		case !curOK && prevOK:
			entry.Previous = &prev
			entry.Direction = DirectionGone
		default:
			entry.Current, entry.Previous = &cur, &prev
			entry.Delta = cur - prev
			entry.Direction = classify(m, entry.Delta)
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return []DiffEntry{{Direction: DirectionUnchanged, Sentinel: SentinelNoChanges}}
	}
	return entries
}

func classify(m Metric, delta float64) Direction {
	better := delta < 0
	if m.HigherIsBetter() {
		better = delta > 0
	}
	if better {
		return DirectionImproved
	}
	return DirectionWorsened
}

// Render formats the entry for a report, amounts in currency.
func (e DiffEntry) Render(currency string) string {
	switch e.Sentinel {
	case SentinelFirstRun:
		return "first run, no previous data"
	case SentinelNoChanges:
		return "No changes since last run"
	}

	switch e.Direction {
	case DirectionNew:
		return fmt.Sprintf("%s: now available (%s)", e.Label, formatValue(e.Unit, currency, *e.Current, true))
	case DirectionGone:
		return fmt.Sprintf("%s: no longer available", e.Label)
	}
	return fmt.Sprintf("%s: %s → %s (%s)",
		e.Label,
		formatValue(e.Unit, currency, *e.Previous, false),
		formatValue(e.Unit, currency, *e.Current, false),
		formatDelta(e.Unit, currency, e.Delta),
	)
}

func formatValue(u Unit, currency string, v float64, withUnit bool) string {
	switch u {
	case UnitCurrency:
		return money.Format(currency, v)
	case UnitSeats:
		if withUnit {
			return fmt.Sprintf("%s seats", money.Whole(v))
		}
		return money.Whole(v)
	default:
		if withUnit {
			return fmt.Sprintf("%s pts", money.Whole(v))
		}
		return money.Whole(v)
	}
}

func formatDelta(u Unit, currency string, d float64) string {
	sign := "+"
	if d < 0 {
		sign = "-"
		d = -d
	}
	switch u {
	case UnitCurrency:
		return sign + money.Format(currency, d)
	case UnitSeats:
		return fmt.Sprintf("%s%s seats", sign, money.Whole(d))
	default:
		return fmt.Sprintf("%s%s pts", sign, money.Whole(d))
	}
}
