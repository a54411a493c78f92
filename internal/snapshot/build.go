package snapshot

import "FareSentinel/internal/model"

// Build projects the cheapest preferred-carrier offer of each catalog
// metric's query. Metrics whose query has no preferred offer are absent.
func Build(set *model.SelectionSet) Snapshot {
	values := make(map[string]float64, len(Catalog))
	if set == nil {
		return New(values)
	}
	for _, m := range Catalog {
		switch {
		case m.cash != nil:
			if o := set.Cash[m.Query].Preferred; o != nil {
				values[m.Name] = m.cash(*o)
			}
		case m.reward != nil:
			if o := set.Reward[m.Query].Preferred; o != nil {
				values[m.Name] = m.reward(*o)
			}
		}
	}
	return New(values)
}
