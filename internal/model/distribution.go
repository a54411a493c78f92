package model

// PriceDistribution is a five-point historical per-person price summary
// for one route and cabin. Conceptually Min <= Low <= Median <= High <= Max.
type PriceDistribution struct {
	Min    float64 `json:"min"`
	Low    float64 `json:"low"`
	Median float64 `json:"median"`
	High   float64 `json:"high"`
	Max    float64 `json:"max"`
}

// Rating is the coarse verdict attached to a price context.
type Rating string

const (
	RatingFavorable   Rating = "favorable"
	RatingNeutral     Rating = "neutral"
	RatingUnfavorable Rating = "unfavorable"
)

// PriceContext places one observed price within a PriceDistribution.
type PriceContext struct {
	Available   bool
	Percentile  float64 // numeric position on the 0..100 scale
	Label       string  // "~55th", ">95th"
	Rating      Rating
	VsMedian    float64 // price - median, signed
	Currency    string
	Description string // full human-readable label
}

func (p PriceContext) String() string {
	return p.Description
}
