package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"FareSentinel/internal/model"
)

// DefaultSeatsAeroURL is the seats.aero partner API.
const DefaultSeatsAeroURL = "https://seats.aero/partnerapi"

// SeatsAeroFetcher implements RewardFetcher using the seats.aero partner API.
type SeatsAeroFetcher struct {
	BaseURL string
	APIKey  string
	Take    int
	Client  *http.Client
}

// NewSeatsAeroFetcher creates a fetcher with optional proxy support.
func NewSeatsAeroFetcher(baseURL, apiKey, proxyURL string) *SeatsAeroFetcher {
	if baseURL == "" {
		baseURL = DefaultSeatsAeroURL
	}
	return &SeatsAeroFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		APIKey:  apiKey,
		Take:    50,
		Client:  newHTTPClient(proxyURL, 30*time.Second),
	}
}

func (f *SeatsAeroFetcher) Name() string { return "seats.aero" }

// seatsItem is one availability record. Cabin fields are prefixed J for
// business and Y for economy.
type seatsItem struct {
	Source          string     `json:"Source"`
	Carriers        string     `json:"Carriers"`
	FlightNumbers   string     `json:"FlightNumbers"`
	JAvailable      bool       `json:"JAvailable"`
	JRemainingSeats flexNumber `json:"JRemainingSeats"`
	JMileageCost    flexNumber `json:"JMileageCost"`
	JTaxes          flexNumber `json:"JTaxes"`
	YAvailable      bool       `json:"YAvailable"`
	YRemainingSeats flexNumber `json:"YRemainingSeats"`
	YMileageCost    flexNumber `json:"YMileageCost"`
	YTaxes          flexNumber `json:"YTaxes"`
}

func (it seatsItem) forCabin(cabin model.Cabin) RewardCandidate {
	c := RewardCandidate{
		Source:   it.Source,
		Cabin:    cabin,
		Carriers: splitList(it.Carriers),
		Flights:  splitList(it.FlightNumbers),
	}
	if cabin == model.CabinBusiness {
		c.Available = it.JAvailable
		c.Seats = int(it.JRemainingSeats.Value)
		c.PointsPP = int(it.JMileageCost.Value)
		c.TaxesPP = it.JTaxes.Value
	} else {
		c.Available = it.YAvailable
		c.Seats = int(it.YRemainingSeats.Value)
		c.PointsPP = int(it.YMileageCost.Value)
		c.TaxesPP = it.YTaxes.Value
	}
	return c
}

func (f *SeatsAeroFetcher) FetchRewards(ctx context.Context, req SearchRequest) ([]RewardCandidate, error) {
	q := url.Values{
		"origin_airport":      {req.Route.Origin},
		"destination_airport": {req.Route.Destination},
		"start_date":          {req.Date},
		"end_date":            {req.Date},
		"cabin":               {string(req.Cabin)},
		"take":                {fmt.Sprint(f.Take)},
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Partner-Authorization", f.APIKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("seats.aero search %s: %w", req.Route, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("seats.aero search %s: status %d, body: %s", req.Route, resp.StatusCode, string(body))
	}

	var result struct {
		Data []seatsItem `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("seats.aero decode: %w", err)
	}

	out := make([]RewardCandidate, 0, len(result.Data))
	for _, it := range result.Data {
		out = append(out, it.forCabin(req.Cabin))
	}
	return out, nil
}
