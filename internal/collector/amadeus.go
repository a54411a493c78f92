package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"FareSentinel/internal/model"
)

// DefaultAmadeusURL is the Amadeus self-service test environment.
const DefaultAmadeusURL = "https://test.api.amadeus.com"

// AmadeusFetcher implements CashFetcher and DistributionFetcher using the
// Amadeus self-service REST API.
type AmadeusFetcher struct {
	BaseURL    string
	Currency   string
	MaxResults int
	Tokens     TokenProvider
	Client     *http.Client
}

// NewAmadeusFetcher creates a fetcher with optional proxy support. Tokens
// are obtained through the client-credentials flow against baseURL.
func NewAmadeusFetcher(baseURL, clientID, clientSecret, currency, proxyURL string) *AmadeusFetcher {
	if baseURL == "" {
		baseURL = DefaultAmadeusURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	client := newHTTPClient(proxyURL, 30*time.Second)
	return &AmadeusFetcher{
		BaseURL:    baseURL,
		Currency:   currency,
		MaxResults: 50,
		Tokens:     NewClientCredentials(baseURL+"/v1/security/oauth2/token", clientID, clientSecret, client),
		Client:     client,
	}
}

func (f *AmadeusFetcher) Name() string { return "amadeus" }

// amadeusOffers is the subset of /v2/shopping/flight-offers we read.
type amadeusOffers struct {
	Data []struct {
		Itineraries []struct {
			Duration string `json:"duration"`
			Segments []struct {
				Departure   amadeusPoint `json:"departure"`
				Arrival     amadeusPoint `json:"arrival"`
				CarrierCode string       `json:"carrierCode"`
				Number      string       `json:"number"`
				Operating   *struct {
					CarrierCode string `json:"carrierCode"`
				} `json:"operating"`
			} `json:"segments"`
		} `json:"itineraries"`
		Price struct {
			GrandTotal flexNumber `json:"grandTotal"`
		} `json:"price"`
	} `json:"data"`
}

type amadeusPoint struct {
	IataCode string `json:"iataCode"`
	At       string `json:"at"`
}

func travelClass(c model.Cabin) string {
	return strings.ToUpper(string(c))
}

func (f *AmadeusFetcher) FetchCash(ctx context.Context, req SearchRequest) ([]CashCandidate, error) {
	q := url.Values{
		"originLocationCode":      {req.Route.Origin},
		"destinationLocationCode": {req.Route.Destination},
		"departureDate":           {req.Date},
		"adults":                  {strconv.Itoa(req.Passengers)},
		"travelClass":             {travelClass(req.Cabin)},
		"max":                     {strconv.Itoa(f.MaxResults)},
		"currencyCode":            {f.Currency},
		"nonStop":                 {"false"},
	}
	var offers amadeusOffers
	if _, err := f.get(ctx, "/v2/shopping/flight-offers", q, &offers); err != nil {
		return nil, fmt.Errorf("amadeus flight offers %s: %w", req.Route, err)
	}

	out := make([]CashCandidate, 0, len(offers.Data))
	for _, o := range offers.Data {
		if len(o.Itineraries) == 0 || !o.Price.GrandTotal.Set {
			continue
		}
		itin := o.Itineraries[0]
		c := CashCandidate{
			Cabin:      req.Cabin,
			Duration:   parseISODuration(itin.Duration),
			TotalPrice: o.Price.GrandTotal.Value,
		}
		for _, s := range itin.Segments {
			carrier := s.CarrierCode
			if s.Operating != nil && s.Operating.CarrierCode != "" {
				carrier = s.Operating.CarrierCode
			}
			c.Segments = append(c.Segments, FlightSegment{
				Carrier: carrier,
				Number:  s.CarrierCode + s.Number,
				From:    s.Departure.IataCode,
				To:      s.Arrival.IataCode,
				Depart:  parseLocalTime(s.Departure.At),
				Arrive:  parseLocalTime(s.Arrival.At),
			})
		}
		out = append(out, c)
	}
	return out, nil
}

// amadeusMetrics is the subset of /v1/analytics/itinerary-price-metrics we read.
type amadeusMetrics struct {
	Data []struct {
		PriceMetrics []struct {
			TravelClass string `json:"travelClass"`
			Amount      struct {
				Min    flexNumber `json:"min"`
				Low    flexNumber `json:"low"`
				Medium flexNumber `json:"medium"`
				High   flexNumber `json:"high"`
				Max    flexNumber `json:"max"`
			} `json:"amount"`
		} `json:"priceMetrics"`
	} `json:"data"`
}

// FetchDistribution looks up the price metrics for the departure month.
// Distributions missing any of the five points are reported as absent.
func (f *AmadeusFetcher) FetchDistribution(ctx context.Context, route model.Route, date string, cabin model.Cabin) (*model.PriceDistribution, error) {
	month := date
	if len(month) >= 7 {
		month = month[:7]
	}
	q := url.Values{
		"originIataCode":      {route.Origin},
		"destinationIataCode": {route.Destination},
		"departureDate":       {month},
		"currencyCode":        {f.Currency},
		"oneWay":              {"true"},
	}
	var metrics amadeusMetrics
	status, err := f.get(ctx, "/v1/analytics/itinerary-price-metrics", q, &metrics)
	if status == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("amadeus price metrics %s: %w", route, err)
	}

	for _, item := range metrics.Data {
		for _, m := range item.PriceMetrics {
			if !strings.EqualFold(m.TravelClass, travelClass(cabin)) {
				continue
			}
			a := m.Amount
			if !a.Min.Set || !a.Low.Set || !a.Medium.Set || !a.High.Set || !a.Max.Set {
				log.Printf("[WARN] amadeus price metrics %s %s: incomplete distribution, ignoring", route, cabin)
				return nil, nil
			}
			return &model.PriceDistribution{
				Min:    a.Min.Value,
				Low:    a.Low.Value,
				Median: a.Medium.Value,
				High:   a.High.Value,
				Max:    a.Max.Value,
			}, nil
		}
	}
	return nil, nil
}

// get performs an authenticated GET and decodes the JSON body into out.
func (f *AmadeusFetcher) get(ctx context.Context, path string, q url.Values, out any) (int, error) {
	token, err := f.Tokens.Token(ctx)
	if err != nil {
		return 0, fmt.Errorf("auth: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		if inv, ok := f.Tokens.(interface{ Invalidate() }); ok {
			inv.Invalidate()
		}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("status %d, body: %s", resp.StatusCode, string(body))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode: %w", err)
	}
	return resp.StatusCode, nil
}

var (
	isoHours   = regexp.MustCompile(`(\d+)H`)
	isoMinutes = regexp.MustCompile(`(\d+)M`)
)

// parseISODuration reads the hour and minute parts of "PT21H40M".
func parseISODuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	var d time.Duration
	if m := isoHours.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		d += time.Duration(h) * time.Hour
	}
	if m := isoMinutes.FindStringSubmatch(s); m != nil {
		mins, _ := strconv.Atoi(m[1])
		d += time.Duration(mins) * time.Minute
	}
	return d
}

// parseLocalTime parses zone-less airport local times.
func parseLocalTime(s string) time.Time {
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
