package collector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FareSentinel/internal/model"
)

const offersBody = `{"data":[
 {"itineraries":[{"duration":"PT23H5M","segments":[
   {"departure":{"iataCode":"MAD","at":"2026-09-14T08:00:00"},"arrival":{"iataCode":"DOH","at":"2026-09-14T16:00:00"},"carrierCode":"QR","number":"148"},
   {"departure":{"iataCode":"DOH","at":"2026-09-14T19:30:00"},"arrival":{"iataCode":"SYD","at":"2026-09-15T17:05:00"},"carrierCode":"QR","number":"908","operating":{"carrierCode":"QR"}}
 ]}],"price":{"grandTotal":"5600.00"}},
 {"itineraries":[{"duration":"PT20H","segments":[
   {"departure":{"iataCode":"MAD","at":"2026-09-14T10:00:00"},"arrival":{"iataCode":"SYD","at":"2026-09-15T08:00:00"},"carrierCode":"IB","number":"9","operating":{"carrierCode":"EK"}}
 ]}],"price":{"grandTotal":6200}},
 {"itineraries":[],"price":{"grandTotal":"1"}}
]}`

const metricsBody = `{"data":[{"priceMetrics":[
 {"travelClass":"ECONOMY","amount":{"min":"800","low":"1000","medium":"1200","high":"1500","max":"2000"}},
 {"travelClass":"BUSINESS","amount":{"min":"2000","low":"2400","medium":"2700","high":"3200","max":"4000"}}
]}]}`

func newAmadeusServer(t *testing.T, tokenCalls *int32) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(tokenCalls, 1)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.Form.Get("grant_type"))
		assert.Equal(t, "id", r.Form.Get("client_id"))
		w.Write([]byte(`{"access_token":"tok","expires_in":1799}`))
	})
	mux.HandleFunc("/v2/shopping/flight-offers", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		q := r.URL.Query()
		assert.Equal(t, "MAD", q.Get("originLocationCode"))
		assert.Equal(t, "SYD", q.Get("destinationLocationCode"))
		assert.Equal(t, "BUSINESS", q.Get("travelClass"))
		assert.Equal(t, "2", q.Get("adults"))
		assert.Equal(t, "AUD", q.Get("currencyCode"))
		w.Write([]byte(offersBody))
	})
	mux.HandleFunc("/v1/analytics/itinerary-price-metrics", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("destinationIataCode") == "LHR" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "2026-09", r.URL.Query().Get("departureDate"))
		w.Write([]byte(metricsBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestAmadeusFetchCash(t *testing.T) {
	var calls int32
	srv := newAmadeusServer(t, &calls)
	f := NewAmadeusFetcher(srv.URL, "id", "secret", "AUD", "")

	got, err := f.FetchCash(context.Background(), SearchRequest{
		Route:      model.Route{Origin: "MAD", Destination: "SYD"},
		Date:       "2026-09-14",
		Passengers: 2,
		Cabin:      model.CabinBusiness,
	})
	require.NoError(t, err)
	require.Len(t, got, 2, "offers without itineraries are skipped")

	first := got[0]
	assert.Equal(t, 5600.0, first.TotalPrice)
	assert.Equal(t, 23*time.Hour+5*time.Minute, first.Duration)
	require.Len(t, first.Segments, 2)
	assert.Equal(t, "QR148", first.Segments[0].Number)
	assert.Equal(t, "DOH", first.Segments[1].From)
	assert.Equal(t, 19, first.Segments[1].Depart.Hour())

	assert.Equal(t, "EK", got[1].Segments[0].Carrier, "operating carrier wins")
	assert.Equal(t, "IB9", got[1].Segments[0].Number)
	assert.Equal(t, 6200.0, got[1].TotalPrice)

	_, err = f.FetchCash(context.Background(), SearchRequest{
		Route: model.Route{Origin: "MAD", Destination: "SYD"}, Date: "2026-09-14", Passengers: 2, Cabin: model.CabinBusiness,
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "token is cached")
}

func TestAmadeusFetchDistribution(t *testing.T) {
	var calls int32
	srv := newAmadeusServer(t, &calls)
	f := NewAmadeusFetcher(srv.URL, "id", "secret", "AUD", "")

	dist, err := f.FetchDistribution(context.Background(), model.Route{Origin: "DOH", Destination: "SYD"}, "2026-09-14", model.CabinBusiness)
	require.NoError(t, err)
	require.NotNil(t, dist)
	assert.Equal(t, model.PriceDistribution{Min: 2000, Low: 2400, Median: 2700, High: 3200, Max: 4000}, *dist)

	dist, err = f.FetchDistribution(context.Background(), model.Route{Origin: "MAD", Destination: "LHR"}, "2026-09-14", model.CabinBusiness)
	require.NoError(t, err)
	assert.Nil(t, dist, "404 means no metrics")
}

func TestAmadeusIncompleteDistribution(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/security/oauth2/token" {
			w.Write([]byte(`{"access_token":"tok","expires_in":1799}`))
			return
		}
		w.Write([]byte(`{"data":[{"priceMetrics":[{"travelClass":"BUSINESS","amount":{"min":"2000","medium":"2700","max":null}}]}]}`))
	}))
	defer srv.Close()

	f := NewAmadeusFetcher(srv.URL, "id", "secret", "AUD", "")
	dist, err := f.FetchDistribution(context.Background(), model.Route{Origin: "MAD", Destination: "SYD"}, "2026-09-14", model.CabinBusiness)
	require.NoError(t, err)
	assert.Nil(t, dist)
}

func TestAmadeusUnauthorizedInvalidatesToken(t *testing.T) {
	var tokenCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1/security/oauth2/token" {
			atomic.AddInt32(&tokenCalls, 1)
			w.Write([]byte(`{"access_token":"tok","expires_in":1799}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"errors":[{"title":"invalid token"}]}`))
	}))
	defer srv.Close()

	f := NewAmadeusFetcher(srv.URL, "id", "secret", "AUD", "")
	req := SearchRequest{Route: model.Route{Origin: "MAD", Destination: "SYD"}, Date: "2026-09-14", Passengers: 1, Cabin: model.CabinEconomy}
	_, err := f.FetchCash(context.Background(), req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
	_, err = f.FetchCash(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&tokenCalls))
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"PT21H40M", 21*time.Hour + 40*time.Minute},
		{"PT9H", 9 * time.Hour},
		{"PT45M", 45 * time.Minute},
		{"", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseISODuration(tt.in), tt.in)
	}
}
