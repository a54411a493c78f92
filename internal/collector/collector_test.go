package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FareSentinel/internal/model"
)

var testTrip = model.Trip{Origin: "MAD", Destination: "SYD", Hub: "DOH", Date: "2026-09-14", Passengers: 2}

type failingCash struct{}

func (failingCash) Name() string { return "broken" }

func (failingCash) FetchCash(context.Context, SearchRequest) ([]CashCandidate, error) {
	return nil, errors.New("upstream 500")
}

func TestCollect_SampleScenario(t *testing.T) {
	mock := NewSampleMock(testTrip)
	c := NewCollector(testTrip, testRules, mock, mock, mock, 0)

	set := c.Collect(context.Background(), testTrip.Plan())
	assert.Empty(t, set.Errors)

	leg := set.CashFor(model.SegmentPriorityLeg, model.CabinBusiness)
	require.NotNil(t, leg.Preferred)
	require.NotNil(t, leg.Other)
	assert.Equal(t, 2800.0, leg.Preferred.PricePP)
	assert.Equal(t, []string{"QR"}, leg.Preferred.CarrierCodes)
	assert.Equal(t, 3100.0, leg.Other.PricePP)

	pc, ok := set.ContextFor(model.SegmentPriorityLeg, model.CabinBusiness)
	require.True(t, ok)
	assert.Equal(t, "~55th", pc.Label)
	assert.Equal(t, model.RatingNeutral, pc.Rating)

	_, ok = set.ContextFor(model.SegmentFirstLeg, model.CabinBusiness)
	assert.False(t, ok, "first leg is never placed in a distribution")

	through := set.CashFor(model.SegmentThrough, model.CabinBusiness)
	require.NotNil(t, through.Preferred)
	require.NotNil(t, through.Other)
	assert.Less(t, through.Other.TotalPrice, through.Preferred.TotalPrice)
	assert.Equal(t, "DOH", through.Preferred.Via)

	rw := set.RewardFor(model.SegmentPriorityLeg, model.CabinBusiness)
	require.NotNil(t, rw.Preferred)
	assert.Nil(t, rw.Other)
	assert.Equal(t, 135000, rw.Preferred.TotalPoints)
	assert.Equal(t, 3, rw.Preferred.SeatsAvailable)
}

func TestCollect_FailureIsolated(t *testing.T) {
	mock := NewSampleMock(testTrip)
	c := NewCollector(testTrip, testRules, failingCash{}, mock, nil, 0)

	plan := testTrip.Plan()
	set := c.Collect(context.Background(), plan)

	for _, q := range plan {
		if q.Kind == model.KindCash {
			assert.Error(t, set.Errors[q.QueryKey], q.String())
			assert.True(t, set.Cash[q.QueryKey].Empty())
			continue
		}
		assert.NoError(t, set.Errors[q.QueryKey], q.String())
	}
	assert.NotNil(t, set.RewardFor(model.SegmentThrough, model.CabinBusiness).Preferred)
	assert.Empty(t, set.Context)
}

func TestCollect_NoFetchers(t *testing.T) {
	c := NewCollector(testTrip, testRules, nil, nil, nil, 0)
	set := c.Collect(context.Background(), testTrip.Plan())
	assert.Empty(t, set.Errors)
	for _, q := range testTrip.Plan() {
		if q.Kind == model.KindCash {
			assert.True(t, set.Cash[q.QueryKey].Empty())
		} else {
			assert.True(t, set.Reward[q.QueryKey].Empty())
		}
	}
}

func TestCollect_CanceledContext(t *testing.T) {
	mock := NewSampleMock(testTrip)
	c := NewCollector(testTrip, testRules, mock, mock, mock, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	set := c.Collect(ctx, testTrip.Plan())
	assert.Len(t, set.Errors, len(testTrip.Plan()))
	assert.Zero(t, mock.Calls)
}

func TestCollect_MissingDistribution(t *testing.T) {
	mock := NewSampleMock(testTrip)
	mock.Distributions = nil
	c := NewCollector(testTrip, testRules, mock, mock, mock, 0)

	set := c.Collect(context.Background(), testTrip.Plan())
	pc, ok := set.ContextFor(model.SegmentPriorityLeg, model.CabinBusiness)
	require.True(t, ok)
	assert.False(t, pc.Available)
}
