package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"FareSentinel/internal/calculator"
	"FareSentinel/internal/model"
	"FareSentinel/internal/selector"
)

// Collector fetches, filters and selects offers for every query of a plan.
type Collector struct {
	Trip          model.Trip
	Rules         Rules
	Cash          CashFetcher
	Rewards       RewardFetcher
	Distributions DistributionFetcher
	Booster       *calculator.BoosterTable
	Estimator     *calculator.ContextEstimator
	Tracer        trace.Tracer

	limiter *rateLimiter
}

// NewCollector creates a Collector. Any fetcher may be nil, in which case
// its queries yield empty selections. interval spaces upstream calls.
func NewCollector(trip model.Trip, rules Rules, cash CashFetcher, rewards RewardFetcher, dists DistributionFetcher, interval time.Duration) *Collector {
	return &Collector{
		Trip:          trip,
		Rules:         rules,
		Cash:          cash,
		Rewards:       rewards,
		Distributions: dists,
		Booster:       calculator.DefaultBoosterTable(),
		Estimator:     calculator.NewContextEstimator("AUD"),
		Tracer:        noop.NewTracerProvider().Tracer("collector"),
		limiter:       newRateLimiter(interval),
	}
}

func (c *Collector) request(q model.Query) SearchRequest {
	return SearchRequest{
		Route:      q.Route,
		Date:       c.Trip.Date,
		Passengers: c.Trip.Passengers,
		Cabin:      q.Cabin,
	}
}

// Collect runs every query in plan. A failing query is logged and recorded
// in the set's Errors; the remaining queries still run.
func (c *Collector) Collect(ctx context.Context, plan []model.Query) *model.SelectionSet {
	set := model.NewSelectionSet(c.Trip)
	for _, q := range plan {
		if ctx.Err() != nil {
			set.Errors[q.QueryKey] = ctx.Err()
			continue
		}
		c.collectOne(ctx, q, set)
	}
	return set
}

func (c *Collector) collectOne(ctx context.Context, q model.Query, set *model.SelectionSet) {
	ctx, span := c.Tracer.Start(ctx, "collect "+q.QueryKey.String(),
		trace.WithAttributes(attribute.String("route", q.Route.String())))
	defer span.End()

	var (
		n   int
		err error
	)
	switch q.Kind {
	case model.KindCash:
		var sel model.Selection[model.CashOffer]
		sel, n, err = c.collectCash(ctx, q)
		set.Cash[q.QueryKey] = sel
		if err == nil && sel.Preferred != nil && q.Segment != model.SegmentFirstLeg {
			if pc, ok := c.priceContext(ctx, q, sel.Preferred.PricePP); ok {
				set.Context[q.QueryKey] = pc
			}
		}
	case model.KindReward:
		var sel model.Selection[model.RewardOffer]
		sel, n, err = c.collectRewards(ctx, q)
		set.Reward[q.QueryKey] = sel
	default:
		err = fmt.Errorf("unknown offer kind %q", q.Kind)
	}

	span.SetAttributes(attribute.Int("offers", n))
	if err != nil {
		span.RecordError(err)
		set.Errors[q.QueryKey] = err
		log.Printf("[WARN] %s: %v", q, err)
		return
	}
	log.Printf("[INFO] %s: %d offers kept", q, n)
}

func (c *Collector) collectCash(ctx context.Context, q model.Query) (model.Selection[model.CashOffer], int, error) {
	if c.Cash == nil {
		return model.Selection[model.CashOffer]{}, 0, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return model.Selection[model.CashOffer]{}, 0, err
	}
	candidates, err := c.Cash.FetchCash(ctx, c.request(q))
	if err != nil {
		return model.Selection[model.CashOffer]{}, 0, fmt.Errorf("%s: %w", c.Cash.Name(), err)
	}
	pool := make([]model.CashOffer, 0, len(candidates))
	for _, cand := range candidates {
		if o, ok := c.Rules.Cash(cand); ok {
			pool = append(pool, o)
		}
	}
	sel, err := selector.Cash(pool)
	return sel, len(pool), err
}

func (c *Collector) collectRewards(ctx context.Context, q model.Query) (model.Selection[model.RewardOffer], int, error) {
	if c.Rewards == nil {
		return model.Selection[model.RewardOffer]{}, 0, nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return model.Selection[model.RewardOffer]{}, 0, err
	}
	candidates, err := c.Rewards.FetchRewards(ctx, c.request(q))
	if err != nil {
		return model.Selection[model.RewardOffer]{}, 0, fmt.Errorf("%s: %w", c.Rewards.Name(), err)
	}
	pool := make([]model.RewardOffer, 0, len(candidates))
	for _, cand := range candidates {
		o, ok, err := c.Rules.Reward(cand, c.Booster)
		if err != nil {
			log.Printf("[WARN] %s: skipping reward offer %v: %v", q, cand.Flights, err)
			continue
		}
		if ok {
			pool = append(pool, o)
		}
	}
	sel, err := selector.Reward(pool)
	return sel, len(pool), err
}

// priceContext fetches the distribution for q and places pricePP in it.
// A missing distribution still yields an unavailable context.
func (c *Collector) priceContext(ctx context.Context, q model.Query, pricePP float64) (model.PriceContext, bool) {
	if c.Distributions == nil {
		return model.PriceContext{}, false
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return model.PriceContext{}, false
	}
	dist, err := c.Distributions.FetchDistribution(ctx, q.Route, c.Trip.Date, q.Cabin)
	if err != nil {
		log.Printf("[WARN] %s price metrics: %v", q, err)
		dist = nil
	}
	pc, err := c.Estimator.Estimate(pricePP, dist)
	if err != nil {
		log.Printf("[WARN] %s price context: %v", q, err)
		return model.PriceContext{}, false
	}
	return pc, true
}
