package model

import (
	"strings"
	"time"
)

// Cabin is the travel class an offer is priced in.
type Cabin string

const (
	CabinEconomy  Cabin = "economy"
	CabinBusiness Cabin = "business"
)

// Title returns the display form of the cabin ("Business").
func (c Cabin) Title() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// OfferKind distinguishes cash fares from reward seats.
type OfferKind string

const (
	KindCash   OfferKind = "cash"
	KindReward OfferKind = "reward"
)

// CashOffer is one cash-fare itinerary.
type CashOffer struct {
	Cabin        Cabin
	CarrierCodes []string // sorted, non-empty
	IsPreferred  bool
	Flights      []string // ordered designators, e.g. "QR148"
	Via          string   // first connection airport, empty when non-stop
	Stops        int
	Layover      time.Duration
	Duration     time.Duration
	DepartAt     time.Time
	ArriveAt     time.Time
	TotalPrice   float64
	PricePP      float64
}

// RewardOffer is one reward-seat itinerary in a loyalty program.
type RewardOffer struct {
	Cabin          Cabin
	Program        string
	CarrierCodes   []string
	IsPreferred    bool
	Flights        []string
	SeatsAvailable int
	PointsPP       int
	TaxesPP        float64
	TotalPoints    int
	TotalTaxes     float64
	PointsBought   int     // booster points actually purchased, may exceed TotalPoints
	PurchaseCost   float64 // booster price for TotalPoints
	AllInCost      float64 // PurchaseCost + TotalTaxes
}

// HasCarrier reports whether code is among codes.
func HasCarrier(codes []string, code string) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}
