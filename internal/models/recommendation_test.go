package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestExpectedValue(t *testing.T) {
	// p=0.5 at evens is break-even
	ev := ExpectedValue(0.5, 2.0)
	if ev != 0 {
		t.Fatalf("expected break-even EV, got %f", ev)
	}

	ev = ExpectedValue(0.6, 2.0)
	if ev <= 0 {
		t.Fatalf("expected positive EV for 60%% at 2.0, got %f", ev)
	}

	ev = ExpectedValue(0.3, 2.0)
	if ev >= 0 {
		t.Fatalf("expected negative EV for 30%% at 2.0, got %f", ev)
	}
}

func TestBetCandidateIsValue(t *testing.T) {
	quote := OddsQuote{
		Time:      time.Now(),
		EventID:   uuid.New(),
		Market:    "match_winner",
		Outcome:   "home",
		Bookmaker: "bet365",
		Price:     2.5,
	}

	c := NewBetCandidate(quote, 0.5)
	if c.EV != ExpectedValue(0.5, 2.5) {
		t.Fatalf("candidate EV mismatch: %f", c.EV)
	}
	if !c.IsValue(0, 3.0) {
		t.Fatal("expected candidate to be value within odds cap")
	}
	if c.IsValue(0, 2.0) {
		t.Fatal("candidate above odds cap should not be value")
	}
	// max odds cap is inclusive
	if !c.IsValue(0, 2.5) {
		t.Fatal("candidate at exactly max odds should be value")
	}
}

func TestImpliedProbabilityClipped(t *testing.T) {
	q := OddsQuote{Price: 0.5}
	if got := q.ImpliedProbability(); got != 1 {
		t.Fatalf("expected implied probability clipped to 1, got %f", got)
	}

	q.Price = 0
	if got := q.ImpliedProbability(); got != 0 {
		t.Fatalf("expected 0 implied probability for non-positive price, got %f", got)
	}

	q.Price = 4
	if got := q.ImpliedProbability(); got != 0.25 {
		t.Fatalf("expected 0.25, got %f", got)
	}
	if got := q.ProfitMargin(); got != 0.75 {
		t.Fatalf("expected profit margin 0.75, got %f", got)
	}
}

func TestHandicapSign(t *testing.T) {
	neg := -1.5
	pos := 0.5
	zero := 0.0

	cases := []struct {
		handicap *float64
		want     string
	}{
		{nil, "zero"},
		{&zero, "zero"},
		{&pos, "positive"},
		{&neg, "negative"},
	}

	for _, tc := range cases {
		q := OddsQuote{Handicap: tc.handicap}
		if got := q.HandicapSign(); got != tc.want {
			t.Errorf("handicap sign: expected %s, got %s", tc.want, got)
		}
	}
}

func TestBetRecordPotentialProfit(t *testing.T) {
	b := BetRecord{
		Odds:  3.0,
		Stake: decimal.NewFromInt(10),
	}
	if !b.PotentialProfit().Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected potential profit 20, got %s", b.PotentialProfit())
	}
}

func TestRiskToleranceValid(t *testing.T) {
	if !RiskToleranceMedium.Valid() {
		t.Fatal("medium should be valid")
	}
	if RiskTolerance("reckless").Valid() {
		t.Fatal("unknown tolerance should be invalid")
	}
	if DefaultRiskTolerance != RiskToleranceMedium {
		t.Fatal("default risk tolerance should be medium")
	}
}
