package features

import (
	"strings"

	"github.com/yourusername/edge-finder/internal/oddsfeed"
)

// Column names produced by odds conversion and enrichment
const (
	ColEventID            = "event_id"
	ColEventName          = "event_name"
	ColMarketID           = "market_id"
	ColMarketName         = "market_name"
	ColOutcomeName        = "outcome_name"
	ColOddsType           = "odds_type"
	ColBestPrice          = "best_price"
	ColHandicap           = "handicap"
	ColImpliedProbability = "implied_probability"
	ColHandicapSign       = "handicap_sign"
	ColMarketCategory     = "market_category"
	ColOddsSpread         = "odds_spread"
	ColProfitMargin       = "profit_margin"
)

// FromEventOdds flattens provider odds into one dataset row per priced
// outcome
func FromEventOdds(events []oddsfeed.EventOdds) *Dataset {
	d := NewDataset([]string{
		ColEventID, ColEventName, ColMarketID, ColMarketName,
		ColOutcomeName, ColOddsType, ColBestPrice, ColHandicap,
	})

	for _, event := range events {
		for _, market := range event.Markets {
			for _, outcome := range market.Outcomes {
				row := []Cell{
					String(event.SourceID),
					String(event.EventName),
					String(market.MarketID),
					String(normalizeText(market.MarketName)),
					String(normalizeText(outcome.Name)),
					String(market.OddsType),
					priceCell(outcome.BestPrice),
					handicapCell(outcome.Handicap),
				}
				// Row shape is fixed above, append cannot fail
				_ = d.AppendRow(row)
			}
		}
	}

	return d
}

// Enrich adds the derived feature columns used by the prediction models:
// implied probability, handicap sign, market category, per-market odds
// spread and profit margin.
func Enrich(d *Dataset) {
	priceIdx := d.ColumnIndex(ColBestPrice)
	if priceIdx >= 0 && !d.HasColumn(ColImpliedProbability) {
		d.AddColumn(ColImpliedProbability, func(row int) Cell {
			cell := d.Cell(row, priceIdx)
			if cell.Kind != CellNumeric || cell.Num <= 0 {
				return Missing()
			}
			p := 1.0 / cell.Num
			if p > 1 {
				p = 1
			}
			return Numeric(p)
		})
	}

	handicapIdx := d.ColumnIndex(ColHandicap)
	if handicapIdx >= 0 && !d.HasColumn(ColHandicapSign) {
		d.AddColumn(ColHandicapSign, func(row int) Cell {
			cell := d.Cell(row, handicapIdx)
			if cell.Kind != CellNumeric {
				return String("zero")
			}
			switch {
			case cell.Num > 0:
				return String("positive")
			case cell.Num < 0:
				return String("negative")
			default:
				return String("zero")
			}
		})
	}

	marketIdx := d.ColumnIndex(ColMarketName)
	if marketIdx >= 0 && !d.HasColumn(ColMarketCategory) {
		d.AddColumn(ColMarketCategory, func(row int) Cell {
			cell := d.Cell(row, marketIdx)
			if cell.Kind != CellString {
				return String("other")
			}
			return String(marketCategory(cell.Str))
		})
	}

	marketIDIdx := d.ColumnIndex(ColMarketID)
	if marketIDIdx >= 0 && priceIdx >= 0 && !d.HasColumn(ColOddsSpread) {
		spreads := marketSpreads(d, marketIDIdx, priceIdx)
		d.AddColumn(ColOddsSpread, func(row int) Cell {
			key := d.Cell(row, marketIDIdx)
			if key.Kind != CellString {
				return Missing()
			}
			spread, ok := spreads[key.Str]
			if !ok {
				return Missing()
			}
			return Numeric(spread)
		})
	}

	probIdx := d.ColumnIndex(ColImpliedProbability)
	if probIdx >= 0 && !d.HasColumn(ColProfitMargin) {
		d.AddColumn(ColProfitMargin, func(row int) Cell {
			cell := d.Cell(row, probIdx)
			if cell.Kind != CellNumeric {
				return Missing()
			}
			return Numeric(1 - cell.Num)
		})
	}
}

// marketCategory buckets a lowercased market name
func marketCategory(name string) string {
	name = normalizeText(name)
	if strings.Contains(name, "over") || strings.Contains(name, "under") {
		return "totals"
	}
	if strings.Contains(name, "score") {
		return "both teams to score"
	}
	return "other"
}

// marketSpreads computes max-min best price per market ID
func marketSpreads(d *Dataset, marketIDIdx, priceIdx int) map[string]float64 {
	type span struct {
		min, max float64
		seen     bool
	}
	spans := make(map[string]*span)

	for r := range d.Rows {
		key := d.Cell(r, marketIDIdx)
		price := d.Cell(r, priceIdx)
		if key.Kind != CellString || price.Kind != CellNumeric {
			continue
		}
		s, ok := spans[key.Str]
		if !ok {
			s = &span{}
			spans[key.Str] = s
		}
		if !s.seen || price.Num < s.min {
			s.min = price.Num
		}
		if !s.seen || price.Num > s.max {
			s.max = price.Num
		}
		s.seen = true
	}

	spreads := make(map[string]float64, len(spans))
	for k, s := range spans {
		spreads[k] = s.max - s.min
	}
	return spreads
}

func priceCell(price float64) Cell {
	if price <= 0 {
		return Missing()
	}
	return Numeric(price)
}

func handicapCell(h *float64) Cell {
	if h == nil {
		return Missing()
	}
	return Numeric(*h)
}
