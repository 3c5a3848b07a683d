package features

import (
	"math"
	"strings"
	"testing"

	"github.com/yourusername/edge-finder/internal/oddsfeed"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind CellKind
	}{
		{"Numeric", "2.45", CellNumeric},
		{"Integer", "10", CellNumeric},
		{"String", "over 2.5 goals", CellString},
		{"Empty", "", CellMissing},
		{"Whitespace", "   ", CellMissing},
		{"NA marker", "N/A", CellMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cell := ParseCell(tt.raw)
			if cell.Kind != tt.kind {
				t.Errorf("Expected kind %v, got %v", tt.kind, cell.Kind)
			}
		})
	}
}

func buildTestDataset() *Dataset {
	d := NewDataset([]string{"price", "market"})
	d.AppendRow([]Cell{Numeric(2.0), String("totals")})
	d.AppendRow([]Cell{Missing(), String("other")})
	d.AppendRow([]Cell{Numeric(4.0), Missing()})
	return d
}

func TestFillMissingMean(t *testing.T) {
	d := buildTestDataset()
	if err := FillMissing(d, StrategyMean); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	cell := d.Cell(1, 0)
	if cell.Kind != CellNumeric || cell.Num != 3.0 {
		t.Errorf("Expected missing price filled with mean 3.0, got %+v", cell)
	}

	// Mean strategy does not touch categorical columns
	if d.Cell(2, 1).Kind != CellMissing {
		t.Error("Expected categorical missing cell untouched by mean strategy")
	}
}

func TestFillMissingMode(t *testing.T) {
	d := NewDataset([]string{"market"})
	d.AppendRow([]Cell{String("totals")})
	d.AppendRow([]Cell{String("totals")})
	d.AppendRow([]Cell{String("other")})
	d.AppendRow([]Cell{Missing()})

	if err := FillMissing(d, StrategyMode); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	cell := d.Cell(3, 0)
	if cell.Kind != CellString || cell.Str != "totals" {
		t.Errorf("Expected missing cell filled with mode 'totals', got %+v", cell)
	}
}

func TestFillMissingDrop(t *testing.T) {
	d := buildTestDataset()
	if err := FillMissing(d, StrategyDrop); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if d.NumRows() != 1 {
		t.Errorf("Expected 1 complete row after drop, got %d", d.NumRows())
	}
}

func TestFillMissingZero(t *testing.T) {
	d := buildTestDataset()
	if err := FillMissing(d, StrategyZero); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if cell := d.Cell(1, 0); cell.Kind != CellNumeric || cell.Num != 0 {
		t.Errorf("Expected zero fill, got %+v", cell)
	}
}

func TestScalerZeroVariance(t *testing.T) {
	d := NewDataset([]string{"constant"})
	d.AppendRow([]Cell{Numeric(5)})
	d.AppendRow([]Cell{Numeric(5)})
	d.AppendRow([]Cell{Numeric(5)})

	scaler, err := FitScaler(d, []string{"constant"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := scaler.Transform(d); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	for r := 0; r < d.NumRows(); r++ {
		cell := d.Cell(r, 0)
		if cell.Num != 0 {
			t.Errorf("Expected zero-variance column scaled to 0, got %v", cell.Num)
		}
	}
}

func TestScalerStandardizes(t *testing.T) {
	d := NewDataset([]string{"price"})
	d.AppendRow([]Cell{Numeric(1)})
	d.AppendRow([]Cell{Numeric(2)})
	d.AppendRow([]Cell{Numeric(3)})

	scaler, err := FitScaler(d, []string{"price"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if err := scaler.Transform(d); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	var sum float64
	for r := 0; r < d.NumRows(); r++ {
		sum += d.Cell(r, 0).Num
	}
	if math.Abs(sum) > 1e-9 {
		t.Errorf("Expected scaled column centered on zero, sum=%v", sum)
	}
}

func TestEncoderUnknownCategory(t *testing.T) {
	train := NewDataset([]string{"market"})
	train.AppendRow([]Cell{String("totals")})
	train.AppendRow([]Cell{String("other")})

	encoder, err := FitEncoder(train, []string{"market"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	serve := NewDataset([]string{"market"})
	serve.AppendRow([]Cell{String("handicaps")})
	if err := encoder.Transform(serve); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !serve.HasColumn("market_totals") || !serve.HasColumn("market_other") {
		t.Fatalf("Expected indicator columns from training categories, got %v", serve.Columns)
	}
	for _, name := range []string{"market_totals", "market_other"} {
		if v := serve.Cell(0, serve.ColumnIndex(name)).Num; v != 0 {
			t.Errorf("Expected unseen category to produce zero indicators, %s=%v", name, v)
		}
	}
}

func TestScrubURLs(t *testing.T) {
	d := NewDataset([]string{"link", "name"})
	d.AppendRow([]Cell{String("https://bookie.example/event/1"), String("Home")})
	d.AppendRow([]Cell{String("http://bookie.example/event/2"), String("Away")})

	ScrubURLs(d)

	for r := 0; r < d.NumRows(); r++ {
		if d.Cell(r, 0).Kind != CellMissing {
			t.Errorf("Expected URL cell scrubbed at row %d", r)
		}
		if d.Cell(r, 1).Kind != CellString {
			t.Errorf("Expected plain string untouched at row %d", r)
		}
	}
}

func sampleEvents() []oddsfeed.EventOdds {
	neg := -1.5
	return []oddsfeed.EventOdds{
		{
			SourceID:  "ev1",
			EventName: "Arsenal v Chelsea",
			Markets: []oddsfeed.MarketOdds{
				{
					MarketID:   "m1",
					MarketName: "Over/Under 2.5",
					Outcomes: []oddsfeed.OutcomeOdds{
						{Name: "Over 2.5", BestPrice: 2.0},
						{Name: "Under 2.5", BestPrice: 1.8},
					},
				},
				{
					MarketID:   "m2",
					MarketName: "Both Teams To Score",
					Outcomes: []oddsfeed.OutcomeOdds{
						{Name: "Yes", BestPrice: 1.6, Handicap: &neg},
					},
				},
			},
		},
	}
}

func TestFromEventOdds(t *testing.T) {
	d := FromEventOdds(sampleEvents())

	if d.NumRows() != 3 {
		t.Fatalf("Expected 3 rows (one per outcome), got %d", d.NumRows())
	}
	if !d.HasColumn(ColBestPrice) || !d.HasColumn(ColMarketName) {
		t.Fatalf("Expected odds columns, got %v", d.Columns)
	}

	marketIdx := d.ColumnIndex(ColMarketName)
	if got := d.Cell(0, marketIdx).Str; got != "over/under 2.5" {
		t.Errorf("Expected lowercased market name, got %q", got)
	}
}

func TestEnrich(t *testing.T) {
	d := FromEventOdds(sampleEvents())
	Enrich(d)

	for _, col := range []string{ColImpliedProbability, ColHandicapSign, ColMarketCategory, ColOddsSpread, ColProfitMargin} {
		if !d.HasColumn(col) {
			t.Fatalf("Expected derived column %q, got %v", col, d.Columns)
		}
	}

	probIdx := d.ColumnIndex(ColImpliedProbability)
	if got := d.Cell(0, probIdx).Num; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Expected implied probability 0.5 for price 2.0, got %v", got)
	}

	marginIdx := d.ColumnIndex(ColProfitMargin)
	if got := d.Cell(0, marginIdx).Num; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("Expected profit margin 0.5, got %v", got)
	}

	catIdx := d.ColumnIndex(ColMarketCategory)
	if got := d.Cell(0, catIdx).Str; got != "totals" {
		t.Errorf("Expected market category 'totals', got %q", got)
	}
	if got := d.Cell(2, catIdx).Str; got != "both teams to score" {
		t.Errorf("Expected market category 'both teams to score', got %q", got)
	}

	signIdx := d.ColumnIndex(ColHandicapSign)
	if got := d.Cell(2, signIdx).Str; got != "negative" {
		t.Errorf("Expected negative handicap sign, got %q", got)
	}

	spreadIdx := d.ColumnIndex(ColOddsSpread)
	if got := d.Cell(0, spreadIdx).Num; math.Abs(got-0.2) > 1e-9 {
		t.Errorf("Expected odds spread 0.2 for market m1, got %v", got)
	}
}

func TestPipelineRoundTrip(t *testing.T) {
	train := FromEventOdds(sampleEvents())
	Enrich(train)
	train.AddColumn("outcome", func(row int) Cell { return Numeric(float64(row % 2)) })

	pipeline, err := FitPipeline(train, StrategyMean, "outcome")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(pipeline.FeatureColumns) == 0 {
		t.Fatal("Expected feature columns after fitting")
	}
	for _, col := range pipeline.FeatureColumns {
		if col == "outcome" {
			t.Fatal("Target column must not appear in feature columns")
		}
	}

	serve := FromEventOdds(sampleEvents())
	Enrich(serve)

	matrix, err := pipeline.Apply(serve)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(matrix) != 3 {
		t.Fatalf("Expected 3 feature vectors, got %d", len(matrix))
	}
	for _, vec := range matrix {
		if len(vec) != len(pipeline.FeatureColumns) {
			t.Fatalf("Expected width %d, got %d", len(pipeline.FeatureColumns), len(vec))
		}
	}
}

func TestCSVRoundTrip(t *testing.T) {
	d := NewDataset([]string{"price", "market"})
	d.AppendRow([]Cell{Numeric(2.5), String("totals")})
	d.AppendRow([]Cell{Missing(), String("other")})

	var buf strings.Builder
	if err := WriteCSV(&buf, d); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	loaded, err := ReadCSV(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if loaded.NumRows() != 2 {
		t.Fatalf("Expected 2 rows, got %d", loaded.NumRows())
	}
	if loaded.Cell(0, 0).Num != 2.5 {
		t.Errorf("Expected numeric 2.5 preserved, got %+v", loaded.Cell(0, 0))
	}
	if loaded.Cell(1, 0).Kind != CellMissing {
		t.Errorf("Expected empty field read back as missing, got %+v", loaded.Cell(1, 0))
	}
}
