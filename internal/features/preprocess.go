package features

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// MissingValueStrategy controls how missing cells are handled
type MissingValueStrategy string

const (
	StrategyMean   MissingValueStrategy = "mean"
	StrategyMedian MissingValueStrategy = "median"
	StrategyMode   MissingValueStrategy = "mode"
	StrategyZero   MissingValueStrategy = "zero"
	StrategyDrop   MissingValueStrategy = "drop"
)

// Valid reports whether the strategy is one of the supported values
func (s MissingValueStrategy) Valid() bool {
	switch s {
	case StrategyMean, StrategyMedian, StrategyMode, StrategyZero, StrategyDrop:
		return true
	}
	return false
}

var urlPattern = regexp.MustCompile(`^http[s]?://`)

// ScrubURLs replaces string cells that look like URLs with missing values.
// Provider payloads carry bookmaker event links that must not leak into
// feature columns.
func ScrubURLs(d *Dataset) {
	for r, row := range d.Rows {
		for c, cell := range row {
			if cell.Kind == CellString && urlPattern.MatchString(cell.Str) {
				d.Rows[r][c] = Missing()
			}
		}
	}
}

// FillMissing applies the missing-value strategy in place. StrategyDrop
// removes rows containing any missing cell; the numeric strategies fill
// numeric columns and StrategyMode fills categorical columns.
func FillMissing(d *Dataset, strategy MissingValueStrategy) error {
	switch strategy {
	case StrategyDrop:
		kept := d.Rows[:0]
		for _, row := range d.Rows {
			missing := false
			for _, cell := range row {
				if cell.Kind == CellMissing {
					missing = true
					break
				}
			}
			if !missing {
				kept = append(kept, row)
			}
		}
		d.Rows = kept
		return nil

	case StrategyZero:
		for r, row := range d.Rows {
			for c, cell := range row {
				if cell.Kind == CellMissing {
					d.Rows[r][c] = Numeric(0)
				}
			}
		}
		return nil

	case StrategyMean, StrategyMedian:
		for c := range d.Columns {
			if !d.IsNumericColumn(c) {
				continue
			}
			values := d.ColumnValues(c)
			if len(values) == 0 {
				continue
			}
			var fill float64
			if strategy == StrategyMean {
				fill = mean(values)
			} else {
				fill = median(values)
			}
			for r := range d.Rows {
				if d.Rows[r][c].Kind == CellMissing {
					d.Rows[r][c] = Numeric(fill)
				}
			}
		}
		return nil

	case StrategyMode:
		for c := range d.Columns {
			if d.IsNumericColumn(c) {
				continue
			}
			values := d.ColumnStrings(c)
			if len(values) == 0 {
				continue
			}
			fill := mode(values)
			for r := range d.Rows {
				if d.Rows[r][c].Kind == CellMissing {
					d.Rows[r][c] = String(fill)
				}
			}
		}
		return nil

	default:
		return fmt.Errorf("unsupported missing value strategy %q", strategy)
	}
}

// Scaler standard-scales numeric columns to zero mean and unit variance.
// The fitted statistics are stored so prediction-time data is transformed
// with the training distribution.
type Scaler struct {
	Columns []string           `json:"columns"`
	Means   map[string]float64 `json:"means"`
	Stddevs map[string]float64 `json:"stddevs"`
}

// FitScaler computes per-column mean and stddev for the named columns
func FitScaler(d *Dataset, columns []string) (*Scaler, error) {
	s := &Scaler{
		Columns: append([]string(nil), columns...),
		Means:   make(map[string]float64),
		Stddevs: make(map[string]float64),
	}

	for _, name := range columns {
		idx := d.ColumnIndex(name)
		if idx < 0 {
			return nil, fmt.Errorf("column %q not found", name)
		}
		values := d.ColumnValues(idx)
		if len(values) == 0 {
			s.Means[name] = 0
			s.Stddevs[name] = 1
			continue
		}
		m := mean(values)
		sd := stddev(values, m)
		if sd == 0 {
			// Zero-variance columns scale to zero rather than dividing by zero
			sd = 1
		}
		s.Means[name] = m
		s.Stddevs[name] = sd
	}

	return s, nil
}

// Transform scales the fitted columns in place
func (s *Scaler) Transform(d *Dataset) error {
	for _, name := range s.Columns {
		idx := d.ColumnIndex(name)
		if idx < 0 {
			return fmt.Errorf("column %q not found", name)
		}
		m := s.Means[name]
		sd := s.Stddevs[name]
		for r := range d.Rows {
			cell := d.Rows[r][idx]
			if cell.Kind == CellNumeric {
				d.Rows[r][idx] = Numeric((cell.Num - m) / sd)
			}
		}
	}
	return nil
}

// Encoder one-hot encodes categorical columns. Categories are fixed at fit
// time; unseen categories at transform time produce all-zero indicator
// columns so the feature width never changes between training and serving.
type Encoder struct {
	Categories map[string][]string `json:"categories"` // column -> sorted category values
}

// FitEncoder records the distinct categories of the named columns
func FitEncoder(d *Dataset, columns []string) (*Encoder, error) {
	e := &Encoder{Categories: make(map[string][]string)}

	for _, name := range columns {
		idx := d.ColumnIndex(name)
		if idx < 0 {
			return nil, fmt.Errorf("column %q not found", name)
		}
		e.Categories[name] = d.distinctStrings(idx)
	}

	return e, nil
}

// Transform replaces each fitted column with indicator columns named
// "<column>_<category>"
func (e *Encoder) Transform(d *Dataset) error {
	names := make([]string, 0, len(e.Categories))
	for name := range e.Categories {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		idx := d.ColumnIndex(name)
		if idx < 0 {
			return fmt.Errorf("column %q not found", name)
		}

		values := make([]Cell, len(d.Rows))
		for r := range d.Rows {
			values[r] = d.Rows[r][idx]
		}
		d.DropColumn(name)

		for _, category := range e.Categories[name] {
			cat := category
			d.AddColumn(name+"_"+cat, func(row int) Cell {
				if values[row].Kind == CellString && values[row].Str == cat {
					return Numeric(1)
				}
				return Numeric(0)
			})
		}
	}

	return nil
}

// Pipeline bundles the fitted preprocessing state applied before a model.
// It is persisted alongside model weights so serving uses the training
// transformations.
type Pipeline struct {
	Strategy       MissingValueStrategy `json:"strategy"`
	Scaler         *Scaler              `json:"scaler"`
	Encoder        *Encoder             `json:"encoder"`
	FeatureColumns []string             `json:"feature_columns"` // final ordered model inputs
}

// FitPipeline cleans the dataset and fits scaling and encoding on it. The
// target column is excluded from transformation. The dataset is modified
// in place into its fully numeric form.
func FitPipeline(d *Dataset, strategy MissingValueStrategy, target string) (*Pipeline, error) {
	if !strategy.Valid() {
		return nil, fmt.Errorf("unsupported missing value strategy %q", strategy)
	}

	ScrubURLs(d)
	if err := FillMissing(d, strategy); err != nil {
		return nil, err
	}

	numeric := excludeColumn(d.NumericColumns(), target)
	categorical := excludeColumn(d.CategoricalColumns(), target)

	scaler, err := FitScaler(d, numeric)
	if err != nil {
		return nil, err
	}
	if err := scaler.Transform(d); err != nil {
		return nil, err
	}

	encoder, err := FitEncoder(d, categorical)
	if err != nil {
		return nil, err
	}
	if err := encoder.Transform(d); err != nil {
		return nil, err
	}

	p := &Pipeline{
		Strategy: strategy,
		Scaler:   scaler,
		Encoder:  encoder,
	}
	p.FeatureColumns = excludeColumn(d.Columns, target)

	return p, nil
}

// Apply transforms new data with the fitted state and returns the feature
// matrix in training column order
func (p *Pipeline) Apply(d *Dataset) ([][]float64, error) {
	ScrubURLs(d)

	strategy := p.Strategy
	if strategy == StrategyDrop {
		// Dropping rows at serving time would silently skip candidates
		strategy = StrategyZero
	}
	if err := FillMissing(d, strategy); err != nil {
		return nil, err
	}

	if err := p.Scaler.Transform(d); err != nil {
		return nil, err
	}
	if err := p.Encoder.Transform(d); err != nil {
		return nil, err
	}

	// Columns absent from the incoming data become zero features
	for _, name := range p.FeatureColumns {
		if !d.HasColumn(name) {
			d.AddColumn(name, func(int) Cell { return Numeric(0) })
		}
	}

	return d.Matrix(p.FeatureColumns)
}

func excludeColumn(columns []string, target string) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if c != target {
			out = append(out, c)
		}
	}
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func stddev(values []float64, m float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

func mode(values []string) string {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v]++
	}
	best := ""
	bestCount := -1
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > bestCount {
			best = k
			bestCount = counts[k]
		}
	}
	return best
}

func normalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
