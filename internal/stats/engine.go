// Package stats computes per-hero row statistics over the tournament score
// matrix. Column subsets are built from the run-time discovered column list,
// never from a hardcoded tournament roster.
package stats

import (
	"math"

	"fantasy-hero-lab/internal/domain"
	"fantasy-hero-lab/internal/table"
	"fantasy-hero-lab/internal/tournament"
)

// Derived statistic columns.
const (
	ColAverage       = "Average"
	ColMainAve       = "Main_Tournaments_Ave"
	ColLast4Ave      = "Main_Last_4_Ave"
	ColVariance      = "Variance"
	ColMainVariance  = "Main_Tournaments_Variance"
	ColLast4Variance = "Main_Last_4_Variance"
	ColStdDev        = "Standard_Deviation"
	ColMainStdDev    = "Main_Tournaments_Standard_Deviation"
	ColLast4StdDev   = "Main_Last_4_Standard_Deviation"
	ColMovingAvg3    = "Moving_Avg_3"

	// ZScorePrefix prefixes the per-column z-score columns.
	ZScorePrefix = "Z_Score_"
)

// Engine computes row statistics. The zero value is not usable; NewEngine
// sets the canonical parameters. Historical pipeline revisions differed only
// in these knobs, so they are configuration rather than forked code.
type Engine struct {
	// LastN is how many of the most recent Main tournaments form the
	// "last N" subset.
	LastN int

	// MovingWindow is the trailing window size for the moving average over
	// Main tournaments by recency.
	MovingWindow int

	// IsMain classifies a score column as a Main tournament column.
	IsMain func(col string) bool
}

// NewEngine returns an engine with the canonical parameters.
func NewEngine() *Engine {
	return &Engine{
		LastN:        4,
		MovingWindow: 3,
		IsMain:       tournament.IsMainColumn,
	}
}

// subset is one column selection with its derived column names.
type subset struct {
	cols                   []string
	aveCol, varCol, stdCol string
}

// Compute adds the derived statistic columns to the matrix table in place.
// tournamentCols must be in recency order (most recent first). Non-numeric
// and null cells are ignored inside each reduction; rows with no usable
// values get zero-valued statistics so they survive into downstream tables.
// Every z-score with a zero or undefined standard deviation is 0 by
// definition, never NaN.
func (e *Engine) Compute(t *table.Table, tournamentCols []string) {
	numericCols := append([]string{}, tournamentCols...)
	if t.HasCol(domain.ColHeroFantasyScore) {
		numericCols = append(numericCols, domain.ColHeroFantasyScore)
	}

	var mainCols []string
	for _, c := range tournamentCols {
		if e.IsMain(c) {
			mainCols = append(mainCols, c)
		}
	}
	lastN := mainCols
	if len(lastN) > e.LastN {
		lastN = lastN[:e.LastN]
	}

	subsets := []subset{
		{numericCols, ColAverage, ColVariance, ColStdDev},
		{mainCols, ColMainAve, ColMainVariance, ColMainStdDev},
		{lastN, ColLast4Ave, ColLast4Variance, ColLast4StdDev},
	}

	// The moving average is the trailing window of the Main ordering: the
	// last MovingWindow columns of the recency-descending list.
	movingCols := mainCols
	if len(movingCols) > e.MovingWindow {
		movingCols = movingCols[len(movingCols)-e.MovingWindow:]
	}

	for i := 0; i < t.NumRows(); i++ {
		for _, s := range subsets {
			vals := rowValues(t, i, s.cols)
			mean := Mean(vals)
			variance := Variance(vals, mean)
			t.SetFloat(i, s.aveCol, mean)
			t.SetFloat(i, s.varCol, variance)
			t.SetFloat(i, s.stdCol, StdDev(vals, mean))
		}

		avg, _ := t.Float(i, ColAverage)
		std, _ := t.Float(i, ColStdDev)
		for _, c := range numericCols {
			z := 0.0
			if v, ok := t.Float(i, c); ok && std > 0 {
				z = (v - avg) / std
			}
			t.SetFloat(i, ZScorePrefix+c, z)
		}

		t.SetFloat(i, ColMovingAvg3, Mean(rowValues(t, i, movingCols)))
	}
}

// rowValues collects the numeric cells of cols for one row, dropping nulls
// and unparseable values.
func rowValues(t *table.Table, i int, cols []string) []float64 {
	vals := make([]float64, 0, len(cols))
	for _, c := range cols {
		if v, ok := t.Float(i, c); ok {
			vals = append(vals, v)
		}
	}
	return vals
}

// Mean returns the arithmetic mean, 0 for no values.
func Mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// Variance returns the sample variance (n-1 denominator), 0 below 2 values.
func Variance(vals []float64, mean float64) float64 {
	n := len(vals)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range vals {
		d := v - mean
		sumSq += d * d
	}
	return sumSq / float64(n-1)
}

// StdDev returns the sample standard deviation.
func StdDev(vals []float64, mean float64) float64 {
	return math.Sqrt(Variance(vals, mean))
}
