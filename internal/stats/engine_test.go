package stats

import (
	"math"
	"testing"

	"fantasy-hero-lab/internal/table"
)

func newMatrix(rows ...table.Row) *table.Table {
	t := table.New("hero_handle", "Main 2 Score", "Main 1 Score", "Flash Score")
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

var matrixCols = []string{"Main 2 Score", "Main 1 Score", "Flash Score"}

func TestCompute_AverageIgnoresNullsAndGarbage(t *testing.T) {
	m := newMatrix(table.Row{
		"hero_handle":  "alice",
		"Main 2 Score": "10",
		"Main 1 Score": "20",
		"Flash Score":  "oops",
	})

	NewEngine().Compute(m, matrixCols)

	if got, _ := m.Float(0, ColAverage); got != 15 {
		t.Errorf("Average: expected 15, got %v", got)
	}
	if got, _ := m.Float(0, ColMainAve); got != 15 {
		t.Errorf("Main ave: expected 15, got %v", got)
	}
}

func TestCompute_SampleVarianceAndStdDev(t *testing.T) {
	m := newMatrix(table.Row{
		"hero_handle":  "alice",
		"Main 2 Score": "10",
		"Main 1 Score": "20",
	})

	NewEngine().Compute(m, matrixCols)

	// Sample variance of {10, 20} = 50, stddev = sqrt(50).
	if got, _ := m.Float(0, ColMainVariance); got != 50 {
		t.Errorf("variance: expected 50, got %v", got)
	}
	gotStd, _ := m.Float(0, ColMainStdDev)
	if math.Abs(gotStd-math.Sqrt(50)) > 1e-12 {
		t.Errorf("stddev: expected %v, got %v", math.Sqrt(50), gotStd)
	}
}

func TestCompute_ZScoreZeroVarianceIsZero(t *testing.T) {
	// Identical scores: stddev 0, every z-score must be 0, not NaN.
	m := newMatrix(table.Row{
		"hero_handle":  "alice",
		"Main 2 Score": "25",
		"Main 1 Score": "25",
	})

	NewEngine().Compute(m, matrixCols)

	for _, c := range matrixCols {
		got, ok := m.Float(0, ZScorePrefix+c)
		if !ok {
			t.Fatalf("z-score column %s missing", c)
		}
		if got != 0 {
			t.Errorf("z-score %s: expected 0 with zero stddev, got %v", c, got)
		}
	}
}

func TestCompute_ZScoreValues(t *testing.T) {
	m := newMatrix(table.Row{
		"hero_handle":  "alice",
		"Main 2 Score": "10",
		"Main 1 Score": "30",
	})

	NewEngine().Compute(m, matrixCols)

	avg := 20.0
	std := math.Sqrt(200) // sample variance of {10,30}
	want := (10 - avg) / std
	got, _ := m.Float(0, ZScorePrefix+"Main 2 Score")
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("z-score: expected %v, got %v", want, got)
	}
	// Null cell: z-score fills as 0.
	if got, _ := m.Float(0, ZScorePrefix+"Flash Score"); got != 0 {
		t.Errorf("null cell z-score: expected 0, got %v", got)
	}
}

func TestCompute_RowWithoutDataGetsZeroStats(t *testing.T) {
	m := newMatrix(table.Row{"hero_handle": "ghost"})

	NewEngine().Compute(m, matrixCols)

	for _, c := range []string{ColAverage, ColMainAve, ColLast4Ave, ColVariance, ColStdDev, ColMovingAvg3} {
		v, ok := m.Float(0, c)
		if !ok {
			t.Fatalf("derived column %s missing", c)
		}
		if v != 0 {
			t.Errorf("%s: expected 0 for empty row, got %v", c, v)
		}
	}
}

func TestCompute_LastNUsesMostRecentMainColumns(t *testing.T) {
	cols := []string{"Main 5 Score", "Main 4 Score", "Flash Score", "Main 3 Score", "Main 2 Score", "Main 1 Score"}
	m := table.New(append([]string{"hero_handle"}, cols...)...)
	m.Append(table.Row{
		"hero_handle":  "alice",
		"Main 5 Score": "50",
		"Main 4 Score": "40",
		"Flash Score":  "999",
		"Main 3 Score": "30",
		"Main 2 Score": "20",
		"Main 1 Score": "10",
	})

	NewEngine().Compute(m, cols)

	// Last-4 Main = Main 5..Main 2; Flash is not a Main tournament.
	if got, _ := m.Float(0, ColLast4Ave); got != 35 {
		t.Errorf("Last-4 ave: expected 35, got %v", got)
	}
	// Moving average is the trailing 3-column window of the Main ordering:
	// Main 3..Main 1, mean of 30/20/10.
	if got, _ := m.Float(0, ColMovingAvg3); got != 20 {
		t.Errorf("Moving_Avg_3: expected 20, got %v", got)
	}
}

func TestCompute_MovingAvgUsesTrailingWindow(t *testing.T) {
	cols := []string{"Main 4 Score", "Main 3 Score", "Main 2 Score", "Main 1 Score"}
	m := table.New(append([]string{"hero_handle"}, cols...)...)
	m.Append(table.Row{
		"hero_handle":  "alice",
		"Main 4 Score": "100",
		"Main 3 Score": "6",
		"Main 2 Score": "3",
		"Main 1 Score": "9",
	})

	NewEngine().Compute(m, cols)

	// The newest column (Main 4) falls outside the trailing window.
	if got, _ := m.Float(0, ColMovingAvg3); got != 6 {
		t.Errorf("Moving_Avg_3: expected 6, got %v", got)
	}
}

func TestCompute_HeroFantasyScoreJoinsAllSubsetOnly(t *testing.T) {
	m := table.New("hero_handle", "hero_fantasy_score", "Main 1 Score")
	m.Append(table.Row{
		"hero_handle":        "alice",
		"hero_fantasy_score": "60",
		"Main 1 Score":       "30",
	})

	NewEngine().Compute(m, []string{"Main 1 Score"})

	if got, _ := m.Float(0, ColAverage); got != 45 {
		t.Errorf("Average should include base fantasy score: expected 45, got %v", got)
	}
	if got, _ := m.Float(0, ColMainAve); got != 30 {
		t.Errorf("Main ave should exclude base fantasy score: expected 30, got %v", got)
	}
	if _, ok := m.Float(0, ZScorePrefix+"hero_fantasy_score"); !ok {
		t.Error("expected z-score column for hero_fantasy_score")
	}
}
