package portfolio

import (
	"testing"

	"github.com/rs/zerolog"

	"fantasy-hero-lab/internal/table"
)

func heroTable() *table.Table {
	t := table.New(
		"hero_handle", "hero_name", "current_rank",
		"rarity3_lowest_price", "rarity4_lowest_price",
		"rarity3lastSalePrice", "rarity4lastSalePrice",
		"rarity3lastSaleTime", "rarity4lastSaleTime",
		"rarity3Count", "rarity4Count",
		"rarity3_order_count",
		"Main 1 Score", "Average", "Main_Tournaments_Variance",
		"Standard_Deviation", "Z_Score_Main 1 Score",
	)
	t.Append(table.Row{
		"hero_handle":               "alice",
		"hero_name":                 "Alice",
		"current_rank":              "5",
		"rarity3_lowest_price":      "0.30",
		"rarity4_lowest_price":      "0.10",
		"rarity3lastSalePrice":      "0.25",
		"rarity4lastSalePrice":      "0.08",
		"rarity3Count":              "40",
		"rarity4Count":              "400",
		"rarity3_order_count":       "3",
		"Main 1 Score":              "20",
		"Average":                   "20",
		"Main_Tournaments_Variance": "8",
		"Standard_Deviation":        "4",
		"Z_Score_Main 1 Score":      "1.2",
	})
	return t
}

func holdings(rows ...table.Row) *table.Table {
	t := table.New("hero_handle", "hero_name", "rarity", "hero_rarity_index", "cards_number")
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

func TestProject_ResolvesColumnsByRowRarity(t *testing.T) {
	h := holdings(
		table.Row{"hero_handle": "alice", "rarity": "3", "hero_rarity_index": "1_3", "cards_number": "2"},
		table.Row{"hero_handle": "alice", "rarity": "4", "hero_rarity_index": "1_4", "cards_number": "1"},
	)

	out := New(zerolog.Nop()).Project(h, heroTable(), []string{"Main 1 Score"})

	if got := out.Get(0, "lowestPrice"); got != "0.30" {
		t.Errorf("rarity 3 lowestPrice: expected 0.30, got %q", got)
	}
	if got := out.Get(1, "lowestPrice"); got != "0.10" {
		t.Errorf("rarity 4 lowestPrice: expected 0.10, got %q", got)
	}
	if got := out.Get(0, "lastSalePrice"); got != "0.25" {
		t.Errorf("rarity 3 lastSalePrice: expected 0.25, got %q", got)
	}
	if got := out.Get(1, "rarityCount"); got != "400" {
		t.Errorf("rarity 4 rarityCount: expected 400, got %q", got)
	}
}

func TestProject_DropsPerRarityFamilies(t *testing.T) {
	h := holdings(table.Row{"hero_handle": "alice", "rarity": "3", "hero_rarity_index": "1_3"})

	out := New(zerolog.Nop()).Project(h, heroTable(), nil)

	for _, col := range []string{
		"rarity3_lowest_price", "rarity4lastSalePrice",
		"rarity3lastSaleTime", "rarity4Count", "rarity3_order_count",
	} {
		if out.HasCol(col) {
			t.Errorf("expected per-rarity column %s dropped", col)
		}
	}
}

func TestProject_BoostedTierMultipliers(t *testing.T) {
	h := holdings(
		table.Row{"hero_handle": "alice", "rarity": "3", "hero_rarity_index": "1_3"},
		table.Row{"hero_handle": "alice", "rarity": "4", "hero_rarity_index": "1_4"},
	)

	out := New(zerolog.Nop()).Project(h, heroTable(), []string{"Main 1 Score"})

	// Tier 3 row: scores and stddev x1.5, variance x2.25, z-scores untouched.
	if got, _ := out.Float(0, "Main 1 Score"); got != 30 {
		t.Errorf("boosted score: expected 30, got %v", got)
	}
	if got, _ := out.Float(0, "Average"); got != 30 {
		t.Errorf("boosted average: expected 30, got %v", got)
	}
	if got, _ := out.Float(0, "Main_Tournaments_Variance"); got != 18 {
		t.Errorf("boosted variance: expected 18, got %v", got)
	}
	if got, _ := out.Float(0, "Standard_Deviation"); got != 6 {
		t.Errorf("boosted stddev: expected 6, got %v", got)
	}
	if got, _ := out.Float(0, "Z_Score_Main 1 Score"); got != 1.2 {
		t.Errorf("z-score must not be rescaled, got %v", got)
	}

	// Non-boosted row keeps merged values.
	if got, _ := out.Float(1, "Main 1 Score"); got != 20 {
		t.Errorf("unboosted score: expected 20, got %v", got)
	}
}

func TestProject_HoldingsSideWinsDuplicateColumns(t *testing.T) {
	h := holdings(table.Row{
		"hero_handle":       "alice",
		"hero_name":         "Alice (owned)",
		"rarity":            "4",
		"hero_rarity_index": "1_4",
	})

	out := New(zerolog.Nop()).Project(h, heroTable(), nil)

	if got := out.Get(0, "hero_name"); got != "Alice (owned)" {
		t.Errorf("expected holdings value kept, got %q", got)
	}
	if got := out.Get(0, "current_rank"); got != "5" {
		t.Errorf("expected hero-table column joined in, got %q", got)
	}
}

func TestProject_UnknownRarityResolvesToZero(t *testing.T) {
	h := holdings(table.Row{"hero_handle": "alice", "rarity": "9", "hero_rarity_index": "1_9"})

	out := New(zerolog.Nop()).Project(h, heroTable(), nil)

	for _, col := range []string{"lastSalePrice", "lowestPrice", "rarityCount"} {
		if got := out.Get(0, col); got != "0" {
			t.Errorf("%s: expected 0 for unknown rarity, got %q", col, got)
		}
	}
}

func TestProject_NullPriceBecomesZero(t *testing.T) {
	heroes := table.New("hero_handle", "rarity4_lowest_price", "rarity4lastSalePrice", "rarity4Count")
	heroes.Append(table.Row{"hero_handle": "alice"})
	h := holdings(table.Row{"hero_handle": "alice", "rarity": "4", "hero_rarity_index": "1_4"})

	out := New(zerolog.Nop()).Project(h, heroes, nil)

	if got := out.Get(0, "lowestPrice"); got != "0" {
		t.Errorf("null lowest price: expected 0, got %q", got)
	}
	if got := out.Get(0, "lastSalePrice"); got != "0" {
		t.Errorf("null last sale price: expected 0, got %q", got)
	}
}

func TestProject_LeadingColumns(t *testing.T) {
	h := holdings(table.Row{"hero_handle": "alice", "rarity": "4", "hero_rarity_index": "1_4"})

	out := New(zerolog.Nop()).Project(h, heroTable(), nil)

	cols := out.Cols()
	if cols[0] != "hero_name" || cols[1] != "hero_handle" {
		t.Errorf("expected hero_name, hero_handle first, got %v", cols[:2])
	}
}
