package tournament

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeResult(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestAggregate_ColumnsOrderedByRecency(t *testing.T) {
	dir := t.TempDir()
	writeResult(t, dir, "Main_1_2024-01-01_2024-01-02.csv", "hero_handle,fantasy_score\nalice,10\nbob,20\n")
	writeResult(t, dir, "Main_2_2024-01-08_2024-01-09.csv", "hero_handle,fantasy_score\nalice,30\nbob,40\n")
	writeResult(t, dir, "Flash_Tournament_2024-01-05_2024-01-06.csv", "hero_handle,fantasy_score\nalice,5\n")

	m, err := NewAggregator(dir, zerolog.Nop()).Aggregate()
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	want := []string{"Main 2 Score", "Flash Tournament Score", "Main 1 Score"}
	if len(m.Columns) != len(want) {
		t.Fatalf("expected columns %v, got %v", want, m.Columns)
	}
	for i, w := range want {
		if m.Columns[i] != w {
			t.Fatalf("expected columns %v, got %v", want, m.Columns)
		}
	}

	mains := m.MainColumns()
	if len(mains) != 2 || mains[0] != "Main 2 Score" || mains[1] != "Main 1 Score" {
		t.Errorf("unexpected main columns: %v", mains)
	}
}

func TestAggregate_OuterJoinKeepsMissingHeroes(t *testing.T) {
	dir := t.TempDir()
	writeResult(t, dir, "Main_1_2024-01-01_2024-01-02.csv", "hero_handle,fantasy_score\nalice,10\n")
	writeResult(t, dir, "Main_2_2024-01-08_2024-01-09.csv", "hero_handle,fantasy_score\nbob,40\n")

	m, err := NewAggregator(dir, zerolog.Nop()).Aggregate()
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if m.Table.NumRows() != 2 {
		t.Fatalf("expected 2 heroes, got %d", m.Table.NumRows())
	}

	byHandle := map[string]int{}
	for i := 0; i < m.Table.NumRows(); i++ {
		byHandle[m.Table.Get(i, "hero_handle")] = i
	}
	if got := m.Table.Get(byHandle["alice"], "Main 2 Score"); got != "" {
		t.Errorf("alice played no Main 2, expected null, got %q", got)
	}
	if got := m.Table.Get(byHandle["alice"], "Main 1 Score"); got != "10" {
		t.Errorf("alice Main 1 Score: expected 10, got %q", got)
	}
	if got := m.Table.Get(byHandle["bob"], "Main 2 Score"); got != "40" {
		t.Errorf("bob Main 2 Score: expected 40, got %q", got)
	}
}

func TestAggregate_SkipsFilesMissingRequiredColumns(t *testing.T) {
	dir := t.TempDir()
	writeResult(t, dir, "Main_1_2024-01-01_2024-01-02.csv", "hero_handle,fantasy_score\nalice,10\n")
	writeResult(t, dir, "Main_2_2024-01-08_2024-01-09.csv", "handle,score\nalice,99\n")

	m, err := NewAggregator(dir, zerolog.Nop()).Aggregate()
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(m.Columns) != 1 || m.Columns[0] != "Main 1 Score" {
		t.Errorf("expected only the valid file, got columns %v", m.Columns)
	}
}

func TestAggregate_IgnoresNonMatchingNames(t *testing.T) {
	dir := t.TempDir()
	writeResult(t, dir, "notes.txt", "whatever")
	writeResult(t, dir, "Main_1_2024-13-99_2024-01-02.csv", "hero_handle,fantasy_score\nalice,10\n")

	m, err := NewAggregator(dir, zerolog.Nop()).Aggregate()
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if len(m.Columns) != 0 {
		t.Errorf("expected no columns, got %v", m.Columns)
	}
}

func TestAggregate_MissingDirIsEmptyMatrix(t *testing.T) {
	m, err := NewAggregator(filepath.Join(t.TempDir(), "nope"), zerolog.Nop()).Aggregate()
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if m.Table.NumRows() != 0 || len(m.Columns) != 0 {
		t.Errorf("expected empty matrix, got %d rows, columns %v", m.Table.NumRows(), m.Columns)
	}
}
