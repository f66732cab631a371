package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fantasy-hero-lab/internal/table"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLatest_PicksMostRecentTimestamp(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "basic_hero_stats_240101_0900.csv", "hero_handle\nold\n")
	writeFile(t, dir, "basic_hero_stats_240102_0900.csv", "hero_handle\nnew\n")

	r := NewResolver(dir, zerolog.Nop())
	tbl, err := r.Latest("basic_hero_stats")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got := tbl.Get(0, "hero_handle"); got != "new" {
		t.Errorf("expected newest snapshot, got row %q", got)
	}
}

func TestLatest_PrefixMustMatchExactly(t *testing.T) {
	dir := t.TempDir()
	// hero_stats must not swallow basic_hero_stats or hero_stats-suffixed names.
	writeFile(t, dir, "basic_hero_stats_240101_0900.csv", "hero_handle\nbasic\n")
	writeFile(t, dir, "hero_stats_240102_0900.csv", "hero_handle\ndetailed\n")

	r := NewResolver(dir, zerolog.Nop())
	tbl, err := r.Latest("hero_stats")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got := tbl.Get(0, "hero_handle"); got != "detailed" {
		t.Errorf("expected hero_stats snapshot, got row %q", got)
	}
}

func TestLatest_EmptyFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "listings_240101_0900.csv", "hero_id,rarity4_lowest_price\n1,0.5\n")
	writeFile(t, dir, "listings_240102_0900.csv", "") // truncated export

	r := NewResolver(dir, zerolog.Nop())
	tbl, err := r.Latest("listings")
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if got := tbl.Get(0, "rarity4_lowest_price"); got != "0.5" {
		t.Errorf("expected fallback to previous snapshot, got %q", got)
	}
}

func TestLatest_AllMalformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bids_240101_0900.csv", "")

	r := NewResolver(dir, zerolog.Nop())
	if _, err := r.Latest("bids"); !errors.Is(err, ErrMalformedSnapshot) {
		t.Errorf("expected ErrMalformedSnapshot, got %v", err)
	}
}

func TestLatest_SourceNotFound(t *testing.T) {
	r := NewResolver(t.TempDir(), zerolog.Nop())
	if _, err := r.Latest("portfolio"); !errors.Is(err, ErrSourceNotFound) {
		t.Errorf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestLatest_TimestampTieBreaksLexically(t *testing.T) {
	dir := t.TempDir()
	// Same timestamp cannot happen from one exporter, but two exporters can
	// collide within a minute; selection must still be deterministic.
	writeFile(t, dir, "portfolio_240101_0900.csv", "hero_handle\na\n")

	r := NewResolver(dir, zerolog.Nop())
	cands, err := r.scan("portfolio")
	if err != nil {
		t.Fatal(err)
	}
	if len(cands) != 1 || cands[0].name != "portfolio_240101_0900.csv" {
		t.Errorf("unexpected scan result: %+v", cands)
	}
}

func TestWriteFileAtomic_NoTempLeftBehind(t *testing.T) {
	dir := t.TempDir()
	tbl := table.New("hero_handle")
	tbl.Append(table.Row{"hero_handle": "alice"})

	path := filepath.Join(dir, "allHeroData.csv")
	if err := WriteFileAtomic(path, tbl); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "allHeroData.csv" {
		t.Errorf("expected only the final file, got %v", entries)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "hero_handle\n") {
		t.Errorf("unexpected content: %q", string(data))
	}
}

func TestSaveTimestamped(t *testing.T) {
	dir := t.TempDir()
	tbl := table.New("hero_id")
	tbl.Append(table.Row{"hero_id": "1"})

	now := time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC)
	path, err := SaveTimestamped(dir, "basic_hero_stats", tbl, now)
	if err != nil {
		t.Fatalf("SaveTimestamped: %v", err)
	}
	if filepath.Base(path) != "basic_hero_stats_240305_1430.csv" {
		t.Errorf("unexpected snapshot name: %s", path)
	}

	empty := table.New("hero_id")
	if _, err := SaveTimestamped(dir, "basic_hero_stats", empty, now); err == nil {
		t.Error("expected error saving empty table")
	}
}
