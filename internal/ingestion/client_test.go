package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"fantasy-hero-lab/internal/config"
	"fantasy-hero-lab/internal/domain"
)

func testAPIConfig(baseURL string) config.APIConfig {
	return config.APIConfig{
		BaseURL:      baseURL,
		BearerToken:  "token-123",
		Cookie:       "session=abc",
		RateLimitRPS: 100,
		Burst:        10,
		Timeout:      config.Duration(5 * time.Second),
	}
}

func TestFetchSource_ParsesExport(t *testing.T) {
	var gotAuth, gotCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotCookie = r.Header.Get("Cookie")
		if r.URL.Path != "/exports/listings.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("hero_id,rarity4_lowest_price\n1,0.05\n"))
	}))
	defer srv.Close()

	c := NewClient(testAPIConfig(srv.URL), zerolog.Nop())
	tbl, err := c.FetchSource(context.Background(), domain.SourceListings)
	if err != nil {
		t.Fatalf("FetchSource: %v", err)
	}

	if tbl.NumRows() != 1 || tbl.Get(0, "rarity4_lowest_price") != "0.05" {
		t.Errorf("unexpected table: %d rows", tbl.NumRows())
	}
	if gotAuth != "Bearer token-123" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotCookie != "session=abc" {
		t.Errorf("expected session cookie, got %q", gotCookie)
	}
}

func TestFetchSource_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(testAPIConfig(srv.URL), zerolog.Nop())
	if _, err := c.FetchSource(context.Background(), domain.SourceListings); err == nil {
		t.Error("expected error for 401 response")
	}
}

func TestFetchSource_EmptyExport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(testAPIConfig(srv.URL), zerolog.Nop())
	if _, err := c.FetchSource(context.Background(), domain.SourceBids); err == nil {
		t.Error("expected error for empty export body")
	}
}
