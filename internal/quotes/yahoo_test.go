package quotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestYahooSourceGet(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("symbols"); got != "AAPL" {
			t.Errorf("symbols query = %q, want AAPL", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"quoteResponse":{"result":[{
			"symbol":"AAPL",
			"regularMarketPrice":150,
			"regularMarketPreviousClose":145,
			"regularMarketDayHigh":151.2,
			"regularMarketVolume":1000000
		}],"error":null}}`))
	}))
	defer srv.Close()

	src := NewYahooSource(srv.URL, time.Second)
	d, err := src.Get(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if d.Price == nil || *d.Price != 150 {
		t.Fatalf("Price = %v, want 150", d.Price)
	}
	if d.PreviousClose == nil || *d.PreviousClose != 145 {
		t.Fatalf("PreviousClose = %v, want 145", d.PreviousClose)
	}
	if d.DayLow != nil {
		t.Fatalf("DayLow should be absent, got %v", *d.DayLow)
	}
}

func TestYahooSourceEmptyResult(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"quoteResponse":{"result":[],"error":null}}`))
	}))
	defer srv.Close()

	src := NewYahooSource(srv.URL, time.Second)
	if _, err := src.Get(context.Background(), "NOPE"); err == nil {
		t.Fatal("expected error for empty result")
	}
}

func TestYahooSourceBadStatus(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	src := NewYahooSource(srv.URL, time.Second)
	if _, err := src.Get(context.Background(), "AAPL"); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}
