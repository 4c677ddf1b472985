package summary

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"marketbot/internal/config"
	"marketbot/internal/quotes"
	"marketbot/internal/session"
)

func fp(v float64) *float64 { return &v }

func TestMarket(t *testing.T) {
	t.Parallel()
	ch, pct := 5.0, 5.0/145.0*100
	qs := []quotes.Quote{
		{Symbol: "AAPL", Price: fp(150), Change: &ch, ChangePct: &pct},
		{Symbol: "MSFT"},
	}
	got := Market(qs)
	want := "*Market update*\nAAPL: 150 (+5.00, +3.45%)\nMSFT: -"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Market mismatch (-want +got):\n%s", diff)
	}
}

func TestMarketEmpty(t *testing.T) {
	t.Parallel()
	if got := Market(nil); got != "*Market update*\n" {
		t.Fatalf("Market(nil) = %q", got)
	}
}

func TestMarketWithSession(t *testing.T) {
	t.Parallel()
	calc, err := session.NewCalculator(config.MarketConfig{
		Timezone:        "America/New_York",
		DisplayTimezone: "Asia/Riyadh",
		Open:            "09:30",
		Close:           "16:00",
	})
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	ny, _ := time.LoadLocation("America/New_York")
	got := MarketWithSession([]quotes.Quote{{Symbol: "AAPL", Price: fp(150)}}, calc, time.Date(2026, 8, 29, 12, 0, 0, 0, ny))
	if !strings.Contains(got, "AAPL: 150") {
		t.Fatalf("missing quote line:\n%s", got)
	}
	if !strings.Contains(got, "Market is closed") {
		t.Fatalf("missing session status:\n%s", got)
	}
}
