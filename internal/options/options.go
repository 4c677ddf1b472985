// Package options looks up option expiry dates and contract chains for a
// symbol.
package options

import (
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Contract is one row of an option chain. Quote fields are pointers because
// the feed omits them for thinly traded strikes.
type Contract struct {
	Strike       float64
	Bid          *float64
	Ask          *float64
	LastPrice    *float64
	Change       *float64
	OpenInterest *int64
	Volume       *int64
}

// Chain holds the calls and puts for a single expiry.
type Chain struct {
	Calls []Contract
	Puts  []Contract
}

// Source serves expiry dates and chains for a symbol. Expiry dates are
// "YYYY-MM-DD" strings.
type Source interface {
	Expiries(ctx context.Context, symbol string) ([]string, error)
	Chain(ctx context.Context, symbol, expiry string) (Chain, error)
}

// Nearest picks the contract whose strike is closest to want. On an exact
// distance tie the lower strike wins. exact reports whether the returned
// strike matches want; ok is false for an empty chain.
func Nearest(cs []Contract, want float64) (c Contract, exact, ok bool) {
	if len(cs) == 0 {
		return Contract{}, false, false
	}
	best := cs[0]
	for _, cand := range cs[1:] {
		d, bd := math.Abs(cand.Strike-want), math.Abs(best.Strike-want)
		if d < bd || (d == bd && cand.Strike < best.Strike) {
			best = cand
		}
	}
	return best, best.Strike == want, true
}

// TopByOpenInterest returns up to n contracts ordered by descending open
// interest. The input slice is not modified.
func TopByOpenInterest(cs []Contract, n int) []Contract {
	out := append([]Contract(nil), cs...)
	sort.SliceStable(out, func(i, j int) bool {
		return oi(out[i]) > oi(out[j])
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func oi(c Contract) int64 {
	if c.OpenInterest == nil {
		return 0
	}
	return *c.OpenInterest
}

// Line renders a one-line chain row.
func (c Contract) Line() string {
	return "Strike " + FormatStrike(c.Strike) +
		": Bid " + fstr(c.Bid) +
		" Ask " + fstr(c.Ask) +
		" Last " + fstr(c.LastPrice) +
		" OI " + istr(c.OpenInterest) +
		" Vol " + istr(c.Volume)
}

// Detail renders the full quote for a single contract.
func (c Contract) Detail() string {
	var b strings.Builder
	b.WriteString("Bid: " + fstr(c.Bid) + "\n")
	b.WriteString("Ask: " + fstr(c.Ask) + "\n")
	b.WriteString("Last: " + fstr(c.LastPrice) + "\n")
	b.WriteString("Change: " + fstr(c.Change) + "\n")
	b.WriteString("Open interest: " + istr(c.OpenInterest) + "\n")
	b.WriteString("Volume: " + istr(c.Volume))
	return b.String()
}

// FormatStrike trims trailing zeros, so 170 not 170.000000.
func FormatStrike(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func fstr(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func istr(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}
