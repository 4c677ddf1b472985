// Package summary builds broadcast message text. Pure string formatting,
// no I/O.
package summary

import (
	"strings"
	"time"

	"marketbot/internal/quotes"
	"marketbot/internal/session"
)

// Market renders the periodic market-summary message: a header plus one line
// per quote, in the order given.
func Market(qs []quotes.Quote) string {
	var b strings.Builder
	b.WriteString("*Market update*\n")
	for i, q := range qs {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(q.Line())
	}
	return b.String()
}

// MarketWithSession appends the session status to the market summary.
func MarketWithSession(qs []quotes.Quote, calc *session.Calculator, now time.Time) string {
	var b strings.Builder
	b.WriteString(Market(qs))
	b.WriteString("\n\n")
	b.WriteString(calc.Status(now))
	return b.String()
}
