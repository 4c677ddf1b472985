package quotes

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Data is one symbol's raw snapshot from the upstream source. Nil fields mean
// the source had no value, which is distinct from the fetch failing outright.
type Data struct {
	Price         *float64
	PreviousClose *float64
	DayHigh       *float64
	DayLow        *float64
	Volume        *float64
}

// Source retrieves one symbol's snapshot. Implementations own their transport
// timeout.
type Source interface {
	Get(ctx context.Context, symbol string) (Data, error)
}

// Quote is the derived per-symbol result. Nil Price means the fetch failed or
// the source carried no price; Change/ChangePct are nil whenever they cannot
// be computed.
type Quote struct {
	Symbol    string
	Price     *float64
	Change    *float64
	ChangePct *float64
	DayHigh   *float64
	DayLow    *float64
	Volume    *float64
}

// derive computes change fields from raw data. The percent change is only
// defined for a non-zero previous close; no division is attempted otherwise.
func derive(symbol string, d Data) Quote {
	q := Quote{
		Symbol:  symbol,
		Price:   d.Price,
		DayHigh: d.DayHigh,
		DayLow:  d.DayLow,
		Volume:  d.Volume,
	}
	if d.Price == nil || d.PreviousClose == nil {
		return q
	}
	if *d.PreviousClose == 0 {
		return q
	}
	ch := *d.Price - *d.PreviousClose
	pct := ch / *d.PreviousClose * 100
	q.Change = &ch
	q.ChangePct = &pct
	return q
}

// Line renders the quote as a single summary line:
//
//	AAPL: 150 (+5.00, +3.45%)
//	MSFT: -
func (q Quote) Line() string {
	if q.Price == nil {
		return q.Symbol + ": -"
	}
	price := strconv.FormatFloat(*q.Price, 'f', -1, 64)
	if q.Change == nil || q.ChangePct == nil {
		return q.Symbol + ": " + price
	}
	return fmt.Sprintf("%s: %s (%+.2f, %+.2f%%)", q.Symbol, price, *q.Change, *q.ChangePct)
}

// Detail renders the multi-line view used by the /price command.
func (q Quote) Detail() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Symbol: %s\n", q.Symbol)
	fmt.Fprintf(&b, "Price: %s\n", optStr(q.Price))
	if q.Change != nil && q.ChangePct != nil {
		fmt.Fprintf(&b, "Change: %+.2f (%+.2f%%)\n", *q.Change, *q.ChangePct)
	}
	fmt.Fprintf(&b, "Day high: %s\n", optStr(q.DayHigh))
	fmt.Fprintf(&b, "Day low: %s\n", optStr(q.DayLow))
	fmt.Fprintf(&b, "Volume: %s", optStr(q.Volume))
	return b.String()
}

func optStr(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
