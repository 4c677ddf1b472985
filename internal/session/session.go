// Package session computes whether the primary market's regular trading
// session is active. It is a pure function of the clock: no holiday calendar,
// no pre/post-market sessions.
package session

import (
	"fmt"
	"strings"
	"time"

	"marketbot/internal/config"
)

const displayFormat = "2006-01-02 15:04 (MST)"

// Calculator holds the session constants: the primary market zone, the
// open/close times-of-day in that zone, and a secondary zone the window is
// also rendered in.
type Calculator struct {
	loc       *time.Location
	secondary *time.Location

	openHour, openMinute   int
	closeHour, closeMinute int
}

// Window is the session boundary for one calendar date, zone-aware.
type Window struct {
	Open     bool
	Now      time.Time
	OpensAt  time.Time
	ClosesAt time.Time
}

func NewCalculator(cfg config.MarketConfig) (*Calculator, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("market.timezone: %w", err)
	}
	secondary, err := time.LoadLocation(cfg.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("market.display_timezone: %w", err)
	}
	oh, om, err := config.ParseClock("market.open", cfg.Open)
	if err != nil {
		return nil, err
	}
	ch, cm, err := config.ParseClock("market.close", cfg.Close)
	if err != nil {
		return nil, err
	}
	return &Calculator{
		loc:         loc,
		secondary:   secondary,
		openHour:    oh,
		openMinute:  om,
		closeHour:   ch,
		closeMinute: cm,
	}, nil
}

// Window computes the session boundaries for now's calendar date in the
// primary zone. The session is open on weekdays from the open instant through
// the close instant, both inclusive.
func (c *Calculator) Window(now time.Time) Window {
	now = now.In(c.loc)
	y, m, d := now.Date()
	opens := time.Date(y, m, d, c.openHour, c.openMinute, 0, 0, c.loc)
	closes := time.Date(y, m, d, c.closeHour, c.closeMinute, 0, 0, c.loc)

	wd := now.Weekday()
	open := wd != time.Saturday && wd != time.Sunday &&
		!now.Before(opens) && !now.After(closes)

	return Window{Open: open, Now: now, OpensAt: opens, ClosesAt: closes}
}

// Status renders the window for now in both zones as a human-readable
// message.
func (c *Calculator) Status(now time.Time) string {
	w := c.Window(now)

	state := "closed"
	if w.Open {
		state = "open"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Market is %s\n\n", state)
	fmt.Fprintf(&b, "Now: %s / %s\n\n", w.Now.Format(displayFormat), w.Now.In(c.secondary).Format(displayFormat))
	b.WriteString("Regular session:\n")
	fmt.Fprintf(&b, "Opens:  %s / %s\n", w.OpensAt.Format(displayFormat), w.OpensAt.In(c.secondary).Format(displayFormat))
	fmt.Fprintf(&b, "Closes: %s / %s\n\n", w.ClosesAt.Format(displayFormat), w.ClosesAt.In(c.secondary).Format(displayFormat))
	b.WriteString("Market holidays are not checked.")
	return b.String()
}
