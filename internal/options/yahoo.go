package options

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultYahooEndpoint = "https://query1.finance.yahoo.com/v7/finance/options"

const expiryLayout = "2006-01-02"

// YahooSource fetches option chains from the Yahoo Finance v7 options
// endpoint.
type YahooSource struct {
	endpoint string
	http     *http.Client
}

var _ Source = (*YahooSource)(nil)

func NewYahooSource(endpoint string, timeout time.Duration) *YahooSource {
	if endpoint == "" {
		endpoint = defaultYahooEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &YahooSource{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

type yahooContract struct {
	Strike       float64  `json:"strike"`
	Bid          *float64 `json:"bid"`
	Ask          *float64 `json:"ask"`
	LastPrice    *float64 `json:"lastPrice"`
	Change       *float64 `json:"change"`
	OpenInterest *int64   `json:"openInterest"`
	Volume       *int64   `json:"volume"`
}

type yahooChain struct {
	ExpirationDate int64           `json:"expirationDate"`
	Calls          []yahooContract `json:"calls"`
	Puts           []yahooContract `json:"puts"`
}

type yahooResponse struct {
	OptionChain struct {
		Result []struct {
			ExpirationDates []int64      `json:"expirationDates"`
			Options         []yahooChain `json:"options"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"optionChain"`
}

func (s *YahooSource) Expiries(ctx context.Context, symbol string) ([]string, error) {
	body, err := s.fetch(ctx, symbol, 0)
	if err != nil {
		return nil, err
	}
	if len(body.OptionChain.Result) == 0 {
		return nil, errors.New("yahoo options " + symbol + ": no result")
	}
	dates := body.OptionChain.Result[0].ExpirationDates
	out := make([]string, 0, len(dates))
	for _, ts := range dates {
		out = append(out, time.Unix(ts, 0).UTC().Format(expiryLayout))
	}
	return out, nil
}

func (s *YahooSource) Chain(ctx context.Context, symbol, expiry string) (Chain, error) {
	t, err := time.Parse(expiryLayout, expiry)
	if err != nil {
		return Chain{}, fmt.Errorf("yahoo options %s: invalid expiry %q (want YYYY-MM-DD)", symbol, expiry)
	}
	body, err := s.fetch(ctx, symbol, t.Unix())
	if err != nil {
		return Chain{}, err
	}
	if len(body.OptionChain.Result) == 0 || len(body.OptionChain.Result[0].Options) == 0 {
		return Chain{}, errors.New("yahoo options " + symbol + ": no chain for " + expiry)
	}
	ch := body.OptionChain.Result[0].Options[0]
	// the endpoint falls back to the nearest listed expiry rather than
	// failing; reject the fallback so a typoed date does not quote the
	// wrong chain
	if got := time.Unix(ch.ExpirationDate, 0).UTC().Format(expiryLayout); got != expiry {
		return Chain{}, fmt.Errorf("yahoo options %s: expiry %s not listed", symbol, expiry)
	}
	return Chain{
		Calls: convert(ch.Calls),
		Puts:  convert(ch.Puts),
	}, nil
}

func (s *YahooSource) fetch(ctx context.Context, symbol string, date int64) (yahooResponse, error) {
	u := s.endpoint + "/" + url.PathEscape(symbol)
	if date > 0 {
		u += "?date=" + strconv.FormatInt(date, 10)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return yahooResponse{}, err
	}
	req.Header.Set("User-Agent", "marketbot/1.0")

	resp, err := s.http.Do(req)
	if err != nil {
		return yahooResponse{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return yahooResponse{}, fmt.Errorf("yahoo options %s: unexpected status %s", symbol, resp.Status)
	}

	var body yahooResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return yahooResponse{}, fmt.Errorf("yahoo options %s: decode: %w", symbol, err)
	}
	return body, nil
}

func convert(rows []yahooContract) []Contract {
	out := make([]Contract, 0, len(rows))
	for _, r := range rows {
		out = append(out, Contract{
			Strike:       r.Strike,
			Bid:          r.Bid,
			Ask:          r.Ask,
			LastPrice:    r.LastPrice,
			Change:       r.Change,
			OpenInterest: r.OpenInterest,
			Volume:       r.Volume,
		})
	}
	return out
}
