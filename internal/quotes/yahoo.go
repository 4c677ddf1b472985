package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const defaultYahooEndpoint = "https://query1.finance.yahoo.com/v7/finance/quote"

// YahooSource fetches snapshots from the Yahoo Finance v7 quote endpoint.
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

type yahooQuote struct {
	Symbol             string   `json:"symbol"`
	RegularMarketPrice *float64 `json:"regularMarketPrice"`
	PreviousClose      *float64 `json:"regularMarketPreviousClose"`
	DayHigh            *float64 `json:"regularMarketDayHigh"`
	DayLow             *float64 `json:"regularMarketDayLow"`
	Volume             *float64 `json:"regularMarketVolume"`
}

type yahooResponse struct {
	QuoteResponse struct {
		Result []yahooQuote `json:"result"`
		Error  any          `json:"error"`
	} `json:"quoteResponse"`
}

func (s *YahooSource) Get(ctx context.Context, symbol string) (Data, error) {
	u := s.endpoint + "?symbols=" + url.QueryEscape(symbol)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Data{}, err
	}
	req.Header.Set("User-Agent", "marketbot/1.0")

	resp, err := s.http.Do(req)
	if err != nil {
		return Data{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Data{}, fmt.Errorf("yahoo quote %s: unexpected status %s", symbol, resp.Status)
	}

	var body yahooResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Data{}, fmt.Errorf("yahoo quote %s: decode: %w", symbol, err)
	}
	if len(body.QuoteResponse.Result) == 0 {
		return Data{}, errors.New("yahoo quote " + symbol + ": no result")
	}
	q := body.QuoteResponse.Result[0]
	return Data{
		Price:         q.RegularMarketPrice,
		PreviousClose: q.PreviousClose,
		DayHigh:       q.DayHigh,
		DayLow:        q.DayLow,
		Volume:        q.Volume,
	}, nil
}
