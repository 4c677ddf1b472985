package quotes

import (
	"context"
	"sync"

	"marketbot/pkg/logx"
)

// Fetcher aggregates per-symbol quotes. One symbol's failure never affects
// the others and is never retried within a call; retrying happens only on
// the next externally scheduled run.
type Fetcher struct {
	src Source
	log logx.Logger
}

func NewFetcher(src Source, log logx.Logger) *Fetcher {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Fetcher{src: src, log: log}
}

// FetchMany returns exactly one Quote per input symbol, in input order.
// Symbols are fetched concurrently; a failed fetch yields a Quote with nil
// fields.
func (f *Fetcher) FetchMany(ctx context.Context, symbols []string) []Quote {
	out := make([]Quote, len(symbols))
	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			out[i] = f.fetchOne(ctx, sym)
		}(i, sym)
	}
	wg.Wait()
	return out
}

func (f *Fetcher) fetchOne(ctx context.Context, symbol string) Quote {
	d, err := f.src.Get(ctx, symbol)
	if err != nil {
		f.log.Warn("quote fetch failed", logx.String("symbol", symbol), logx.Err(err))
		return Quote{Symbol: symbol}
	}
	return derive(symbol, d)
}
