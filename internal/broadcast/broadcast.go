// Package broadcast fans one message out to many recipients in paced,
// concurrently-delivered chunks.
package broadcast

import (
	"context"
	"fmt"
	"sync"
	"time"

	"marketbot/internal/subscribers"
	"marketbot/internal/transport"
	"marketbot/pkg/logx"
)

type Config struct {
	// ChunkSize is the number of recipients delivered concurrently before
	// pacing.
	ChunkSize int
	// ChunkDelay is the pause between chunks, respecting the transport's
	// throughput limits.
	ChunkDelay time.Duration
	// Override, when set, replaces subscriber fan-out entirely: the run sends
	// only to it and never reads the store.
	Override  transport.Recipient
	ParseMode string
}

// Report is the outcome of one run. Failed sends are recorded, never retried;
// a fresh externally scheduled run is the only retry mechanism.
type Report struct {
	Total    int
	Sent     int
	Failed   int
	Failures []transport.Recipient
	Took     time.Duration
}

type Broadcaster struct {
	cfg    Config
	sender transport.Sender
	store  subscribers.Store
	log    logx.Logger
}

func New(cfg Config, sender transport.Sender, store subscribers.Store, log logx.Logger) *Broadcaster {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 20
	}
	if cfg.ChunkDelay <= 0 {
		cfg.ChunkDelay = time.Second
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Broadcaster{cfg: cfg, sender: sender, store: store, log: log}
}

// Run delivers text to the resolved recipients. Per-recipient failures are
// isolated and reported in the Report; only a failure to resolve recipients
// makes the run itself fail.
func (b *Broadcaster) Run(ctx context.Context, text string) (Report, error) {
	start := time.Now()

	if b.cfg.Override != "" {
		rep := b.runChunks(ctx, text, []transport.Recipient{b.cfg.Override})
		rep.Took = time.Since(start)
		b.log.Info("broadcast sent to override recipient",
			logx.String("recipient", string(b.cfg.Override)),
			logx.Int("failed", rep.Failed))
		return rep, nil
	}

	recipients, err := b.store.ListAll(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("resolve recipients: %w", err)
	}
	if len(recipients) == 0 {
		b.log.Info("no subscribers to send to")
		return Report{Took: time.Since(start)}, nil
	}

	rep := b.runChunks(ctx, text, recipients)
	rep.Took = time.Since(start)
	if rep.Failed > 0 {
		b.log.Warn("broadcast finished with failures",
			logx.Int("total", rep.Total), logx.Int("failed", rep.Failed), logx.Duration("took", rep.Took))
	} else {
		b.log.Info("broadcast finished",
			logx.Int("total", rep.Total), logx.Duration("took", rep.Took))
	}
	return rep, nil
}

func (b *Broadcaster) runChunks(ctx context.Context, text string, recipients []transport.Recipient) Report {
	rep := Report{Total: len(recipients)}
	opt := &transport.SendOptions{ParseMode: b.cfg.ParseMode}

	var mu sync.Mutex
	for start := 0; start < len(recipients); start += b.cfg.ChunkSize {
		end := start + b.cfg.ChunkSize
		if end > len(recipients) {
			end = len(recipients)
		}
		chunk := recipients[start:end]

		var wg sync.WaitGroup
		for _, to := range chunk {
			wg.Add(1)
			go func(to transport.Recipient) {
				defer wg.Done()
				if err := b.sender.SendText(ctx, to, text, opt); err != nil {
					b.log.Warn("send failed", logx.String("recipient", string(to)), logx.Err(err))
					mu.Lock()
					rep.Failed++
					rep.Failures = append(rep.Failures, to)
					mu.Unlock()
					return
				}
				mu.Lock()
				rep.Sent++
				mu.Unlock()
			}(to)
		}
		wg.Wait()

		if end < len(recipients) {
			// Deliberate pacing between chunks; not tied to ctx.
			time.Sleep(b.cfg.ChunkDelay)
		}
	}
	return rep
}
