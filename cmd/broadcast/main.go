// Command broadcast performs one market-summary fan-out and exits. It is
// meant to be run from cron or a systemd timer; retrying a failed run is the
// scheduler's job, not this process's.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"marketbot/internal/broadcast"
	"marketbot/internal/config"
	"marketbot/internal/quotes"
	"marketbot/internal/session"
	"marketbot/internal/subscribers"
	"marketbot/internal/summary"
	"marketbot/internal/transport"
	"marketbot/internal/transport/telegram"
	"marketbot/pkg/logx"
)

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config file (yaml or json)")
	flag.Parse()

	if err := run(cfgPath); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(cfgPath string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	defer log.Close()

	ctx := context.Background()

	// The adapter is used send-only here; polling never starts.
	adapter, err := telegram.New(telegram.Config{
		Token:      cfg.Telegram.Token,
		RatePerSec: cfg.Telegram.RatePerSec,
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		return err
	}

	store, err := subscribers.Open(cfg.Subscribers, log.With(logx.String("comp", "subscribers")))
	if err != nil {
		return err
	}
	defer store.Close()

	quoteTimeout, err := config.ParseDurationField("quotes.timeout", cfg.Quotes.Timeout)
	if err != nil {
		return err
	}
	fetcher := quotes.NewFetcher(
		quotes.NewYahooSource(cfg.Quotes.Endpoint, quoteTimeout),
		log.With(logx.String("comp", "quotes")),
	)

	chunkDelay, err := config.ParseDurationOrDefault("broadcast.chunk_delay", cfg.Broadcast.ChunkDelay, time.Second)
	if err != nil {
		return err
	}
	caster := broadcast.New(broadcast.Config{
		ChunkSize:  cfg.Broadcast.ChunkSize,
		ChunkDelay: chunkDelay,
		Override:   transport.Recipient(cfg.Telegram.BroadcastChat),
		ParseMode:  cfg.Telegram.ParseMode,
	}, adapter, store, log.With(logx.String("comp", "broadcast")))

	qs := fetcher.FetchMany(ctx, cfg.Symbols)
	text := summary.Market(qs)
	if cfg.Broadcast.IncludeSession {
		calc, err := session.NewCalculator(cfg.Market)
		if err != nil {
			return err
		}
		text = summary.MarketWithSession(qs, calc, time.Now())
	}
	rep, err := caster.Run(ctx, text)
	if err != nil {
		return err
	}
	log.Info("broadcast run complete",
		logx.Int("total", rep.Total), logx.Int("sent", rep.Sent), logx.Int("failed", rep.Failed),
		logx.Duration("took", rep.Took))
	return nil
}
