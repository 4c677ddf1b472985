// Package app wires the configured components into the long-lived bot
// process: Telegram polling, command routing and the scheduled broadcast.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"marketbot/internal/bot"
	"marketbot/internal/broadcast"
	"marketbot/internal/config"
	"marketbot/internal/options"
	"marketbot/internal/quotes"
	"marketbot/internal/session"
	"marketbot/internal/subscribers"
	"marketbot/internal/summary"
	"marketbot/internal/transport"
	"marketbot/internal/transport/telegram"
	"marketbot/pkg/logx"
)

type App struct {
	cfg *config.Config
	log logx.Logger

	adapter *telegram.Adapter
	store   subscribers.Store
	fetcher *quotes.Fetcher
	calc    *session.Calculator
	caster  *broadcast.Broadcaster
	router  *bot.Router

	cron    *cron.Cron
	updates chan transport.Update
	wg      sync.WaitGroup
}

func New(cfg *config.Config, log logx.Logger) (*App, error) {
	pollTimeout, err := config.ParseDurationField("telegram.poll_timeout", cfg.Telegram.PollTimeout)
	if err != nil {
		return nil, err
	}
	adapter, err := telegram.New(telegram.Config{
		Token:       cfg.Telegram.Token,
		PollTimeout: pollTimeout,
		RatePerSec:  cfg.Telegram.RatePerSec,
	}, log.With(logx.String("comp", "telegram")))
	if err != nil {
		return nil, err
	}

	store, err := subscribers.Open(cfg.Subscribers, log.With(logx.String("comp", "subscribers")))
	if err != nil {
		return nil, err
	}

	quoteTimeout, err := config.ParseDurationField("quotes.timeout", cfg.Quotes.Timeout)
	if err != nil {
		return nil, err
	}
	fetcher := quotes.NewFetcher(
		quotes.NewYahooSource(cfg.Quotes.Endpoint, quoteTimeout),
		log.With(logx.String("comp", "quotes")),
	)
	optsSrc := options.NewYahooSource(cfg.Quotes.OptionsEndpoint, quoteTimeout)

	calc, err := session.NewCalculator(cfg.Market)
	if err != nil {
		return nil, err
	}

	chunkDelay, err := config.ParseDurationOrDefault("broadcast.chunk_delay", cfg.Broadcast.ChunkDelay, time.Second)
	if err != nil {
		return nil, err
	}
	caster := broadcast.New(broadcast.Config{
		ChunkSize:  cfg.Broadcast.ChunkSize,
		ChunkDelay: chunkDelay,
		Override:   transport.Recipient(cfg.Telegram.BroadcastChat),
		ParseMode:  cfg.Telegram.ParseMode,
	}, adapter, store, log.With(logx.String("comp", "broadcast")))

	router := bot.NewRouter(bot.Config{
		Symbols:   cfg.Symbols,
		ParseMode: cfg.Telegram.ParseMode,
		Menu:      telegram.MainMenu(),
	}, adapter, store, fetcher, optsSrc, calc, log.With(logx.String("comp", "router")))

	return &App{
		cfg:     cfg,
		log:     log,
		adapter: adapter,
		store:   store,
		fetcher: fetcher,
		calc:    calc,
		caster:  caster,
		router:  router,
		updates: make(chan transport.Update, 64),
	}, nil
}

func (a *App) Start(ctx context.Context) error {
	if err := a.adapter.Start(ctx, a.updates); err != nil {
		return err
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.router.Run(ctx, a.updates)
	}()

	if a.cfg.Schedule.Enabled {
		if err := a.startCron(ctx); err != nil {
			return err
		}
	}
	a.log.Info("bot started",
		logx.String("driver", a.cfg.Subscribers.Driver),
		logx.Bool("schedule", a.cfg.Schedule.Enabled))
	return nil
}

func (a *App) startCron(ctx context.Context) error {
	tz := strings.TrimSpace(a.cfg.Schedule.Timezone)
	if tz == "" {
		tz = a.cfg.Market.Timezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("schedule.timezone: %w", err)
	}
	a.cron = cron.New(cron.WithLocation(loc))
	_, err = a.cron.AddFunc(a.cfg.Schedule.Spec, func() {
		if _, err := a.BroadcastSummary(ctx); err != nil {
			a.log.Error("scheduled broadcast failed", logx.Err(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule.spec: %w", err)
	}
	a.cron.Start()
	a.log.Info("broadcast schedule armed", logx.String("spec", a.cfg.Schedule.Spec), logx.String("tz", tz))
	return nil
}

// BroadcastSummary composes the market summary for the configured symbols and
// fans it out. Symbol failures degrade to failure markers in the text;
// recipient failures end up in the report, never as an error.
func (a *App) BroadcastSummary(ctx context.Context) (broadcast.Report, error) {
	qs := a.fetcher.FetchMany(ctx, a.cfg.Symbols)
	text := summary.Market(qs)
	if a.cfg.Broadcast.IncludeSession {
		text = summary.MarketWithSession(qs, a.calc, time.Now())
	}
	return a.caster.Run(ctx, text)
}

func (a *App) Stop(ctx context.Context) error {
	if a.cron != nil {
		// waits for an in-flight scheduled run to return
		stopCtx := a.cron.Stop()
		select {
		case <-stopCtx.Done():
		case <-ctx.Done():
		}
	}
	err := a.adapter.Stop(ctx)
	a.wg.Wait()
	if cerr := a.store.Close(); err == nil {
		err = cerr
	}
	return err
}
