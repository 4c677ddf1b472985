// Package bot routes inbound chat updates to command handlers.
package bot

import (
	"context"
	"strconv"
	"strings"
	"time"

	"marketbot/internal/options"
	"marketbot/internal/quotes"
	"marketbot/internal/session"
	"marketbot/internal/subscribers"
	"marketbot/internal/summary"
	"marketbot/internal/transport"
	"marketbot/internal/transport/telegram"
	"marketbot/pkg/logx"
)

type Config struct {
	// Symbols is the fixed list behind the top-stocks command.
	Symbols   []string
	ParseMode string
	// Menu is the adapter-specific reply keyboard attached to replies.
	Menu any
}

type Router struct {
	cfg     Config
	sender  transport.Sender
	store   subscribers.Store
	fetcher *quotes.Fetcher
	opts    options.Source
	calc    *session.Calculator
	log     logx.Logger
}

func NewRouter(cfg Config, sender transport.Sender, store subscribers.Store, fetcher *quotes.Fetcher, opts options.Source, calc *session.Calculator, log logx.Logger) *Router {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Router{cfg: cfg, sender: sender, store: store, fetcher: fetcher, opts: opts, calc: calc, log: log}
}

// Run consumes updates until ctx is cancelled or in is closed.
func (r *Router) Run(ctx context.Context, in <-chan transport.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case up, ok := <-in:
			if !ok {
				return
			}
			r.handle(ctx, up)
		}
	}
}

func (r *Router) handle(ctx context.Context, up transport.Update) {
	text := strings.TrimSpace(up.Text)

	// Keyboard buttons arrive as the plain label text, spaces included, so
	// they have to match whole before any command-word splitting.
	switch text {
	case telegram.BtnTopStocks:
		r.topStocks(ctx, up.Chat)
		return
	case telegram.BtnMarketStatus:
		r.reply(ctx, up.Chat, r.calc.Status(time.Now()))
		return
	case telegram.BtnSubscribe:
		r.subscribe(ctx, up.Chat)
		return
	case telegram.BtnUnsubscribe:
		r.unsubscribe(ctx, up.Chat)
		return
	case telegram.BtnOptionDates:
		r.reply(ctx, up.Chat, "Use /expiries SYMBOL to list option expiry dates, e.g. /expiries AAPL")
		return
	case telegram.BtnHelp:
		r.reply(ctx, up.Chat, helpText)
		return
	}

	cmd, args, _ := strings.Cut(text, " ")
	// strip a /cmd@BotName suffix
	if i := strings.IndexByte(cmd, '@'); i > 0 && strings.HasPrefix(cmd, "/") {
		cmd = cmd[:i]
	}

	switch cmd {
	case "/start":
		name := up.FirstName
		if name == "" {
			name = "there"
		}
		r.reply(ctx, up.Chat, "👋 Hi "+name+"!\nI track US stocks. Pick an action below.")
	case "/help":
		r.reply(ctx, up.Chat, helpText)
	case "/on":
		r.subscribe(ctx, up.Chat)
	case "/off":
		r.unsubscribe(ctx, up.Chat)
	case "/price":
		r.price(ctx, up.Chat, args)
	case "/top":
		r.topStocks(ctx, up.Chat)
	case "/market":
		r.reply(ctx, up.Chat, r.calc.Status(time.Now()))
	case "/expiries":
		r.expiries(ctx, up.Chat, args)
	case "/chain":
		r.chain(ctx, up.Chat, args)
	case "/option":
		r.option(ctx, up.Chat, args)
	default:
		r.reply(ctx, up.Chat, "Unknown command. Use /help.")
	}
}

const helpText = "Commands:\n" +
	"/price SYMBOL - current price (e.g. /price AAPL)\n" +
	"/top - summary of the major stocks\n" +
	"/market - is the market open right now\n" +
	"/expiries SYMBOL - option expiry dates\n" +
	"/chain SYMBOL DATE - most traded calls and puts\n" +
	"/option SYMBOL DATE TYPE STRIKE - quote one contract\n" +
	"/on /off - market updates on or off\n" +
	"/help - this message"

func (r *Router) subscribe(ctx context.Context, chat transport.Recipient) {
	if err := r.store.Add(ctx, chat); err != nil {
		r.log.Error("subscribe failed", logx.String("chat", string(chat)), logx.Err(err))
		r.reply(ctx, chat, "Could not save your subscription, try again later.")
		return
	}
	r.reply(ctx, chat, "✅ Market updates are on.")
}

func (r *Router) unsubscribe(ctx context.Context, chat transport.Recipient) {
	if err := r.store.Remove(ctx, chat); err != nil {
		r.log.Error("unsubscribe failed", logx.String("chat", string(chat)), logx.Err(err))
		r.reply(ctx, chat, "Could not update your subscription, try again later.")
		return
	}
	r.reply(ctx, chat, "⛔️ Market updates are off.")
}

func (r *Router) price(ctx context.Context, chat transport.Recipient, args string) {
	symbol := strings.ToUpper(strings.TrimSpace(args))
	if symbol == "" {
		r.reply(ctx, chat, "Pass a symbol, e.g. /price AAPL")
		return
	}
	qs := r.fetcher.FetchMany(ctx, []string{symbol})
	if qs[0].Price == nil {
		r.reply(ctx, chat, "No data for "+symbol+".")
		return
	}
	r.reply(ctx, chat, qs[0].Detail())
}

func (r *Router) expiries(ctx context.Context, chat transport.Recipient, args string) {
	symbol := strings.ToUpper(strings.TrimSpace(args))
	if symbol == "" {
		r.reply(ctx, chat, "Pass a symbol, e.g. /expiries AAPL")
		return
	}
	exps, err := r.opts.Expiries(ctx, symbol)
	if err != nil {
		r.log.Warn("expiries failed", logx.String("symbol", symbol), logx.Err(err))
		r.reply(ctx, chat, "Could not fetch expiry dates for "+symbol+".")
		return
	}
	if len(exps) == 0 {
		r.reply(ctx, chat, "No option expiry dates for "+symbol+".")
		return
	}
	if len(exps) > 50 {
		exps = exps[:50]
	}
	r.reply(ctx, chat, "📅 Option expiry dates for "+symbol+":\n"+strings.Join(exps, "\n"))
}

func (r *Router) chain(ctx context.Context, chat transport.Recipient, args string) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		r.reply(ctx, chat, "Use /chain SYMBOL DATE, e.g. /chain AAPL 2026-10-16")
		return
	}
	symbol, expiry := strings.ToUpper(fields[0]), fields[1]
	ch, err := r.opts.Chain(ctx, symbol, expiry)
	if err != nil {
		r.log.Warn("chain failed", logx.String("symbol", symbol), logx.String("expiry", expiry), logx.Err(err))
		r.reply(ctx, chat, "Could not fetch the "+expiry+" chain for "+symbol+". Check the date with /expiries "+symbol+".")
		return
	}

	var b strings.Builder
	b.WriteString("Option chain for " + symbol + ", expiry " + expiry + "\n\n🔹 CALLS\n")
	for _, c := range options.TopByOpenInterest(ch.Calls, 10) {
		b.WriteString(c.Line() + "\n")
	}
	b.WriteString("\n🔻 PUTS\n")
	for _, c := range options.TopByOpenInterest(ch.Puts, 10) {
		b.WriteString(c.Line() + "\n")
	}
	r.reply(ctx, chat, strings.TrimRight(b.String(), "\n"))
}

func (r *Router) option(ctx context.Context, chat transport.Recipient, args string) {
	fields := strings.Fields(args)
	if len(fields) != 4 {
		r.reply(ctx, chat, "Use /option SYMBOL DATE TYPE STRIKE, e.g. /option AAPL 2026-10-16 CALL 170")
		return
	}
	symbol, expiry := strings.ToUpper(fields[0]), fields[1]
	kind := strings.ToUpper(fields[2])
	if kind != "CALL" && kind != "PUT" {
		r.reply(ctx, chat, "TYPE must be CALL or PUT.")
		return
	}
	strike, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		r.reply(ctx, chat, "STRIKE must be a number, e.g. 170 or 170.5")
		return
	}

	ch, err := r.opts.Chain(ctx, symbol, expiry)
	if err != nil {
		r.log.Warn("option lookup failed", logx.String("symbol", symbol), logx.String("expiry", expiry), logx.Err(err))
		r.reply(ctx, chat, "Could not fetch the "+expiry+" chain for "+symbol+". Check the date with /expiries "+symbol+".")
		return
	}
	side := ch.Calls
	if kind == "PUT" {
		side = ch.Puts
	}
	c, exact, ok := options.Nearest(side, strike)
	if !ok {
		r.reply(ctx, chat, "No "+kind+" contracts for "+symbol+" on "+expiry+".")
		return
	}

	head := symbol + " " + kind + " " + options.FormatStrike(c.Strike) + ", expiry " + expiry
	if !exact {
		head += "\n(nearest strike to " + options.FormatStrike(strike) + ")"
	}
	r.reply(ctx, chat, head+"\n"+c.Detail())
}

func (r *Router) topStocks(ctx context.Context, chat transport.Recipient) {
	r.reply(ctx, chat, "📊 Fetching prices, hang on...")
	qs := r.fetcher.FetchMany(ctx, r.cfg.Symbols)
	r.reply(ctx, chat, summary.Market(qs))
}

func (r *Router) reply(ctx context.Context, chat transport.Recipient, text string) {
	opt := &transport.SendOptions{
		ParseMode:      r.cfg.ParseMode,
		DisablePreview: true,
		ReplyMarkup:    r.cfg.Menu,
	}
	if err := r.sender.SendText(ctx, chat, text, opt); err != nil {
		r.log.Warn("reply failed", logx.String("chat", string(chat)), logx.Err(err))
	}
}
