package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"marketbot/internal/config"
	"marketbot/internal/options"
	"marketbot/internal/quotes"
	"marketbot/internal/session"
	"marketbot/internal/subscribers"
	"marketbot/internal/transport"
	"marketbot/internal/transport/telegram"
	"marketbot/pkg/logx"
)

type recordingSender struct {
	mu    sync.Mutex
	sent  []string
	chats []transport.Recipient
}

func (s *recordingSender) SendText(_ context.Context, to transport.Recipient, text string, _ *transport.SendOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, text)
	s.chats = append(s.chats, to)
	return nil
}

func (s *recordingSender) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return ""
	}
	return s.sent[len(s.sent)-1]
}

type memStore struct {
	mu  sync.Mutex
	ids map[transport.Recipient]struct{}
	err error
}

var _ subscribers.Store = (*memStore)(nil)

func newMemStore() *memStore { return &memStore{ids: map[transport.Recipient]struct{}{}} }

func (m *memStore) Add(_ context.Context, id transport.Recipient) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[id] = struct{}{}
	return nil
}

func (m *memStore) Remove(_ context.Context, id transport.Recipient) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ids, id)
	return nil
}

func (m *memStore) ListAll(context.Context) ([]transport.Recipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]transport.Recipient, 0, len(m.ids))
	for id := range m.ids {
		out = append(out, id)
	}
	return out, nil
}

func (m *memStore) Close() error { return nil }

type staticSource struct{ data map[string]quotes.Data }

func (s staticSource) Get(_ context.Context, symbol string) (quotes.Data, error) {
	d, ok := s.data[symbol]
	if !ok {
		return quotes.Data{}, errors.New("no data")
	}
	return d, nil
}

func fp(v float64) *float64 { return &v }

func ip(v int64) *int64 { return &v }

// staticOptions serves one fixed chain for every symbol and expiry.
type staticOptions struct {
	expiries []string
	chain    options.Chain
	err      error
}

var _ options.Source = (*staticOptions)(nil)

func (s staticOptions) Expiries(context.Context, string) ([]string, error) {
	return s.expiries, s.err
}

func (s staticOptions) Chain(context.Context, string, string) (options.Chain, error) {
	return s.chain, s.err
}

func testOptions() staticOptions {
	return staticOptions{
		expiries: []string{"2026-10-16", "2026-11-20"},
		chain: options.Chain{
			Calls: []options.Contract{
				{Strike: 165, Bid: fp(6.1), Ask: fp(6.3), OpenInterest: ip(40)},
				{Strike: 170, Bid: fp(1.2), Ask: fp(1.3), LastPrice: fp(1.25), OpenInterest: ip(1500)},
				{Strike: 175, Bid: fp(0.4), Ask: fp(0.5), OpenInterest: ip(900)},
			},
			Puts: []options.Contract{
				{Strike: 170, Bid: fp(0.9), Ask: fp(1.0), OpenInterest: ip(700)},
			},
		},
	}
}

func newTestRouter(t *testing.T, store subscribers.Store) (*Router, *recordingSender) {
	t.Helper()
	sender := &recordingSender{}
	calc, err := session.NewCalculator(config.MarketConfig{
		Timezone:        "America/New_York",
		DisplayTimezone: "Asia/Riyadh",
		Open:            "09:30",
		Close:           "16:00",
	})
	if err != nil {
		t.Fatalf("NewCalculator: %v", err)
	}
	src := staticSource{data: map[string]quotes.Data{
		"AAPL": {Price: fp(150), PreviousClose: fp(145)},
	}}
	r := NewRouter(Config{Symbols: []string{"AAPL", "MSFT"}, ParseMode: "Markdown"},
		sender, store, quotes.NewFetcher(src, logx.Nop()), testOptions(), calc, logx.Nop())
	return r, sender
}

func TestSubscribeAddsChat(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	r, sender := newTestRouter(t, store)

	r.handle(context.Background(), transport.Update{Chat: "42", Text: "/on"})
	if _, ok := store.ids["42"]; !ok {
		t.Fatal("chat 42 was not subscribed")
	}
	if !strings.Contains(sender.last(), "on") {
		t.Fatalf("unexpected reply %q", sender.last())
	}
}

func TestUnsubscribeStoreFailureIsReported(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	store.err = errors.New("backend down")
	r, sender := newTestRouter(t, store)

	r.handle(context.Background(), transport.Update{Chat: "42", Text: "/off"})
	if !strings.Contains(sender.last(), "try again later") {
		t.Fatalf("store failure not reported to user: %q", sender.last())
	}
}

func TestPriceCommand(t *testing.T) {
	t.Parallel()
	r, sender := newTestRouter(t, newMemStore())

	r.handle(context.Background(), transport.Update{Chat: "1", Text: "/price aapl"})
	got := sender.last()
	if !strings.Contains(got, "Symbol: AAPL") || !strings.Contains(got, "Price: 150") {
		t.Fatalf("unexpected /price reply:\n%s", got)
	}

	r.handle(context.Background(), transport.Update{Chat: "1", Text: "/price"})
	if !strings.Contains(sender.last(), "Pass a symbol") {
		t.Fatalf("missing usage hint: %q", sender.last())
	}
}

func TestTopStocksIsolatesSymbolFailure(t *testing.T) {
	t.Parallel()
	r, sender := newTestRouter(t, newMemStore())

	r.handle(context.Background(), transport.Update{Chat: "1", Text: "/top"})
	got := sender.last()
	if !strings.Contains(got, "AAPL: 150 (+5.00, +3.45%)") {
		t.Fatalf("missing AAPL line:\n%s", got)
	}
	if !strings.Contains(got, "MSFT: -") {
		t.Fatalf("missing MSFT failure marker:\n%s", got)
	}
}

func TestCommandWithBotSuffix(t *testing.T) {
	t.Parallel()
	r, sender := newTestRouter(t, newMemStore())

	r.handle(context.Background(), transport.Update{Chat: "1", Text: "/help@marketbot"})
	if !strings.Contains(sender.last(), "Commands:") {
		t.Fatalf("suffixed command not routed: %q", sender.last())
	}
}

// Button labels contain spaces, so they must be matched whole instead of
// being split at the first space like slash commands.
func TestKeyboardButtonsRoute(t *testing.T) {
	t.Parallel()

	tests := []struct {
		label string
		want  string
	}{
		{telegram.BtnTopStocks, "AAPL: 150"},
		{telegram.BtnMarketStatus, "Market is"},
		{telegram.BtnSubscribe, "updates are on"},
		{telegram.BtnUnsubscribe, "updates are off"},
		{telegram.BtnOptionDates, "/expiries"},
		{telegram.BtnHelp, "Commands:"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.label, func(t *testing.T) {
			t.Parallel()
			r, sender := newTestRouter(t, newMemStore())
			r.handle(context.Background(), transport.Update{Chat: "1", Text: tt.label})
			got := sender.last()
			if strings.Contains(got, "Unknown command") {
				t.Fatalf("button %q fell through to the unknown-command reply", tt.label)
			}
			if !strings.Contains(got, tt.want) {
				t.Fatalf("button %q reply %q does not contain %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestSubscribeButtonAddsChat(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	r, _ := newTestRouter(t, store)

	r.handle(context.Background(), transport.Update{Chat: "42", Text: telegram.BtnSubscribe})
	if _, ok := store.ids["42"]; !ok {
		t.Fatal("subscribe button did not add chat 42")
	}
}

func TestExpiriesCommand(t *testing.T) {
	t.Parallel()
	r, sender := newTestRouter(t, newMemStore())

	r.handle(context.Background(), transport.Update{Chat: "1", Text: "/expiries aapl"})
	got := sender.last()
	if !strings.Contains(got, "AAPL") || !strings.Contains(got, "2026-10-16") || !strings.Contains(got, "2026-11-20") {
		t.Fatalf("unexpected /expiries reply:\n%s", got)
	}

	r.handle(context.Background(), transport.Update{Chat: "1", Text: "/expiries"})
	if !strings.Contains(sender.last(), "Pass a symbol") {
		t.Fatalf("missing usage hint: %q", sender.last())
	}
}

func TestExpiriesFailureIsReported(t *testing.T) {
	t.Parallel()
	r, sender := newTestRouter(t, newMemStore())
	r.opts = staticOptions{err: errors.New("feed down")}

	r.handle(context.Background(), transport.Update{Chat: "1", Text: "/expiries AAPL"})
	if !strings.Contains(sender.last(), "Could not fetch expiry dates") {
		t.Fatalf("feed failure not reported to user: %q", sender.last())
	}
}

func TestChainCommand(t *testing.T) {
	t.Parallel()
	r, sender := newTestRouter(t, newMemStore())

	r.handle(context.Background(), transport.Update{Chat: "1", Text: "/chain AAPL 2026-10-16"})
	got := sender.last()
	if !strings.Contains(got, "CALLS") || !strings.Contains(got, "PUTS") {
		t.Fatalf("unexpected /chain reply:\n%s", got)
	}
	// calls come back ordered by open interest
	if strings.Index(got, "Strike 170:") > strings.Index(got, "Strike 175:") {
		t.Fatalf("calls not ordered by open interest:\n%s", got)
	}
}

func TestOptionCommandExactStrike(t *testing.T) {
	t.Parallel()
	r, sender := newTestRouter(t, newMemStore())

	r.handle(context.Background(), transport.Update{Chat: "1", Text: "/option AAPL 2026-10-16 CALL 170"})
	got := sender.last()
	if !strings.Contains(got, "AAPL CALL 170") || !strings.Contains(got, "Bid: 1.2") {
		t.Fatalf("unexpected /option reply:\n%s", got)
	}
	if strings.Contains(got, "nearest strike") {
		t.Fatalf("exact strike flagged as nearest:\n%s", got)
	}
}

func TestOptionCommandNearestStrikeTie(t *testing.T) {
	t.Parallel()
	r, sender := newTestRouter(t, newMemStore())

	// 172.5 sits exactly between 170 and 175; the lower strike wins
	r.handle(context.Background(), transport.Update{Chat: "1", Text: "/option AAPL 2026-10-16 CALL 172.5"})
	got := sender.last()
	if !strings.Contains(got, "AAPL CALL 170") {
		t.Fatalf("tie did not resolve to the lower strike:\n%s", got)
	}
	if !strings.Contains(got, "nearest strike to 172.5") {
		t.Fatalf("missing nearest-strike note:\n%s", got)
	}
}

func TestOptionCommandUsage(t *testing.T) {
	t.Parallel()
	r, sender := newTestRouter(t, newMemStore())

	r.handle(context.Background(), transport.Update{Chat: "1", Text: "/option AAPL 2026-10-16"})
	if !strings.Contains(sender.last(), "Use /option") {
		t.Fatalf("missing usage hint: %q", sender.last())
	}

	r.handle(context.Background(), transport.Update{Chat: "1", Text: "/option AAPL 2026-10-16 STRADDLE 170"})
	if !strings.Contains(sender.last(), "CALL or PUT") {
		t.Fatalf("bad type not rejected: %q", sender.last())
	}
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()
	r, sender := newTestRouter(t, newMemStore())

	r.handle(context.Background(), transport.Update{Chat: "1", Text: "what"})
	if !strings.Contains(sender.last(), "Unknown command") {
		t.Fatalf("unexpected reply %q", sender.last())
	}
}
