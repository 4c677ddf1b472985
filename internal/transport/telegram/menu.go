package telegram

import tele "gopkg.in/telebot.v4"

// Button labels shared between the reply keyboard and the command router.
const (
	BtnTopStocks    = "📈 Top stocks"
	BtnMarketStatus = "🕒 Market status"
	BtnSubscribe    = "🔔 Updates on"
	BtnUnsubscribe  = "⛔️ Updates off"
	BtnOptionDates  = "📅 Option dates"
	BtnHelp         = "❓ Help"
)

// MainMenu builds the persistent reply keyboard. Returned as any so callers
// outside this package can attach it via SendOptions without importing
// telebot.
func MainMenu() any {
	m := &tele.ReplyMarkup{ResizeKeyboard: true}
	m.Reply(
		m.Row(m.Text(BtnTopStocks), m.Text(BtnMarketStatus)),
		m.Row(m.Text(BtnSubscribe), m.Text(BtnUnsubscribe)),
		m.Row(m.Text(BtnOptionDates), m.Text(BtnHelp)),
	)
	return m
}
