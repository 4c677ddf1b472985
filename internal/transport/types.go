package transport

import "context"

// Recipient is an opaque chat/conversation handle. For Telegram it is the
// decimal chat id, but nothing outside the adapter assumes that.
type Recipient string

// Update is an inbound message, reduced to what the command router needs.
type Update struct {
	Chat         Recipient
	FromID       int64
	FromUsername string
	FirstName    string
	Text         string
}

type SendOptions struct {
	ParseMode      string
	DisablePreview bool
	// ReplyMarkup is adapter-specific (Telegram: *telebot.ReplyMarkup).
	ReplyMarkup any
}

// Sender delivers one message to one recipient. The outcome is opaque; the
// engine does not interpret transport error codes beyond success/failure.
type Sender interface {
	SendText(ctx context.Context, to Recipient, text string, opt *SendOptions) error
}

// Adapter is a full conversational transport: outbound sends plus an inbound
// update stream.
type Adapter interface {
	Sender
	Start(ctx context.Context, out chan<- Update) error
	Stop(ctx context.Context) error
}
