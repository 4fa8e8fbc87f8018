package port

import "context"

// QuoteEmail carries everything needed to send a finished quote to the
// client.
type QuoteEmail struct {
	To            string
	ClientName    string
	EventName     string
	GrandTotal    float64
	Currency      string
	AttachmentURL string
}

// EmailSender defines the contract for sending quote emails.
type EmailSender interface {
	SendQuoteEmail(ctx context.Context, email QuoteEmail) error
}
