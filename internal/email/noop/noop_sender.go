package noop

import (
	"context"
	"log"

	"orcavox/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs quote links to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendQuoteEmail(_ context.Context, email port.QuoteEmail) error {
	log.Printf("[NOOP EMAIL] Quote for %s (%s): %s %.2f - %s",
		email.ClientName, email.To, email.Currency, email.GrandTotal, email.AttachmentURL)
	return nil
}
