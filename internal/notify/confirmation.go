// Package notify sends booking confirmations to customers. Only email
// contacts get one; a phone number is simply skipped since this deployment
// has no SMS channel.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/kaidodd21-ctrl/kai-assistant/internal/session"
	"github.com/kaidodd21-ctrl/kai-assistant/pkg/logging"
)

// Confirmer emails booking confirmations. A nil *Confirmer is a no-op.
type Confirmer struct {
	sender       EmailSender
	businessName string
	logger       *logging.Logger
}

func NewConfirmer(sender EmailSender, businessName string, logger *logging.Logger) *Confirmer {
	if sender == nil {
		panic("notify: email sender required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Confirmer{sender: sender, businessName: businessName, logger: logger}
}

// ConfirmBooking emails the customer when their contact is an email address.
// Returns nil without sending for phone contacts.
func (c *Confirmer) ConfirmBooking(ctx context.Context, b session.Booking) error {
	if c == nil {
		return nil
	}
	if !looksLikeEmail(b.Contact) {
		c.logger.Debug("confirmation skipped, contact is not an email", "contact", b.Contact)
		return nil
	}

	msg := EmailMessage{
		To:      b.Contact,
		ToName:  b.Name,
		Subject: fmt.Sprintf("Your %s booking is confirmed", b.Service),
		Body: fmt.Sprintf("Hi %s,\n\nYour %s at %s is booked for %s.\n\nSee you then!\n%s",
			b.Name, b.Service, c.businessName, b.DateTime.Pretty, c.businessName),
	}
	if err := c.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: booking confirmation: %w", err)
	}
	return nil
}

func looksLikeEmail(contact string) bool {
	at := strings.Index(contact, "@")
	return at > 0 && strings.Contains(contact[at:], ".")
}
