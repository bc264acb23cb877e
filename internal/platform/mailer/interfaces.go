package mailer

import "github.com/nyumbani/visits-api/internal/notify"

// Service delivers a composed email. Implementations return a provider
// message ID when they have one.
type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
}

// SendReceipt dispatches a composed booking receipt through m. Dispatch is
// always an explicit caller action; nothing in the lifecycle calls this.
func SendReceipt(m Service, toName string, email *notify.ReceiptEmail) (string, error) {
	return m.Send(email.To, toName, email.Subject, email.Body, "")
}
