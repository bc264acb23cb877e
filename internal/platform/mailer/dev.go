package mailer

import "github.com/nyumbani/visits-api/pkg/logger"

// DevMailer logs emails instead of sending them.
type DevMailer struct{}

func (DevMailer) Send(toEmail, toName, subject, text, _ string) (string, error) {
	logger.Info("dev mailer: email not sent",
		"to", toEmail,
		"to_name", toName,
		"subject", subject,
		"body", text,
	)
	return "dev", nil
}

var _ Service = DevMailer{}
