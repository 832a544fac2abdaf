package email

import (
	"context"

	"github.com/resend/resend-go/v2"

	"github.com/pharmalink/ledger/internal/config"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/logger"
)

// EmailClient sends mail through Resend
type EmailClient struct {
	client  *resend.Client
	enabled bool
	from    string
	replyTo string
	logger  *logger.Logger
}

func NewEmailClient(cfg *config.Configuration, log *logger.Logger) *EmailClient {
	enabled := cfg.Email.Enabled && cfg.Email.ResendAPIKey != ""
	if cfg.Email.Enabled && !enabled {
		log.Warnw("email is enabled but no resend api key is configured, emails will be skipped")
	}

	var client *resend.Client
	if enabled {
		client = resend.NewClient(cfg.Email.ResendAPIKey)
	}

	return &EmailClient{
		client:  client,
		enabled: enabled,
		from:    cfg.Email.FromAddress,
		replyTo: cfg.Email.ReplyTo,
		logger:  log,
	}
}

func (c *EmailClient) IsEnabled() bool {
	return c.enabled
}

func (c *EmailClient) GetFromAddress() string {
	return c.from
}

// SendEmail delivers one message and returns the provider message id
func (c *EmailClient) SendEmail(ctx context.Context, from, to, subject, html, text string) (string, error) {
	if !c.enabled {
		return "", ierr.NewError("email client is disabled").
			Mark(ierr.ErrInvalidOperation)
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
		ReplyTo: c.replyTo,
	}

	sent, err := c.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to send email").
			WithReportableDetails(map[string]any{"to": to}).
			Mark(ierr.ErrHTTPClient)
	}
	return sent.Id, nil
}
