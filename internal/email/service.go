package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/logger"
)

const (
	TemplateCreditApproved = "credit-approved.html"
	TemplateCreditRejected = "credit-rejected.html"
)

// emailTemplates stores email templates as string constants
var emailTemplates = map[string]string{
	TemplateCreditApproved: `<!DOCTYPE html>
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>Your credit line is approved</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>Hello {{.customer_name}},</p>
    <p>Your application for trade credit has been approved.</p>
    <table style="border-collapse: collapse;">
        <tr><td style="padding-right: 16px;">Credit limit</td><td><strong>{{.credit_limit}}</strong></td></tr>
        <tr><td style="padding-right: 16px;">Payment terms</td><td>Net {{.net_terms}}</td></tr>
        <tr><td style="padding-right: 16px;">Late payment rate</td><td>{{.interest_rate}}% per month</td></tr>
    </table>
    <p>You can now choose <em>Pay on credit</em> at checkout.</p>
    <p>Thanks,<br/>The PharmaLink credit team</p>
</body>
</html>`,
	TemplateCreditRejected: `<!DOCTYPE html>
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>Update on your credit application</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <p>Hello {{.customer_name}},</p>
    <p>We are unable to offer trade credit at this time.</p>
    <p>Reason: {{.rejection_reason}}</p>
    <p>Card and manual payment remain available for all orders. Reply to this email if you would like us to reconsider.</p>
    <p>Thanks,<br/>The PharmaLink credit team</p>
</body>
</html>`,
}

type SendEmailWithTemplateRequest struct {
	FromAddress  string
	ToAddress    string
	Subject      string
	TemplatePath string
	Data         map[string]interface{}
}

type SendEmailWithTemplateResponse struct {
	MessageID string
	Success   bool
	Error     string
}

// Email renders templates and hands them to the sender
type Email struct {
	sender  interfaces.EmailSender
	enabled bool
	from    string
	logger  *logger.Logger
}

func NewEmail(sender interfaces.EmailSender, enabled bool, fromAddress string, log *logger.Logger) *Email {
	return &Email{
		sender:  sender,
		enabled: enabled && sender != nil,
		from:    fromAddress,
		logger:  log,
	}
}

// NewEmailFromClient wires the Resend client
func NewEmailFromClient(client *EmailClient, log *logger.Logger) *Email {
	return NewEmail(client, client.IsEnabled(), client.GetFromAddress(), log)
}

func (s *Email) IsEnabled() bool {
	return s.enabled
}

// SendEmailWithTemplate sends an email using an HTML template
func (s *Email) SendEmailWithTemplate(ctx context.Context, req SendEmailWithTemplateRequest) (*SendEmailWithTemplateResponse, error) {
	if !s.enabled {
		s.logger.Debugw("email disabled, skipping email send",
			"to", req.ToAddress,
			"template", req.TemplatePath,
		)
		return &SendEmailWithTemplateResponse{
			Success: false,
			Error:   "email client is disabled",
		}, nil
	}

	// configured sender wins over the request
	fromAddress := s.from
	if fromAddress == "" {
		fromAddress = req.FromAddress
	}

	htmlContent, err := s.readTemplate(req.TemplatePath)
	if err != nil {
		s.logger.Errorw("failed to read email template",
			"error", err,
			"template", req.TemplatePath,
		)
		return &SendEmailWithTemplateResponse{Success: false, Error: err.Error()}, err
	}

	htmlContent, err = s.renderTemplate(htmlContent, req.Data)
	if err != nil {
		s.logger.Errorw("failed to render email template",
			"error", err,
			"template", req.TemplatePath,
		)
		return &SendEmailWithTemplateResponse{Success: false, Error: err.Error()}, err
	}

	messageID, err := s.sender.SendEmail(ctx, fromAddress, req.ToAddress, req.Subject, htmlContent, "")
	if err != nil {
		s.logger.Errorw("failed to send templated email",
			"error", err,
			"to", req.ToAddress,
			"subject", req.Subject,
			"template", req.TemplatePath,
		)
		return &SendEmailWithTemplateResponse{Success: false, Error: err.Error()}, err
	}

	s.logger.Infow("templated email sent successfully",
		"message_id", messageID,
		"to", req.ToAddress,
		"template", req.TemplatePath,
	)

	return &SendEmailWithTemplateResponse{MessageID: messageID, Success: true}, nil
}

func (s *Email) readTemplate(templatePath string) (string, error) {
	templateContent, exists := emailTemplates[templatePath]
	if !exists {
		return "", fmt.Errorf("template not found: %s", templatePath)
	}
	return templateContent, nil
}

// renderTemplate executes with html/template so customer supplied values are escaped
func (s *Email) renderTemplate(templateContent string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New("email").Option("missingkey=zero").Parse(templateContent)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}
