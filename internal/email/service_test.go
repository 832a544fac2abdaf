package email

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmalink/ledger/internal/logger"
)

type recordingSender struct {
	from, to, subject, html string
	err                     error
}

func (r *recordingSender) SendEmail(_ context.Context, from, to, subject, html, _ string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	r.from, r.to, r.subject, r.html = from, to, subject, html
	return "msg_1", nil
}

func TestSendEmailWithTemplate(t *testing.T) {
	sender := &recordingSender{}
	svc := NewEmail(sender, true, "credit@pharmalink.example", logger.NewNopLogger())

	resp, err := svc.SendEmailWithTemplate(context.Background(), SendEmailWithTemplateRequest{
		ToAddress:    "owner@pharmacy.example",
		Subject:      "Approved",
		TemplatePath: TemplateCreditApproved,
		Data: map[string]interface{}{
			"customer_name": "<Main Street Pharmacy>",
			"credit_limit":  "5000.00",
			"net_terms":     30,
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "msg_1", resp.MessageID)
	assert.Equal(t, "credit@pharmalink.example", sender.from)
	assert.Contains(t, sender.html, "5000.00")
	assert.Contains(t, sender.html, "Net 30")
	assert.Contains(t, sender.html, "&lt;Main Street Pharmacy&gt;")
}

func TestSendEmailWithTemplate_Disabled(t *testing.T) {
	sender := &recordingSender{}
	svc := NewEmail(sender, false, "", logger.NewNopLogger())

	resp, err := svc.SendEmailWithTemplate(context.Background(), SendEmailWithTemplateRequest{
		ToAddress:    "owner@pharmacy.example",
		TemplatePath: TemplateCreditRejected,
	})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Empty(t, sender.to)
}

func TestSendEmailWithTemplate_Errors(t *testing.T) {
	svc := NewEmail(&recordingSender{}, true, "", logger.NewNopLogger())
	_, err := svc.SendEmailWithTemplate(context.Background(), SendEmailWithTemplateRequest{TemplatePath: "missing.html"})
	assert.Error(t, err)

	failing := NewEmail(&recordingSender{err: errors.New("smtp down")}, true, "", logger.NewNopLogger())
	resp, err := failing.SendEmailWithTemplate(context.Background(), SendEmailWithTemplateRequest{
		ToAddress:    "owner@pharmacy.example",
		TemplatePath: TemplateCreditRejected,
	})
	assert.Error(t, err)
	assert.False(t, resp.Success)
}
