package service

import (
	"context"

	"github.com/pharmalink/ledger/internal/domain/creditapplication"
	"github.com/pharmalink/ledger/internal/domain/creditline"
	"github.com/pharmalink/ledger/internal/email"
	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/types"
)

type NotificationService = interfaces.NotificationService

type notificationService struct {
	ServiceParams
}

func NewNotificationService(params ServiceParams) NotificationService {
	return &notificationService{
		ServiceParams: params,
	}
}

// NotifyCreditDecision emails the applicant. Delivery problems are logged and
// never surface to the review flow.
func (s *notificationService) NotifyCreditDecision(ctx context.Context, app *creditapplication.CreditApplication, line *creditline.CreditLine) {
	if s.Email == nil || !s.Email.IsEnabled() || app == nil {
		return
	}

	cust, err := s.CustomerRepo.Get(ctx, app.CustomerID)
	if err != nil {
		s.Logger.Warnw("skipping credit decision email, customer not found",
			"error", err,
			"customer_id", app.CustomerID,
		)
		return
	}
	if cust.Email == "" {
		s.Logger.Debugw("skipping credit decision email, customer has no email",
			"customer_id", cust.ID,
		)
		return
	}

	req := email.SendEmailWithTemplateRequest{
		ToAddress: cust.Email,
		Data: map[string]interface{}{
			"customer_name": cust.Name,
		},
	}

	switch app.ApplicationStatus {
	case types.CreditApplicationStatusApproved:
		if line == nil {
			return
		}
		req.Subject = "Your trade credit is approved"
		req.TemplatePath = email.TemplateCreditApproved
		req.Data["credit_limit"] = line.CreditLimit.StringFixed(2)
		req.Data["net_terms"] = line.NetTerms
		req.Data["interest_rate"] = line.InterestRate.String()
	case types.CreditApplicationStatusRejected:
		req.Subject = "Update on your credit application"
		req.TemplatePath = email.TemplateCreditRejected
		req.Data["rejection_reason"] = app.RejectionReason
	default:
		return
	}

	resp, err := s.Email.SendEmailWithTemplate(ctx, req)
	if err != nil {
		s.Logger.Errorw("failed to send credit decision email",
			"error", err,
			"application_id", app.ID,
			"customer_id", cust.ID,
		)
		return
	}
	if !resp.Success {
		s.Logger.Warnw("credit decision email not delivered",
			"application_id", app.ID,
			"reason", resp.Error,
		)
	}
}
