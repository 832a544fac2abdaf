package service

import (
	"context"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/creditapplication"
	"github.com/pharmalink/ledger/internal/domain/creditline"
	"github.com/pharmalink/ledger/internal/domain/customer"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/types"
)

type CreditApplicationService = interfaces.CreditApplicationService

type creditApplicationService struct {
	ServiceParams
}

func NewCreditApplicationService(params ServiceParams) CreditApplicationService {
	return &creditApplicationService{
		ServiceParams: params,
	}
}

func (s *creditApplicationService) SubmitApplication(ctx context.Context, req dto.SubmitCreditApplicationRequest) (*dto.CreditApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.CustomerRepo.Get(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	app := req.ToCreditApplication(ctx)
	app.RequestedAmount = types.RoundToCurrencyPrecision(app.RequestedAmount, types.DefaultCurrency)
	if err := app.Validate(); err != nil {
		return nil, err
	}

	if err := s.CreditApplicationRepo.Create(ctx, app); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to submit credit application").
			Mark(ierr.ErrDatabase)
	}

	s.Logger.Infow("credit application submitted",
		"application_id", app.ID,
		"customer_id", app.CustomerID,
		"requested_amount", app.RequestedAmount,
	)
	return &dto.CreditApplicationResponse{CreditApplication: app}, nil
}

func (s *creditApplicationService) GetApplication(ctx context.Context, id string) (*dto.CreditApplicationResponse, error) {
	app, err := s.CreditApplicationRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.CreditApplicationResponse{CreditApplication: app}, nil
}

func (s *creditApplicationService) ListApplications(ctx context.Context, filter *creditapplication.Filter) (*dto.ListCreditApplicationsResponse, error) {
	if filter == nil {
		filter = &creditapplication.Filter{}
	}
	if filter.QueryFilter == nil {
		filter.QueryFilter = types.NewDefaultQueryFilter()
	}
	if err := filter.QueryFilter.Validate(); err != nil {
		return nil, err
	}

	items, err := s.CreditApplicationRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return &dto.ListCreditApplicationsResponse{Items: items}, nil
}

// StartReview moves a pending application under review. Calling it on an
// application already under review is a no-op.
func (s *creditApplicationService) StartReview(ctx context.Context, id string) (*dto.CreditApplicationResponse, error) {
	var app *creditapplication.CreditApplication
	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.lockApplication(txCtx, id); err != nil {
			return err
		}

		var err error
		app, err = s.CreditApplicationRepo.Get(txCtx, id)
		if err != nil {
			return err
		}

		switch app.ApplicationStatus {
		case types.CreditApplicationStatusUnderReview:
			return nil
		case types.CreditApplicationStatusPending:
			app.ApplicationStatus = types.CreditApplicationStatusUnderReview
			app.UpdatedBy = types.GetUserID(txCtx)
			return s.CreditApplicationRepo.Update(txCtx, app)
		default:
			return ierr.NewError("credit application is already decided").
				WithHintf("Application is %s and cannot be reviewed again", app.ApplicationStatus).
				WithReportableDetails(map[string]any{
					"application_id": id,
					"status":         app.ApplicationStatus,
				}).
				Mark(ierr.ErrInvalidOperation)
		}
	})
	if err != nil {
		return nil, err
	}
	return &dto.CreditApplicationResponse{CreditApplication: app}, nil
}

// ReviewApplication records the admin decision. Approval writes the customer
// credit profile, upserts the credit line and records accepted terms in one
// transaction under an application lock. Replaying the same decision returns
// the stored outcome.
func (s *creditApplicationService) ReviewApplication(ctx context.Context, id string, req dto.ReviewCreditApplicationRequest) (*dto.ReviewCreditApplicationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	resp := &dto.ReviewCreditApplicationResponse{}
	replayed := false

	err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.lockApplication(txCtx, id); err != nil {
			return err
		}

		app, err := s.CreditApplicationRepo.Get(txCtx, id)
		if err != nil {
			return err
		}
		resp.Application = app

		if app.ApplicationStatus.IsTerminal() {
			if app.ApplicationStatus != req.Decision.Status() {
				return ierr.NewError("credit application is already decided").
					WithHintf("Application was %s and cannot be %s", app.ApplicationStatus, req.Decision).
					WithReportableDetails(map[string]any{
						"application_id": id,
						"status":         app.ApplicationStatus,
						"decision":       req.Decision,
					}).
					Mark(ierr.ErrInvalidOperation)
			}
			replayed = true
			return s.loadExistingOutcome(txCtx, app, resp)
		}

		now := time.Now().UTC()
		app.ReviewedAt = &now
		app.ReviewedBy = types.GetUserID(txCtx)
		app.UpdatedBy = app.ReviewedBy

		if req.Decision == types.ReviewDecisionRejected {
			app.ApplicationStatus = types.CreditApplicationStatusRejected
			app.RejectionReason = req.RejectionReason
			return s.CreditApplicationRepo.Update(txCtx, app)
		}

		approvedAmount := types.RoundToCurrencyPrecision(
			lo.FromPtrOr(req.ApprovedAmount, app.RequestedAmount), types.DefaultCurrency)
		netTerms := lo.FromPtrOr(req.NetTerms, s.defaultNetTerms())
		interestRate := lo.FromPtrOr(req.InterestRate, s.Config.Credit.DefaultInterestRate)

		app.ApplicationStatus = types.CreditApplicationStatusApproved
		app.ApprovedAmount = &approvedAmount
		app.NetTerms = &netTerms
		app.InterestRate = &interestRate

		if err := s.CustomerRepo.UpdateCreditProfile(txCtx, app.CustomerID, customer.CreditProfile{
			CreditApproved: true,
			CreditLimit:    approvedAmount,
			NetTerms:       netTerms,
			InterestRate:   interestRate,
		}); err != nil {
			return err
		}

		line, err := s.upsertCreditLine(txCtx, app, approvedAmount, netTerms, interestRate)
		if err != nil {
			return err
		}
		resp.CreditLine = line

		terms, err := s.acceptTerms(txCtx, app, approvedAmount, netTerms, interestRate, now)
		if err != nil {
			return err
		}
		resp.Terms = terms

		return s.CreditApplicationRepo.Update(txCtx, app)
	})
	if err != nil {
		return nil, err
	}

	if replayed {
		return resp, nil
	}

	s.Logger.Infow("credit application reviewed",
		"application_id", id,
		"customer_id", resp.Application.CustomerID,
		"decision", req.Decision,
	)

	activitySvc := NewActivityService(s.ServiceParams)
	activitySvc.LogActivity(ctx, dto.ActivityRequest{
		Type:        types.ActivityTypeCreditApplicationReview,
		Description: "credit application " + string(resp.Application.ApplicationStatus),
		Metadata: map[string]interface{}{
			"application_id": resp.Application.ID,
			"customer_id":    resp.Application.CustomerID,
			"decision":       req.Decision,
		},
		After: resp,
	})

	notificationSvc := NewNotificationService(s.ServiceParams)
	notificationSvc.NotifyCreditDecision(ctx, resp.Application, resp.CreditLine)

	return resp, nil
}

// upsertCreditLine creates the customer's line or re-terms the existing one,
// keeping whatever usage is already drawn. A limit below that usage is refused.
func (s *creditApplicationService) upsertCreditLine(ctx context.Context, app *creditapplication.CreditApplication, limit decimal.Decimal, netTerms int, rate decimal.Decimal) (*creditline.CreditLine, error) {
	line, err := s.CreditLineRepo.GetByCustomerID(ctx, app.CustomerID)
	if err != nil && !ierr.IsNotFound(err) {
		return nil, err
	}

	if line == nil {
		line = &creditline.CreditLine{
			ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_LINE),
			CustomerID:       app.CustomerID,
			CreditLimit:      limit,
			UsedCredit:       decimal.Zero,
			NetTerms:         netTerms,
			InterestRate:     rate,
			CreditLineStatus: types.CreditLineStatusActive,
			PaymentScore:     types.DefaultPaymentScore,
			ApplicationID:    app.ID,
			BaseModel:        types.GetDefaultBaseModel(ctx),
		}
		line.Recompute()
		if err := line.Validate(); err != nil {
			return nil, err
		}
		if err := s.CreditLineRepo.Create(ctx, line); err != nil {
			return nil, err
		}
		return line, nil
	}

	if limit.LessThan(line.UsedCredit) {
		return nil, ierr.NewError("credit limit below used credit").
			WithHintf("The approved amount %s is below the %s the customer has already drawn", limit.StringFixed(2), line.UsedCredit.StringFixed(2)).
			WithReportableDetails(map[string]any{
				"application_id": app.ID,
				"credit_limit":   limit,
				"used_credit":    line.UsedCredit,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	line.CreditLimit = limit
	line.NetTerms = netTerms
	line.InterestRate = rate
	line.CreditLineStatus = types.CreditLineStatusActive
	line.ApplicationID = app.ID
	if err := line.Validate(); err != nil {
		return nil, err
	}
	return s.CreditLineRepo.UpdateTerms(ctx, line)
}

func (s *creditApplicationService) acceptTerms(ctx context.Context, app *creditapplication.CreditApplication, limit decimal.Decimal, netTerms int, rate decimal.Decimal, at time.Time) (*creditline.SentCreditTerms, error) {
	existing, err := s.CreditTermsRepo.GetByApplicationID(ctx, app.ID)
	if err == nil {
		return existing, nil
	}
	if !ierr.IsNotFound(err) {
		return nil, err
	}

	terms := &creditline.SentCreditTerms{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_TERMS),
		CustomerID:    app.CustomerID,
		ApplicationID: app.ID,
		CreditLimit:   limit,
		NetTerms:      netTerms,
		InterestRate:  rate,
		TermsStatus:   types.CreditTermsStatusAccepted,
		AcceptedAt:    &at,
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	if err := s.CreditTermsRepo.Create(ctx, terms); err != nil {
		return nil, err
	}
	return terms, nil
}

func (s *creditApplicationService) loadExistingOutcome(ctx context.Context, app *creditapplication.CreditApplication, resp *dto.ReviewCreditApplicationResponse) error {
	if app.ApplicationStatus != types.CreditApplicationStatusApproved {
		return nil
	}

	line, err := s.CreditLineRepo.GetByCustomerID(ctx, app.CustomerID)
	if err != nil {
		return err
	}
	resp.CreditLine = line

	terms, err := s.CreditTermsRepo.GetByApplicationID(ctx, app.ID)
	if err != nil && !ierr.IsNotFound(err) {
		return err
	}
	resp.Terms = terms
	return nil
}

// ExpireApplications closes open applications submitted more than the
// configured number of days before asOf
func (s *creditApplicationService) ExpireApplications(ctx context.Context, asOf time.Time) (*dto.ExpireCreditApplicationsResponse, error) {
	ttlDays := s.Config.Credit.ApplicationTTLDays
	if ttlDays <= 0 {
		return &dto.ExpireCreditApplicationsResponse{Expired: []string{}}, nil
	}
	cutoff := asOf.UTC().AddDate(0, 0, -ttlDays)

	candidates, err := s.CreditApplicationRepo.List(ctx, &creditapplication.Filter{
		QueryFilter:   types.NewNoLimitQueryFilter(),
		Statuses:      []types.CreditApplicationStatus{types.CreditApplicationStatusPending, types.CreditApplicationStatusUnderReview},
		CreatedBefore: &cutoff,
	})
	if err != nil {
		return nil, err
	}

	expired := make([]string, 0, len(candidates))
	activitySvc := NewActivityService(s.ServiceParams)

	for _, candidate := range candidates {
		var changed bool
		err := s.DB.WithTx(ctx, func(txCtx context.Context) error {
			if err := s.lockApplication(txCtx, candidate.ID); err != nil {
				return err
			}
			app, err := s.CreditApplicationRepo.Get(txCtx, candidate.ID)
			if err != nil {
				return err
			}
			// a review may have landed between the list and the lock
			if !app.ApplicationStatus.IsOpen() {
				return nil
			}
			app.ApplicationStatus = types.CreditApplicationStatusExpired
			app.UpdatedBy = types.GetUserID(txCtx)
			changed = true
			return s.CreditApplicationRepo.Update(txCtx, app)
		})
		if err != nil {
			s.Logger.Errorw("failed to expire credit application",
				"error", err,
				"application_id", candidate.ID,
			)
			continue
		}
		if !changed {
			continue
		}

		expired = append(expired, candidate.ID)
		activitySvc.LogActivity(ctx, dto.ActivityRequest{
			Type:        types.ActivityTypeCreditApplicationExpired,
			Description: "credit application expired without review",
			Metadata: map[string]interface{}{
				"application_id": candidate.ID,
				"customer_id":    candidate.CustomerID,
				"cutoff":         cutoff,
			},
		})
	}

	s.Logger.Infow("expired stale credit applications",
		"count", len(expired),
		"cutoff", cutoff,
	)
	return &dto.ExpireCreditApplicationsResponse{Expired: expired}, nil
}

func (s *creditApplicationService) lockApplication(ctx context.Context, id string) error {
	return s.DB.LockKey(ctx, types.NewLockRequest(ctx, types.LockScopeCreditApplication, map[string]interface{}{
		"application_id": id,
	}))
}

func (s *creditApplicationService) defaultNetTerms() int {
	if s.Config.Credit.DefaultNetTerms > 0 {
		return s.Config.Credit.DefaultNetTerms
	}
	return int(types.DefaultNetTerms)
}
