package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/pharmalink/ledger/internal/api/dto"
	"github.com/pharmalink/ledger/internal/domain/creditapplication"
	"github.com/pharmalink/ledger/internal/domain/customer"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/testutil"
	"github.com/pharmalink/ledger/internal/types"
)

type CreditApplicationServiceTestSuite struct {
	testutil.BaseServiceTestSuite
	service     CreditApplicationService
	lineService CreditLineService
	testData    struct {
		customer *customer.Customer
	}
}

func TestCreditApplicationService(t *testing.T) {
	suite.Run(t, new(CreditApplicationServiceTestSuite))
}

func (s *CreditApplicationServiceTestSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestServiceParams(&s.BaseServiceTestSuite)
	s.service = NewCreditApplicationService(params)
	s.lineService = NewCreditLineService(params)
	s.testData.customer = createTestCustomer(&s.BaseServiceTestSuite, "cust_credit_app", 0)
}

func (s *CreditApplicationServiceTestSuite) submit(amount int64) *creditapplication.CreditApplication {
	resp, err := s.service.SubmitApplication(s.GetContext(), dto.SubmitCreditApplicationRequest{
		CustomerID:      s.testData.customer.ID,
		RequestedAmount: decimal.NewFromInt(amount),
		BusinessInfo:    map[string]string{"license": "PH-1234"},
		Signature:       "J. Ortiz",
	})
	s.Require().NoError(err)
	return resp.CreditApplication
}

func (s *CreditApplicationServiceTestSuite) TestSubmitApplication() {
	app := s.submit(10000)
	s.Equal(types.CreditApplicationStatusPending, app.ApplicationStatus)
	s.True(decimal.NewFromInt(10000).Equal(app.RequestedAmount))

	_, err := s.service.SubmitApplication(s.GetContext(), dto.SubmitCreditApplicationRequest{
		CustomerID:      "cust_missing",
		RequestedAmount: decimal.NewFromInt(100),
		Signature:       "x",
	})
	s.True(ierr.IsNotFound(err))
}

func (s *CreditApplicationServiceTestSuite) TestApproveWithDefaults() {
	app := s.submit(10000)

	resp, err := s.service.ReviewApplication(s.GetContext(), app.ID, dto.ReviewCreditApplicationRequest{
		Decision: types.ReviewDecisionApproved,
	})
	s.Require().NoError(err)

	s.Equal(types.CreditApplicationStatusApproved, resp.Application.ApplicationStatus)
	s.Require().NotNil(resp.CreditLine)
	s.True(decimal.NewFromInt(10000).Equal(resp.CreditLine.CreditLimit))
	s.True(decimal.NewFromInt(10000).Equal(resp.CreditLine.AvailableCredit))
	s.Equal(30, resp.CreditLine.NetTerms)
	s.True(decimal.NewFromInt(3).Equal(resp.CreditLine.InterestRate))
	s.Equal(types.DefaultPaymentScore, resp.CreditLine.PaymentScore)

	s.Require().NotNil(resp.Terms)
	s.Equal(types.CreditTermsStatusAccepted, resp.Terms.TermsStatus)
	s.NotNil(resp.Terms.AcceptedAt)

	cust, err := s.GetStores().CustomerRepo.Get(s.GetContext(), s.testData.customer.ID)
	s.Require().NoError(err)
	s.True(cust.CreditApproved)
	s.True(decimal.NewFromInt(10000).Equal(cust.CreditLimit))

	s.Len(s.GetStores().ActivityRepo.ListByType(s.GetContext(), types.ActivityTypeCreditApplicationReview), 1)

	msgs := s.GetEmailSender().Messages()
	s.Require().Len(msgs, 1)
	s.Equal("owner@riverside.test", msgs[0].To)
	s.Contains(msgs[0].HTML, "10000.00")
}

func (s *CreditApplicationServiceTestSuite) TestApproveWithExplicitTerms() {
	app := s.submit(10000)

	resp, err := s.service.ReviewApplication(s.GetContext(), app.ID, dto.ReviewCreditApplicationRequest{
		Decision:       types.ReviewDecisionApproved,
		ApprovedAmount: lo.ToPtr(decimal.NewFromInt(5000)),
		NetTerms:       lo.ToPtr(60),
		InterestRate:   lo.ToPtr(decimal.NewFromFloat(1.5)),
	})
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(5000).Equal(resp.CreditLine.CreditLimit))
	s.Equal(60, resp.CreditLine.NetTerms)
	s.True(decimal.NewFromFloat(1.5).Equal(resp.CreditLine.InterestRate))
}

func (s *CreditApplicationServiceTestSuite) TestReviewReplayAndConflict() {
	app := s.submit(2000)
	req := dto.ReviewCreditApplicationRequest{Decision: types.ReviewDecisionApproved}

	first, err := s.service.ReviewApplication(s.GetContext(), app.ID, req)
	s.Require().NoError(err)

	second, err := s.service.ReviewApplication(s.GetContext(), app.ID, req)
	s.Require().NoError(err)
	s.Equal(first.CreditLine.ID, second.CreditLine.ID)
	s.Len(s.GetEmailSender().Messages(), 1, "replay must not notify again")

	_, err = s.service.ReviewApplication(s.GetContext(), app.ID, dto.ReviewCreditApplicationRequest{
		Decision:        types.ReviewDecisionRejected,
		RejectionReason: "changed my mind",
	})
	s.True(ierr.IsInvalidOperation(err))
}

func (s *CreditApplicationServiceTestSuite) TestReject() {
	app := s.submit(2000)

	_, err := s.service.ReviewApplication(s.GetContext(), app.ID, dto.ReviewCreditApplicationRequest{
		Decision: types.ReviewDecisionRejected,
	})
	s.True(ierr.IsValidation(err), "rejection needs a reason")

	resp, err := s.service.ReviewApplication(s.GetContext(), app.ID, dto.ReviewCreditApplicationRequest{
		Decision:        types.ReviewDecisionRejected,
		RejectionReason: "insufficient trade history",
	})
	s.Require().NoError(err)
	s.Equal(types.CreditApplicationStatusRejected, resp.Application.ApplicationStatus)
	s.Nil(resp.CreditLine)

	_, err = s.lineService.GetCreditLine(s.GetContext(), s.testData.customer.ID)
	s.True(ierr.IsNotFound(err))

	msgs := s.GetEmailSender().Messages()
	s.Require().Len(msgs, 1)
	s.Contains(msgs[0].HTML, "insufficient trade history")
}

func (s *CreditApplicationServiceTestSuite) TestStartReview() {
	app := s.submit(2000)

	resp, err := s.service.StartReview(s.GetContext(), app.ID)
	s.Require().NoError(err)
	s.Equal(types.CreditApplicationStatusUnderReview, resp.ApplicationStatus)

	resp, err = s.service.StartReview(s.GetContext(), app.ID)
	s.Require().NoError(err)
	s.Equal(types.CreditApplicationStatusUnderReview, resp.ApplicationStatus)

	_, err = s.service.ReviewApplication(s.GetContext(), app.ID, dto.ReviewCreditApplicationRequest{
		Decision: types.ReviewDecisionApproved,
	})
	s.Require().NoError(err)

	_, err = s.service.StartReview(s.GetContext(), app.ID)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *CreditApplicationServiceTestSuite) TestSecondApprovalReTermsExistingLine() {
	first := s.submit(2000)
	firstResp, err := s.service.ReviewApplication(s.GetContext(), first.ID, dto.ReviewCreditApplicationRequest{
		Decision: types.ReviewDecisionApproved,
	})
	s.Require().NoError(err)

	_, err = s.lineService.RecordCreditUsage(s.GetContext(), s.testData.customer.ID, decimal.NewFromInt(500))
	s.Require().NoError(err)

	second := s.submit(8000)
	secondResp, err := s.service.ReviewApplication(s.GetContext(), second.ID, dto.ReviewCreditApplicationRequest{
		Decision: types.ReviewDecisionApproved,
	})
	s.Require().NoError(err)

	s.Equal(firstResp.CreditLine.ID, secondResp.CreditLine.ID)
	s.True(decimal.NewFromInt(8000).Equal(secondResp.CreditLine.CreditLimit))
	s.True(decimal.NewFromInt(500).Equal(secondResp.CreditLine.UsedCredit))
	s.True(decimal.NewFromInt(7500).Equal(secondResp.CreditLine.AvailableCredit))
}

func (s *CreditApplicationServiceTestSuite) TestApprovalBelowUsedCreditIsRefused() {
	first := s.submit(500)
	_, err := s.service.ReviewApplication(s.GetContext(), first.ID, dto.ReviewCreditApplicationRequest{
		Decision: types.ReviewDecisionApproved,
	})
	s.Require().NoError(err)

	_, err = s.lineService.RecordCreditUsage(s.GetContext(), s.testData.customer.ID, decimal.NewFromInt(400))
	s.Require().NoError(err)

	second := s.submit(300)
	_, err = s.service.ReviewApplication(s.GetContext(), second.ID, dto.ReviewCreditApplicationRequest{
		Decision: types.ReviewDecisionApproved,
	})
	s.True(ierr.IsInvalidOperation(err), "got %v", err)

	line, err := s.GetStores().CreditLineRepo.GetByCustomerID(s.GetContext(), s.testData.customer.ID)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(500).Equal(line.CreditLimit))
	s.True(decimal.NewFromInt(100).Equal(line.AvailableCredit))

	app, err := s.GetStores().CreditApplicationRepo.Get(s.GetContext(), second.ID)
	s.Require().NoError(err)
	s.Equal(types.CreditApplicationStatusPending, app.ApplicationStatus)
}

func (s *CreditApplicationServiceTestSuite) TestExpireApplications() {
	now := time.Now().UTC()

	stale := &creditapplication.CreditApplication{
		ID:                types.GenerateUUIDWithPrefix(types.UUID_PREFIX_CREDIT_APPLICATION),
		CustomerID:        s.testData.customer.ID,
		RequestedAmount:   decimal.NewFromInt(1000),
		ApplicationStatus: types.CreditApplicationStatusUnderReview,
		BaseModel:         types.GetDefaultBaseModel(s.GetContext()),
	}
	stale.CreatedAt = now.AddDate(0, 0, -45)
	s.Require().NoError(s.GetStores().CreditApplicationRepo.Create(s.GetContext(), stale))

	fresh := s.submit(1000)

	resp, err := s.service.ExpireApplications(s.GetContext(), now)
	s.Require().NoError(err)
	s.Equal([]string{stale.ID}, resp.Expired)

	got, err := s.service.GetApplication(s.GetContext(), stale.ID)
	s.Require().NoError(err)
	s.Equal(types.CreditApplicationStatusExpired, got.ApplicationStatus)

	got, err = s.service.GetApplication(s.GetContext(), fresh.ID)
	s.Require().NoError(err)
	s.Equal(types.CreditApplicationStatusPending, got.ApplicationStatus)

	resp, err = s.service.ExpireApplications(s.GetContext(), now)
	s.Require().NoError(err)
	s.Empty(resp.Expired)
}
