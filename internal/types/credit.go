package types

import (
	"github.com/samber/lo"

	ierr "github.com/pharmalink/ledger/internal/errors"
)

type CreditApplicationStatus string

const (
	CreditApplicationStatusPending     CreditApplicationStatus = "pending"
	CreditApplicationStatusUnderReview CreditApplicationStatus = "under_review"
	CreditApplicationStatusApproved    CreditApplicationStatus = "approved"
	CreditApplicationStatusRejected    CreditApplicationStatus = "rejected"
	CreditApplicationStatusExpired     CreditApplicationStatus = "expired"
)

// IsTerminal reports whether no further review transition is allowed.
func (s CreditApplicationStatus) IsTerminal() bool {
	return s == CreditApplicationStatusApproved ||
		s == CreditApplicationStatusRejected ||
		s == CreditApplicationStatusExpired
}

// IsOpen reports whether the application still awaits a decision.
func (s CreditApplicationStatus) IsOpen() bool {
	return s == CreditApplicationStatusPending || s == CreditApplicationStatusUnderReview
}

// ReviewDecision is the outcome an admin submits for an application.
type ReviewDecision string

const (
	ReviewDecisionApproved ReviewDecision = "approved"
	ReviewDecisionRejected ReviewDecision = "rejected"
)

func (d ReviewDecision) Validate() error {
	allowed := []ReviewDecision{ReviewDecisionApproved, ReviewDecisionRejected}
	if !lo.Contains(allowed, d) {
		return ierr.NewError("invalid review decision").
			WithHint("Decision must be approved or rejected").
			WithReportableDetails(map[string]any{
				"decision": d,
				"allowed":  allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Status returns the application status the decision moves to.
func (d ReviewDecision) Status() CreditApplicationStatus {
	if d == ReviewDecisionApproved {
		return CreditApplicationStatusApproved
	}
	return CreditApplicationStatusRejected
}

type CreditLineStatus string

const (
	CreditLineStatusActive    CreditLineStatus = "active"
	CreditLineStatusSuspended CreditLineStatus = "suspended"
)

type CreditTermsStatus string

const (
	CreditTermsStatusSent     CreditTermsStatus = "sent"
	CreditTermsStatusAccepted CreditTermsStatus = "accepted"
)

// NetTerms is the number of days an invoice on credit is due after settlement.
type NetTerms int

const (
	NetTerms30 NetTerms = 30
	NetTerms45 NetTerms = 45
	NetTerms60 NetTerms = 60

	DefaultNetTerms = NetTerms30
)

func (n NetTerms) Validate() error {
	allowed := []NetTerms{NetTerms30, NetTerms45, NetTerms60}
	if !lo.Contains(allowed, n) {
		return ierr.NewError("invalid net terms").
			WithHint("Net terms must be 30, 45 or 60 days").
			WithReportableDetails(map[string]any{
				"net_terms": n,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// DefaultPaymentScore is the score a freshly approved line starts with.
const DefaultPaymentScore = 100
