package types

// ActivityType classifies an audit log row.
type ActivityType string

const (
	ActivityTypeOrderSettled             ActivityType = "order_settled"
	ActivityTypeSettlementFailed         ActivityType = "settlement_failed"
	ActivityTypeDiscountCommitFailed     ActivityType = "discount_commit_failed"
	ActivityTypeRewardAwardFailed        ActivityType = "reward_award_failed"
	ActivityTypeCreditApplicationReview  ActivityType = "credit_application_reviewed"
	ActivityTypeCreditApplicationExpired ActivityType = "credit_application_expired"
	ActivityTypePaymentAdjusted          ActivityType = "payment_adjusted"
	ActivityTypeRefundProcessed          ActivityType = "refund_processed"
	ActivityTypeRefundFailed             ActivityType = "refund_failed"
	ActivityTypeCreditMemoIssued         ActivityType = "credit_memo_issued"
	ActivityTypeCreditMemoApplied        ActivityType = "credit_memo_applied"
	ActivityTypeInvoicePaymentRecorded   ActivityType = "invoice_payment_recorded"
	ActivityTypePenaltyAccrued           ActivityType = "penalty_accrued"
)

// ActivityTopic is the event bus topic activity rows are published on.
const ActivityTopic = "ledger.activity"
