package reward

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/types"
)

// LedgerEntry is an append-only reward points movement
type LedgerEntry struct {
	ID          string                `json:"id" gorm:"column:id;primaryKey"`
	CustomerID  string                `json:"customer_id" gorm:"column:customer_id;index;not null"`
	EntryType   types.RewardEntryType `json:"entry_type" gorm:"column:entry_type;not null"`
	Points      int64                 `json:"points" gorm:"column:points;not null"`
	OrderID     string                `json:"order_id,omitempty" gorm:"column:order_id;index"`
	Description string                `json:"description,omitempty" gorm:"column:description"`
	types.BaseModel
}

func (LedgerEntry) TableName() string { return string(types.TableNameRewardLedger) }

// Redemption is a voucher bought with points ahead of checkout
type Redemption struct {
	ID               string                       `json:"id" gorm:"column:id;primaryKey"`
	CustomerID       string                       `json:"customer_id" gorm:"column:customer_id;index;not null"`
	Value            decimal.Decimal              `json:"value" gorm:"column:value;type:numeric(20,2);not null"`
	PointsSpent      int64                        `json:"points_spent" gorm:"column:points_spent;not null;default:0"`
	RedemptionStatus types.RewardRedemptionStatus `json:"redemption_status" gorm:"column:redemption_status;not null"`
	OrderID          string                       `json:"order_id,omitempty" gorm:"column:order_id"`
	UsedAt           *time.Time                   `json:"used_at,omitempty" gorm:"column:used_at"`
	types.BaseModel
}

func (Redemption) TableName() string { return string(types.TableNameRewardRedemptions) }
