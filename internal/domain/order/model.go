package order

import (
	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/domain/discount"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/types"
)

// Item is a priced cart line
type Item struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineTotal is quantity times unit price
func (i Item) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is created once at settlement and never edited afterwards.
// TotalAmount = max(0, Subtotal + Tax + Shipping - DiscountAmount).
type Order struct {
	ID                   string                `json:"id" gorm:"column:id;primaryKey"`
	OrderNumber          string                `json:"order_number" gorm:"column:order_number;uniqueIndex;not null"`
	CustomerID           string                `json:"customer_id" gorm:"column:customer_id;index;not null"`
	Items                []Item                `json:"items" gorm:"column:items;serializer:json;type:text"`
	Subtotal             decimal.Decimal       `json:"subtotal" gorm:"column:subtotal;type:numeric(20,2);not null"`
	Tax                  decimal.Decimal       `json:"tax" gorm:"column:tax;type:numeric(20,2);not null"`
	Shipping             decimal.Decimal       `json:"shipping" gorm:"column:shipping;type:numeric(20,2);not null"`
	DiscountAmount       decimal.Decimal       `json:"discount_amount" gorm:"column:discount_amount;type:numeric(20,2);not null"`
	DiscountDetails      []discount.Detail     `json:"discount_details" gorm:"column:discount_details;serializer:json;type:text"`
	TotalAmount          decimal.Decimal       `json:"total_amount" gorm:"column:total_amount;type:numeric(20,2);not null"`
	Currency             string                `json:"currency" gorm:"column:currency;not null"`
	PaymentMethod        types.PaymentMethod   `json:"payment_method" gorm:"column:payment_method;not null"`
	PaymentStatus        types.PaymentStatus   `json:"payment_status" gorm:"column:payment_status;not null"`
	OrderStatus          types.OrderStatus     `json:"order_status" gorm:"column:order_status;not null"`
	GatewayTransactionID string                `json:"gateway_transaction_id,omitempty" gorm:"column:gateway_transaction_id"`
	Metadata             types.Metadata        `json:"metadata,omitempty" gorm:"column:metadata;serializer:json;type:text"`
	types.BaseModel
}

func (Order) TableName() string { return string(types.TableNameOrders) }

// GrossAmount is the payable before discounts
func (o *Order) GrossAmount() decimal.Decimal {
	return o.Subtotal.Add(o.Tax).Add(o.Shipping)
}

// IsOnCredit reports whether the order was drawn against a credit line
func (o *Order) IsOnCredit() bool {
	return o.PaymentMethod == types.PaymentMethodCredit
}

func (o *Order) Validate() error {
	expected := decimal.Max(decimal.Zero, o.GrossAmount().Sub(o.DiscountAmount))
	if !expected.Equal(o.TotalAmount) {
		return ierr.NewError("order total does not match its components").
			WithReportableDetails(map[string]any{
				"expected_total": expected,
				"total_amount":   o.TotalAmount,
			}).
			Mark(ierr.ErrValidation)
	}
	if !discount.SumDetails(o.DiscountDetails).Equal(o.DiscountAmount) {
		return ierr.NewError("discount details do not add up to discount amount").
			WithReportableDetails(map[string]any{
				"discount_amount": o.DiscountAmount,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
