package dto

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/pharmalink/ledger/internal/domain/invoice"
	"github.com/pharmalink/ledger/internal/domain/order"
	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/types"
	"github.com/pharmalink/ledger/internal/validator"
)

type OrderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity" validate:"min=1"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"decimal_gte0"`
}

// CardRequest identifies the card to charge, a fresh token or a saved profile
type CardRequest struct {
	Token           string `json:"token,omitempty"`
	SavedProfileRef string `json:"saved_profile_ref,omitempty"`
}

type SettleOrderRequest struct {
	CustomerID    string              `json:"customer_id" validate:"required"`
	Items         []OrderItemRequest  `json:"items" validate:"required,min=1,dive"`
	Tax           decimal.Decimal     `json:"tax" validate:"decimal_gte0"`
	Shipping      decimal.Decimal     `json:"shipping" validate:"decimal_gte0"`
	Currency      string              `json:"currency,omitempty"`
	PaymentMethod types.PaymentMethod `json:"payment_method" validate:"required"`
	Instruments   []InstrumentRequest `json:"instruments,omitempty" validate:"dive"`
	Card          *CardRequest        `json:"card,omitempty"`
	Metadata      types.Metadata      `json:"metadata,omitempty"`
}

func (r *SettleOrderRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if err := r.PaymentMethod.Validate(); err != nil {
		return err
	}
	if r.Card != nil && r.Card.Token == "" && r.Card.SavedProfileRef == "" {
		return ierr.NewError("card token or saved profile is required").
			WithHint("Provide a card token or a saved payment profile").
			Mark(ierr.ErrValidation)
	}
	if _, err := ToInstruments(r.Instruments); err != nil {
		return err
	}
	return nil
}

// ToItems converts request lines to order items
func (r *SettleOrderRequest) ToItems() []order.Item {
	return lo.Map(r.Items, func(i OrderItemRequest, _ int) order.Item {
		return order.Item{
			ProductID: i.ProductID,
			Name:      i.Name,
			Quantity:  i.Quantity,
			UnitPrice: i.UnitPrice,
		}
	})
}

// Subtotal is the sum of line totals
func (r *SettleOrderRequest) Subtotal() decimal.Decimal {
	return lo.Reduce(r.ToItems(), func(acc decimal.Decimal, i order.Item, _ int) decimal.Decimal {
		return acc.Add(i.LineTotal())
	}, decimal.Zero)
}

type OrderResponse struct {
	Order   *order.Order     `json:"order"`
	Invoice *invoice.Invoice `json:"invoice,omitempty"`
}

type ListOrdersResponse struct {
	Items []*order.Order `json:"items"`
}
