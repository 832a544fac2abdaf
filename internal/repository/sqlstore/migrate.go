package sqlstore

import (
	"github.com/pharmalink/ledger/internal/domain/accounttransaction"
	"github.com/pharmalink/ledger/internal/domain/activity"
	"github.com/pharmalink/ledger/internal/domain/creditapplication"
	"github.com/pharmalink/ledger/internal/domain/creditline"
	"github.com/pharmalink/ledger/internal/domain/creditmemo"
	"github.com/pharmalink/ledger/internal/domain/customer"
	"github.com/pharmalink/ledger/internal/domain/discount"
	"github.com/pharmalink/ledger/internal/domain/invoice"
	"github.com/pharmalink/ledger/internal/domain/offer"
	"github.com/pharmalink/ledger/internal/domain/order"
	"github.com/pharmalink/ledger/internal/domain/paymentadjustment"
	"github.com/pharmalink/ledger/internal/domain/reward"
	"github.com/pharmalink/ledger/internal/postgres"
)

// Models lists every table owned by the ledger
func Models() []interface{} {
	return []interface{}{
		&customer.Customer{},
		&creditapplication.CreditApplication{},
		&creditline.CreditLine{},
		&creditline.SentCreditTerms{},
		&order.Order{},
		&discount.Commit{},
		&offer.Offer{},
		&reward.LedgerEntry{},
		&reward.Redemption{},
		&invoice.Invoice{},
		&invoice.Sequence{},
		&creditmemo.CreditMemo{},
		&creditmemo.Application{},
		&paymentadjustment.PaymentAdjustment{},
		&accounttransaction.AccountTransaction{},
		&activity.Activity{},
	}
}

// Migrate creates or updates the ledger schema
func Migrate(client *postgres.Client) error {
	return client.AutoMigrate(Models()...)
}
