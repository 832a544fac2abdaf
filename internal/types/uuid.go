package types

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

const (
	UUID_PREFIX_CUSTOMER                = "cust"
	UUID_PREFIX_CREDIT_APPLICATION      = "capp"
	UUID_PREFIX_CREDIT_LINE             = "cline"
	UUID_PREFIX_CREDIT_TERMS            = "cterm"
	UUID_PREFIX_ORDER                   = "ord"
	UUID_PREFIX_DISCOUNT_COMMIT         = "dcmt"
	UUID_PREFIX_OFFER                   = "offer"
	UUID_PREFIX_REWARD_LEDGER           = "rwl"
	UUID_PREFIX_REWARD_REDEMPTION       = "rdm"
	UUID_PREFIX_INVOICE                 = "inv"
	UUID_PREFIX_CREDIT_MEMO             = "cm"
	UUID_PREFIX_CREDIT_MEMO_APPLICATION = "cma"
	UUID_PREFIX_PAYMENT_ADJUSTMENT      = "padj"
	UUID_PREFIX_ACCOUNT_TRANSACTION     = "atxn"
	UUID_PREFIX_ACTIVITY                = "act"
	UUID_PREFIX_EVENT                   = "evt"
)

const (
	SHORT_ID_PREFIX_CREDIT_MEMO = "CM-"
	SHORT_ID_PREFIX_ORDER       = "ORD-"
)

// GenerateUUID returns a k-sortable unique identifier.
func GenerateUUID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

// GenerateUUIDWithPrefix returns "<prefix>_<ulid>".
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

// GenerateShortIDWithPrefix returns a short human readable identifier,
// used for document numbers that customers see.
func GenerateShortIDWithPrefix(prefix string) string {
	id, err := shortid.Generate()
	if err != nil {
		// fall back to the tail of a ulid, still unique enough for display
		id = GenerateUUID()[16:]
	}
	return prefix + strings.ToUpper(id)
}
