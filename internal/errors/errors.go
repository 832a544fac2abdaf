// Package errors is the error vocabulary of the ledger. Every error that
// leaves a service is built with NewError or WithError and marked with one
// of the sentinel markers below, so callers and the HTTP layer can branch
// on the category with errors.Is.
package errors

import (
	"github.com/cockroachdb/errors"
)

// Common markers
var (
	ErrNotFound         = errors.New("entity not found")
	ErrAlreadyExists    = errors.New("entity already exists")
	ErrValidation       = errors.New("validation error")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrPermissionDenied = errors.New("permission denied")
	ErrHTTPClient       = errors.New("http client error")
	ErrDatabase         = errors.New("database error")
	ErrSystem           = errors.New("system error")
	ErrInternal         = errors.New("internal error")
)

// Ledger markers
var (
	// ErrCreditLimitExceeded is returned when a credit usage would push a
	// credit line past its limit.
	ErrCreditLimitExceeded = errors.New("credit limit exceeded")

	// ErrInsufficientBalance is returned when reward points or a credit memo
	// cannot cover the requested amount.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrDuplicateInvoice is returned when an invoice already exists for an order.
	ErrDuplicateInvoice = errors.New("duplicate invoice")

	// ErrGateway is returned when the payment gateway rejects or fails a call.
	ErrGateway = errors.New("payment gateway error")

	// ErrConcurrencyConflict is returned when a concurrent writer won a race
	// (invoice number collision, stale read of a guarded row).
	ErrConcurrencyConflict = errors.New("concurrency conflict")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

func IsCreditLimitExceeded(err error) bool {
	return errors.Is(err, ErrCreditLimitExceeded)
}

func IsInsufficientBalance(err error) bool {
	return errors.Is(err, ErrInsufficientBalance)
}

func IsDuplicateInvoice(err error) bool {
	return errors.Is(err, ErrDuplicateInvoice)
}

func IsGateway(err error) bool {
	return errors.Is(err, ErrGateway)
}

func IsConcurrencyConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// Is re-exports errors.Is so callers only need one import.
func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

// As re-exports errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
