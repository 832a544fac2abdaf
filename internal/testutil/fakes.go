package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	ierr "github.com/pharmalink/ledger/internal/errors"
	"github.com/pharmalink/ledger/internal/interfaces"
	"github.com/pharmalink/ledger/internal/redis"
)

// FakePaymentGateway records calls and answers with configurable outcomes
type FakePaymentGateway struct {
	mu sync.Mutex

	// ChargeErr and RefundErr are returned as transport failures
	ChargeErr error
	RefundErr error
	// DeclineCharge and DeclineRefund answer with Success false
	DeclineCharge bool
	DeclineRefund bool

	Charges []interfaces.ChargeRequest
	Refunds []interfaces.RefundRequest
	seq     int
}

func NewFakePaymentGateway() *FakePaymentGateway {
	return &FakePaymentGateway{}
}

func (g *FakePaymentGateway) ChargeCard(_ context.Context, req interfaces.ChargeRequest) (*interfaces.ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Charges = append(g.Charges, req)
	if g.ChargeErr != nil {
		return nil, g.ChargeErr
	}
	if g.DeclineCharge {
		return &interfaces.ChargeResult{Success: false, FailureMessage: "card declined"}, nil
	}
	g.seq++
	return &interfaces.ChargeResult{Success: true, TransactionID: fmt.Sprintf("pi_test_%d", g.seq)}, nil
}

func (g *FakePaymentGateway) Refund(_ context.Context, req interfaces.RefundRequest) (*interfaces.RefundResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Refunds = append(g.Refunds, req)
	if g.RefundErr != nil {
		return nil, g.RefundErr
	}
	if g.DeclineRefund {
		return &interfaces.RefundResult{Success: false, FailureMessage: "refund declined"}, nil
	}
	g.seq++
	return &interfaces.RefundResult{Success: true, RefundTransactionID: fmt.Sprintf("re_test_%d", g.seq)}, nil
}

func (g *FakePaymentGateway) ChargeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Charges)
}

func (g *FakePaymentGateway) RefundCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Refunds)
}

func (g *FakePaymentGateway) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ChargeErr, g.RefundErr = nil, nil
	g.DeclineCharge, g.DeclineRefund = false, false
	g.Charges, g.Refunds = nil, nil
}

// SentEmail is one message captured by FakeEmailSender
type SentEmail struct {
	From, To, Subject, HTML, Text string
}

type FakeEmailSender struct {
	mu   sync.Mutex
	Err  error
	Sent []SentEmail
}

func NewFakeEmailSender() *FakeEmailSender {
	return &FakeEmailSender{}
}

func (f *FakeEmailSender) SendEmail(_ context.Context, from, to, subject, html, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	f.Sent = append(f.Sent, SentEmail{From: from, To: to, Subject: subject, HTML: html, Text: text})
	return fmt.Sprintf("msg_%d", len(f.Sent)), nil
}

func (f *FakeEmailSender) Messages() []SentEmail {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]SentEmail(nil), f.Sent...)
}

// InMemoryLocker implements redis.Locker with process local keys and expiry
type InMemoryLocker struct {
	mu   sync.Mutex
	held map[string]time.Time
}

func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{held: make(map[string]time.Time)}
}

func (l *InMemoryLocker) Obtain(_ context.Context, key string, ttl time.Duration) (redis.Lock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if until, ok := l.held[key]; ok && time.Now().Before(until) {
		return nil, ierr.NewError("lock not obtained").
			WithHint("Another run already holds this lock").
			WithReportableDetails(map[string]any{"lock_key": key}).
			Mark(ierr.ErrConcurrencyConflict)
	}
	l.held[key] = time.Now().Add(ttl)
	return &inMemoryLock{locker: l, key: key}, nil
}

type inMemoryLock struct {
	locker *InMemoryLocker
	key    string
}

func (l *inMemoryLock) Release(_ context.Context) error {
	l.locker.mu.Lock()
	defer l.locker.mu.Unlock()
	delete(l.locker.held, l.key)
	return nil
}

var (
	_ interfaces.PaymentGateway = (*FakePaymentGateway)(nil)
	_ interfaces.EmailSender    = (*FakeEmailSender)(nil)
	_ redis.Locker              = (*InMemoryLocker)(nil)
)
