// Package sink provides value-transfer sink implementations. The ledger only
// records balances; a sink is the boundary where value actually moves.
package sink

import (
	"context"
	"sync"

	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/interfaces"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LogSink acknowledges every transfer and logs it. It stands in for the real
// settlement rail in local and dev deployments.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(log *zap.Logger) *LogSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Credit(ctx context.Context, accountID uint64, amount decimal.Decimal) error {
	s.log.Info("value credited",
		zap.Uint64("account_id", accountID),
		zap.String("amount", amount.String()))
	return nil
}

func (s *LogSink) PayOut(ctx context.Context, to models.Principal, amount decimal.Decimal) error {
	s.log.Info("value paid out",
		zap.String("to", string(to)),
		zap.String("amount", amount.String()))
	return nil
}

// RecordingSink remembers every transfer and can be told to fail, so tests
// can assert both payout delivery and rollback on sink failure.
type RecordingSink struct {
	mu sync.Mutex

	CreditErr error // returned by Credit when set
	PayOutErr error // returned by PayOut when set

	credits []Transfer
	payouts []Transfer
}

// Transfer is one movement of value through a recording sink.
type Transfer struct {
	AccountID uint64
	To        models.Principal
	Amount    decimal.Decimal
}

func NewRecordingSink() *RecordingSink {
	return &RecordingSink{}
}

func (s *RecordingSink) Credit(ctx context.Context, accountID uint64, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CreditErr != nil {
		return s.CreditErr
	}
	s.credits = append(s.credits, Transfer{AccountID: accountID, Amount: amount})
	return nil
}

func (s *RecordingSink) PayOut(ctx context.Context, to models.Principal, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.PayOutErr != nil {
		return s.PayOutErr
	}
	s.payouts = append(s.payouts, Transfer{To: to, Amount: amount})
	return nil
}

func (s *RecordingSink) Credits() []Transfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Transfer(nil), s.credits...)
}

func (s *RecordingSink) PayOuts() []Transfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Transfer(nil), s.payouts...)
}

var (
	_ interfaces.ValueSink = (*LogSink)(nil)
	_ interfaces.ValueSink = (*RecordingSink)(nil)
)
