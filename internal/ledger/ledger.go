// Package ledger owns the ordered transaction collection of one signed-in
// user. Every mutation writes through synchronously to the credential store;
// event publishing is best-effort and never fails the mutation.
package ledger

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"piggybank/internal/accounts"
	"piggybank/internal/category"
	"piggybank/internal/core"
	"piggybank/internal/log"
)

// EventPublisher receives mutation events for downstream consumers
// (audit worker). Implementations must be safe to call concurrently.
type EventPublisher interface {
	PublishTransactionAdded(ctx context.Context, userID string, tx core.Transaction) error
	PublishTransactionDeleted(ctx context.Context, userID, txID string) error
	PublishLedgerReset(ctx context.Context, userID string) error
}

// Ledger binds one user record to the stores for the duration of a request.
// The caller resolves the session and passes the user in explicitly.
type Ledger struct {
	accounts *accounts.Store
	user     *core.User
	events   EventPublisher
	logger   *log.Logger
	now      func() time.Time
}

func New(acc *accounts.Store, user *core.User, events EventPublisher, logger *log.Logger) *Ledger {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentLedger)
	}
	return &Ledger{
		accounts: acc,
		user:     user,
		events:   events,
		logger:   logger,
		now:      time.Now,
	}
}

// Add creates a transaction from a category key, an optional note, a
// magnitude string and a type. EXPENSE negates the magnitude, INCOME keeps it
// positive. The new transaction is prepended so iteration order is
// newest-first.
func (l *Ledger) Add(ctx context.Context, categoryKey, note, amount string, txType core.TxType) (core.Transaction, error) {
	cat, ok := category.Lookup(categoryKey)
	if !ok {
		return core.Transaction{}, core.ErrInvalidCategory
	}
	if !txType.Valid() {
		return core.Transaction{}, core.ErrInvalidTxType
	}
	magnitude, err := core.ParseAmount(amount)
	if err != nil {
		return core.Transaction{}, err
	}

	label := note
	if label == "" {
		label = cat.Label
	}

	now := l.now()
	tx := core.Transaction{
		ID:       l.newID(now),
		Category: cat.Key,
		Label:    label,
		Note:     note,
		Amount:   magnitude.Signed(txType),
		Date:     now,
	}

	l.user.Transactions = append([]core.Transaction{tx}, l.user.Transactions...)
	if err := l.accounts.SaveUser(ctx, l.user); err != nil {
		// Roll the in-memory prepend back so state matches the store
		l.user.Transactions = l.user.Transactions[1:]
		return core.Transaction{}, fmt.Errorf("write through: %w", err)
	}

	l.logger.InfoContext(ctx, "Transaction added",
		log.FieldOperation, log.OpAdd,
		log.FieldTransactionID, tx.ID,
		log.FieldCategory, tx.Category,
		log.FieldAmountCents, tx.Amount.Cents)

	if l.events != nil {
		if err := l.events.PublishTransactionAdded(ctx, l.user.ID, tx); err != nil {
			l.logger.ErrorContext(ctx, "Failed to publish add event",
				log.FieldTransactionID, tx.ID, log.FieldError, err)
		}
	}
	return tx, nil
}

// Delete removes the transaction with the given id. A missing id is a no-op,
// not an error.
func (l *Ledger) Delete(ctx context.Context, id string) error {
	idx := -1
	for i, tx := range l.user.Transactions {
		if tx.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	removed := l.user.Transactions[idx]
	l.user.Transactions = append(l.user.Transactions[:idx], l.user.Transactions[idx+1:]...)
	if err := l.accounts.SaveUser(ctx, l.user); err != nil {
		return fmt.Errorf("write through: %w", err)
	}

	l.logger.InfoContext(ctx, "Transaction deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldTransactionID, removed.ID)

	if l.events != nil {
		if err := l.events.PublishTransactionDeleted(ctx, l.user.ID, id); err != nil {
			l.logger.ErrorContext(ctx, "Failed to publish delete event",
				log.FieldTransactionID, id, log.FieldError, err)
		}
	}
	return nil
}

// Reset clears all transactions. The yes/no confirmation gate sits at the
// HTTP boundary, not here.
func (l *Ledger) Reset(ctx context.Context) error {
	l.user.Transactions = nil
	if err := l.accounts.SaveUser(ctx, l.user); err != nil {
		return fmt.Errorf("write through: %w", err)
	}

	l.logger.InfoContext(ctx, "Ledger reset",
		log.FieldOperation, log.OpReset,
		log.FieldUserID, l.user.ID)

	if l.events != nil {
		if err := l.events.PublishLedgerReset(ctx, l.user.ID); err != nil {
			l.logger.ErrorContext(ctx, "Failed to publish reset event",
				log.FieldUserID, l.user.ID, log.FieldError, err)
		}
	}
	return nil
}

// Transactions returns the ledger in its current order, newest first for
// entries added through Add.
func (l *Ledger) Transactions() []core.Transaction {
	out := make([]core.Transaction, len(l.user.Transactions))
	copy(out, l.user.Transactions)
	return out
}

// TotalBalance is the signed sum of all amounts.
func (l *Ledger) TotalBalance() core.Money {
	var sum core.Money
	for _, tx := range l.user.Transactions {
		sum = sum.Add(tx.Amount)
	}
	return sum
}

// TotalIncome is the sum of positive amounts.
func (l *Ledger) TotalIncome() core.Money {
	var sum core.Money
	for _, tx := range l.user.Transactions {
		if tx.Amount.Cents > 0 {
			sum = sum.Add(tx.Amount)
		}
	}
	return sum
}

// TotalExpense is the sum of the absolute values of negative amounts.
func (l *Ledger) TotalExpense() core.Money {
	var sum core.Money
	for _, tx := range l.user.Transactions {
		if tx.Amount.Cents < 0 {
			sum = sum.Add(tx.Amount.Abs())
		}
	}
	return sum
}

// newID derives an id from creation time, bumped until unique in the ledger.
func (l *Ledger) newID(now time.Time) string {
	for {
		id := strconv.FormatInt(now.UnixNano(), 10)
		if !l.contains(id) {
			return id
		}
		now = now.Add(time.Nanosecond)
	}
}

func (l *Ledger) contains(id string) bool {
	for _, tx := range l.user.Transactions {
		if tx.ID == id {
			return true
		}
	}
	return false
}
