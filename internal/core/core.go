package core

import (
	"errors"
	"sort"
	"strings"
	"time"
)

const (
	Income  TxType = "INCOME"
	Expense TxType = "EXPENSE"
)

type (
	// TxType distinguishes income from expense entries.
	TxType string

	// Transaction is a single ledger entry. Amount carries the sign:
	// negative for expenses, positive for income.
	Transaction struct {
		ID       string    `json:"id"`
		Category string    `json:"category"`
		Label    string    `json:"label"`
		Note     string    `json:"note"`
		Amount   Money     `json:"amount"`
		Date     time.Time `json:"date"`
	}

	// User is a credential record owning one ledger. The password is stored
	// exactly as entered; verification is pluggable at the accounts layer.
	User struct {
		ID           string        `json:"id"`
		Email        string        `json:"email"`
		Username     string        `json:"username"`
		Password     string        `json:"password"`
		Transactions []Transaction `json:"transactions"`
	}
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidCategory    = errors.New("invalid category")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidTxType      = errors.New("invalid transaction type")
	ErrNoSession          = errors.New("no active session")
)

// ParseTxType validates a transaction type string.
func ParseTxType(s string) (TxType, error) {
	switch TxType(strings.ToUpper(strings.TrimSpace(s))) {
	case Income:
		return Income, nil
	case Expense:
		return Expense, nil
	default:
		return "", ErrInvalidTxType
	}
}

func (t TxType) Valid() bool {
	return t == Income || t == Expense
}

func (tx Transaction) Validate() error {
	if strings.TrimSpace(tx.ID) == "" {
		return errors.New("empty transaction id")
	}
	if strings.TrimSpace(tx.Category) == "" {
		return ErrInvalidCategory
	}
	if tx.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if tx.Date.IsZero() {
		return errors.New("transaction date cannot be zero")
	}
	return nil
}

// Type derives the transaction type from the amount sign.
func (tx Transaction) Type() TxType {
	if tx.Amount.Cents > 0 {
		return Income
	}
	return Expense
}

// ValidationError reports every violated field together, keyed by field name.
type ValidationError map[string]string

func (v ValidationError) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
