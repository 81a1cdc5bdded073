// Package query derives the read-only view model from a ledger: text search,
// type filtering and grouping by calendar date with per-day subtotals.
// Everything here is a pure function of its inputs.
package query

import (
	"strings"
	"time"

	"piggybank/internal/core"
)

const (
	FilterAll     TypeFilter = "ALL"
	FilterIncome  TypeFilter = "INCOME"
	FilterExpense TypeFilter = "EXPENSE"
)

// TypeFilter restricts the view to one sign of the ledger.
type TypeFilter string

// ParseFilter maps a request parameter to a filter; empty means ALL.
func ParseFilter(s string) (TypeFilter, bool) {
	switch TypeFilter(strings.ToUpper(strings.TrimSpace(s))) {
	case "", FilterAll:
		return FilterAll, true
	case FilterIncome:
		return FilterIncome, true
	case FilterExpense:
		return FilterExpense, true
	default:
		return "", false
	}
}

// DayGroup is one calendar-date partition of the filtered ledger.
type DayGroup struct {
	Date         time.Time          `json:"date"`
	Subtotal     core.Money         `json:"subtotal"`
	Transactions []core.Transaction `json:"transactions"`
}

// View filters the ledger and partitions the survivors by calendar date
// (transaction-local, time-of-day truncated).
//
// Groups appear in first-encountered scan order, not calendar order, and
// each group keeps the ledger's current order. Callers rely on this;
// see DESIGN.md before changing it.
func View(txs []core.Transaction, query string, filter TypeFilter) []DayGroup {
	query = strings.ToLower(strings.TrimSpace(query))

	var groups []DayGroup
	index := make(map[string]int)

	for _, tx := range txs {
		if !matches(tx, query, filter) {
			continue
		}
		day := truncateToDay(tx.Date)
		key := day.Format("2006-01-02")
		i, seen := index[key]
		if !seen {
			i = len(groups)
			index[key] = i
			groups = append(groups, DayGroup{Date: day})
		}
		groups[i].Transactions = append(groups[i].Transactions, tx)
		groups[i].Subtotal = groups[i].Subtotal.Add(tx.Amount)
	}
	return groups
}

func matches(tx core.Transaction, query string, filter TypeFilter) bool {
	if query != "" &&
		!strings.Contains(strings.ToLower(tx.Label), query) &&
		!strings.Contains(strings.ToLower(tx.Note), query) {
		return false
	}
	switch filter {
	case FilterIncome:
		return tx.Amount.Cents > 0
	case FilterExpense:
		return tx.Amount.Cents < 0
	default:
		return true
	}
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
