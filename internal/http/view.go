package http

import (
	"fmt"
	"net/http"

	"piggybank/internal/category"
	"piggybank/internal/core"
	"piggybank/internal/ledger"
	"piggybank/internal/log"
	"piggybank/internal/query"
)

// ViewModel is the read side of the ledger: totals plus filtered day groups.
type ViewModel struct {
	Balance      core.Money       `json:"balance"`
	Income       core.Money       `json:"income"`
	Expense      core.Money       `json:"expense"`
	Transactions int              `json:"transactions"`
	Groups       []query.DayGroup `json:"groups"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, category.All())
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	user, err := s.accounts.CurrentSession(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	q := r.URL.Query().Get("q")
	filter, ok := query.ParseFilter(r.URL.Query().Get("filter"))
	if !ok {
		s.badRequest(w, "invalid_filter")
		return
	}

	key := fmt.Sprintf("%s|%d|%s|%s", user.ID, s.generation.Load(), q, filter)
	if vm, hit := s.viewCache.Get(key); hit {
		s.respondJSON(w, http.StatusOK, vm)
		return
	}

	result, _, _ := s.flight.Do(key, func() (any, error) {
		led := ledger.New(s.accounts, user, s.events, s.logger)
		vm := ViewModel{
			Balance:      led.TotalBalance(),
			Income:       led.TotalIncome(),
			Expense:      led.TotalExpense(),
			Transactions: len(user.Transactions),
			Groups:       query.View(user.Transactions, q, filter),
		}
		s.viewCache.Set(key, vm)
		return vm, nil
	})
	vm := result.(ViewModel)

	s.logger.DebugContext(r.Context(), "view computed",
		log.FieldOperation, log.OpView,
		log.FieldUserID, user.ID,
		log.FieldSearchQuery, q,
		log.FieldTypeFilter, string(filter),
	)
	s.respondJSON(w, http.StatusOK, vm)
}
