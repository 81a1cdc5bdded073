package http

import (
	"net/http"

	"piggybank/internal/core"
	"piggybank/internal/ledger"
	"piggybank/internal/log"
)

type addTransactionRequest struct {
	Category string `json:"category"`
	Note     string `json:"note"`
	Amount   string `json:"amount"`
	Type     string `json:"type"`
}

type resetRequest struct {
	Confirm bool `json:"confirm"`
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	user, err := s.accounts.CurrentSession(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	var req addTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "malformed_json")
		return
	}

	txType, err := core.ParseTxType(req.Type)
	if err != nil {
		s.respondError(w, err)
		return
	}

	led := ledger.New(s.accounts, user, s.events, s.logger)
	tx, err := led.Add(r.Context(), req.Category, req.Note, req.Amount, txType)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.invalidateViews()

	s.logger.InfoContext(r.Context(), "transaction added",
		log.FieldOperation, log.OpAdd,
		log.FieldUserID, user.ID,
		log.FieldTransactionID, tx.ID,
		log.FieldAmountCents, tx.Amount.Cents,
	)
	s.respondJSON(w, http.StatusCreated, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	user, err := s.accounts.CurrentSession(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	id := r.PathValue("id")
	if id == "" {
		s.badRequest(w, "missing_transaction_id")
		return
	}

	led := ledger.New(s.accounts, user, s.events, s.logger)
	if err := led.Delete(r.Context(), id); err != nil {
		s.respondError(w, err)
		return
	}
	s.invalidateViews()

	s.logger.InfoContext(r.Context(), "transaction deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldUserID, user.ID,
		log.FieldTransactionID, id,
	)
	s.respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	user, err := s.accounts.CurrentSession(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}

	var req resetRequest
	if err := decodeJSON(r, &req); err != nil {
		s.badRequest(w, "malformed_json")
		return
	}
	if !req.Confirm {
		s.badRequest(w, "confirmation_required")
		return
	}

	led := ledger.New(s.accounts, user, s.events, s.logger)
	if err := led.Reset(r.Context()); err != nil {
		s.respondError(w, err)
		return
	}
	s.invalidateViews()

	s.logger.InfoContext(r.Context(), "ledger reset",
		log.FieldOperation, log.OpReset,
		log.FieldUserID, user.ID,
	)
	s.respondJSON(w, http.StatusNoContent, nil)
}
