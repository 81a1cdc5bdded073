// Package worker consumes ledger events and appends them to an audit trail,
// one JSON document per line.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"piggybank/internal/amqp"
	"piggybank/internal/log"
)

// AuditWriter appends ledger events to a local file. Safe for concurrent use.
type AuditWriter struct {
	mu     sync.Mutex
	path   string
	logger *log.Logger
}

func NewAuditWriter(path string, logger *log.Logger) *AuditWriter {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	}
	return &AuditWriter{path: path, logger: logger}
}

// HandleEvent satisfies the consume callback of the AMQP client.
func (w *AuditWriter) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	line, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode audit line: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if dir := filepath.Dir(w.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create audit directory: %w", err)
		}
	}
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("append audit line: %w", err)
	}

	w.logger.InfoContext(ctx, "Audit line written",
		"kind", ev.Kind,
		log.FieldUserID, ev.UserID,
		log.FieldTransactionID, ev.TransactionID)
	return nil
}
