package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"piggybank/internal/amqp"
)

func TestAuditWriterAppendsOneLinePerEvent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "audit", "ledger.jsonl")
	w := NewAuditWriter(path, nil)

	events := []*amqp.LedgerEvent{
		{Kind: amqp.EventTransactionAdded, UserID: "u-1", TransactionID: "1", AmountCents: -2200000, Timestamp: time.Now()},
		{Kind: amqp.EventTransactionDeleted, UserID: "u-1", TransactionID: "1", Timestamp: time.Now()},
		{Kind: amqp.EventLedgerReset, UserID: "u-1", Timestamp: time.Now()},
	}
	for _, ev := range events {
		if err := w.HandleEvent(ctx, ev); err != nil {
			t.Fatalf("handle %s: %v", ev.Kind, err)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open audit file: %v", err)
	}
	defer f.Close()

	var kinds []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var ev amqp.LedgerEvent
		if err := json.Unmarshal(sc.Bytes(), &ev); err != nil {
			t.Fatalf("line is not valid JSON: %v", err)
		}
		kinds = append(kinds, ev.Kind)
	}
	if len(kinds) != 3 {
		t.Fatalf("got %d lines, want 3", len(kinds))
	}
	if kinds[0] != amqp.EventTransactionAdded || kinds[2] != amqp.EventLedgerReset {
		t.Fatalf("lines out of order: %v", kinds)
	}
}
