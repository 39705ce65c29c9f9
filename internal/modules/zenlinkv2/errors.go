package zenlinkv2

import "fmt"

// ReconciliationError reports a broken liquidity-reconciliation
// precondition: a Mint or Burn event whose transaction context was never
// established by the preceding LP-token transfer. Under in-order,
// exactly-once delivery this cannot happen, so it signals either a host
// bug or corrupted state and processing must stop.
type ReconciliationError struct {
	Event  string
	TxHash string
	Pair   string
	Reason string
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("%s reconciliation failed for tx %s (pair %s): %s",
		e.Event, e.TxHash, e.Pair, e.Reason)
}
