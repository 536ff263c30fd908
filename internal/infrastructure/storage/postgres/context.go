package postgres

import (
	"context"
)

// GetTxFromContext returns the active transaction, or nil when the caller
// runs outside RunInTransaction.
func GetTxFromContext(ctx context.Context) *Tx {
	if tx, ok := ctx.Value(txKey{}).(*Tx); ok {
		return tx
	}
	return nil
}

// QuerierFrom returns the context transaction when present, otherwise the
// fallback. Lets repositories work both inside and outside transactions
// without holding a TxManager.
func QuerierFrom(ctx context.Context, fallback Querier) Querier {
	if tx := GetTxFromContext(ctx); tx != nil {
		return tx.Tx
	}
	return fallback
}
