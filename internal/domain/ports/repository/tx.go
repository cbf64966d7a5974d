package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying transaction handle via `tx`.
//
// Repositories accept the same handle and detect it implementation-side
// (pgx.Tx for Postgres), so use-case interfaces stay free of storage types.
// Repositories MUST gracefully accept a nil handle (non-transactional path).
//
// The redemption orchestrator relies on this to make the capacity reservation
// and the ledger append one atomic unit: both happen inside a single WithTx
// callback and either commit together or roll back together.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
