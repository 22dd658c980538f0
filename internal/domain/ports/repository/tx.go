package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX interface{}

// TransactionManager provides a thin abstraction to execute a function within
// a database transaction, passing the underlying transaction handle via `tx`.
//
// Use cases stay free of storage types: repository methods accept a Tx handle
// and detect a live transaction implementation-side (SELECT ... FOR UPDATE,
// tx-bound Exec/Query). Repositories MUST gracefully accept a nil handle
// (non-transactional path).
//
// The reconciliation flow runs entirely inside one WithTx call; the isolation
// level passed there is the single load-bearing concurrency contract of the
// billing core.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
