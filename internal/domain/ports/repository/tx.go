package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

var NoTX Tx

// TransactionManager executes a function within a database transaction,
// passing the underlying handle via tx. Keeps use-case signatures free of
// storage types: repositories accept a Tx and must gracefully accept nil
// (the non-transactional path). The concrete type is infra-defined
// (pgx.Tx for Postgres).
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
