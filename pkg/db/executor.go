/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Queryer is satisfied by both *pgxpool.Pool and pgx.Tx, so callers can
// execute a plan either directly against the pool or inside an open
// transaction.
type Queryer interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// BeginTxer is satisfied by *pgxpool.Pool.
type BeginTxer interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// WithReadTx runs fn inside a single read-only transaction acquired from
// pool, guaranteeing the transaction is rolled back on every exit path
// (spec.md §5 "Scoped transaction"; §8 P2 count/find-agreement depends on
// count and data sharing one snapshot). fn's returned error, if any,
// propagates after rollback.
func WithReadTx(ctx context.Context, pool BeginTxer, fn func(ctx context.Context, tx pgx.Tx) error) (err error) {
	tx, err := pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", ErrFailedToQuery, err)
	}

	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed && err == nil {
			err = fmt.Errorf("%w: failed to roll back transaction: %w", ErrFailedToQuery, rbErr)
		}
	}()

	return fn(ctx, tx)
}
