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

package entityquery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carverauto/entityquery/pkg/db"
	"github.com/carverauto/entityquery/pkg/logger"
	"github.com/carverauto/entityquery/pkg/models"
	"github.com/carverauto/entityquery/pkg/queryerr"
)

// Engine is the facade spec.md §6 names: countEntities and
// findEntityData. It is stateless and re-entrant (spec.md §5); the only
// shared resource is the connection pool handed in at construction.
type Engine struct {
	pool    db.BeginTxer
	log     logger.Logger
	timeout time.Duration
}

// New builds an Engine borrowing connections from pool. timeout bounds
// every statement the engine issues (spec.md §5, default 30s if zero).
func New(pool db.BeginTxer, log logger.Logger, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = time.Duration(db.DefaultStatementTimeoutMs) * time.Millisecond
	}

	return &Engine{pool: pool, log: log, timeout: timeout}
}

// CountEntities implements spec.md §6's countEntities operation.
func (e *Engine) CountEntities(ctx context.Context, caller models.Caller, q models.EntityCountQuery) (int64, error) {
	if err := validateCaller(caller); err != nil {
		return 0, err
	}

	plan, err := BuildCountPlan(caller, q)
	if err != nil {
		return 0, err
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var total int64

	err = db.WithReadTx(runCtx, e.pool, func(txCtx context.Context, tx pgx.Tx) error {
		return tx.QueryRow(txCtx, plan.CountSQL, plan.CountArgs...).Scan(&total)
	})
	if err != nil {
		return 0, classify(err)
	}

	return total, nil
}

// FindEntityData implements spec.md §6's findEntityData operation: the
// count and data statements execute under one read-only transaction so
// the snapshot they see agrees (spec.md §3 invariant 3, §5).
func (e *Engine) FindEntityData(ctx context.Context, caller models.Caller, q models.EntityDataQuery) (models.PageData[*models.EntityData], error) {
	if err := validateCaller(caller); err != nil {
		return models.PageData[*models.EntityData]{}, err
	}

	plan, err := BuildDataPlan(caller, q)
	if err != nil {
		return models.PageData[*models.EntityData]{}, err
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var (
		total int64
		data  []*models.EntityData
	)

	err = db.WithReadTx(runCtx, e.pool, func(txCtx context.Context, tx pgx.Tx) error {
		if countErr := tx.QueryRow(txCtx, plan.CountSQL, plan.CountArgs...).Scan(&total); countErr != nil {
			return countErr
		}

		rows, queryErr := tx.Query(txCtx, plan.DataSQL, plan.DataArgs...)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		data, queryErr = adaptRows(rows, plan.Binder)

		return queryErr
	})
	if err != nil {
		return models.PageData[*models.EntityData]{}, classify(err)
	}

	page := models.NewPageData(data, total, q.PageLink.Page, q.PageLink.PageSize)

	return page, nil
}

// validateCaller rejects a caller whose scope can never be satisfied
// (spec.md §7: "an explicit permission breach ... fails with Forbidden
// before any query executes"). A zero tenant id can never match any
// row's tenant_id, so it is always a scoping bug rather than a
// legitimate tenant-wide query.
func validateCaller(caller models.Caller) error {
	if caller.TenantID == uuid.Nil {
		return fmt.Errorf("%w: caller has no tenant scope", queryerr.ErrForbidden)
	}

	return nil
}

// classify maps a lower-level db/driver error onto the taxonomy of
// spec.md §7: an expired deadline is ErrStorageUnavailable, every other
// failure (connection failures included) is ErrStorageError. Storage
// errors are never retried by the engine (the host retries idempotent
// reads if it chooses to).
func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", queryerr.ErrStorageUnavailable, err)
	}

	return fmt.Errorf("%w: %w", queryerr.ErrStorageError, err)
}
