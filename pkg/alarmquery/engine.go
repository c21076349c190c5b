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

package alarmquery

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

// Engine is the facade spec.md §6 names: findAlarmData. Like
// pkg/entityquery.Engine it is stateless and re-entrant; the connection
// pool is the only shared resource.
type Engine struct {
	pool    db.BeginTxer
	log     logger.Logger
	timeout time.Duration
}

// New builds an Engine borrowing connections from pool.
func New(pool db.BeginTxer, log logger.Logger, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = time.Duration(db.DefaultStatementTimeoutMs) * time.Millisecond
	}

	return &Engine{pool: pool, log: log, timeout: timeout}
}

// FindAlarmData implements spec.md §6's findAlarmData operation: alarms
// whose originator is one of orderedEntityIDs, directly or (when
// q.PageLink.SearchPropagatedAlarms) via an ALARM-group propagation
// relation, sorted by orderedEntityIDs' own order unless an explicit sort
// key overrides it.
func (e *Engine) FindAlarmData(
	ctx context.Context,
	caller models.Caller,
	q models.AlarmDataQuery,
	orderedEntityIDs []models.EntityID,
) (models.PageData[*models.AlarmData], error) {
	if err := validateCaller(caller); err != nil {
		return models.PageData[*models.AlarmData]{}, err
	}

	plan, err := BuildDataPlan(caller, q, orderedEntityIDs, time.Now())
	if err != nil {
		return models.PageData[*models.AlarmData]{}, err
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var (
		total int64
		data  []*models.AlarmData
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
		return models.PageData[*models.AlarmData]{}, classify(err)
	}

	return models.NewPageData(data, total, q.PageLink.Page, q.PageLink.PageSize), nil
}

// validateCaller mirrors pkg/entityquery's: a zero tenant id can never
// match any row's tenant_id, so it always signals a scoping bug rather
// than a legitimate tenant-wide query.
func validateCaller(caller models.Caller) error {
	if caller.TenantID == uuid.Nil {
		return fmt.Errorf("%w: caller has no tenant scope", queryerr.ErrForbidden)
	}

	return nil
}

func classify(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", queryerr.ErrStorageUnavailable, err)
	}

	return fmt.Errorf("%w: %w", queryerr.ErrStorageError, err)
}
