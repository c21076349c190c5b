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
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/entityquery/pkg/logger"
	"github.com/carverauto/entityquery/pkg/models"
	"github.com/carverauto/entityquery/pkg/queryerr"
)

func TestCountEntitiesRejectsZeroTenantCaller(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	e := New(mock, logger.NewTestLogger(), 0)

	_, err = e.CountEntities(context.Background(), models.Caller{}, models.EntityCountQuery{Filter: deviceTypeFilter()})
	require.ErrorIs(t, err, queryerr.ErrForbidden)
}

func TestCountEntitiesExecutesWithinReadOnlyTransaction(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	mock.MatchExpectationsInOrder(true)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\)`).WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))
	mock.ExpectRollback()

	e := New(mock, logger.NewTestLogger(), 0)

	total, err := e.CountEntities(context.Background(), tenantCaller(), models.EntityCountQuery{Filter: deviceTypeFilter()})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCountEntitiesClassifiesQueryFailureAsStorageError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	mock.MatchExpectationsInOrder(true)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\)`).WillReturnError(assert.AnError)
	mock.ExpectRollback()

	e := New(mock, logger.NewTestLogger(), 0)

	_, err = e.CountEntities(context.Background(), tenantCaller(), models.EntityCountQuery{Filter: deviceTypeFilter()})
	require.ErrorIs(t, err, queryerr.ErrStorageError)
}

func TestFindEntityDataRunsCountAndDataInOneTransaction(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	mock.MatchExpectationsInOrder(true)

	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\)`).WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`SELECT s.id, s.entity_type`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "entity_type"}).AddRow(id, "DEVICE"))
	mock.ExpectRollback()

	e := New(mock, logger.NewTestLogger(), 0)

	q := models.EntityDataQuery{Filter: deviceTypeFilter(), PageLink: models.EntityDataPageLink{Page: 0, PageSize: 10}}

	page, err := e.FindEntityData(context.Background(), tenantCaller(), q)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalElements)
	require.Len(t, page.Data, 1)
	assert.Equal(t, id, page.Data[0].EntityID.ID)
	assert.Equal(t, models.EntityTypeDevice, page.Data[0].EntityID.Type)
	require.NoError(t, mock.ExpectationsWereMet())
}
