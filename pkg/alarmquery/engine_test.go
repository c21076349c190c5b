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
	"testing"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/entityquery/pkg/logger"
	"github.com/carverauto/entityquery/pkg/models"
	"github.com/carverauto/entityquery/pkg/queryerr"
)

func TestFindAlarmDataRejectsZeroTenantCaller(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	e := New(mock, logger.NewTestLogger(), 0)

	_, err = e.FindAlarmData(context.Background(), models.Caller{}, models.AlarmDataQuery{}, someEntityIDs())
	require.ErrorIs(t, err, queryerr.ErrForbidden)
}

func TestFindAlarmDataRunsCountAndDataInOneTransaction(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	mock.MatchExpectationsInOrder(true)

	alarmID := uuid.New()
	originatorID := uuid.New()

	cols := []string{
		"id", "entity_type", "alarm_id", "originator_id", "originator_type", "originator_name",
		"alarm_type", "alarm_severity", "alarm_status", "alarm_created_time",
		"alarm_ack_ts", "alarm_clear_ts", "alarm_start_ts", "alarm_end_ts", "alarm_details",
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\)`).WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(`SELECT s.id, s.entity_type`).WillReturnRows(
		pgxmock.NewRows(cols).AddRow(
			originatorID, "DEVICE", alarmID, originatorID, "DEVICE", "Device1",
			"HIGH_TEMPERATURE", "CRITICAL", "ACTIVE_UNACK", int64(1000),
			nil, nil, int64(1000), int64(0), "",
		),
	)
	mock.ExpectRollback()

	e := New(mock, logger.NewTestLogger(), 0)

	page, err := e.FindAlarmData(context.Background(), tenantCaller(), models.AlarmDataQuery{}, someEntityIDs())
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalElements)
	require.Len(t, page.Data, 1)
	assert.Equal(t, alarmID, page.Data[0].AlarmID.ID)
	assert.Equal(t, models.AlarmStatus("ACTIVE_UNACK"), page.Data[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
