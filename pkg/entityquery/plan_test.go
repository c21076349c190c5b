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
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/entityquery/pkg/models"
	"github.com/carverauto/entityquery/pkg/queryerr"
)

func tenantCaller() models.Caller {
	return models.Caller{TenantID: uuid.New()}
}

func deviceTypeFilter() models.EntityFilter {
	return models.EntityFilter{Kind: models.FilterEntityType, EntityTypeF: &models.EntityTypeFilter{EntityType: models.EntityTypeDevice}}
}

func TestBuildCountPlanProducesCountStatement(t *testing.T) {
	t.Parallel()

	plan, err := BuildCountPlan(tenantCaller(), models.EntityCountQuery{Filter: deviceTypeFilter()})
	require.NoError(t, err)
	assert.Contains(t, plan.CountSQL, "SELECT count(*) FROM")
	assert.Contains(t, plan.CountSQL, "FROM device")
	assert.Len(t, plan.CountArgs, 1)
}

func TestBuildDataPlanRejectsNegativePagination(t *testing.T) {
	t.Parallel()

	_, err := BuildDataPlan(tenantCaller(), models.EntityDataQuery{
		Filter:   deviceTypeFilter(),
		PageLink: models.EntityDataPageLink{Page: -1, PageSize: 10},
	})
	require.ErrorIs(t, err, queryerr.ErrInvalidQuery)
}

func TestBuildDataPlanCountArgsIsPrefixOfDataArgs(t *testing.T) {
	t.Parallel()

	q := models.EntityDataQuery{
		Filter:       deviceTypeFilter(),
		EntityFields: []models.EntityKey{{Type: models.KeyTypeEntityField, Key: "name"}},
		PageLink:     models.EntityDataPageLink{Page: 1, PageSize: 20},
	}

	plan, err := BuildDataPlan(tenantCaller(), q)
	require.NoError(t, err)
	require.True(t, len(plan.DataArgs) >= len(plan.CountArgs))
	assert.Equal(t, plan.CountArgs, plan.DataArgs[:len(plan.CountArgs)])
}

func TestBuildDataPlanNoPageSizeOmitsLimitClause(t *testing.T) {
	t.Parallel()

	q := models.EntityDataQuery{Filter: deviceTypeFilter(), PageLink: models.EntityDataPageLink{}}

	plan, err := BuildDataPlan(tenantCaller(), q)
	require.NoError(t, err)
	assert.NotContains(t, plan.DataSQL, "LIMIT")
}

func TestBuildDataPlanWithPageSizeBindsLimitAndOffset(t *testing.T) {
	t.Parallel()

	q := models.EntityDataQuery{Filter: deviceTypeFilter(), PageLink: models.EntityDataPageLink{Page: 2, PageSize: 10}}

	plan, err := BuildDataPlan(tenantCaller(), q)
	require.NoError(t, err)
	assert.Contains(t, plan.DataSQL, "LIMIT")
	assert.Contains(t, plan.DataSQL, "OFFSET")
	last := plan.DataArgs[len(plan.DataArgs)-2:]
	assert.Equal(t, 10, last[0])
	assert.Equal(t, 20, last[1])
}

func TestBuildDataPlanDefaultSortIsCreatedTimeDescWithoutLevel(t *testing.T) {
	t.Parallel()

	q := models.EntityDataQuery{Filter: deviceTypeFilter(), PageLink: models.EntityDataPageLink{}}

	plan, err := BuildDataPlan(tenantCaller(), q)
	require.NoError(t, err)
	assert.Contains(t, plan.DataSQL, "DESC, s.entity_type ASC, s.id ASC")
}

func TestBuildDataPlanRelationDefaultSortIsLevelThenCreatedTime(t *testing.T) {
	t.Parallel()

	root := models.EntityID{Type: models.EntityTypeTenant, ID: uuid.New()}
	f := models.EntityFilter{
		Kind:           models.FilterRelationsQuery,
		RelationsQuery: &models.RelationsQueryFilter{RootEntity: root, Direction: models.DirectionFrom, MaxLevel: 0},
	}

	q := models.EntityDataQuery{Filter: f, PageLink: models.EntityDataPageLink{}}

	plan, err := BuildDataPlan(tenantCaller(), q)
	require.NoError(t, err)
	assert.Contains(t, plan.DataSQL, "s.level ASC,")
}

func TestBuildDataPlanExplicitSortAscendingUsesNullsLast(t *testing.T) {
	t.Parallel()

	q := models.EntityDataQuery{
		Filter: deviceTypeFilter(),
		PageLink: models.EntityDataPageLink{
			SortOrder: &models.EntitySortOrder{Key: models.EntityKey{Type: models.KeyTypeEntityField, Key: "name"}, Direction: models.SortAscending},
		},
	}

	plan, err := BuildDataPlan(tenantCaller(), q)
	require.NoError(t, err)
	assert.Contains(t, plan.DataSQL, "ASC NULLS LAST")
}

func TestBuildDataPlanExplicitSortDescendingUsesNullsFirst(t *testing.T) {
	t.Parallel()

	q := models.EntityDataQuery{
		Filter: deviceTypeFilter(),
		PageLink: models.EntityDataPageLink{
			SortOrder: &models.EntitySortOrder{Key: models.EntityKey{Type: models.KeyTypeEntityField, Key: "name"}, Direction: models.SortDescending},
		},
	}

	plan, err := BuildDataPlan(tenantCaller(), q)
	require.NoError(t, err)
	assert.Contains(t, plan.DataSQL, "DESC NULLS FIRST")
}

func TestBuildDataPlanTextSearchAddsDisjunctionOverProjectedFields(t *testing.T) {
	t.Parallel()

	q := models.EntityDataQuery{
		Filter:       deviceTypeFilter(),
		EntityFields: []models.EntityKey{{Type: models.KeyTypeEntityField, Key: "name"}},
		PageLink:     models.EntityDataPageLink{TextSearch: "sensor"},
	}

	plan, err := BuildDataPlan(tenantCaller(), q)
	require.NoError(t, err)
	assert.Contains(t, plan.DataSQL, "LIKE LOWER(")
}

func TestBuildDataPlanTextSearchSkipsSyntheticEntityTypeColumn(t *testing.T) {
	t.Parallel()

	q := models.EntityDataQuery{
		Filter:       deviceTypeFilter(),
		EntityFields: []models.EntityKey{{Type: models.KeyTypeEntityField, Key: "entityType"}},
		PageLink:     models.EntityDataPageLink{TextSearch: "device"},
	}

	plan, err := BuildDataPlan(tenantCaller(), q)
	require.NoError(t, err)
	assert.NotContains(t, plan.DataSQL, "WHERE TRUE AND (")
}

func TestBuildDataPlanRelationFilterEmitsRecursiveCTEHeader(t *testing.T) {
	t.Parallel()

	root := models.EntityID{Type: models.EntityTypeTenant, ID: uuid.New()}
	f := models.EntityFilter{
		Kind:           models.FilterRelationsQuery,
		RelationsQuery: &models.RelationsQueryFilter{RootEntity: root, Direction: models.DirectionFrom, MaxLevel: 0},
	}

	plan, err := BuildDataPlan(tenantCaller(), models.EntityDataQuery{Filter: f})
	require.NoError(t, err)
	assert.Contains(t, plan.DataSQL, "WITH RECURSIVE")
	assert.Contains(t, plan.CountSQL, "WITH RECURSIVE")
}

func TestBuildDataPlanKeyFiltersAppendConjuncts(t *testing.T) {
	t.Parallel()

	q := models.EntityDataQuery{
		Filter: deviceTypeFilter(),
		KeyFilters: []models.KeyFilter{{
			Key: models.EntityKey{Type: models.KeyTypeEntityField, Key: "name"},
			Predicate: models.KeyFilterPredicate{
				Kind:   models.PredicateString,
				String: &models.StringFilterPredicate{Operator: models.StringEqual, Value: models.FilterPredicateValue{Literal: "Device1"}},
			},
		}},
	}

	plan, err := BuildDataPlan(tenantCaller(), q)
	require.NoError(t, err)
	assert.Contains(t, plan.DataSQL, "WHEN s.entity_type = 'DEVICE' THEN CAST(d.name AS text)")
}
