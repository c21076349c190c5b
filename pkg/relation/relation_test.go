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

package relation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/entityquery/pkg/models"
	"github.com/carverauto/entityquery/pkg/queryctx"
	"github.com/carverauto/entityquery/pkg/queryerr"
)

func newCtx() *queryctx.Context {
	return queryctx.New(models.Caller{TenantID: uuid.New()}, "")
}

func root() models.EntityID {
	return models.EntityID{Type: models.EntityTypeTenant, ID: uuid.New()}
}

func TestBuildRejectsZeroRoot(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	_, err := Build(ctx, models.EntityID{}, models.DirectionFrom, 0, false, nil, nil)
	require.ErrorIs(t, err, queryerr.ErrInvalidQuery)
}

func TestBuildRejectsUnknownDirection(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	_, err := Build(ctx, root(), models.RelationDirection("SIDEWAYS"), 1, false, nil, nil)
	require.ErrorIs(t, err, queryerr.ErrInvalidQuery)
}

func TestBuildFromDirectionWalksFromIDToID(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	w, err := Build(ctx, root(), models.DirectionFrom, 3, false, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, w.CTEBody, "r.to_id, r.to_type")
	assert.Contains(t, w.CTEBody, "r.from_id = w.id AND r.from_type = w.type")
}

func TestBuildToDirectionWalksToIDFromID(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	w, err := Build(ctx, root(), models.DirectionTo, 3, false, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, w.CTEBody, "r.from_id, r.from_type")
	assert.Contains(t, w.CTEBody, "r.to_id = w.id AND r.to_type = w.type")
}

func TestBuildMaxLevelZeroIsUnbounded(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	_, err := Build(ctx, root(), models.DirectionFrom, 0, false, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, unboundedLevel, ctx.Args()[2])
}

func TestBuildCandidateSelectProjectsEntityType(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	w, err := Build(ctx, root(), models.DirectionFrom, 2, false, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, w.CandidateSelect, "SELECT id, type AS entity_type, level FROM walk_0 WHERE level > 0")
}

func TestBuildFetchLastLevelOnlyAddsLevelEquality(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	w, err := Build(ctx, root(), models.DirectionFrom, 2, true, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, w.CandidateSelect, "AND level = $3")
}

func TestBuildRelationTypeFilterAddsConjunctInCTE(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	w, err := Build(ctx, root(), models.DirectionFrom, 2, false, []string{"Contains", "Manages"}, nil)
	require.NoError(t, err)
	assert.Contains(t, w.CTEBody, "AND r.relation_type = ANY($4)")
	assert.Equal(t, []string{"Contains", "Manages"}, ctx.Args()[3])
}

func TestBuildEntityTypeFilterNarrowsCandidateSelect(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	w, err := Build(ctx, root(), models.DirectionFrom, 2, false, nil, []models.EntityType{models.EntityTypeDevice, models.EntityTypeAsset})
	require.NoError(t, err)
	assert.Contains(t, w.CandidateSelect, "AND type = ANY($4)")
	assert.Equal(t, []string{"DEVICE", "ASSET"}, ctx.Args()[3])
}

func TestBuildCycleGuardExcludesVisitedEdges(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	w, err := Build(ctx, root(), models.DirectionFrom, 2, false, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, w.CTEBody, "NOT r.to_id = ANY(w.path)")
}
