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

// Package relation builds the recursive-CTE relation-traversal plan
// fragment described in spec.md §4.E: given a root entity, a direction,
// and an optional relation-type/entity-type filter set, it produces a
// named CTE yielding (id, type, level) for every entity reachable by a
// typed walk of the COMMON relation group, deduplicated on the traversal
// path so no edge is ever revisited.
package relation

import (
	"fmt"
	"strings"

	"github.com/carverauto/entityquery/pkg/models"
	"github.com/carverauto/entityquery/pkg/queryctx"
	"github.com/carverauto/entityquery/pkg/queryerr"
)

// unboundedLevel is the sentinel spec.md §9 open question (c) keeps for
// fidelity to the source algorithm: MaxLevel == 0 means "unbounded",
// encoded as a level ceiling no real traversal will ever reach.
const unboundedLevel = 2147483647

// Walk describes a compiled traversal: CTEAlias is a unique identifier for
// the CTE's name, CTEBody is the "<alias>(id, type, level, path) AS (...)"
// definition without the WITH RECURSIVE keyword (the caller prefixes it
// with "WITH RECURSIVE" or folds it into a larger WITH-list), and
// CandidateSelect is the "SELECT id, type AS entity_type, level FROM
// <alias> WHERE ..." fragment the Filter Compiler embeds as its
// candidate-entity sub-select.
type Walk struct {
	CTEAlias        string
	CTEBody         string
	CandidateSelect string
}

// Build compiles a relation traversal rooted at root, per spec.md §4.E.
// relationTypes narrows which relation_type values a hop may cross (nil
// means any type); entityTypeFilter narrows the *result* set to the
// given entity types (nil means any type).
func Build(
	ctx *queryctx.Context,
	root models.EntityID,
	direction models.RelationDirection,
	maxLevel int,
	fetchLastLevelOnly bool,
	relationTypes []string,
	entityTypeFilter []models.EntityType,
) (*Walk, error) {
	if root.IsZero() {
		return nil, fmt.Errorf("%w: relation traversal requires a non-zero root entity", queryerr.ErrInvalidQuery)
	}

	var fromField, fromTypeField, toField, toTypeField string

	switch direction {
	case models.DirectionFrom:
		fromField, fromTypeField = "from_id", "from_type"
		toField, toTypeField = "to_id", "to_type"
	case models.DirectionTo:
		fromField, fromTypeField = "to_id", "to_type"
		toField, toTypeField = "from_id", "from_type"
	default:
		return nil, fmt.Errorf("%w: unknown relation direction %q", queryerr.ErrInvalidQuery, direction)
	}

	level := maxLevel
	if level <= 0 {
		level = unboundedLevel
	}

	alias := fmt.Sprintf("walk_%d", ctx.NextAlias())

	rootIDParam := ctx.BindUUID(root.ID)
	rootTypeParam := ctx.Bind(string(root.Type))
	maxLevelParam := ctx.Bind(level)

	typeConjunct := ""
	if len(relationTypes) > 0 {
		typeConjunct = fmt.Sprintf(" AND r.relation_type = ANY(%s)", ctx.BindStringList(relationTypes))
	}

	body := fmt.Sprintf(`%s(id, type, level, path) AS (
  SELECT %s, %s, 0, ARRAY[%s]
  UNION ALL
  SELECT r.%s, r.%s, w.level + 1, w.path || r.%s
  FROM %s w
  JOIN relation r
    ON r.relation_type_group = 'COMMON'
   AND r.%s = w.id AND r.%s = w.type%s
  WHERE w.level < %s
    AND NOT r.%s = ANY(w.path)
)`, alias, rootIDParam, rootTypeParam, rootIDParam,
		toField, toTypeField, toField,
		alias,
		fromField, fromTypeField, typeConjunct,
		maxLevelParam,
		toField)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("SELECT id, type AS entity_type, level FROM %s WHERE level > 0", alias))

	if fetchLastLevelOnly {
		sb.WriteString(fmt.Sprintf(" AND level = %s", maxLevelParam))
	}

	if len(entityTypeFilter) > 0 {
		types := make([]string, len(entityTypeFilter))
		for i, t := range entityTypeFilter {
			types[i] = string(t)
		}

		sb.WriteString(fmt.Sprintf(" AND type = ANY(%s)", ctx.BindStringList(types)))
	}

	return &Walk{
		CTEAlias:        alias,
		CTEBody:         body,
		CandidateSelect: sb.String(),
	}, nil
}
