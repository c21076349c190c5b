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

// Package entityquery assembles the Filter/Relation/Projection/Predicate
// compilers into the final count-and-data query pair (spec.md §4.G), and
// adapts rows back into typed pages (spec.md §4.I). Engine is the
// package's facade, implementing the countEntities/findEntityData inbound
// operations of spec.md §6.
package entityquery

import (
	"fmt"
	"strings"

	"github.com/carverauto/entityquery/pkg/filter"
	"github.com/carverauto/entityquery/pkg/models"
	"github.com/carverauto/entityquery/pkg/predicate"
	"github.com/carverauto/entityquery/pkg/projection"
	"github.com/carverauto/entityquery/pkg/queryctx"
	"github.com/carverauto/entityquery/pkg/queryerr"
)

// Plan is a fully-assembled count+data query pair sharing one parameter
// context, per spec.md §5 ("the parameter-map object is reused across
// the count and data statements").
type Plan struct {
	CountSQL  string
	CountArgs []interface{}

	DataSQL  string
	DataArgs []interface{}

	Binder *projection.Binder
}

const createdTimeKey = "createdTime"

func entityFieldKey(key string) models.EntityKey {
	return models.EntityKey{Type: models.KeyTypeEntityField, Key: key}
}

// buildCore compiles filter+joins+key-filter WHERE shared by both the
// count and the data query. Text search is not applied here: BuildDataPlan
// adds it to the data query's WHERE, and count queries never apply it,
// since EntityCountQuery carries no page link.
func buildCore(
	ctx *queryctx.Context,
	f models.EntityFilter,
	keyFilters []models.KeyFilter,
) (candidate *filter.Candidate, binder *projection.Binder, whereClause string, err error) {
	candidate, err = filter.Compile(ctx, f)
	if err != nil {
		return nil, nil, "", err
	}

	binder = projection.NewBinder(ctx)

	conjuncts := make([]string, 0, len(keyFilters))

	for _, kf := range keyFilters {
		col, rErr := binder.ResolveColumn(kf.Key)
		if rErr != nil {
			return nil, nil, "", rErr
		}

		expr, cErr := predicate.Compile(ctx, col, kf.Predicate, binder.ResolveColumn)
		if cErr != nil {
			return nil, nil, "", cErr
		}

		conjuncts = append(conjuncts, expr)
	}

	where := "TRUE"
	if len(conjuncts) > 0 {
		where = strings.Join(conjuncts, " AND ")
	}

	return candidate, binder, where, nil
}

func withHeader(candidate *filter.Candidate) string {
	if len(candidate.CTEs) == 0 {
		return ""
	}

	return "WITH RECURSIVE " + strings.Join(candidate.CTEs, ",\n") + "\n"
}

// BuildCountPlan compiles q into a standalone count statement (spec.md
// §4.G, §6 countEntities). It shares no parameter context with a sibling
// data plan; BuildDataPlan builds a count+data pair that shares one
// parameter context.
func BuildCountPlan(caller models.Caller, q models.EntityCountQuery) (*Plan, error) {
	ctx := queryctx.New(caller, "")

	candidate, binder, where, err := buildCore(ctx, q.Filter, q.KeyFilters)
	if err != nil {
		return nil, err
	}

	inner := fmt.Sprintf("SELECT s.id\nFROM (%s) s\n%s\nWHERE %s",
		candidate.SQL, strings.Join(binder.Joins(), "\n"), where)

	sql := withHeader(candidate) + fmt.Sprintf("SELECT count(*) FROM (%s) result", inner)

	return &Plan{CountSQL: sql, CountArgs: ctx.Args(), Binder: binder}, nil
}

// BuildDataPlan compiles q into a count+data query pair sharing one
// parameter context (spec.md §4.G, §6 findEntityData). The count
// statement's arguments are a prefix of the data statement's, since
// pagination parameters are bound last; with a zero page size no
// pagination parameters are bound and the two argument lists are equal.
func BuildDataPlan(caller models.Caller, q models.EntityDataQuery) (*Plan, error) {
	if q.PageLink.PageSize < 0 || q.PageLink.Page < 0 {
		return nil, fmt.Errorf("%w: page and pageSize must be non-negative", queryerr.ErrInvalidQuery)
	}

	ctx := queryctx.New(caller, "")

	candidate, binder, where, err := buildCore(ctx, q.Filter, q.KeyFilters)
	if err != nil {
		return nil, err
	}

	for _, key := range q.EntityFields {
		if _, bErr := binder.BindField(key); bErr != nil {
			return nil, bErr
		}
	}

	for _, key := range q.LatestValues {
		if _, bErr := binder.BindLatest(key); bErr != nil {
			return nil, bErr
		}
	}

	if ts := q.PageLink.TextSearch; ts != "" {
		tsParam := ctx.Bind(ts)

		var disjuncts []string

		for _, fr := range binder.Results() {
			if fr.Latest != nil || fr.TextAlias == "" || fr.TextAlias == "s.entity_type" {
				continue
			}

			col, rErr := binder.ResolveColumn(fr.Key)
			if rErr != nil {
				return nil, rErr
			}

			disjuncts = append(disjuncts, fmt.Sprintf("LOWER(CAST(%s AS varchar)) LIKE LOWER(%s) || '%%'", col, tsParam))
		}

		if len(disjuncts) > 0 {
			where = fmt.Sprintf("%s AND (%s)", where, strings.Join(disjuncts, " OR "))
		}
	}

	selectCols := make([]string, 0, len(binder.SelectColumns()))
	for _, c := range binder.SelectColumns() {
		selectCols = append(selectCols, fmt.Sprintf("%s AS %s", c.Expr, c.Alias))
	}

	projectionList := ""
	if len(selectCols) > 0 {
		projectionList = ",\n  " + strings.Join(selectCols, ",\n  ")
	}

	inner := fmt.Sprintf("SELECT s.id, s.entity_type%s\nFROM (%s) s\n%s\nWHERE %s",
		projectionList, candidate.SQL, strings.Join(binder.Joins(), "\n"), where)

	countSQL := withHeader(candidate) + fmt.Sprintf("SELECT count(*) FROM (%s) result", inner)
	countArgsLen := len(ctx.Args())

	sortExpr, err := sortExpression(ctx, binder, q.PageLink.SortOrder, candidate.HasLevel)
	if err != nil {
		return nil, err
	}

	pageSize := q.PageLink.PageSize

	limitClause := ""
	if pageSize > 0 {
		limitParam := ctx.Bind(pageSize)
		offsetParam := ctx.Bind(q.PageLink.Page * pageSize)
		limitClause = fmt.Sprintf("\nLIMIT %s OFFSET %s", limitParam, offsetParam)
	}

	dataSQL := withHeader(candidate) + fmt.Sprintf("%s\nORDER BY %s%s", inner, sortExpr, limitClause)

	return &Plan{
		CountSQL:  countSQL,
		CountArgs: ctx.Args()[:countArgsLen],
		DataSQL:   dataSQL,
		DataArgs:  ctx.Args(),
		Binder:    binder,
	}, nil
}

// sortExpression implements spec.md §4.G's sort translation: an explicit
// sort order targets its resolved column with NULLS LAST on ASC / NULLS
// FIRST on DESC; absent a sort order, a relation traversal defaults to
// (level ASC, createdTime ASC); otherwise createdTime DESC. The
// (entity_type ASC, id ASC) tie-break is always appended.
func sortExpression(ctx *queryctx.Context, binder *projection.Binder, sortOrder *models.EntitySortOrder, hasLevel bool) (string, error) {
	const tieBreak = "s.entity_type ASC, s.id ASC"

	if sortOrder != nil {
		col, err := binder.ResolveColumn(sortOrder.Key)
		if err != nil {
			return "", err
		}

		switch sortOrder.Direction {
		case models.SortAscending:
			return fmt.Sprintf("%s ASC NULLS LAST, %s", col, tieBreak), nil
		case models.SortDescending:
			return fmt.Sprintf("%s DESC NULLS FIRST, %s", col, tieBreak), nil
		default:
			return "", fmt.Errorf("%w: unknown sort direction %q", queryerr.ErrInvalidQuery, sortOrder.Direction)
		}
	}

	createdTime, err := binder.ResolveColumn(entityFieldKey(createdTimeKey))
	if err != nil {
		return "", err
	}

	if hasLevel {
		return fmt.Sprintf("s.level ASC, %s ASC, %s", createdTime, tieBreak), nil
	}

	return fmt.Sprintf("%s DESC, %s", createdTime, tieBreak), nil
}
