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

// Package alarmquery specializes the generic entity-query pipeline for
// spec.md §4.H: given a priority-ordered list of entity ids (typically
// produced by a prior entity query) and alarm-specific criteria, it joins
// alarm propagation relations, applies the alarm filters, and projects
// entity fields/latest values onto each alarm's resolved originator
// exactly like an EntityDataQuery's projection — by reusing
// pkg/projection's binder over a candidate set shaped (id, entity_type).
package alarmquery

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/entityquery/pkg/filter"
	"github.com/carverauto/entityquery/pkg/keyregistry"
	"github.com/carverauto/entityquery/pkg/models"
	"github.com/carverauto/entityquery/pkg/projection"
	"github.com/carverauto/entityquery/pkg/queryctx"
	"github.com/carverauto/entityquery/pkg/queryerr"
)

// Plan is a fully-assembled count+data query pair over the alarm table,
// sharing one parameter context (spec.md §4.H, §5).
type Plan struct {
	CountSQL  string
	CountArgs []interface{}

	DataSQL  string
	DataArgs []interface{}

	Binder *projection.Binder
}

// originatorTypes is the fixed set of entity types an alarm may originate
// from; rule chains/nodes never raise alarms (spec.md §4.H.2).
var originatorTypes = []models.EntityType{
	models.EntityTypeTenant,
	models.EntityTypeCustomer,
	models.EntityTypeUser,
	models.EntityTypeDashboard,
	models.EntityTypeAsset,
	models.EntityTypeDevice,
	models.EntityTypeEntityView,
}

var originatorAlias = map[models.EntityType]string{
	models.EntityTypeTenant:     "tn",
	models.EntityTypeCustomer:   "cu",
	models.EntityTypeUser:       "usr",
	models.EntityTypeDashboard:  "db",
	models.EntityTypeAsset:      "ast",
	models.EntityTypeDevice:     "dv",
	models.EntityTypeEntityView: "ev",
}

// originatorNameColumn names, per origin type, the column that best
// identifies the row in an alarm list (spec.md §4.H.2).
var originatorNameColumn = map[models.EntityType]string{
	models.EntityTypeTenant:     "title",
	models.EntityTypeCustomer:   "title",
	models.EntityTypeUser:       "email",
	models.EntityTypeDashboard:  "title",
	models.EntityTypeAsset:      "name",
	models.EntityTypeDevice:     "name",
	models.EntityTypeEntityView: "name",
}

// textSearchAlarmKeys is the fixed set of alarm-field registry keys a
// text search matches against (spec.md §4.H.7); timestamp/id columns are
// excluded since a substring match against them is never meaningful.
var textSearchAlarmKeys = []string{"type", "severity", "status", "originatorName", "details"}

func originatorJoins() []string {
	joins := make([]string, 0, len(originatorTypes))

	for _, t := range originatorTypes {
		table, ok := t.TableName()
		if !ok {
			continue
		}

		alias := originatorAlias[t]
		joins = append(joins, fmt.Sprintf(
			"LEFT JOIN %s %s ON a.originator_type = '%s' AND %s.id = a.originator_id", table, alias, t, alias))
	}

	return joins
}

func originatorNameExpr() string {
	branches := make([]string, 0, len(originatorTypes))

	for _, t := range originatorTypes {
		alias := originatorAlias[t]
		col := originatorNameColumn[t]
		branches = append(branches, fmt.Sprintf("WHEN a.originator_type = '%s' THEN CAST(%s.%s AS text)", t, alias, col))
	}

	return "(CASE " + strings.Join(branches, " ") + " ELSE NULL END)"
}

// originatorPermission evaluates the permission fragment on the
// originator row, per spec.md §4.D's "for alarms, permission is evaluated
// on the alarm originator row".
func originatorPermission(ctx *queryctx.Context) string {
	parts := make([]string, 0, len(originatorTypes))

	for _, t := range originatorTypes {
		alias := originatorAlias[t]
		frag := filter.PermissionFragment(ctx, t, alias)
		parts = append(parts, fmt.Sprintf("(a.originator_type = '%s' AND %s)", t, frag))
	}

	return "(" + strings.Join(parts, " OR ") + ")"
}

// entityMatch builds the propagation-aware id match (step 3/4) and the
// resolved (id, entity_type) expressions the candidate select projects;
// entityIDsParam is the bound entity-id list's parameter placeholder.
func entityMatch(ctx *queryctx.Context, entityIDsParam string, searchPropagated bool) (joins []string, whereConjunct, resolvedID, resolvedType string) {
	if !searchPropagated {
		return nil, fmt.Sprintf("a.originator_id = ANY(%s)", entityIDsParam), "a.originator_id", "a.originator_type"
	}

	join := fmt.Sprintf(
		"LEFT JOIN relation r ON r.relation_type_group = 'ALARM' AND r.relation_type = 'ANY' AND r.to_id = a.id AND r.to_type = '%s' AND r.from_id = ANY(%s)",
		models.EntityTypeAlarm, entityIDsParam)

	where := fmt.Sprintf("(a.originator_id = ANY(%s) OR r.from_id IS NOT NULL)", entityIDsParam)

	return []string{join}, where, "COALESCE(r.from_id, a.originator_id)", "COALESCE(r.from_type, a.originator_type)"
}

// timeWindowConjunct implements spec.md §4.H.5 / §7(a)'s resolved open
// question: an explicit timeWindowMs always takes precedence over an
// explicit [startTs, endTs] pair, computed against now.
func timeWindowConjunct(ctx *queryctx.Context, pl models.AlarmDataPageLink, now time.Time) string {
	var start, end int64

	switch {
	case pl.TimeWindowMs > 0:
		end = now.UnixMilli()
		start = end - pl.TimeWindowMs
	default:
		start, end = pl.StartTs, pl.EndTs
	}

	var parts []string

	if start > 0 {
		parts = append(parts, fmt.Sprintf("a.created_time >= %s", ctx.Bind(start)))
	}

	if end > 0 {
		parts = append(parts, fmt.Sprintf("a.created_time <= %s", ctx.Bind(end)))
	}

	if len(parts) == 0 {
		return "TRUE"
	}

	return strings.Join(parts, " AND ")
}

func statusConjunct(ctx *queryctx.Context, statuses []models.AlarmSearchStatus) string {
	set, omit := models.StatusSet(statuses)
	if omit {
		return "TRUE"
	}

	strs := make([]string, len(set))
	for i, s := range set {
		strs[i] = string(s)
	}

	return fmt.Sprintf("a.status = ANY(%s)", ctx.BindStringList(strs))
}

// buildCandidate assembles the alarm candidate sub-select: a row per
// surviving alarm, carrying the alarm's own columns plus the resolved
// (id, entity_type) of the entity it is matched through, so pkg/projection
// can join entity fields/latest values onto that resolved originator
// exactly as it does for a plain entity query.
func buildCandidate(ctx *queryctx.Context, pl models.AlarmDataPageLink, orderedEntityIDs []models.EntityID, now time.Time) (string, error) {
	if len(orderedEntityIDs) == 0 {
		return "", fmt.Errorf("%w: alarm query requires a non-empty ordered entity id list", queryerr.ErrInvalidQuery)
	}

	ids := make([]uuid.UUID, len(orderedEntityIDs))
	for i, e := range orderedEntityIDs {
		ids[i] = e.ID
	}

	entityIDsParam := ctx.BindUUIDList(ids)

	propagationJoins, entityWhere, resolvedID, resolvedType := entityMatch(ctx, entityIDsParam, pl.SearchPropagatedAlarms)

	conjuncts := []string{
		entityWhere,
		originatorPermission(ctx),
		timeWindowConjunct(ctx, pl, now),
	}

	if len(pl.TypeList) > 0 {
		conjuncts = append(conjuncts, fmt.Sprintf("a.type = ANY(%s)", ctx.BindStringList(pl.TypeList)))
	}

	if len(pl.SeverityList) > 0 {
		conjuncts = append(conjuncts, fmt.Sprintf("a.severity = ANY(%s)", ctx.BindStringList(pl.SeverityList)))
	}

	conjuncts = append(conjuncts, statusConjunct(ctx, pl.StatusList))

	joins := append(originatorJoins(), propagationJoins...)

	sql := fmt.Sprintf(`SELECT
  a.id AS alarm_id,
  %s AS id,
  %s AS entity_type,
  a.originator_id AS originator_id,
  a.originator_type AS originator_type,
  %s AS originator_name,
  a.type AS type,
  a.severity AS severity,
  a.status AS status,
  a.created_time AS created_time,
  a.ack_ts AS ack_ts,
  a.clear_ts AS clear_ts,
  a.start_ts AS start_ts,
  a.end_ts AS end_ts,
  a.details AS details
FROM alarm a
%s
WHERE %s`,
		resolvedID, resolvedType, originatorNameExpr(),
		strings.Join(joins, "\n"),
		strings.Join(conjuncts, " AND "))

	return sql, nil
}

// priorityJoin builds the priority-ordered entity list join spec.md
// §4.H.8 requires for the default sort: orderedEntityIDs is exploded into
// rows via unnest/WITH ORDINALITY, joined against the candidate's already
// propagation-resolved s.id, so a single join covers both direct and
// propagated matches (the "(or propagation-aware form)" spec.md allows).
func priorityJoin(ctx *queryctx.Context, orderedEntityIDs []models.EntityID) string {
	ids := make([]uuid.UUID, len(orderedEntityIDs))
	for i, e := range orderedEntityIDs {
		ids[i] = e.ID
	}

	idsParam := ctx.BindUUIDList(ids)

	return fmt.Sprintf("LEFT JOIN unnest(%s::uuid[]) WITH ORDINALITY AS prio(id, rank) ON prio.id = s.id", idsParam)
}

// BuildDataPlan compiles q into a count+data query pair sharing one
// parameter context (spec.md §4.H, §6 findAlarmData).
func BuildDataPlan(caller models.Caller, q models.AlarmDataQuery, orderedEntityIDs []models.EntityID, now time.Time) (*Plan, error) {
	if q.PageLink.PageSize < 0 || q.PageLink.Page < 0 {
		return nil, fmt.Errorf("%w: page and pageSize must be non-negative", queryerr.ErrInvalidQuery)
	}

	ctx := queryctx.New(caller, models.EntityTypeAlarm)

	candidateSQL, err := buildCandidate(ctx, q.PageLink, orderedEntityIDs, now)
	if err != nil {
		return nil, err
	}

	binder := projection.NewBinder(ctx)

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

	where := "TRUE"

	if ts := q.PageLink.TextSearch; ts != "" {
		tsParam := ctx.Bind(ts)

		var disjuncts []string

		for _, key := range textSearchAlarmKeys {
			col, ok := keyregistry.AlarmColumn(key)
			if !ok {
				continue
			}

			disjuncts = append(disjuncts, fmt.Sprintf("LOWER(CAST(s.%s AS varchar)) LIKE '%%' || LOWER(%s) || '%%'", col, tsParam))
		}

		if len(disjuncts) > 0 {
			where = "(" + strings.Join(disjuncts, " OR ") + ")"
		}
	}

	passthrough := []string{
		"s.alarm_id", "s.originator_id", "s.originator_type", "s.originator_name",
		"s.type AS alarm_type", "s.severity AS alarm_severity", "s.status AS alarm_status",
		"s.created_time AS alarm_created_time", "s.ack_ts AS alarm_ack_ts", "s.clear_ts AS alarm_clear_ts",
		"s.start_ts AS alarm_start_ts", "s.end_ts AS alarm_end_ts", "s.details AS alarm_details",
	}

	selectCols := make([]string, 0, len(binder.SelectColumns()))
	for _, c := range binder.SelectColumns() {
		selectCols = append(selectCols, fmt.Sprintf("%s AS %s", c.Expr, c.Alias))
	}

	projectionList := ""
	if len(selectCols) > 0 {
		projectionList = ",\n  " + strings.Join(selectCols, ",\n  ")
	}

	allJoins := append(append([]string{}, binder.Joins()...), priorityJoin(ctx, orderedEntityIDs))

	inner := fmt.Sprintf("SELECT s.id, s.entity_type,\n  %s%s\nFROM (%s) s\n%s\nWHERE %s",
		strings.Join(passthrough, ",\n  "), projectionList, candidateSQL, strings.Join(allJoins, "\n"), where)

	countSQL := fmt.Sprintf("SELECT count(*) FROM (%s) result", inner)
	countArgsLen := len(ctx.Args())

	sortExpr, err := sortExpression(binder, q.PageLink.SortOrder)
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

	dataSQL := fmt.Sprintf("%s\nORDER BY %s%s", inner, sortExpr, limitClause)

	return &Plan{
		CountSQL:  countSQL,
		CountArgs: ctx.Args()[:countArgsLen],
		DataSQL:   dataSQL,
		DataArgs:  ctx.Args(),
		Binder:    binder,
	}, nil
}

// sortExpression implements spec.md §4.H.8: an ALARM_FIELD (or any other
// resolvable) sort key lowers through the binder like an entity query's
// sort; absent one, the priority list orderedEntityIDs induces the
// default order.
func sortExpression(binder *projection.Binder, sortOrder *models.EntitySortOrder) (string, error) {
	const tieBreak = "s.alarm_id ASC"

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

	return fmt.Sprintf("prio.rank ASC NULLS LAST, %s", tieBreak), nil
}
