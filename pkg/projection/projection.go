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

// Package projection builds the LEFT JOINs and column list spec.md §4.F
// requires to resolve requested entity fields, latest attribute values,
// and latest telemetry values against a candidate set s(id, entity_type).
package projection

import (
	"fmt"
	"strings"

	"github.com/carverauto/entityquery/pkg/keyregistry"
	"github.com/carverauto/entityquery/pkg/models"
	"github.com/carverauto/entityquery/pkg/queryctx"
	"github.com/carverauto/entityquery/pkg/queryerr"
)

// entityFieldTypes is the fixed set of concrete row tables the per-type
// CASE expression branches over (spec.md §4.F.1).
var entityFieldTypes = []models.EntityType{
	models.EntityTypeTenant,
	models.EntityTypeCustomer,
	models.EntityTypeUser,
	models.EntityTypeDashboard,
	models.EntityTypeAsset,
	models.EntityTypeDevice,
	models.EntityTypeEntityView,
	models.EntityTypeRuleChain,
}

var typeAlias = map[models.EntityType]string{
	models.EntityTypeTenant:     "tn",
	models.EntityTypeCustomer:   "cu",
	models.EntityTypeUser:       "u",
	models.EntityTypeDashboard:  "db",
	models.EntityTypeAsset:      "ast",
	models.EntityTypeDevice:     "d",
	models.EntityTypeEntityView: "ev",
	models.EntityTypeRuleChain:  "rc",
}

// SelectColumn is one entry the Plan Assembler appends to the outer
// SELECT list.
type SelectColumn struct {
	Alias string
	Expr  string
}

// LatestColumns names the five-variant value-cell columns plus timestamp
// a latest attribute/telemetry projection contributes, so the Result
// Adapter can scan them by alias.
type LatestColumns struct {
	BoolAlias, StrAlias, LongAlias, DblAlias, JSONAlias, TsAlias string
}

// FieldResult is one resolved projection: either a single text column
// (entity fields, including the synthetic "entityType" key, which needs
// no alias since it reads straight off the candidate set) or a
// five-variant latest value cell (attribute/telemetry keys).
type FieldResult struct {
	Key       models.EntityKey
	TextAlias string // non-empty for ENTITY_FIELD keys; "s.entity_type" for the synthetic key
	Latest    *LatestColumns
}

// Binder accumulates joins and resolved columns for one plan. It is not
// safe for concurrent use; one Binder serves exactly one plan.
type Binder struct {
	ctx *queryctx.Context

	typeJoins  []string
	typeJoined map[models.EntityType]bool

	latestJoins []string
	pending     []SelectColumn

	results    []FieldResult
	resolved   map[models.EntityKey]string // single text-ish expr, for sort/predicate/text-search
	colCounter int
}

// NewBinder constructs a Binder over ctx. Call BindField/BindLatest for
// every key the query projects, and ResolveColumn for every key a sort
// order, text search, or dynamic predicate value references.
func NewBinder(ctx *queryctx.Context) *Binder {
	return &Binder{
		ctx:        ctx,
		typeJoined: make(map[models.EntityType]bool),
		resolved:   make(map[models.EntityKey]string),
	}
}

func (b *Binder) nextColAlias(prefix string) string {
	n := b.colCounter
	b.colCounter++

	return fmt.Sprintf("%s_%d", prefix, n)
}

func (b *Binder) appendSelect(alias, expr string) {
	b.pending = append(b.pending, SelectColumn{Alias: alias, Expr: expr})
}

func (b *Binder) ensureTypeJoins() {
	if len(b.typeJoins) > 0 {
		return
	}

	for _, t := range entityFieldTypes {
		table, ok := t.TableName()
		if !ok {
			continue
		}

		alias := typeAlias[t]
		b.typeJoins = append(b.typeJoins, fmt.Sprintf(
			"LEFT JOIN %s %s ON s.entity_type = '%s' AND %s.id = s.id", table, alias, t, alias))
		b.typeJoined[t] = true
	}
}

// BindField resolves an ENTITY_FIELD key into a per-type CASE expression
// over every concrete row table (spec.md §4.F.1), joining each type table
// on first use. It is idempotent for a repeated key.
func (b *Binder) BindField(key models.EntityKey) (string, error) {
	if key.Type != models.KeyTypeEntityField {
		return "", fmt.Errorf("%w: BindField called with non-ENTITY_FIELD key %q", queryerr.ErrInternal, key.Type)
	}

	if expr, ok := b.resolved[key]; ok {
		return expr, nil
	}

	if keyregistry.IsEntityTypeKey(key.Key) {
		b.resolved[key] = "s.entity_type"
		b.results = append(b.results, FieldResult{Key: key, TextAlias: "s.entity_type"})

		return "s.entity_type", nil
	}

	b.ensureTypeJoins()

	var branches []string

	found := false

	for _, t := range entityFieldTypes {
		if !b.typeJoined[t] {
			continue
		}

		col, ok := keyregistry.Column(t, key.Key)
		if !ok {
			continue
		}

		found = true
		alias := typeAlias[t]
		branches = append(branches, fmt.Sprintf("WHEN s.entity_type = '%s' THEN CAST(%s.%s AS text)", t, alias, col))
	}

	expr := "NULL::text"
	if found {
		expr = "(CASE " + strings.Join(branches, " ") + " ELSE NULL END)"
	}

	colAlias := b.nextColAlias("field")
	b.appendSelect(colAlias, expr)

	b.resolved[key] = expr
	b.results = append(b.results, FieldResult{Key: key, TextAlias: colAlias})

	return expr, nil
}

// BindLatest resolves an ATTRIBUTE/CLIENT_ATTRIBUTE/SERVER_ATTRIBUTE/
// SHARED_ATTRIBUTE/TIME_SERIES key into its LEFT JOIN(s) and value-cell
// columns (spec.md §4.F.2, §4.F.3). Unqualified ATTRIBUTE joins all three
// scopes and resolves precedence CLIENT > SHARED > SERVER via COALESCE
// (spec.md §9 open question (b)).
func (b *Binder) BindLatest(key models.EntityKey) (*LatestColumns, error) {
	if existing := b.findLatest(key); existing != nil {
		return existing, nil
	}

	switch key.Type {
	case models.KeyTypeAttribute, models.KeyTypeClientAttribute, models.KeyTypeServerAttribute, models.KeyTypeSharedAttribute:
		return b.bindAttribute(key)
	case models.KeyTypeTimeSeries:
		return b.bindTelemetry(key)
	default:
		return nil, fmt.Errorf("%w: BindLatest called with key type %q", queryerr.ErrInternal, key.Type)
	}
}

func (b *Binder) findLatest(key models.EntityKey) *LatestColumns {
	for i := range b.results {
		if b.results[i].Key == key && b.results[i].Latest != nil {
			return b.results[i].Latest
		}
	}

	return nil
}

func (b *Binder) bindAttribute(key models.EntityKey) (*LatestColumns, error) {
	scopes := key.Type.Scopes()
	if len(scopes) == 0 {
		return nil, fmt.Errorf("%w: attribute key %q resolved to no scopes", queryerr.ErrInternal, key.Key)
	}

	keyParam := b.ctx.Bind(key.Key)

	aliases := make([]string, len(scopes))
	for i := range scopes {
		aliases[i] = fmt.Sprintf("a_%d", b.ctx.NextAlias())
	}

	for i, scope := range scopes {
		alias := aliases[i]
		scopeParam := b.ctx.Bind(string(scope))

		b.latestJoins = append(b.latestJoins, fmt.Sprintf(
			"LEFT JOIN attribute_kv %s ON %s.entity_id = s.id AND %s.entity_type = s.entity_type AND %s.attribute_key = %s AND %s.attribute_type = %s",
			alias, alias, alias, alias, keyParam, alias, scopeParam))
	}

	cols := b.coalesceValueColumns(aliases, "bool_v", "str_v", "long_v", "dbl_v", "json_v", "last_update_ts")

	b.results = append(b.results, FieldResult{Key: key, Latest: cols})
	b.resolved[key] = coalesceTextExpr(aliases)

	return cols, nil
}

func (b *Binder) bindTelemetry(key models.EntityKey) (*LatestColumns, error) {
	n := b.ctx.NextAlias()
	dictAlias := fmt.Sprintf("d_%d", n)
	tsAlias := fmt.Sprintf("t_%d", n)
	keyParam := b.ctx.Bind(key.Key)

	b.latestJoins = append(b.latestJoins,
		fmt.Sprintf("LEFT JOIN ts_kv_dictionary %s ON %s.key = %s", dictAlias, dictAlias, keyParam),
		fmt.Sprintf("LEFT JOIN ts_kv_latest %s ON %s.entity_id = s.id AND %s.key = %s.key_id", tsAlias, tsAlias, tsAlias, dictAlias),
	)

	cols := b.coalesceValueColumns([]string{tsAlias}, "bool_v", "str_v", "long_v", "dbl_v", "json_v", "ts")

	b.results = append(b.results, FieldResult{Key: key, Latest: cols})
	b.resolved[key] = coalesceTextExpr([]string{tsAlias})

	return cols, nil
}

// coalesceValueColumns emits one aliased SELECT column per value variant,
// COALESCEing across every scope alias in priority order, queuing each
// into b.pending and returning the aliases by which the Result Adapter
// later scans them.
func (b *Binder) coalesceValueColumns(aliases []string, bCol, sCol, lCol, dCol, jCol, tsCol string) *LatestColumns {
	mk := func(prefix, col string) string {
		parts := make([]string, len(aliases))
		for i, a := range aliases {
			parts[i] = fmt.Sprintf("%s.%s", a, col)
		}

		alias := b.nextColAlias(prefix)

		expr := parts[0]
		if len(parts) > 1 {
			expr = "COALESCE(" + strings.Join(parts, ", ") + ")"
		}

		b.appendSelect(alias, expr)

		return alias
	}

	return &LatestColumns{
		BoolAlias: mk("vb", bCol),
		StrAlias:  mk("vs", sCol),
		LongAlias: mk("vl", lCol),
		DblAlias:  mk("vd", dCol),
		JSONAlias: mk("vj", jCol),
		TsAlias:   mk("vt", tsCol),
	}
}

// coalesceTextExpr builds the single-text resolution used for sort keys,
// dynamic predicate references, and text search over a latest value: the
// first non-null string-ish representation across scope aliases, in
// priority order.
func coalesceTextExpr(aliases []string) string {
	parts := make([]string, 0, len(aliases)*5)

	for _, a := range aliases {
		parts = append(parts,
			fmt.Sprintf("%s.str_v", a),
			fmt.Sprintf("CAST(%s.bool_v AS text)", a),
			fmt.Sprintf("CAST(%s.long_v AS text)", a),
			fmt.Sprintf("CAST(%s.dbl_v AS text)", a),
			fmt.Sprintf("%s.json_v", a),
		)
	}

	return "COALESCE(" + strings.Join(parts, ", ") + ")"
}

// ResolveColumn implements predicate.ColumnResolver and is also used by
// the Plan Assembler to resolve sort keys and text-search columns: it
// returns the single text-ish expression for an already-bound key, or
// binds it now if the key was referenced only from a predicate/sort and
// never explicitly projected.
func (b *Binder) ResolveColumn(key models.EntityKey) (string, error) {
	if expr, ok := b.resolved[key]; ok {
		return expr, nil
	}

	switch key.Type {
	case models.KeyTypeEntityField:
		return b.BindField(key)
	case models.KeyTypeAttribute, models.KeyTypeClientAttribute, models.KeyTypeServerAttribute, models.KeyTypeSharedAttribute:
		if _, err := b.bindAttribute(key); err != nil {
			return "", err
		}
	case models.KeyTypeTimeSeries:
		if _, err := b.bindTelemetry(key); err != nil {
			return "", err
		}
	case models.KeyTypeAlarmField:
		// The alarm engine's candidate sub-select aliases every alarm
		// column by its registry name directly on s, so an ALARM_FIELD key
		// resolves the same way an ENTITY_FIELD key resolves here: against
		// the candidate alias, not a bare "a" table reference (there is no
		// "a" in scope once the alarm candidate has been wrapped as s).
		col, ok := keyregistry.AlarmColumn(key.Key)
		if !ok {
			return "NULL::text", nil
		}

		return "s." + col, nil
	default:
		return "", fmt.Errorf("%w: cannot resolve key type %q", queryerr.ErrInvalidQuery, key.Type)
	}

	return b.resolved[key], nil
}

// Joins returns every LEFT JOIN clause accumulated so far, type joins
// first then latest-value joins, in the order the Plan Assembler should
// emit them.
func (b *Binder) Joins() []string {
	joins := make([]string, 0, len(b.typeJoins)+len(b.latestJoins))
	joins = append(joins, b.typeJoins...)
	joins = append(joins, b.latestJoins...)

	return joins
}

// SelectColumns returns every column the outer SELECT list must project,
// in bind order.
func (b *Binder) SelectColumns() []SelectColumn {
	return b.pending
}

// Results returns every field/latest binding recorded so far, for the
// Result Adapter to scan rows by alias back into the requested
// EntityKeyType/key shape.
func (b *Binder) Results() []FieldResult {
	return b.results
}
