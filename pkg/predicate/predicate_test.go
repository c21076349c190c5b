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

package predicate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/entityquery/pkg/models"
	"github.com/carverauto/entityquery/pkg/queryctx"
	"github.com/carverauto/entityquery/pkg/queryerr"
)

func newCtx() *queryctx.Context {
	return queryctx.New(models.Caller{}, "")
}

func literal(v interface{}) models.FilterPredicateValue {
	return models.FilterPredicateValue{Literal: v}
}

func TestCompileStringEqual(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	pred := models.KeyFilterPredicate{
		Kind: models.PredicateString,
		String: &models.StringFilterPredicate{
			Operator: models.StringEqual,
			Value:    literal("Device1"),
		},
	}

	expr, err := Compile(ctx, "d.name", pred, nil)
	require.NoError(t, err)
	assert.Equal(t, "CAST(d.name AS text) = $1", expr)
	assert.Equal(t, []interface{}{"Device1"}, ctx.Args())
}

func TestCompileStringIgnoreCaseWrapsBothSides(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	pred := models.KeyFilterPredicate{
		Kind: models.PredicateString,
		String: &models.StringFilterPredicate{
			Operator:   models.StringContains,
			IgnoreCase: true,
			Value:      literal("evice"),
		},
	}

	expr, err := Compile(ctx, "d.name", pred, nil)
	require.NoError(t, err)
	assert.Contains(t, expr, "LOWER(CAST(d.name AS text))")
	assert.Contains(t, expr, "LIKE concat('%', LOWER(CAST($1 AS text)), '%')")
}

func TestCompileStringNotEqualTreatsNullAsNeverMatching(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	pred := models.KeyFilterPredicate{
		Kind: models.PredicateString,
		String: &models.StringFilterPredicate{
			Operator: models.StringNotEqual,
			Value:    literal("x"),
		},
	}

	expr, err := Compile(ctx, "d.name", pred, nil)
	require.NoError(t, err)
	assert.Equal(t, "(d.name IS NOT NULL AND CAST(d.name AS text) <> $1)", expr)
}

func TestCompileStringOperators(t *testing.T) {
	t.Parallel()

	cases := []struct {
		op   models.StringOperator
		want string
	}{
		{models.StringStartsWith, "CAST(d.name AS text) LIKE concat($1, '%')"},
		{models.StringEndsWith, "CAST(d.name AS text) LIKE concat('%', $1)"},
		{models.StringContains, "CAST(d.name AS text) LIKE concat('%', $1, '%')"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(string(tc.op), func(t *testing.T) {
			t.Parallel()

			ctx := newCtx()
			pred := models.KeyFilterPredicate{
				Kind:   models.PredicateString,
				String: &models.StringFilterPredicate{Operator: tc.op, Value: literal("x")},
			}

			expr, err := Compile(ctx, "d.name", pred, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, expr)
		})
	}
}

func TestCompileStringNotContains(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	pred := models.KeyFilterPredicate{
		Kind:   models.PredicateString,
		String: &models.StringFilterPredicate{Operator: models.StringNotContains, Value: literal("x")},
	}

	expr, err := Compile(ctx, "d.name", pred, nil)
	require.NoError(t, err)
	assert.Equal(t, "(d.name IS NOT NULL AND CAST(d.name AS text) NOT LIKE concat('%', $1, '%'))", expr)
}

func TestCompileNumericGreater(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	pred := models.KeyFilterPredicate{
		Kind: models.PredicateNumeric,
		Numeric: &models.NumericFilterPredicate{
			Operator: models.NumericGreater,
			Value:    literal(45.0),
		},
	}

	expr, err := Compile(ctx, "vl_0", pred, nil)
	require.NoError(t, err)
	assert.Equal(t, "CAST(vl_0 AS double precision) > $1", expr)
}

func TestCompileNumericNotEqualNullSemantics(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	pred := models.KeyFilterPredicate{
		Kind:    models.PredicateNumeric,
		Numeric: &models.NumericFilterPredicate{Operator: models.NumericNotEqual, Value: literal(1.0)},
	}

	expr, err := Compile(ctx, "vl_0", pred, nil)
	require.NoError(t, err)
	assert.Equal(t, "(vl_0 IS NOT NULL AND CAST(vl_0 AS double precision) <> $1)", expr)
}

func TestCompileBooleanEqual(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	pred := models.KeyFilterPredicate{
		Kind:    models.PredicateBoolean,
		Boolean: &models.BooleanFilterPredicate{Operator: models.BooleanEqual, Value: literal(true)},
	}

	expr, err := Compile(ctx, "vb_0", pred, nil)
	require.NoError(t, err)
	assert.Equal(t, "vb_0 = $1", expr)
}

func TestCompileComplexAndOrNesting(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	pred := models.KeyFilterPredicate{
		Kind: models.PredicateComplex,
		Complex: &models.ComplexFilterPredicate{
			Operator: models.ComplexOr,
			Operands: []models.KeyFilterPredicate{
				{Kind: models.PredicateNumeric, Numeric: &models.NumericFilterPredicate{Operator: models.NumericGreater, Value: literal(45.0)}},
				{Kind: models.PredicateNumeric, Numeric: &models.NumericFilterPredicate{Operator: models.NumericLess, Value: literal(0.0)}},
			},
		},
	}

	expr, err := Compile(ctx, "vl_0", pred, nil)
	require.NoError(t, err)
	assert.Equal(t, "(CAST(vl_0 AS double precision) > $1 OR CAST(vl_0 AS double precision) < $2)", expr)
}

func TestCompileDynamicValueResolvesThroughCallback(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	otherKey := models.EntityKey{Type: models.KeyTypeEntityField, Key: "label"}
	pred := models.KeyFilterPredicate{
		Kind: models.PredicateString,
		String: &models.StringFilterPredicate{
			Operator: models.StringEqual,
			Value:    models.FilterPredicateValue{DynamicKey: &otherKey},
		},
	}

	resolve := func(k models.EntityKey) (string, error) {
		assert.Equal(t, otherKey, k)
		return "d.label", nil
	}

	expr, err := Compile(ctx, "d.name", pred, resolve)
	require.NoError(t, err)
	assert.Equal(t, "CAST(d.name AS text) = d.label", expr)
	assert.Empty(t, ctx.Args(), "dynamic value binds no literal parameter")
}

func TestCompileDynamicValueWithNoResolverIsInternalError(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	otherKey := models.EntityKey{Type: models.KeyTypeEntityField, Key: "label"}
	pred := models.KeyFilterPredicate{
		Kind: models.PredicateString,
		String: &models.StringFilterPredicate{
			Operator: models.StringEqual,
			Value:    models.FilterPredicateValue{DynamicKey: &otherKey},
		},
	}

	_, err := Compile(ctx, "d.name", pred, nil)
	require.ErrorIs(t, err, queryerr.ErrInternal)
}

func TestCompileUnknownKindIsInvalidQuery(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	_, err := Compile(ctx, "d.name", models.KeyFilterPredicate{Kind: "bogus"}, nil)
	require.ErrorIs(t, err, queryerr.ErrInvalidQuery)
}

func TestCompileMissingPayloadIsInvalidQuery(t *testing.T) {
	t.Parallel()

	ctx := newCtx()
	_, err := Compile(ctx, "d.name", models.KeyFilterPredicate{Kind: models.PredicateString}, nil)
	require.ErrorIs(t, err, queryerr.ErrInvalidQuery)
}

func TestCompileComplexEmptyOperandsAreIdentity(t *testing.T) {
	t.Parallel()

	ctx := newCtx()

	andExpr, err := Compile(ctx, "c", models.KeyFilterPredicate{
		Kind:    models.PredicateComplex,
		Complex: &models.ComplexFilterPredicate{Operator: models.ComplexAnd},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "TRUE", andExpr)

	orExpr, err := Compile(ctx, "c", models.KeyFilterPredicate{
		Kind:    models.PredicateComplex,
		Complex: &models.ComplexFilterPredicate{Operator: models.ComplexOr},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "FALSE", orExpr)
}
