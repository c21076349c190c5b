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

// Package predicate compiles a models.KeyFilterPredicate, applied against
// an already-resolved column expression, into a parameterized boolean SQL
// fragment plus bindings recorded on a queryctx.Context (spec.md §4.B).
package predicate

import (
	"fmt"

	"github.com/carverauto/entityquery/pkg/models"
	"github.com/carverauto/entityquery/pkg/queryctx"
	"github.com/carverauto/entityquery/pkg/queryerr"
)

// ColumnResolver resolves a dynamic predicate value (one that references
// another key rather than a literal) to that key's own column expression.
// It is supplied by the Projection Binder, which is the only component
// that knows every joined column in the plan.
type ColumnResolver func(key models.EntityKey) (string, error)

// Compile lowers pred, applied against column (already resolved per
// spec.md §4.A/4.F), into a boolean SQL expression. The predicate family
// is chosen by pred.Kind alone; no separate value type is consulted.
func Compile(ctx *queryctx.Context, column string, pred models.KeyFilterPredicate, resolve ColumnResolver) (string, error) {
	switch pred.Kind {
	case models.PredicateString:
		if pred.String == nil {
			return "", fmt.Errorf("%w: string predicate missing payload", queryerr.ErrInvalidQuery)
		}

		return compileString(ctx, column, pred.String, resolve)
	case models.PredicateNumeric:
		if pred.Numeric == nil {
			return "", fmt.Errorf("%w: numeric predicate missing payload", queryerr.ErrInvalidQuery)
		}

		return compileNumeric(ctx, column, pred.Numeric, resolve)
	case models.PredicateBoolean:
		if pred.Boolean == nil {
			return "", fmt.Errorf("%w: boolean predicate missing payload", queryerr.ErrInvalidQuery)
		}

		return compileBoolean(ctx, column, pred.Boolean, resolve)
	case models.PredicateComplex:
		if pred.Complex == nil {
			return "", fmt.Errorf("%w: complex predicate missing payload", queryerr.ErrInvalidQuery)
		}

		return compileComplex(ctx, column, pred.Complex, resolve)
	default:
		return "", fmt.Errorf("%w: unknown predicate kind %q", queryerr.ErrInvalidQuery, pred.Kind)
	}
}

func valueExpr(ctx *queryctx.Context, v models.FilterPredicateValue, resolve ColumnResolver) (string, error) {
	if v.IsDynamic() {
		if resolve == nil {
			return "", fmt.Errorf("%w: dynamic predicate value with no resolver available", queryerr.ErrInternal)
		}

		return resolve(*v.DynamicKey)
	}

	return ctx.Bind(v.Literal), nil
}

func compileString(ctx *queryctx.Context, column string, p *models.StringFilterPredicate, resolve ColumnResolver) (string, error) {
	rhs, err := valueExpr(ctx, p.Value, resolve)
	if err != nil {
		return "", err
	}

	lhs := fmt.Sprintf("CAST(%s AS text)", column)

	if p.IgnoreCase {
		lhs = fmt.Sprintf("LOWER(%s)", lhs)
		rhs = fmt.Sprintf("LOWER(CAST(%s AS text))", rhs)
	}

	switch p.Operator {
	case models.StringEqual:
		return fmt.Sprintf("%s = %s", lhs, rhs), nil
	case models.StringNotEqual:
		return fmt.Sprintf("(%s IS NOT NULL AND %s <> %s)", column, lhs, rhs), nil
	case models.StringStartsWith:
		return fmt.Sprintf("%s LIKE concat(%s, '%%')", lhs, rhs), nil
	case models.StringEndsWith:
		return fmt.Sprintf("%s LIKE concat('%%', %s)", lhs, rhs), nil
	case models.StringContains:
		return fmt.Sprintf("%s LIKE concat('%%', %s, '%%')", lhs, rhs), nil
	case models.StringNotContains:
		return fmt.Sprintf("(%s IS NOT NULL AND %s NOT LIKE concat('%%', %s, '%%'))", column, lhs, rhs), nil
	default:
		return "", fmt.Errorf("%w: unknown string operator %q", queryerr.ErrInvalidQuery, p.Operator)
	}
}

func compileNumeric(ctx *queryctx.Context, column string, p *models.NumericFilterPredicate, resolve ColumnResolver) (string, error) {
	rhs, err := valueExpr(ctx, p.Value, resolve)
	if err != nil {
		return "", err
	}

	lhs := fmt.Sprintf("CAST(%s AS double precision)", column)
	if p.Value.IsDynamic() {
		rhs = fmt.Sprintf("CAST(%s AS double precision)", rhs)
	}

	var op string

	switch p.Operator {
	case models.NumericEqual:
		op = "="
	case models.NumericNotEqual:
		return fmt.Sprintf("(%s IS NOT NULL AND %s <> %s)", column, lhs, rhs), nil
	case models.NumericGreater:
		op = ">"
	case models.NumericLess:
		op = "<"
	case models.NumericGreaterOrEqual:
		op = ">="
	case models.NumericLessOrEqual:
		op = "<="
	default:
		return "", fmt.Errorf("%w: unknown numeric operator %q", queryerr.ErrInvalidQuery, p.Operator)
	}

	return fmt.Sprintf("%s %s %s", lhs, op, rhs), nil
}

func compileBoolean(ctx *queryctx.Context, column string, p *models.BooleanFilterPredicate, resolve ColumnResolver) (string, error) {
	rhs, err := valueExpr(ctx, p.Value, resolve)
	if err != nil {
		return "", err
	}

	switch p.Operator {
	case models.BooleanEqual:
		return fmt.Sprintf("%s = %s", column, rhs), nil
	case models.BooleanNotEqual:
		return fmt.Sprintf("(%s IS NOT NULL AND %s <> %s)", column, column, rhs), nil
	default:
		return "", fmt.Errorf("%w: unknown boolean operator %q", queryerr.ErrInvalidQuery, p.Operator)
	}
}

func compileComplex(ctx *queryctx.Context, column string, p *models.ComplexFilterPredicate, resolve ColumnResolver) (string, error) {
	if len(p.Operands) == 0 {
		switch p.Operator {
		case models.ComplexAnd:
			return "TRUE", nil
		case models.ComplexOr:
			return "FALSE", nil
		default:
			return "", fmt.Errorf("%w: unknown complex operator %q", queryerr.ErrInvalidQuery, p.Operator)
		}
	}

	var joiner string

	switch p.Operator {
	case models.ComplexAnd:
		joiner = " AND "
	case models.ComplexOr:
		joiner = " OR "
	default:
		return "", fmt.Errorf("%w: unknown complex operator %q", queryerr.ErrInvalidQuery, p.Operator)
	}

	parts := make([]string, 0, len(p.Operands))

	for _, operand := range p.Operands {
		expr, err := Compile(ctx, column, operand, resolve)
		if err != nil {
			return "", err
		}

		parts = append(parts, expr)
	}

	out := "(" + parts[0]
	for _, p := range parts[1:] {
		out += joiner + p
	}

	return out + ")", nil
}
