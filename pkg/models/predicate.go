/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

// ValueType is the declared type of a KeyFilter's reference value.
type ValueType string

const (
	ValueTypeString   ValueType = "STRING"
	ValueTypeNumeric  ValueType = "NUMERIC"
	ValueTypeBoolean  ValueType = "BOOLEAN"
	ValueTypeDateTime ValueType = "DATE_TIME"
)

// StringOperator enumerates string predicate operators.
type StringOperator string

const (
	StringEqual       StringOperator = "EQUAL"
	StringNotEqual    StringOperator = "NOT_EQUAL"
	StringStartsWith  StringOperator = "STARTS_WITH"
	StringEndsWith    StringOperator = "ENDS_WITH"
	StringContains    StringOperator = "CONTAINS"
	StringNotContains StringOperator = "NOT_CONTAINS"
)

// NumericOperator enumerates numeric predicate operators.
type NumericOperator string

const (
	NumericEqual          NumericOperator = "EQUAL"
	NumericNotEqual       NumericOperator = "NOT_EQUAL"
	NumericGreater        NumericOperator = "GREATER"
	NumericLess           NumericOperator = "LESS"
	NumericGreaterOrEqual NumericOperator = "GREATER_OR_EQUAL"
	NumericLessOrEqual    NumericOperator = "LESS_OR_EQUAL"
)

// BooleanOperator enumerates boolean predicate operators.
type BooleanOperator string

const (
	BooleanEqual    BooleanOperator = "EQUAL"
	BooleanNotEqual BooleanOperator = "NOT_EQUAL"
)

// ComplexOperator joins nested predicates.
type ComplexOperator string

const (
	ComplexAnd ComplexOperator = "AND"
	ComplexOr  ComplexOperator = "OR"
)

// FilterPredicateValue is either a literal or a reference to another
// resolved key's column expression ("dynamic value" in spec.md §4.B).
type FilterPredicateValue struct {
	Literal    interface{}
	DynamicKey *EntityKey
}

// IsDynamic reports whether the value binds by reference to another key.
func (v FilterPredicateValue) IsDynamic() bool {
	return v.DynamicKey != nil
}

// KeyFilterPredicate is the sum type of the four predicate payload shapes.
// Exactly one of the typed fields is populated, selected by Kind.
type KeyFilterPredicate struct {
	Kind PredicateKind

	String  *StringFilterPredicate
	Numeric *NumericFilterPredicate
	Boolean *BooleanFilterPredicate
	Complex *ComplexFilterPredicate
}

// PredicateKind discriminates KeyFilterPredicate's payload.
type PredicateKind string

const (
	PredicateString  PredicateKind = "STRING"
	PredicateNumeric PredicateKind = "NUMERIC"
	PredicateBoolean PredicateKind = "BOOLEAN"
	PredicateComplex PredicateKind = "COMPLEX"
)

// StringFilterPredicate compares a key's text cast value.
type StringFilterPredicate struct {
	Operator        StringOperator
	Value           FilterPredicateValue
	IgnoreCase      bool
}

// NumericFilterPredicate compares a key's numeric value.
type NumericFilterPredicate struct {
	Operator NumericOperator
	Value    FilterPredicateValue
}

// BooleanFilterPredicate compares a key's boolean value.
type BooleanFilterPredicate struct {
	Operator BooleanOperator
	Value    FilterPredicateValue
}

// ComplexFilterPredicate composes nested predicates with AND/OR.
type ComplexFilterPredicate struct {
	Operator ComplexOperator
	Operands []KeyFilterPredicate
}

// KeyFilter applies a typed predicate to the value addressed by Key.
type KeyFilter struct {
	Key       EntityKey
	ValueType ValueType
	Predicate KeyFilterPredicate
}
