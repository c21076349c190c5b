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

// Package queryctx accumulates the bound parameters and security context
// shared by every compiler in the plan-assembly pipeline. A single
// *Context is passed by reference through filter, relation, predicate,
// and projection compilation so every sub-plan contributes into one
// parameter list; no compiler ever concatenates a user literal into SQL.
package queryctx

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/carverauto/entityquery/pkg/models"
)

// Context carries the caller's permission scope plus the growing,
// positionally-ordered parameter list a plan binds against. Postgres
// placeholders are $1, $2, ... in bind order, matching pgx/v5's
// positional-argument convention.
type Context struct {
	Caller         models.Caller
	TargetType     models.EntityType
	args           []interface{}
	aliasCounter   int
}

// New creates a Context scoped to caller, recording the given entity
// type as TargetType. pkg/filter's permission fragments take their entity
// type as an argument and do not read TargetType.
func New(caller models.Caller, targetType models.EntityType) *Context {
	return &Context{Caller: caller, TargetType: targetType}
}

// Bind appends v to the parameter list and returns its placeholder,
// e.g. "$3".
func (c *Context) Bind(v interface{}) string {
	c.args = append(c.args, v)
	return fmt.Sprintf("$%d", len(c.args))
}

// BindUUID binds a uuid.UUID parameter.
func (c *Context) BindUUID(v uuid.UUID) string {
	return c.Bind(v)
}

// BindUUIDList binds a []uuid.UUID parameter for use with `= ANY($n)`.
func (c *Context) BindUUIDList(v []uuid.UUID) string {
	return c.Bind(v)
}

// BindStringList binds a []string parameter for use with `IN`/`= ANY($n)`.
func (c *Context) BindStringList(v []string) string {
	return c.Bind(v)
}

// Args returns the accumulated parameter slice in bind order, suitable
// for passing straight to pgx.Tx.Query/QueryRow.
func (c *Context) Args() []interface{} {
	return c.args
}

// NextAlias returns a fresh, monotonically increasing alias suffix for
// join/CTE aliases that must be unique within one plan (e.g. a_0, a_1 for
// successive attribute joins, or t_0, t_1 for telemetry joins).
func (c *Context) NextAlias() int {
	n := c.aliasCounter
	c.aliasCounter++

	return n
}
