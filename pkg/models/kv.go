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

// AttributeScope is one of the three scopes an attribute_kv row can be
// written under.
type AttributeScope string

const (
	ScopeClient AttributeScope = "CLIENT_SCOPE"
	ScopeServer AttributeScope = "SERVER_SCOPE"
	ScopeShared AttributeScope = "SHARED_SCOPE"
)

// KvValue is the five-variant value cell shared by attribute_kv and
// ts_kv_latest rows: at most one field is non-nil. LastUpdateTs is the row's
// last_update_ts (attributes) or ts (telemetry), in epoch milliseconds.
type KvValue struct {
	BoolV        *bool
	StrV         *string
	LongV        *int64
	DblV         *float64
	JSONV        *string
	LastUpdateTs int64
	Present      bool // false when the LEFT JOIN matched no row
}

// Stringify renders the cell's non-null value to its canonical text form,
// per the Result Adapter's value-stringification contract: numeric cells
// in locale-independent canonical form, booleans as "true"/"false", JSON
// as its canonical text, and an empty string when no cell is present.
func (v KvValue) Stringify() string {
	switch {
	case !v.Present:
		return ""
	case v.StrV != nil:
		return *v.StrV
	case v.BoolV != nil:
		if *v.BoolV {
			return "true"
		}

		return "false"
	case v.LongV != nil:
		return formatInt(*v.LongV)
	case v.DblV != nil:
		return formatFloat(*v.DblV)
	case v.JSONV != nil:
		return *v.JSONV
	default:
		return ""
	}
}
