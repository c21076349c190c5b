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

// Package keyregistry holds the static, per-entity-type mapping from a
// logical ENTITY_FIELD key to the physical column expression that
// satisfies it, plus the fixed alarm-field registry. A key absent from a
// type's registry resolves to NULL::text rather than an error, so mixed
// entity-type result sets (relation traversals) never fail a whole plan
// over one column a sibling type doesn't have.
package keyregistry

import "github.com/carverauto/entityquery/pkg/models"

// commonFields is shared by every entity row table; each type may extend
// it with type-specific columns.
var commonFields = map[string]string{
	"createdTime":    "created_time",
	"additionalInfo": "additional_info",
	"name":           "name",
}

var typeFields = map[models.EntityType]map[string]string{
	models.EntityTypeTenant: {
		"title": "title",
	},
	models.EntityTypeCustomer: {
		"title": "title",
	},
	models.EntityTypeUser: {
		"email":     "email",
		"firstName": "first_name",
		"lastName":  "last_name",
	},
	models.EntityTypeDashboard: {
		"title": "title",
	},
	models.EntityTypeAsset: {
		"label": "label",
		"type":  "type",
	},
	models.EntityTypeDevice: {
		"label": "label",
		"type":  "type",
	},
	models.EntityTypeEntityView: {
		"type": "type",
	},
	models.EntityTypeRuleChain: {
		"type": "type",
	},
	models.EntityTypeRuleNode: {
		"type": "type",
	},
}

// Column resolves key to a physical column expression for entityType. The
// boolean return reports whether the key is known; callers project
// NULL::text for an unknown key rather than treating it as an error
// (spec §4.A).
func Column(entityType models.EntityType, key string) (string, bool) {
	if key == "entityType" {
		return "", false // entityType resolves to a literal, not a column; see EntityTypeLiteral.
	}

	if col, ok := commonFields[key]; ok {
		return col, true
	}

	if fields, ok := typeFields[entityType]; ok {
		if col, ok := fields[key]; ok {
			return col, true
		}
	}

	return "", false
}

// IsEntityTypeKey reports whether key is the special "entityType"
// pseudo-field, which resolves to a constant string literal equal to the
// row's own entity type rather than a column lookup.
func IsEntityTypeKey(key string) bool {
	return key == "entityType"
}

// alarmFields maps an ALARM_FIELD key to its physical column on the
// alarm row, or to the derived originator_name expression resolved by
// pkg/alarmquery (kept here as the canonical registry per spec §4.A).
var alarmFields = map[string]string{
	"createdTime":    "created_time",
	"ackTs":          "ack_ts",
	"ackTime":        "ack_ts",
	"clearTs":        "clear_ts",
	"clearTime":      "clear_ts",
	"startTs":        "start_ts",
	"startTime":      "start_ts",
	"endTs":          "end_ts",
	"endTime":        "end_ts",
	"details":        "details",
	"type":           "type",
	"severity":       "severity",
	"status":         "status",
	"originatorId":   "originator_id",
	"originatorType": "originator_type",
	"originatorName": "originator_name",
}

// AlarmColumn resolves an ALARM_FIELD key to its physical (or derived)
// column expression. The second return reports whether key is known.
func AlarmColumn(key string) (string, bool) {
	col, ok := alarmFields[key]
	return col, ok
}
