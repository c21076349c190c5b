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

// EntityKeyType distinguishes what a key's string name addresses.
type EntityKeyType string

const (
	KeyTypeEntityField     EntityKeyType = "ENTITY_FIELD"
	KeyTypeAttribute       EntityKeyType = "ATTRIBUTE"
	KeyTypeClientAttribute EntityKeyType = "CLIENT_ATTRIBUTE"
	KeyTypeServerAttribute EntityKeyType = "SERVER_ATTRIBUTE"
	KeyTypeSharedAttribute EntityKeyType = "SHARED_ATTRIBUTE"
	KeyTypeTimeSeries      EntityKeyType = "TIME_SERIES"
	KeyTypeAlarmField      EntityKeyType = "ALARM_FIELD"
)

// IsAttribute reports whether kt addresses some attribute_kv scope.
func (kt EntityKeyType) IsAttribute() bool {
	switch kt {
	case KeyTypeAttribute, KeyTypeClientAttribute, KeyTypeServerAttribute, KeyTypeSharedAttribute:
		return true
	default:
		return false
	}
}

// Scopes returns the attribute_kv scopes this key type searches, in
// precedence order (first wins). KeyTypeAttribute searches all three
// scopes with CLIENT > SHARED > SERVER precedence (spec.md §9 open
// question (b)).
func (kt EntityKeyType) Scopes() []AttributeScope {
	switch kt {
	case KeyTypeAttribute:
		return []AttributeScope{ScopeClient, ScopeShared, ScopeServer}
	case KeyTypeClientAttribute:
		return []AttributeScope{ScopeClient}
	case KeyTypeServerAttribute:
		return []AttributeScope{ScopeServer}
	case KeyTypeSharedAttribute:
		return []AttributeScope{ScopeShared}
	default:
		return nil
	}
}

// EntityKey addresses either an entity column, an attribute, a telemetry
// value, or an alarm column, by logical name.
type EntityKey struct {
	Type EntityKeyType
	Key  string
}
