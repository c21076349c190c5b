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

// RelationTypeGroup partitions the relation table into independent
// namespaces so that, e.g., an ALARM-group edge and a COMMON-group edge
// between the same two entities never collide.
type RelationTypeGroup string

const (
	RelationGroupCommon     RelationTypeGroup = "COMMON"
	RelationGroupAlarm      RelationTypeGroup = "ALARM"
	RelationGroupDashboard  RelationTypeGroup = "DASHBOARD"
	RelationGroupRuleChain  RelationTypeGroup = "RULE_CHAIN"
)

// RelationDirection is the direction a traversal walks relation edges in.
type RelationDirection string

const (
	// DirectionFrom walks edges outbound from the root (root is "from").
	DirectionFrom RelationDirection = "FROM"
	// DirectionTo walks edges inbound to the root (root is "to").
	DirectionTo RelationDirection = "TO"
)

// EntityRelation is a directed typed edge, primary-keyed on the full
// (from, to, type, group) tuple.
type EntityRelation struct {
	From  EntityID
	To    EntityID
	Type  string
	Group RelationTypeGroup
}

// RelationEntityTypeFilter names a relation type a traversal hop may cross
// and entity types a result may have. A traversal's filters are combined by
// union, not per pair: every hop is restricted to the union of all non-empty
// RelationType values, and the result set to the union of all EntityTypes.
// An empty EntityTypes adds no types to that union.
type RelationEntityTypeFilter struct {
	RelationType string
	EntityTypes  []EntityType
}
