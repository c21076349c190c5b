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

// Package models holds the value types the query compiler and executor
// consume: entity/relation identity, key and filter descriptions, page
// links, and the query/page result envelopes.
package models

import "github.com/google/uuid"

// EntityType is the closed set of addressable entity kinds. Each value
// corresponds to a physical row table sharing the conventional
// (id, created_time, tenant_id, customer_id?, name/title, ...) shape.
type EntityType string

const (
	EntityTypeTenant     EntityType = "TENANT"
	EntityTypeCustomer   EntityType = "CUSTOMER"
	EntityTypeUser       EntityType = "USER"
	EntityTypeDashboard  EntityType = "DASHBOARD"
	EntityTypeAsset      EntityType = "ASSET"
	EntityTypeDevice     EntityType = "DEVICE"
	EntityTypeEntityView EntityType = "ENTITY_VIEW"
	EntityTypeAlarm      EntityType = "ALARM"
	EntityTypeRuleChain  EntityType = "RULE_CHAIN"
	EntityTypeRuleNode   EntityType = "RULE_NODE"
)

// tableName maps an EntityType to its physical row table. Types with no
// dedicated table (e.g. RULE_NODE rows living in a parent's table) are
// intentionally absent; callers needing a table name for such types must
// reject the query earlier in the Filter Compiler.
var tableName = map[EntityType]string{
	EntityTypeTenant:     "tenant",
	EntityTypeCustomer:   "customer",
	EntityTypeUser:       "tb_user",
	EntityTypeDashboard:  "dashboard",
	EntityTypeAsset:      "asset",
	EntityTypeDevice:     "device",
	EntityTypeEntityView: "entity_view",
	EntityTypeRuleChain:  "rule_chain",
}

// TableName returns the physical row table for t, and false if t has no
// dedicated row table known to the engine.
func (t EntityType) TableName() (string, bool) {
	name, ok := tableName[t]
	return name, ok
}

// HasCustomerColumn reports whether the entity's row table carries a
// customer_id column usable for direct customer-scope permission checks.
func (t EntityType) HasCustomerColumn() bool {
	switch t {
	case EntityTypeDevice, EntityTypeAsset, EntityTypeEntityView, EntityTypeUser:
		return true
	default:
		return false
	}
}

// EntityID identifies a single row: its type and physical uuid.
type EntityID struct {
	Type EntityType
	ID   uuid.UUID
}

// IsZero reports whether id carries no identity at all.
func (id EntityID) IsZero() bool {
	return id.Type == "" && id.ID == uuid.Nil
}
