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

import "github.com/google/uuid"

// FilterKind discriminates the EntityFilter sum type the Filter Compiler
// dispatches on (spec.md §4.D, §9 "tagged-variant filters").
type FilterKind string

const (
	FilterEntityList       FilterKind = "entityList"
	FilterSingleEntity     FilterKind = "singleEntity"
	FilterEntityType       FilterKind = "entityType"
	FilterEntityName       FilterKind = "entityName"
	FilterEntityViewType   FilterKind = "entityViewType"
	FilterDeviceType       FilterKind = "deviceType"
	FilterAssetType        FilterKind = "assetType"
	FilterRelationsQuery   FilterKind = "relationsQuery"
	FilterDeviceSearch     FilterKind = "deviceSearch"
	FilterAssetSearch      FilterKind = "assetSearch"
	FilterEntityViewSearch FilterKind = "entityViewSearch"
)

// EntityFilter is the closed sum of filter variants an EntityDataQuery or
// EntityCountQuery can carry. Exactly one of the typed fields matching Kind
// is populated.
type EntityFilter struct {
	Kind FilterKind

	EntityList       *EntityListFilter
	SingleEntity     *SingleEntityFilter
	EntityTypeF      *EntityTypeFilter
	EntityName       *EntityNameFilter
	EntityViewType   *EntityViewTypeFilter
	DeviceType       *DeviceTypeFilter
	AssetType        *AssetTypeFilter
	RelationsQuery   *RelationsQueryFilter
	DeviceSearch     *DeviceSearchQueryFilter
	AssetSearch      *AssetSearchQueryFilter
	EntityViewSearch *EntityViewSearchQueryFilter
}

// EntityListFilter selects an explicit id list of one entity type.
type EntityListFilter struct {
	EntityType EntityType
	IDs        []uuid.UUID
}

// SingleEntityFilter selects exactly one entity.
type SingleEntityFilter struct {
	Entity EntityID
}

// EntityTypeFilter selects every row of one entity type.
type EntityTypeFilter struct {
	EntityType EntityType
}

// EntityNameFilter selects rows of one entity type whose name starts with
// NamePrefix (case-insensitive).
type EntityNameFilter struct {
	EntityType EntityType
	NamePrefix string
}

// EntityViewTypeFilter selects ENTITY_VIEW rows of a given view subtype
// whose name starts with NamePrefix.
type EntityViewTypeFilter struct {
	ViewType   string
	NamePrefix string
}

// DeviceTypeFilter selects DEVICE rows of a given device "type" column
// value whose name matches NameFilter (prefix).
type DeviceTypeFilter struct {
	DeviceType string
	NameFilter string
}

// AssetTypeFilter selects ASSET rows of a given asset "type" column value
// whose name matches NameFilter (prefix).
type AssetTypeFilter struct {
	AssetType  string
	NameFilter string
}

// RelationsQueryFilter walks the relation table from RootEntity, producing
// the candidate set described in spec.md §4.E.
type RelationsQueryFilter struct {
	RootEntity         EntityID
	Direction          RelationDirection
	MaxLevel           int // 0 means unbounded, spec.md §9 open question (c)
	FetchLastLevelOnly bool
	Filters            []RelationEntityTypeFilter
}

// DeviceSearchQueryFilter is a RelationsQueryFilter specialized to a single
// relation type and a fixed {DEVICE} entity-type set, further narrowed to
// DeviceTypes.
type DeviceSearchQueryFilter struct {
	RootEntity   EntityID
	Direction    RelationDirection
	MaxLevel     int
	RelationType string
	DeviceTypes  []string
}

// AssetSearchQueryFilter mirrors DeviceSearchQueryFilter for {ASSET}.
type AssetSearchQueryFilter struct {
	RootEntity   EntityID
	Direction    RelationDirection
	MaxLevel     int
	RelationType string
	AssetTypes   []string
}

// EntityViewSearchQueryFilter mirrors DeviceSearchQueryFilter for
// {ENTITY_VIEW}.
type EntityViewSearchQueryFilter struct {
	RootEntity      EntityID
	Direction       RelationDirection
	MaxLevel        int
	RelationType    string
	EntityViewTypes []string
}
