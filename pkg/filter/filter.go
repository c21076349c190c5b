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

// Package filter compiles each EntityFilter variant into a candidate
// sub-select yielding (id, entity_type[, level]) rows, per spec.md §4.D.
// Relation-based variants delegate to pkg/relation for the recursive CTE
// and wrap its candidate select with any subtype narrowing the variant
// adds.
package filter

import (
	"fmt"

	"github.com/carverauto/entityquery/pkg/models"
	"github.com/carverauto/entityquery/pkg/queryctx"
	"github.com/carverauto/entityquery/pkg/queryerr"
	"github.com/carverauto/entityquery/pkg/relation"
)

// Candidate is a compiled filter: SQL is a self-contained sub-select
// producing (id, entity_type[, level]); CTEs holds zero or more
// "WITH RECURSIVE" bodies (without the leading "WITH RECURSIVE" keyword)
// the caller must prepend to the final statement. HasLevel reports
// whether the candidate projects a level column (relation-based filters),
// which the Plan Assembler uses to pick the default traversal-order sort.
type Candidate struct {
	SQL      string
	CTEs     []string
	HasLevel bool
}

// Compile dispatches f to its variant compiler.
func Compile(ctx *queryctx.Context, f models.EntityFilter) (*Candidate, error) {
	switch f.Kind {
	case models.FilterEntityList:
		if f.EntityList == nil {
			return nil, missingPayload(f.Kind)
		}

		return compileEntityList(ctx, f.EntityList)
	case models.FilterSingleEntity:
		if f.SingleEntity == nil {
			return nil, missingPayload(f.Kind)
		}

		return compileSingleEntity(ctx, f.SingleEntity)
	case models.FilterEntityType:
		if f.EntityTypeF == nil {
			return nil, missingPayload(f.Kind)
		}

		return compileEntityType(ctx, f.EntityTypeF)
	case models.FilterEntityName:
		if f.EntityName == nil {
			return nil, missingPayload(f.Kind)
		}

		return compileEntityName(ctx, f.EntityName)
	case models.FilterEntityViewType:
		if f.EntityViewType == nil {
			return nil, missingPayload(f.Kind)
		}

		return compileSubtypeName(ctx, models.EntityTypeEntityView, f.EntityViewType.ViewType, f.EntityViewType.NamePrefix)
	case models.FilterDeviceType:
		if f.DeviceType == nil {
			return nil, missingPayload(f.Kind)
		}

		return compileSubtypeName(ctx, models.EntityTypeDevice, f.DeviceType.DeviceType, f.DeviceType.NameFilter)
	case models.FilterAssetType:
		if f.AssetType == nil {
			return nil, missingPayload(f.Kind)
		}

		return compileSubtypeName(ctx, models.EntityTypeAsset, f.AssetType.AssetType, f.AssetType.NameFilter)
	case models.FilterRelationsQuery:
		if f.RelationsQuery == nil {
			return nil, missingPayload(f.Kind)
		}

		return compileRelationsQuery(ctx, f.RelationsQuery)
	case models.FilterDeviceSearch:
		if f.DeviceSearch == nil {
			return nil, missingPayload(f.Kind)
		}

		s := f.DeviceSearch

		return compileTypedSearch(ctx, s.RootEntity, s.Direction, s.MaxLevel, s.RelationType, models.EntityTypeDevice, s.DeviceTypes)
	case models.FilterAssetSearch:
		if f.AssetSearch == nil {
			return nil, missingPayload(f.Kind)
		}

		s := f.AssetSearch

		return compileTypedSearch(ctx, s.RootEntity, s.Direction, s.MaxLevel, s.RelationType, models.EntityTypeAsset, s.AssetTypes)
	case models.FilterEntityViewSearch:
		if f.EntityViewSearch == nil {
			return nil, missingPayload(f.Kind)
		}

		s := f.EntityViewSearch

		return compileTypedSearch(ctx, s.RootEntity, s.Direction, s.MaxLevel, s.RelationType, models.EntityTypeEntityView, s.EntityViewTypes)
	default:
		return nil, fmt.Errorf("%w: unknown filter variant %q", queryerr.ErrInvalidQuery, f.Kind)
	}
}

func missingPayload(kind models.FilterKind) error {
	return fmt.Errorf("%w: filter kind %q declared with no payload", queryerr.ErrInvalidQuery, kind)
}

func tableFor(ctx *queryctx.Context, t models.EntityType) (string, error) {
	table, ok := t.TableName()
	if !ok {
		return "", fmt.Errorf("%w: entity type %q has no row table", queryerr.ErrInvalidQuery, t)
	}

	return table, nil
}

func compileEntityList(ctx *queryctx.Context, f *models.EntityListFilter) (*Candidate, error) {
	table, err := tableFor(ctx, f.EntityType)
	if err != nil {
		return nil, err
	}

	perm := PermissionFragment(ctx, f.EntityType, "")
	idsParam := ctx.BindUUIDList(f.IDs)

	sql := fmt.Sprintf("SELECT id, '%s'::text AS entity_type FROM %s WHERE id = ANY(%s) AND %s",
		f.EntityType, table, idsParam, perm)

	return &Candidate{SQL: sql}, nil
}

func compileSingleEntity(ctx *queryctx.Context, f *models.SingleEntityFilter) (*Candidate, error) {
	if f.Entity.IsZero() {
		return nil, fmt.Errorf("%w: single entity filter requires a non-zero entity", queryerr.ErrInvalidQuery)
	}

	table, err := tableFor(ctx, f.Entity.Type)
	if err != nil {
		return nil, err
	}

	idParam := ctx.BindUUID(f.Entity.ID)
	perm := PermissionFragment(ctx, f.Entity.Type, "")

	sql := fmt.Sprintf("SELECT id, '%s'::text AS entity_type FROM %s WHERE id = %s AND %s",
		f.Entity.Type, table, idParam, perm)

	return &Candidate{SQL: sql}, nil
}

func compileEntityType(ctx *queryctx.Context, f *models.EntityTypeFilter) (*Candidate, error) {
	table, err := tableFor(ctx, f.EntityType)
	if err != nil {
		return nil, err
	}

	perm := PermissionFragment(ctx, f.EntityType, "")

	sql := fmt.Sprintf("SELECT id, '%s'::text AS entity_type FROM %s WHERE %s", f.EntityType, table, perm)

	return &Candidate{SQL: sql}, nil
}

func compileEntityName(ctx *queryctx.Context, f *models.EntityNameFilter) (*Candidate, error) {
	table, err := tableFor(ctx, f.EntityType)
	if err != nil {
		return nil, err
	}

	perm := PermissionFragment(ctx, f.EntityType, "")
	prefixParam := ctx.Bind(f.NamePrefix)

	sql := fmt.Sprintf(
		"SELECT id, '%s'::text AS entity_type FROM %s WHERE %s AND LOWER(name) LIKE LOWER(%s || '%%')",
		f.EntityType, table, perm, prefixParam)

	return &Candidate{SQL: sql}, nil
}

// compileSubtypeName backs DeviceTypeFilter/AssetTypeFilter/
// EntityViewTypeFilter, which share the same "type = :t AND name prefix"
// shape (spec.md §4.D).
func compileSubtypeName(ctx *queryctx.Context, entityType models.EntityType, subtype, namePrefix string) (*Candidate, error) {
	table, err := tableFor(ctx, entityType)
	if err != nil {
		return nil, err
	}

	perm := PermissionFragment(ctx, entityType, "")
	typeParam := ctx.Bind(subtype)
	prefixParam := ctx.Bind(namePrefix)

	sql := fmt.Sprintf(
		"SELECT id, '%s'::text AS entity_type FROM %s WHERE %s AND type = %s AND LOWER(name) LIKE LOWER(%s || '%%')",
		entityType, table, perm, typeParam, prefixParam)

	return &Candidate{SQL: sql}, nil
}

// relationTypesAndEntityTypes flattens RelationsQueryFilter.Filters into
// the union of relation types a hop may cross and the union of entity
// types the final result is narrowed to, per spec.md §4.D's "optional
// entity-type/relation-type post-filter".
func relationTypesAndEntityTypes(filters []models.RelationEntityTypeFilter) ([]string, []models.EntityType) {
	var relationTypes []string

	var entityTypes []models.EntityType

	for _, f := range filters {
		if f.RelationType != "" {
			relationTypes = append(relationTypes, f.RelationType)
		}

		entityTypes = append(entityTypes, f.EntityTypes...)
	}

	return relationTypes, entityTypes
}

func compileRelationsQuery(ctx *queryctx.Context, f *models.RelationsQueryFilter) (*Candidate, error) {
	relationTypes, entityTypes := relationTypesAndEntityTypes(f.Filters)

	walk, err := relation.Build(ctx, f.RootEntity, f.Direction, f.MaxLevel, f.FetchLastLevelOnly, relationTypes, entityTypes)
	if err != nil {
		return nil, err
	}

	return &Candidate{
		SQL:      walk.CandidateSelect,
		CTEs:     []string{walk.CTEBody},
		HasLevel: true,
	}, nil
}

// compileTypedSearch backs DeviceSearchQueryFilter/AssetSearchQueryFilter/
// EntityViewSearchQueryFilter: a single-relation-type traversal fixed to
// one entity type, further narrowed by the type-table's own "type" column.
func compileTypedSearch(
	ctx *queryctx.Context,
	root models.EntityID,
	direction models.RelationDirection,
	maxLevel int,
	relationType string,
	targetType models.EntityType,
	subtypes []string,
) (*Candidate, error) {
	walk, err := relation.Build(ctx, root, direction, maxLevel, false, []string{relationType}, []models.EntityType{targetType})
	if err != nil {
		return nil, err
	}

	if len(subtypes) == 0 {
		return &Candidate{SQL: walk.CandidateSelect, CTEs: []string{walk.CTEBody}, HasLevel: true}, nil
	}

	table, err := tableFor(ctx, targetType)
	if err != nil {
		return nil, err
	}

	subtypesParam := ctx.BindStringList(subtypes)

	sql := fmt.Sprintf(
		"SELECT w.id, w.entity_type, w.level FROM (%s) w JOIN %s t ON t.id = w.id WHERE t.type = ANY(%s)",
		walk.CandidateSelect, table, subtypesParam)

	return &Candidate{SQL: sql, CTEs: []string{walk.CTEBody}, HasLevel: true}, nil
}
