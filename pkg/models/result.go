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

// TsValue is a single projected value with its timestamp, as rendered in
// an EntityData's latest maps.
type TsValue struct {
	Value string
	Ts    int64
}

// EntityData is one projected, enriched row: its identity plus, per
// EntityKeyType, the exact set of requested keys mapped to their rendered
// value (spec.md §3 invariant 2, §4.I). ENTITY_FIELD projections live under
// KeyTypeEntityField alongside attribute/telemetry projections.
type EntityData struct {
	EntityID EntityID
	Latest   map[EntityKeyType]map[string]TsValue
}

// NewEntityData builds an EntityData with empty latest maps ready to
// receive projected values.
func NewEntityData(id EntityID) *EntityData {
	return &EntityData{
		EntityID: id,
		Latest:   make(map[EntityKeyType]map[string]TsValue),
	}
}

// Set records value under (keyType, key), creating the inner map lazily.
func (d *EntityData) Set(keyType EntityKeyType, key string, value TsValue) {
	m, ok := d.Latest[keyType]
	if !ok {
		m = make(map[string]TsValue)
		d.Latest[keyType] = m
	}

	m[key] = value
}

// AlarmData extends EntityData with the alarm's own columns and the
// propagation-resolved entity id the alarm was matched through.
type AlarmData struct {
	EntityData

	AlarmID         EntityID
	OriginatorID    EntityID
	OriginatorName  string
	ResolvedEntity  EntityID // the id from orderedEntityIds this alarm matched, direct or via propagation
	Type            string
	Severity        string
	Status          AlarmStatus
	CreatedTime     int64
	AckTs           *int64
	ClearTs         *int64
	StartTs         int64
	EndTs           int64
	Details         string
}
