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

package entityquery

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carverauto/entityquery/pkg/models"
	"github.com/carverauto/entityquery/pkg/projection"
	"github.com/carverauto/entityquery/pkg/queryerr"
)

// adaptRows maps rows produced by a data Plan into *models.EntityData,
// per spec.md §4.I: every returned entity's latest maps contain exactly
// the keys requested, never an unrequested one, with empty-value entries
// where no backing row matched the LEFT JOIN.
func adaptRows(rows pgx.Rows, binder *projection.Binder) ([]*models.EntityData, error) {
	var out []*models.EntityData

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", queryerr.ErrStorageError, err)
		}

		byName := make(map[string]interface{}, len(values))

		for i, fd := range rows.FieldDescriptions() {
			byName[string(fd.Name)] = values[i]
		}

		id, err := asUUID(byName["id"])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", queryerr.ErrStorageError, err)
		}

		entityType, _ := byName["entity_type"].(string)

		data := models.NewEntityData(models.EntityID{Type: models.EntityType(entityType), ID: id})

		for _, fr := range binder.Results() {
			if fr.Latest != nil {
				data.Set(fr.Key.Type, fr.Key.Key, latestValue(byName, fr.Latest))
				continue
			}

			if fr.TextAlias == "s.entity_type" {
				data.Set(fr.Key.Type, fr.Key.Key, models.TsValue{Value: entityType})
				continue
			}

			v := byName[fr.TextAlias]

			text, ok := v.(string)
			if !ok {
				data.Set(fr.Key.Type, fr.Key.Key, models.TsValue{})
				continue
			}

			data.Set(fr.Key.Type, fr.Key.Key, models.TsValue{Value: text})
		}

		out = append(out, data)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", queryerr.ErrStorageError, err)
	}

	return out, nil
}

// latestValue reassembles a KvValue from its six scanned columns and
// stringifies it, per spec.md §4.I's value-stringification contract.
func latestValue(byName map[string]interface{}, cols *projection.LatestColumns) models.TsValue {
	cell := models.KvValue{}

	if b, ok := byName[cols.BoolAlias].(bool); ok {
		cell.BoolV = &b
	}

	if s, ok := byName[cols.StrAlias].(string); ok {
		cell.StrV = &s
	}

	if l, ok := asInt64(byName[cols.LongAlias]); ok {
		cell.LongV = &l
	}

	if d, ok := asFloat64(byName[cols.DblAlias]); ok {
		cell.DblV = &d
	}

	if j, ok := byName[cols.JSONAlias].(string); ok {
		cell.JSONV = &j
	}

	ts, tsOK := asInt64(byName[cols.TsAlias])
	cell.LastUpdateTs = ts
	cell.Present = tsOK

	return models.TsValue{Value: cell.Stringify(), Ts: ts}
}

func asUUID(v interface{}) (uuid.UUID, error) {
	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case [16]byte:
		return uuid.UUID(t), nil
	case string:
		return uuid.Parse(t)
	default:
		return uuid.UUID{}, fmt.Errorf("unexpected id column type %T", v)
	}
}

func asInt64(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case int:
		return int64(t), true
	default:
		return 0, false
	}
}

func asFloat64(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	default:
		return 0, false
	}
}
