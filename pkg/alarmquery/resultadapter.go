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

package alarmquery

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/carverauto/entityquery/pkg/models"
	"github.com/carverauto/entityquery/pkg/projection"
	"github.com/carverauto/entityquery/pkg/queryerr"
)

// adaptRows maps rows produced by a data Plan into *models.AlarmData,
// per spec.md §4.I: each row's entity fields/latest values are projected
// onto its resolved originator exactly as adaptRows in pkg/entityquery
// would for a plain entity query.
func adaptRows(rows pgx.Rows, binder *projection.Binder) ([]*models.AlarmData, error) {
	var out []*models.AlarmData

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", queryerr.ErrStorageError, err)
		}

		byName := make(map[string]interface{}, len(values))

		for i, fd := range rows.FieldDescriptions() {
			byName[string(fd.Name)] = values[i]
		}

		resolvedID, err := asUUID(byName["id"])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", queryerr.ErrStorageError, err)
		}

		resolvedType, _ := byName["entity_type"].(string)
		resolvedEntity := models.EntityID{Type: models.EntityType(resolvedType), ID: resolvedID}

		alarmID, err := asUUID(byName["alarm_id"])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", queryerr.ErrStorageError, err)
		}

		originatorID, err := asUUID(byName["originator_id"])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", queryerr.ErrStorageError, err)
		}

		originatorType, _ := byName["originator_type"].(string)
		originatorName, _ := byName["originator_name"].(string)

		alarm := &models.AlarmData{
			EntityData: models.EntityData{
				EntityID: resolvedEntity,
				Latest:   make(map[models.EntityKeyType]map[string]models.TsValue),
			},
			AlarmID:        models.EntityID{Type: models.EntityTypeAlarm, ID: alarmID},
			OriginatorID:   models.EntityID{Type: models.EntityType(originatorType), ID: originatorID},
			OriginatorName: originatorName,
			ResolvedEntity: resolvedEntity,
			Type:           stringOf(byName["alarm_type"]),
			Severity:       stringOf(byName["alarm_severity"]),
			Status:         models.AlarmStatus(stringOf(byName["alarm_status"])),
			CreatedTime:    int64Of(byName["alarm_created_time"]),
			AckTs:          optionalInt64(byName["alarm_ack_ts"]),
			ClearTs:        optionalInt64(byName["alarm_clear_ts"]),
			StartTs:        int64Of(byName["alarm_start_ts"]),
			EndTs:          int64Of(byName["alarm_end_ts"]),
			Details:        stringOf(byName["alarm_details"]),
		}

		for _, fr := range binder.Results() {
			if fr.Latest != nil {
				alarm.Set(fr.Key.Type, fr.Key.Key, latestValue(byName, fr.Latest))
				continue
			}

			if fr.TextAlias == "s.entity_type" {
				alarm.Set(fr.Key.Type, fr.Key.Key, models.TsValue{Value: resolvedType})
				continue
			}

			v := byName[fr.TextAlias]

			text, ok := v.(string)
			if !ok {
				alarm.Set(fr.Key.Type, fr.Key.Key, models.TsValue{})
				continue
			}

			alarm.Set(fr.Key.Type, fr.Key.Key, models.TsValue{Value: text})
		}

		out = append(out, alarm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", queryerr.ErrStorageError, err)
	}

	return out, nil
}

// latestValue mirrors pkg/entityquery's latestValue; duplicated rather
// than shared since the two packages' result row shapes are otherwise
// unrelated and the helper is a handful of lines.
func latestValue(byName map[string]interface{}, cols *projection.LatestColumns) models.TsValue {
	cell := models.KvValue{}

	if b, ok := byName[cols.BoolAlias].(bool); ok {
		cell.BoolV = &b
	}

	if s, ok := byName[cols.StrAlias].(string); ok {
		cell.StrV = &s
	}

	if l, ok := int64FromAny(byName[cols.LongAlias]); ok {
		cell.LongV = &l
	}

	if d, ok := float64FromAny(byName[cols.DblAlias]); ok {
		cell.DblV = &d
	}

	if j, ok := byName[cols.JSONAlias].(string); ok {
		cell.JSONV = &j
	}

	ts, tsOK := int64FromAny(byName[cols.TsAlias])
	cell.LastUpdateTs = ts
	cell.Present = tsOK

	return models.TsValue{Value: cell.Stringify(), Ts: ts}
}

func stringOf(v interface{}) string {
	s, _ := v.(string)
	return s
}

func int64Of(v interface{}) int64 {
	n, _ := int64FromAny(v)
	return n
}

func optionalInt64(v interface{}) *int64 {
	n, ok := int64FromAny(v)
	if !ok {
		return nil
	}

	return &n
}

func int64FromAny(v interface{}) (int64, bool) {
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

func float64FromAny(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	default:
		return 0, false
	}
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
