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

// SortDirection is the direction of a page link's sort order.
type SortDirection string

const (
	SortAscending  SortDirection = "ASC"
	SortDescending SortDirection = "DESC"
)

// EntitySortOrder names the key to sort on and the direction.
type EntitySortOrder struct {
	Key       EntityKey
	Direction SortDirection
}

// EntityDataPageLink carries pagination, sort, and text-search for an
// entity data query.
type EntityDataPageLink struct {
	PageSize   int
	Page       int
	TextSearch string
	SortOrder  *EntitySortOrder
	Dynamic    bool
}

// EntityDataQuery selects entities via Filter, optionally narrows them with
// KeyFilters, and projects EntityFields/LatestValues for each surviving row.
type EntityDataQuery struct {
	Filter       EntityFilter
	PageLink     EntityDataPageLink
	EntityFields []EntityKey
	LatestValues []EntityKey
	KeyFilters   []KeyFilter
}

// EntityCountQuery selects entities via Filter, optionally narrowed with
// KeyFilters, and reports only their count.
type EntityCountQuery struct {
	Filter     EntityFilter
	KeyFilters []KeyFilter
}

// PageData is the generic paginated result envelope.
type PageData[T any] struct {
	Data          []T
	TotalPages    int
	TotalElements int64
	HasNext       bool
}

// NewPageData builds a PageData, computing TotalPages and HasNext from
// totalElements/pageSize/page per spec.md §3 invariant 3.
func NewPageData[T any](data []T, totalElements int64, page, pageSize int) PageData[T] {
	totalPages := 1
	if pageSize > 0 {
		totalPages = int((totalElements + int64(pageSize) - 1) / int64(pageSize))
	}

	hasNext := false
	if pageSize > 0 {
		hasNext = int64(page+1)*int64(pageSize) < totalElements
	}

	return PageData[T]{
		Data:          data,
		TotalPages:    totalPages,
		TotalElements: totalElements,
		HasNext:       hasNext,
	}
}
