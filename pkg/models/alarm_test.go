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

package models

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusSetEmptyOmits(t *testing.T) {
	t.Parallel()

	set, omit := StatusSet(nil)
	assert.True(t, omit)
	assert.Nil(t, set)
}

func TestStatusSetAnyOmits(t *testing.T) {
	t.Parallel()

	_, omit := StatusSet([]AlarmSearchStatus{AlarmSearchActive, AlarmSearchAny})
	assert.True(t, omit)
}

func TestStatusSetActiveMapsToTwoStatuses(t *testing.T) {
	t.Parallel()

	set, omit := StatusSet([]AlarmSearchStatus{AlarmSearchActive})
	require.False(t, omit)
	assertSameStatuses(t, []AlarmStatus{AlarmActiveAck, AlarmActiveUnack}, set)
}

func TestStatusSetAckPlusUnackUnionsToFullDomainAndOmits(t *testing.T) {
	t.Parallel()

	// ACK ∪ UNACK = {ACTIVE_ACK, CLEARED_ACK, ACTIVE_UNACK, CLEARED_UNACK},
	// the full four-element domain, so the filter should be omitted
	// entirely per spec.md §4.H's status table.
	_, omit := StatusSet([]AlarmSearchStatus{AlarmSearchAck, AlarmSearchUnack})
	assert.True(t, omit)
}

func TestStatusSetActivePlusClearedUnionsToFullDomainAndOmits(t *testing.T) {
	t.Parallel()

	_, omit := StatusSet([]AlarmSearchStatus{AlarmSearchActive, AlarmSearchCleared})
	assert.True(t, omit)
}

func TestStatusSetClearedMapsToTwoStatuses(t *testing.T) {
	t.Parallel()

	set, omit := StatusSet([]AlarmSearchStatus{AlarmSearchCleared})
	require.False(t, omit)
	assertSameStatuses(t, []AlarmStatus{AlarmClearedAck, AlarmClearedUnack}, set)
}

func assertSameStatuses(t *testing.T, want, got []AlarmStatus) {
	t.Helper()

	wantCopy := append([]AlarmStatus(nil), want...)
	gotCopy := append([]AlarmStatus(nil), got...)

	sort.Slice(wantCopy, func(i, j int) bool { return wantCopy[i] < wantCopy[j] })
	sort.Slice(gotCopy, func(i, j int) bool { return gotCopy[i] < gotCopy[j] })

	assert.Equal(t, wantCopy, gotCopy)
}
