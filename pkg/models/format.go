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

import "strconv"

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

// formatFloat renders v in the shortest round-trippable decimal form,
// independent of locale (no thousands separators, '.' as the radix point).
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
