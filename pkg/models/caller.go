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

// Caller is the tenant/customer scope the engine re-applies regardless of
// what the controller layer has already checked (spec.md §3 invariant 1,
// §6).
type Caller struct {
	TenantID   uuid.UUID
	CustomerID *uuid.UUID
}

// HasCustomerScope reports whether the caller is scoped to a single
// customer (a CUSTOMER_USER), as opposed to a full tenant admin.
func (c Caller) HasCustomerScope() bool {
	return c.CustomerID != nil && *c.CustomerID != uuid.Nil
}
