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

package filter

import (
	"fmt"

	"github.com/carverauto/entityquery/pkg/models"
	"github.com/carverauto/entityquery/pkg/queryctx"
)

// PermissionFragment builds the "<perm>" conjunct spec.md §4.D requires on
// every candidate sub-select: always tenant-scoped, and additionally
// customer-scoped in a type-aware way when the caller carries a customer
// id. tableAlias, if non-empty, qualifies every column ("<alias>.col");
// pass "" when the fragment applies directly to an unaliased FROM clause.
func PermissionFragment(ctx *queryctx.Context, entityType models.EntityType, tableAlias string) string {
	col := func(name string) string {
		if tableAlias == "" {
			return name
		}

		return tableAlias + "." + name
	}

	tenantParam := ctx.BindUUID(ctx.Caller.TenantID)
	frag := fmt.Sprintf("%s = %s", col("tenant_id"), tenantParam)

	if !ctx.Caller.HasCustomerScope() {
		return frag
	}

	custParam := ctx.BindUUID(*ctx.Caller.CustomerID)

	switch entityType {
	case models.EntityTypeDevice, models.EntityTypeAsset, models.EntityTypeEntityView, models.EntityTypeUser:
		frag += fmt.Sprintf(" AND %s = %s", col("customer_id"), custParam)
	case models.EntityTypeCustomer:
		frag += fmt.Sprintf(" AND %s = %s", col("id"), custParam)
	case models.EntityTypeDashboard:
		frag += fmt.Sprintf(" AND %s = ANY(%s)", custParam, col("assigned_customers"))
	case models.EntityTypeTenant:
		// A customer-scoped caller can never see tenant rows (spec.md §4.D).
		frag += " AND FALSE"
	default:
		frag += " AND FALSE"
	}

	return frag
}
