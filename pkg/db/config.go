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

// Package db wires the Postgres connection pool the query engine executes
// plans against, and the generic read-only transaction helper both the
// entity and alarm engines share.
package db

import (
	"github.com/carverauto/entityquery/pkg/logger"
)

// TLSConfig names the client certificate/key/CA files for mutual TLS to
// Postgres. A nil Config.TLS means "no TLS material configured"; SSLMode
// alone still controls whether the driver negotiates TLS. A non-nil
// TLSConfig must name all three files.
type TLSConfig struct {
	CertFile string `json:"cert_file,omitempty"`
	KeyFile  string `json:"key_file,omitempty"`
	CAFile   string `json:"ca_file,omitempty"`
	CertDir  string `json:"cert_dir,omitempty"`
}

// Config describes the Postgres connection the engine executes plans
// against.
type Config struct {
	Host               string            `json:"host"`
	Port               int               `json:"port"`
	Database           string            `json:"database"`
	Username           string            `json:"username"`
	Password           string            `json:"password" sensitive:"true"`
	ApplicationName    string            `json:"application_name,omitempty"`
	SSLMode            string            `json:"ssl_mode,omitempty"`
	TLS                *TLSConfig        `json:"tls,omitempty"`
	MaxConnections     int32             `json:"max_connections,omitempty"`
	MinConnections     int32             `json:"min_connections,omitempty"`
	MaxConnLifetime    logger.Duration   `json:"max_conn_lifetime,omitempty"`
	HealthCheckPeriod  logger.Duration   `json:"health_check_period,omitempty"`
	// StatementTimeout bounds every statement the engine issues, including
	// the relation-walk CTE (spec.md §5); default applied by NewPool is 30s.
	StatementTimeout   logger.Duration   `json:"statement_timeout,omitempty"`
	ExtraRuntimeParams map[string]string `json:"runtime_params,omitempty"`
}

// DefaultStatementTimeoutMs is the statement_timeout applied when Config
// leaves StatementTimeout unset.
const DefaultStatementTimeoutMs = 30_000
