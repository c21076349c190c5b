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

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/carverauto/entityquery/pkg/db"
	"github.com/carverauto/entityquery/pkg/logger"
)

// EnvConfigLoader loads the Postgres connection Config straight from the
// process environment, for the container/systemd deployment style that
// never ships a local config file.
type EnvConfigLoader struct {
	log logger.Logger
}

// NewEnvConfigLoader builds an EnvConfigLoader that logs what it loads.
func NewEnvConfigLoader(log logger.Logger) *EnvConfigLoader {
	return &EnvConfigLoader{log: log}
}

// Load populates a db.Config from ENTITYQUERY_DB_* environment variables.
// HOST, DATABASE, and USERNAME are required. PORT defaults to 5432,
// APPLICATION_NAME to "entityquery", and SSL_MODE to "prefer"; every other
// unset field is left at its zero value.
func (e *EnvConfigLoader) Load() (*db.Config, error) {
	cfg := &db.Config{
		Host:            os.Getenv("ENTITYQUERY_DB_HOST"),
		Database:        os.Getenv("ENTITYQUERY_DB_DATABASE"),
		Username:        os.Getenv("ENTITYQUERY_DB_USERNAME"),
		Password:        os.Getenv("ENTITYQUERY_DB_PASSWORD"),
		ApplicationName: envOr("ENTITYQUERY_DB_APPLICATION_NAME", "entityquery"),
		SSLMode:         envOr("ENTITYQUERY_DB_SSL_MODE", "prefer"),
	}

	if cfg.Host == "" || cfg.Database == "" || cfg.Username == "" {
		return nil, fmt.Errorf("%s, %s, and %s must be set", "ENTITYQUERY_DB_HOST", "ENTITYQUERY_DB_DATABASE", "ENTITYQUERY_DB_USERNAME")
	}

	port, err := envInt("ENTITYQUERY_DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	cfg.Port = port

	maxConns, err := envInt32("ENTITYQUERY_DB_MAX_CONNECTIONS", 0)
	if err != nil {
		return nil, err
	}

	cfg.MaxConnections = maxConns

	minConns, err := envInt32("ENTITYQUERY_DB_MIN_CONNECTIONS", 0)
	if err != nil {
		return nil, err
	}

	cfg.MinConnections = minConns

	timeout, err := envDuration("ENTITYQUERY_DB_STATEMENT_TIMEOUT", 0)
	if err != nil {
		return nil, err
	}

	cfg.StatementTimeout = logger.Duration(timeout)

	if e.log != nil {
		e.log.Info().Str("host", cfg.Host).Str("database", cfg.Database).Msg("Loaded database configuration from environment")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return n, nil
}

func envInt32(key string, fallback int32) (int32, error) {
	n, err := envInt(key, int(fallback))
	if err != nil {
		return 0, err
	}

	return int32(n), nil
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return d, nil
}
