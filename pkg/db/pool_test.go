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

package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoolRejectsNilConfig(t *testing.T) {
	t.Parallel()

	_, err := NewPool(context.Background(), nil, nil)
	require.ErrorIs(t, err, ErrFailedOpenDB)
}

func TestBuildTLSConfigNoTLSReturnsNil(t *testing.T) {
	t.Parallel()

	cfg, err := buildTLSConfig(&Config{})
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestBuildTLSConfigMissingFilesIsError(t *testing.T) {
	t.Parallel()

	_, err := buildTLSConfig(&Config{TLS: &TLSConfig{CertFile: "client.crt"}})
	require.ErrorIs(t, err, ErrFailedOpenDB)
}

func TestBuildTLSConfigUnreadableFilesIsError(t *testing.T) {
	t.Parallel()

	_, err := buildTLSConfig(&Config{TLS: &TLSConfig{
		CertFile: "/nonexistent/client.crt",
		KeyFile:  "/nonexistent/client.key",
		CAFile:   "/nonexistent/ca.crt",
	}})
	require.ErrorIs(t, err, ErrFailedOpenDB)
}
