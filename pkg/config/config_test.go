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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "patchwatch.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad_Valid(t *testing.T) {
	path := writeConfig(t, `{
		"api": {"base_url": "https://ncentral.example.com", "token": "secret", "max_retries": 3},
		"scope": {"customer_name": "acme", "device_name": "SRV"},
		"report": {"include_healthy": true, "status_filter": "Failed", "output": "csv"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://ncentral.example.com", cfg.API.BaseURL)
	assert.Equal(t, 3, cfg.API.MaxRetries)
	assert.Equal(t, "acme", cfg.Scope.CustomerName)
	assert.True(t, cfg.Report.IncludeHealthy)
	assert.NotNil(t, cfg.Logging)
}

func TestLoad_EnvOverridesCredentials(t *testing.T) {
	t.Setenv(EnvAPIURL, "https://override.example.com")
	t.Setenv(EnvAPIToken, "env-token")

	path := writeConfig(t, `{"api": {"base_url": "https://file.example.com", "token": "file-token"}}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://override.example.com", cfg.API.BaseURL)
	assert.Equal(t, "env-token", cfg.API.Token)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/patchwatch.json")
	require.Error(t, err)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "missing base url", content: `{"api": {"token": "x"}}`},
		{name: "missing token", content: `{"api": {"base_url": "https://x"}}`},
		{name: "bad status filter", content: `{"api": {"base_url": "https://x", "token": "x"}, "report": {"status_filter": "Broken"}}`},
		{name: "bad output", content: `{"api": {"base_url": "https://x", "token": "x"}, "report": {"output": "xlsx"}}`},
		{name: "bad json", content: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvAPIURL, "")
			t.Setenv(EnvAPIToken, "")

			path := writeConfig(t, tt.content)

			_, err := Load(path)
			require.Error(t, err)
		})
	}
}
