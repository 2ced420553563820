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

// Package config loads the patchwatch run configuration. The configuration
// is constructed once at startup and passed by reference into every
// component; no component reads ambient process state after that.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/carverauto/patchwatch/pkg/logger"
	"github.com/carverauto/patchwatch/pkg/report"
	"github.com/carverauto/patchwatch/pkg/scope"
)

const (
	// EnvAPIURL and EnvAPIToken override the credential pair so it can be
	// kept out of the config file.
	EnvAPIURL   = "PATCHWATCH_API_URL"
	EnvAPIToken = "PATCHWATCH_API_TOKEN"
)

var (
	errMissingBaseURL = errors.New("api.base_url is required (or set " + EnvAPIURL + ")")
	errMissingToken   = errors.New("api.token is required (or set " + EnvAPIToken + ")")
)

// APIConfig configures the API client.
type APIConfig struct {
	BaseURL           string  `json:"base_url"`
	Token             string  `json:"token"`
	MaxRetries        int     `json:"max_retries,omitempty"`
	MaxPages          int     `json:"max_pages,omitempty"`
	RequestsPerSecond float64 `json:"requests_per_second,omitempty"`
}

// ReportConfig configures aggregation and output.
type ReportConfig struct {
	IncludeHealthy bool   `json:"include_healthy"`
	StatusFilter   string `json:"status_filter,omitempty"`
	Output         string `json:"output,omitempty"` // "json" (default) or "csv"
}

// Config is the complete run configuration.
type Config struct {
	API     APIConfig      `json:"api"`
	Scope   scope.Filter   `json:"scope"`
	Report  ReportConfig   `json:"report"`
	Logging *logger.Config `json:"logging,omitempty"`
}

// Load reads a JSON config file, applies environment overrides for the
// credential pair, and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON from '%s': %w", path, err)
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.API.BaseURL = v
	}

	if v := os.Getenv(EnvAPIToken); v != "" {
		cfg.API.Token = v
	}

	if cfg.Logging == nil {
		cfg.Logging = logger.DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errMissingBaseURL
	}

	if c.API.Token == "" {
		return errMissingToken
	}

	if _, err := report.ParseStatusFilter(c.Report.StatusFilter); err != nil {
		return err
	}

	switch c.Report.Output {
	case "", "json", "csv":
	default:
		return fmt.Errorf("invalid report.output %q (want json or csv)", c.Report.Output)
	}

	return nil
}
