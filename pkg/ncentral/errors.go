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

package ncentral

import "errors"

var (
	// ErrUnauthorized means the server rejected the bearer token. It is
	// permanent for the lifetime of the credential; the operator has to
	// generate a fresh API token before any further request can succeed.
	ErrUnauthorized = errors.New("API authentication failed (401): refresh the API token and update the configuration")

	// ErrRetriesExhausted means a retryable condition (429 or 5xx) never
	// cleared within the configured attempt budget.
	ErrRetriesExhausted = errors.New("retries exhausted")

	errUnexpectedStatusCode = errors.New("unexpected status code")
	errMissingBaseURL       = errors.New("base URL is required")
	errMissingToken         = errors.New("API token is required")
)
