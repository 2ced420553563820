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

package report

import (
	"errors"
	"fmt"

	"github.com/carverauto/patchwatch/pkg/models"
)

// StatusFilter restricts report rows to a severity subset after
// aggregation.
type StatusFilter string

const (
	FilterAll     StatusFilter = "All"
	FilterFailed  StatusFilter = models.StateFailed
	FilterWarning StatusFilter = models.StateWarning
)

var errInvalidStatusFilter = errors.New("invalid status filter")

// ParseStatusFilter validates a user-supplied filter name. An empty
// string means All.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterFailed:
		return FilterFailed, nil
	case FilterWarning:
		return FilterWarning, nil
	default:
		return "", fmt.Errorf("%w: %q (want All, Failed, or Warning)", errInvalidStatusFilter, s)
	}
}

// Apply filters rows by state. All is the identity and returns the input
// slice unchanged, preserving order. Other modes keep only rows whose
// state equals the filter literal exactly; the match is case-sensitive.
func (f StatusFilter) Apply(rows []models.ReportRow) []models.ReportRow {
	if f == "" || f == FilterAll {
		return rows
	}

	filtered := make([]models.ReportRow, 0, len(rows))

	for i := range rows {
		if rows[i].StateStatus == string(f) {
			filtered = append(filtered, rows[i])
		}
	}

	return filtered
}
