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
	"fmt"
	"strings"

	"github.com/carverauto/patchwatch/pkg/models"
	"github.com/carverauto/patchwatch/pkg/ncentral"
)

// Detail entry keys extracted from task details. Key comparison is
// case-insensitive.
const (
	primaryStatusKey   = "pme_status"
	thresholdStatusKey = "pme_threshold"
)

// detailNameCandidates is the ordered field-candidate policy for locating
// a detail entry's name: upstream schemas are not uniform, so each
// candidate is tried in priority order and the first non-absent value
// wins.
var detailNameCandidates = []string{"detailName", "name", "key"}

// extractStatus pulls the primary status message and the threshold
// context out of a task's detail entries. A task with no usable detail
// collection yields Unknown for both fields; a present collection with no
// matching entries yields N/A. The scan does not short-circuit, so a
// duplicated key resolves last-write-wins.
func extractStatus(task *ncentral.Task) (status, threshold string) {
	entries, ok := task.DetailEntries()
	if !ok {
		return models.StatusUnknown, models.StatusUnknown
	}

	status = models.StatusNotApplicable
	threshold = models.StatusNotApplicable

	for _, entry := range entries {
		name, found := detailEntryName(entry)
		if !found {
			continue
		}

		switch {
		case strings.EqualFold(name, primaryStatusKey):
			status = detailEntryValue(entry)
		case strings.EqualFold(name, thresholdStatusKey):
			threshold = detailEntryValue(entry)
		}
	}

	return status, threshold
}

// detailEntryName applies the field-candidate policy to one entry.
func detailEntryName(entry map[string]any) (string, bool) {
	for _, candidate := range detailNameCandidates {
		if v, ok := entry[candidate]; ok {
			if s, ok := v.(string); ok {
				return s, true
			}
		}
	}

	return "", false
}

func detailEntryValue(entry map[string]any) string {
	v, ok := entry["value"]
	if !ok || v == nil {
		return models.StatusNotApplicable
	}

	if s, ok := v.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", v)
}
