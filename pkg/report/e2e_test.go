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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/patchwatch/pkg/logger"
	"github.com/carverauto/patchwatch/pkg/models"
	"github.com/carverauto/patchwatch/pkg/ncentral"
	"github.com/carverauto/patchwatch/pkg/scope"
)

var (
	serviceStatusRe = regexp.MustCompile(`^/api/devices/(\d+)/service-monitor-status$`)
	taskRe          = regexp.MustCompile(`^/api/scheduled-tasks/([^/]+)$`)
)

// TestFullScan_FailedFilter drives the whole pipeline against a fake
// server: 3 customers, 12 devices of which 10 match the "SRV" name
// filter, 2 of those failing their patch service with resolvable task
// details and 1 warning with a vanished task.
func TestFullScan_FailedFilter(t *testing.T) {
	t.Parallel()

	var (
		mu                sync.Mutex
		statusCallsByPath = make(map[string]int)
	)

	writeEnvelope := func(w http.ResponseWriter, items any) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": items})
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/devices":
			devices := make([]map[string]any, 0, 12)
			for id := 1; id <= 12; id++ {
				name := fmt.Sprintf("SRV-%02d", id)
				if id > 10 {
					name = fmt.Sprintf("WKS-%02d", id)
				}

				devices = append(devices, map[string]any{
					"deviceId":     id,
					"longName":     name,
					"customerId":   (id % 3) + 1,
					"customerName": fmt.Sprintf("Customer %d", (id%3)+1),
					"siteName":     "Main",
				})
			}

			writeEnvelope(w, devices)

		case serviceStatusRe.MatchString(r.URL.Path):
			mu.Lock()
			statusCallsByPath[r.URL.Path]++
			mu.Unlock()

			deviceID := serviceStatusRe.FindStringSubmatch(r.URL.Path)[1]

			switch deviceID {
			case "1", "2":
				writeEnvelope(w, []map[string]any{{
					"moduleName":     "Patch Status V2",
					"stateStatus":    "Failed",
					"taskId":         "task-" + deviceID,
					"transitionTime": time.Now().UTC().Format(time.RFC3339),
				}})
			case "3":
				writeEnvelope(w, []map[string]any{{
					"moduleName":  "Patch Status V2",
					"stateStatus": "Warning",
					"taskId":      "task-gone",
				}})
			default:
				writeEnvelope(w, []map[string]any{{
					"moduleName":  "Patch Status V2",
					"stateStatus": "Normal",
				}})
			}

		case taskRe.MatchString(r.URL.Path):
			taskID := taskRe.FindStringSubmatch(r.URL.Path)[1]
			if taskID == "task-gone" {
				http.Error(w, "gone", http.StatusNotFound)
				return
			}

			_ = json.NewEncoder(w).Encode(map[string]any{
				"taskId": taskID,
				"details": []map[string]any{
					{"detailName": "pme_status", "value": "PME service stopped"},
				},
			})

		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	log := logger.NewTestLogger()

	client, err := ncentral.NewClient(
		&ncentral.Credentials{BaseURL: server.URL, Token: "test-token"},
		log,
		ncentral.WithBaseDelay(time.Millisecond),
	)
	require.NoError(t, err)

	resolver := scope.NewResolver(client, log)

	devices, err := resolver.Resolve(context.Background(), &scope.Filter{DeviceName: "SRV"})
	require.NoError(t, err)
	require.Len(t, devices, 10)

	aggregator := NewAggregator(client, log, false)

	rows, summary, err := aggregator.Scan(context.Background(), devices)
	require.NoError(t, err)
	assert.Equal(t, 10, summary.DevicesScanned)

	// 2 Failed + 1 Warning survive healthy-state exclusion.
	require.Len(t, rows, 3)

	failed := FilterFailed.Apply(rows)
	require.Len(t, failed, 2)

	for _, row := range failed {
		assert.Equal(t, models.StateFailed, row.StateStatus)
		assert.Equal(t, "PME service stopped", row.Status)
		assert.NotNil(t, row.LastChecked)
	}

	// The warning row kept its sentinel status after the 404 task lookup.
	warnings := FilterWarning.Apply(rows)
	require.Len(t, warnings, 1)
	assert.Equal(t, models.StatusNotApplicable, warnings[0].Status)

	// Only in-scope devices were scanned, one status call each.
	mu.Lock()
	assert.Len(t, statusCallsByPath, 10)
	mu.Unlock()
}
