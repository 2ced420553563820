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

// Package report turns the device set into patch-health report rows: a
// two-hop lookup per device (service states, then task details for each
// degraded state) aggregated into one ordered row collection.
package report

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/patchwatch/pkg/logger"
	"github.com/carverauto/patchwatch/pkg/models"
	"github.com/carverauto/patchwatch/pkg/ncentral"
)

// patchModuleCategories are the monitored-service categories this report
// cares about. The match is a case-sensitive substring match; server
// module names use this exact casing.
var patchModuleCategories = []string{"Patch Status", "Patch Management"}

// healthyStates are treated as non-issues and never trigger the second
// hop. Every other state, including ones this code has never seen, is an
// issue.
var healthyStates = map[string]struct{}{
	models.StateNormal:       {},
	models.StateDisconnected: {},
}

// Aggregator runs the per-device two-hop scan. Devices are processed
// strictly one at a time; against a rate-limited multi-tenant API that
// bounds request concurrency to 1.
type Aggregator struct {
	api            ncentral.DeviceAPI
	logger         logger.Logger
	includeHealthy bool
}

// NewAggregator builds an Aggregator. With includeHealthy false, healthy
// devices contribute no rows.
func NewAggregator(api ncentral.DeviceAPI, log logger.Logger, includeHealthy bool) *Aggregator {
	return &Aggregator{
		api:            api,
		logger:         log,
		includeHealthy: includeHealthy,
	}
}

// Scan processes every device in enumeration order and returns the
// accumulated rows plus a scan summary. Only unauthorized and
// retries-exhausted failures abort the scan; everything else is absorbed
// into the row data. The context is checked before each device so long
// scans stay interruptible.
func (a *Aggregator) Scan(ctx context.Context, devices []ncentral.Device) ([]models.ReportRow, *models.ScanSummary, error) {
	summary := &models.ScanSummary{
		ScanID:    uuid.New().String(),
		StartedAt: time.Now(),
	}

	scanLog := a.logger.With().Str("scan_id", summary.ScanID).Logger()

	var rows []models.ReportRow

	for i := range devices {
		if err := ctx.Err(); err != nil {
			return nil, summary, err
		}

		deviceRows, err := a.scanDevice(ctx, &devices[i])
		if err != nil {
			return nil, summary, err
		}

		rows = append(rows, deviceRows...)
		summary.DevicesScanned++

		scanLog.Debug().
			Int64("device_id", devices[i].DeviceID).
			Int("rows", len(deviceRows)).
			Int("scanned", summary.DevicesScanned).
			Msg("Scanned device")
	}

	summary.RowsEmitted = len(rows)

	for i := range rows {
		if rows[i].IsIssue() {
			summary.IssueRows++
		}
	}

	summary.Elapsed = time.Since(summary.StartedAt)

	scanLog.Info().
		Int("devices", summary.DevicesScanned).
		Int("rows", summary.RowsEmitted).
		Int("issues", summary.IssueRows).
		Dur("elapsed", summary.Elapsed).
		Msg("Scan complete")

	return rows, summary, nil
}

// scanDevice runs the two-hop lookup for one device. Rows come back in
// service-enumeration order.
func (a *Aggregator) scanDevice(ctx context.Context, device *ncentral.Device) ([]models.ReportRow, error) {
	statuses, err := a.api.GetServiceStatuses(ctx, device.DeviceID)
	if err != nil {
		return nil, err
	}

	degraded := make([]ncentral.ServiceStatus, 0, len(statuses))

	for i := range statuses {
		if !isPatchModule(statuses[i].ModuleName) {
			continue
		}

		if _, healthy := healthyStates[statuses[i].StateStatus]; healthy {
			continue
		}

		degraded = append(degraded, statuses[i])
	}

	if len(degraded) == 0 {
		if !a.includeHealthy {
			return nil, nil
		}

		return []models.ReportRow{a.healthyRow(device)}, nil
	}

	rows := make([]models.ReportRow, 0, len(degraded))

	for i := range degraded {
		row, err := a.issueRow(ctx, device, &degraded[i])
		if err != nil {
			return nil, err
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// issueRow performs the second hop for one degraded service. A blank task
// reference or a vanished task keeps the row with sentinel status fields;
// the device-level issue is real even when the detail lookup fails.
func (a *Aggregator) issueRow(ctx context.Context, device *ncentral.Device, svc *ncentral.ServiceStatus) (models.ReportRow, error) {
	row := models.ReportRow{
		DeviceID:     device.DeviceID,
		DeviceName:   device.DisplayName(),
		CustomerName: device.CustomerName,
		SiteName:     device.SiteName,
		StateStatus:  svc.StateStatus,
		Status:       models.StatusNotApplicable,
		Threshold:    models.StatusNotApplicable,
		LastChecked:  svc.TransitionTime,
	}

	if strings.TrimSpace(svc.TaskID) == "" {
		return row, nil
	}

	task, err := a.api.GetTask(ctx, svc.TaskID)
	if err != nil {
		return row, err
	}

	if task == nil {
		a.logger.Debug().
			Int64("device_id", device.DeviceID).
			Str("task_id", svc.TaskID).
			Msg("Task detail not found; keeping row with sentinel status")

		return row, nil
	}

	row.Status, row.Threshold = extractStatus(task)

	return row, nil
}

func (a *Aggregator) healthyRow(device *ncentral.Device) models.ReportRow {
	return models.ReportRow{
		DeviceID:     device.DeviceID,
		DeviceName:   device.DisplayName(),
		CustomerName: device.CustomerName,
		SiteName:     device.SiteName,
		StateStatus:  models.StateNormal,
		Status:       models.StatusNotApplicable,
		Threshold:    models.StatusNotApplicable,
	}
}

func isPatchModule(moduleName string) bool {
	for _, category := range patchModuleCategories {
		if strings.Contains(moduleName, category) {
			return true
		}
	}

	return false
}
