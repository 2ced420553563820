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

// Package models provides data models shared across the patchwatch scan pipeline.
package models

import "time"

// Service states reported by the upstream monitoring modules. Any state not
// listed here is still treated as an issue; the enumeration is open on the
// server side.
const (
	StateNormal       = "Normal"
	StateWarning      = "Warning"
	StateFailed       = "Failed"
	StateDisconnected = "Disconnected"
)

// Sentinel values for status fields when a task detail lookup cannot
// supply real data. NotApplicable means the detail record existed (or the
// lookup was impossible) but carried no matching entry; Unknown means the
// detail collection itself was absent or malformed.
const (
	StatusNotApplicable = "N/A"
	StatusUnknown       = "Unknown"
)

// ReportRow is one line of the patch-health report: a (device, degraded
// service) pair, or a healthy device when healthy rows are requested.
type ReportRow struct {
	DeviceID     int64      `json:"device_id"`
	DeviceName   string     `json:"device_name"`
	CustomerName string     `json:"customer_name"`
	SiteName     string     `json:"site_name"`
	StateStatus  string     `json:"state_status"`
	Status       string     `json:"status"`
	Threshold    string     `json:"threshold"`
	LastChecked  *time.Time `json:"last_checked,omitempty"`
}

// IsIssue reports whether the row represents a degraded service rather
// than a healthy placeholder.
func (r *ReportRow) IsIssue() bool {
	return r.StateStatus != StateNormal && r.StateStatus != StateDisconnected
}

// ScanSummary describes one complete scan run.
type ScanSummary struct {
	ScanID         string        `json:"scan_id"`
	DevicesScanned int           `json:"devices_scanned"`
	RowsEmitted    int           `json:"rows_emitted"`
	IssueRows      int           `json:"issue_rows"`
	StartedAt      time.Time     `json:"started_at"`
	Elapsed        time.Duration `json:"elapsed"`
}
