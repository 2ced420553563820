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

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

const (
	customersPath    = "/api/customers"
	sitesPathFmt     = "/api/customers/%d/sites"
	devicesPath      = "/api/devices"
	serviceStatusFmt = "/api/devices/%d/service-monitor-status"
	scheduledTaskFmt = "/api/scheduled-tasks/%s"
)

// ListCustomers returns every customer visible to the credential.
func (c *Client) ListCustomers(ctx context.Context) ([]Customer, error) {
	raw, err := c.FetchAll(ctx, customersPath, nil, defaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	return decodeItems[Customer](raw)
}

// ListSites returns the sites under one customer. A customer with no
// sites endpoint (404) yields an empty list.
func (c *Client) ListSites(ctx context.Context, customerID int64) ([]Site, error) {
	raw, err := c.FetchAll(ctx, fmt.Sprintf(sitesPathFmt, customerID), nil, defaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites for customer %d: %w", customerID, err)
	}

	return decodeItems[Site](raw)
}

// ListDevices enumerates devices, optionally scoped server-side to a
// customer ID set via a set-membership filter expression.
func (c *Client) ListDevices(ctx context.Context, customerIDs []int64) ([]Device, error) {
	query := url.Values{}

	if len(customerIDs) > 0 {
		ids := make([]string, 0, len(customerIDs))
		for _, id := range customerIDs {
			ids = append(ids, fmt.Sprintf("%d", id))
		}

		query.Set("filter", fmt.Sprintf("customerId in (%s)", strings.Join(ids, ",")))
	}

	raw, err := c.FetchAll(ctx, devicesPath, query, defaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	return decodeItems[Device](raw)
}

// GetServiceStatuses returns the monitored-service states for one device.
// A device with no status endpoint (404) yields an empty list.
func (c *Client) GetServiceStatuses(ctx context.Context, deviceID int64) ([]ServiceStatus, error) {
	raw, err := c.FetchAll(ctx, fmt.Sprintf(serviceStatusFmt, deviceID), nil, defaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to get service statuses for device %d: %w", deviceID, err)
	}

	return decodeItems[ServiceStatus](raw)
}

// GetTask fetches one scheduled task's detail record. A 404 returns
// (nil, nil); the caller decides how to represent the absence.
func (c *Client) GetTask(ctx context.Context, taskID string) (*Task, error) {
	body, err := c.Get(ctx, fmt.Sprintf(scheduledTaskFmt, url.PathEscape(taskID)), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", taskID, err)
	}

	if len(body) == 0 || string(body) == "null" {
		return nil, nil
	}

	// Some server versions wrap the task in a data envelope.
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}

	payload := body
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		payload = envelope.Data
	}

	var task Task
	if err := json.Unmarshal(payload, &task); err != nil {
		return nil, fmt.Errorf("failed to parse task %s: %w", taskID, err)
	}

	return &task, nil
}

func decodeItems[T any](raw []json.RawMessage) ([]T, error) {
	items := make([]T, 0, len(raw))

	for _, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, fmt.Errorf("failed to parse item: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}
