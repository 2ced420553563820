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

// Package scope resolves user-supplied customer/site/device filters into
// the concrete device set a scan will cover.
package scope

import (
	"context"
	"fmt"
	"strings"

	"github.com/carverauto/patchwatch/pkg/logger"
	"github.com/carverauto/patchwatch/pkg/ncentral"
)

// Filter is the user-supplied scan scope. An exact ID always wins over a
// name substring at the same level. Name matching is case-insensitive
// substring matching against the record's display name.
type Filter struct {
	CustomerID   int64  `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	SiteID       int64  `json:"site_id"`
	SiteName     string `json:"site_name"`
	DeviceName   string `json:"device_name"`
}

// Resolver turns a Filter into a device list by querying the customer and
// site hierarchy.
type Resolver struct {
	api    ncentral.DeviceAPI
	logger logger.Logger
}

// NewResolver builds a Resolver on top of the given API surface.
func NewResolver(api ncentral.DeviceAPI, log logger.Logger) *Resolver {
	return &Resolver{api: api, logger: log}
}

// Resolve enumerates the devices in scope. Customer scoping is pushed to
// the server as a set-membership filter; site and device-name narrowing
// happen client-side because server-side filtering for those is not
// reliable across server versions.
func (r *Resolver) Resolve(ctx context.Context, filter *Filter) ([]ncentral.Device, error) {
	if filter == nil {
		filter = &Filter{}
	}

	customerIDs, err := r.resolveCustomers(ctx, filter)
	if err != nil {
		return nil, err
	}

	siteIDs, err := r.resolveSites(ctx, filter, customerIDs)
	if err != nil {
		return nil, err
	}

	devices, err := r.api.ListDevices(ctx, customerIDs)
	if err != nil {
		return nil, err
	}

	if len(siteIDs) > 0 {
		devices = filterBySite(devices, siteIDs)
	}

	if filter.DeviceName != "" {
		devices = filterByDeviceName(devices, filter.DeviceName)
	}

	r.logger.Info().
		Int("customers", len(customerIDs)).
		Int("sites", len(siteIDs)).
		Int("devices", len(devices)).
		Msg("Resolved scan scope")

	return devices, nil
}

// resolveCustomers returns the customer ID set to scope enumeration, or
// nil for an unscoped scan.
func (r *Resolver) resolveCustomers(ctx context.Context, filter *Filter) ([]int64, error) {
	if filter.CustomerID > 0 {
		return []int64{filter.CustomerID}, nil
	}

	if filter.CustomerName == "" {
		return nil, nil
	}

	customers, err := r.api.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve customer filter: %w", err)
	}

	var ids []int64

	for i := range customers {
		if nameMatches(customers[i].DisplayName(), filter.CustomerName) {
			ids = append(ids, customers[i].CustomerID)
		}
	}

	if len(ids) == 0 {
		r.logger.Warn().
			Str("customer_name", filter.CustomerName).
			Msg("Customer name filter matched nothing; proceeding unscoped")

		return nil, nil
	}

	return ids, nil
}

// resolveSites returns the site ID set for client-side narrowing, or nil
// for no site filter. Filtering by site name without a customer filter
// fans out across every customer sequentially.
func (r *Resolver) resolveSites(ctx context.Context, filter *Filter, customerIDs []int64) ([]int64, error) {
	if filter.SiteID > 0 {
		return []int64{filter.SiteID}, nil
	}

	if filter.SiteName == "" {
		return nil, nil
	}

	if len(customerIDs) == 0 {
		customers, err := r.api.ListCustomers(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve site filter: %w", err)
		}

		for i := range customers {
			customerIDs = append(customerIDs, customers[i].CustomerID)
		}
	}

	var ids []int64

	for _, customerID := range customerIDs {
		sites, err := r.api.ListSites(ctx, customerID)
		if err != nil {
			return nil, fmt.Errorf("failed to list sites for customer %d: %w", customerID, err)
		}

		for i := range sites {
			if nameMatches(sites[i].DisplayName(), filter.SiteName) {
				ids = append(ids, sites[i].SiteID)
			}
		}
	}

	if len(ids) == 0 {
		r.logger.Warn().
			Str("site_name", filter.SiteName).
			Msg("Site name filter matched nothing; proceeding unscoped")

		return nil, nil
	}

	return ids, nil
}

// nameMatches is the display-name matching policy: case-insensitive
// substring match.
func nameMatches(name, needle string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(needle))
}

func filterBySite(devices []ncentral.Device, siteIDs []int64) []ncentral.Device {
	allowed := make(map[int64]struct{}, len(siteIDs))
	for _, id := range siteIDs {
		allowed[id] = struct{}{}
	}

	filtered := make([]ncentral.Device, 0, len(devices))

	for i := range devices {
		if _, ok := allowed[devices[i].SiteID]; ok {
			filtered = append(filtered, devices[i])
		}
	}

	return filtered
}

func filterByDeviceName(devices []ncentral.Device, needle string) []ncentral.Device {
	filtered := make([]ncentral.Device, 0, len(devices))

	for i := range devices {
		if nameMatches(devices[i].DisplayName(), needle) {
			filtered = append(filtered, devices[i])
		}
	}

	return filtered
}
