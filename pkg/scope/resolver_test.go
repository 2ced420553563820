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

package scope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/patchwatch/pkg/logger"
	"github.com/carverauto/patchwatch/pkg/ncentral"
)

func setupResolver(t *testing.T) (*Resolver, *ncentral.MockDeviceAPI) {
	t.Helper()

	ctrl := gomock.NewController(t)
	api := ncentral.NewMockDeviceAPI(ctrl)

	return NewResolver(api, logger.NewTestLogger()), api
}

func TestResolve_NoFilterIsUnscoped(t *testing.T) {
	t.Parallel()

	resolver, api := setupResolver(t)

	api.EXPECT().ListDevices(gomock.Any(), gomock.Nil()).Return([]ncentral.Device{
		{DeviceID: 1, LongName: "SRV-01"},
	}, nil)

	devices, err := resolver.Resolve(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, devices, 1)
}

func TestResolve_CustomerIDBeatsCustomerName(t *testing.T) {
	t.Parallel()

	resolver, api := setupResolver(t)

	// No ListCustomers call: the explicit ID wins.
	api.EXPECT().ListDevices(gomock.Any(), []int64{7}).Return(nil, nil)

	_, err := resolver.Resolve(context.Background(), &Filter{CustomerID: 7, CustomerName: "ignored"})
	require.NoError(t, err)
}

func TestResolve_CustomerNameSubstringCaseInsensitive(t *testing.T) {
	t.Parallel()

	resolver, api := setupResolver(t)

	api.EXPECT().ListCustomers(gomock.Any()).Return([]ncentral.Customer{
		{CustomerID: 1, CustomerName: "Acme Corporation"},
		{CustomerID: 2, CustomerName: "Globex"},
		{CustomerID: 3, Name: "ACME East"},
	}, nil)
	api.EXPECT().ListDevices(gomock.Any(), []int64{1, 3}).Return(nil, nil)

	_, err := resolver.Resolve(context.Background(), &Filter{CustomerName: "acme"})
	require.NoError(t, err)
}

func TestResolve_CustomerNameZeroMatchDegradesToUnscoped(t *testing.T) {
	t.Parallel()

	resolver, api := setupResolver(t)

	api.EXPECT().ListCustomers(gomock.Any()).Return([]ncentral.Customer{
		{CustomerID: 1, CustomerName: "Acme"},
	}, nil)
	api.EXPECT().ListDevices(gomock.Any(), gomock.Nil()).Return(nil, nil)

	_, err := resolver.Resolve(context.Background(), &Filter{CustomerName: "no-such-customer"})
	require.NoError(t, err)
}

func TestResolve_SiteNameFansOutAcrossCustomers(t *testing.T) {
	t.Parallel()

	resolver, api := setupResolver(t)

	api.EXPECT().ListCustomers(gomock.Any()).Return([]ncentral.Customer{
		{CustomerID: 1, CustomerName: "Acme"},
		{CustomerID: 2, CustomerName: "Globex"},
	}, nil)
	api.EXPECT().ListSites(gomock.Any(), int64(1)).Return([]ncentral.Site{
		{SiteID: 11, SiteName: "HQ Campus"},
	}, nil)
	api.EXPECT().ListSites(gomock.Any(), int64(2)).Return([]ncentral.Site{
		{SiteID: 21, SiteName: "Warehouse"},
		{SiteID: 22, Name: "Branch Campus"},
	}, nil)
	api.EXPECT().ListDevices(gomock.Any(), gomock.Nil()).Return([]ncentral.Device{
		{DeviceID: 100, LongName: "SRV-A", SiteID: 11},
		{DeviceID: 101, LongName: "SRV-B", SiteID: 21},
		{DeviceID: 102, LongName: "SRV-C", SiteID: 22},
	}, nil)

	devices, err := resolver.Resolve(context.Background(), &Filter{SiteName: "campus"})
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, int64(100), devices[0].DeviceID)
	assert.Equal(t, int64(102), devices[1].DeviceID)
}

func TestResolve_SiteIDBeatsSiteName(t *testing.T) {
	t.Parallel()

	resolver, api := setupResolver(t)

	api.EXPECT().ListDevices(gomock.Any(), gomock.Nil()).Return([]ncentral.Device{
		{DeviceID: 1, SiteID: 5},
		{DeviceID: 2, SiteID: 6},
	}, nil)

	devices, err := resolver.Resolve(context.Background(), &Filter{SiteID: 5, SiteName: "ignored"})
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, int64(1), devices[0].DeviceID)
}

func TestResolve_DeviceNameSubstringFilter(t *testing.T) {
	t.Parallel()

	resolver, api := setupResolver(t)

	api.EXPECT().ListDevices(gomock.Any(), gomock.Nil()).Return([]ncentral.Device{
		{DeviceID: 1, LongName: "SRV-WEB-01"},
		{DeviceID: 2, LongName: "WKS-042"},
		{DeviceID: 3, ShortName: "srv-db-01"},
	}, nil)

	devices, err := resolver.Resolve(context.Background(), &Filter{DeviceName: "SRV"})
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, int64(1), devices[0].DeviceID)
	assert.Equal(t, int64(3), devices[1].DeviceID)
}

func TestResolve_SiteNameZeroMatchDegrades(t *testing.T) {
	t.Parallel()

	resolver, api := setupResolver(t)

	api.EXPECT().ListCustomers(gomock.Any()).Return([]ncentral.Customer{
		{CustomerID: 1, CustomerName: "Acme"},
	}, nil)
	api.EXPECT().ListSites(gomock.Any(), int64(1)).Return(nil, nil)
	api.EXPECT().ListDevices(gomock.Any(), gomock.Nil()).Return([]ncentral.Device{
		{DeviceID: 1, SiteID: 99},
	}, nil)

	devices, err := resolver.Resolve(context.Background(), &Filter{SiteName: "nowhere"})
	require.NoError(t, err)
	require.Len(t, devices, 1)
}

func TestResolve_CustomerScopedSiteLookup(t *testing.T) {
	t.Parallel()

	resolver, api := setupResolver(t)

	// With a customer ID set, only that customer's sites are queried.
	api.EXPECT().ListSites(gomock.Any(), int64(3)).Return([]ncentral.Site{
		{SiteID: 31, SiteName: "Main"},
	}, nil)
	api.EXPECT().ListDevices(gomock.Any(), []int64{3}).Return(nil, nil)

	_, err := resolver.Resolve(context.Background(), &Filter{CustomerID: 3, SiteName: "main"})
	require.NoError(t, err)
}
