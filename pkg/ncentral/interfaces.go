package ncentral

import (
	"context"
	"net/http"
)

//go:generate mockgen -destination=mock_ncentral.go -package=ncentral github.com/carverauto/patchwatch/pkg/ncentral HTTPDoer,DeviceAPI

// HTTPDoer is the interface for making HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DeviceAPI is the endpoint surface consumed by the scope resolver and the
// report aggregator. *Client implements it.
type DeviceAPI interface {
	ListCustomers(ctx context.Context) ([]Customer, error)
	ListSites(ctx context.Context, customerID int64) ([]Site, error)
	ListDevices(ctx context.Context, customerIDs []int64) ([]Device, error)
	GetServiceStatuses(ctx context.Context, deviceID int64) ([]ServiceStatus, error)
	GetTask(ctx context.Context, taskID string) (*Task, error)
}

var _ DeviceAPI = (*Client)(nil)
