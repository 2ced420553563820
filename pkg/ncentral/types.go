package ncentral

import (
	"encoding/json"
	"time"
)

// Credentials carries the server address and the opaque bearer token for
// one report run. It is built once at startup and passed by reference;
// nothing in this package reads ambient credential state.
type Credentials struct {
	BaseURL string `json:"base_url"`
	Token   string `json:"-"`
}

// Customer is one customer (organization) record as returned by the API.
// Display names are not uniform across server versions, so both candidate
// fields are mapped and DisplayName picks the first non-empty one.
type Customer struct {
	CustomerID   int64  `json:"customerId"`
	CustomerName string `json:"customerName"`
	Name         string `json:"name"`
}

// DisplayName returns the first populated display-name field.
func (c *Customer) DisplayName() string {
	if c.CustomerName != "" {
		return c.CustomerName
	}

	return c.Name
}

// Site is one site (sub-unit) under a customer.
type Site struct {
	SiteID     int64  `json:"siteId"`
	SiteName   string `json:"siteName"`
	Name       string `json:"name"`
	CustomerID int64  `json:"customerId"`
}

// DisplayName returns the first populated display-name field.
func (s *Site) DisplayName() string {
	if s.SiteName != "" {
		return s.SiteName
	}

	return s.Name
}

// Device is one monitored device as returned by the device list endpoint.
type Device struct {
	DeviceID     int64  `json:"deviceId"`
	LongName     string `json:"longName"`
	ShortName    string `json:"shortName"`
	CustomerID   int64  `json:"customerId"`
	CustomerName string `json:"customerName"`
	SiteID       int64  `json:"siteId"`
	SiteName     string `json:"siteName"`
}

// DisplayName returns the first populated device name field.
func (d *Device) DisplayName() string {
	if d.LongName != "" {
		return d.LongName
	}

	return d.ShortName
}

// ServiceStatus is one monitored-service state for a device. TaskID is the
// reference for the second-hop task detail lookup; it is blank when the
// module has no backing task.
type ServiceStatus struct {
	ModuleName     string     `json:"moduleName"`
	StateStatus    string     `json:"stateStatus"`
	TaskID         string     `json:"taskId"`
	TransitionTime *time.Time `json:"transitionTime"`
}

// Task is the second-hop payload for one scheduled task. Details stays raw
// so callers can distinguish an absent or malformed collection from a
// present-but-empty one.
type Task struct {
	TaskID  string          `json:"taskId"`
	Name    string          `json:"name"`
	Details json.RawMessage `json:"details"`
}

// DetailEntries decodes the detail collection. The second return value is
// false when the collection is absent or not a list of objects.
func (t *Task) DetailEntries() ([]map[string]any, bool) {
	if len(t.Details) == 0 || string(t.Details) == "null" {
		return nil, false
	}

	var entries []map[string]any
	if err := json.Unmarshal(t.Details, &entries); err != nil {
		return nil, false
	}

	return entries, true
}
