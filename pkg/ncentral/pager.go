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
	"net/url"
	"strconv"
)

// pageEnvelope is the items-plus-total wrapper most list endpoints return.
// Older server versions use "items" instead of "data"; both are mapped and
// the first non-nil one wins.
type pageEnvelope struct {
	Data       []json.RawMessage `json:"data"`
	Items      []json.RawMessage `json:"items"`
	TotalItems *int              `json:"totalItems"`
}

func (e *pageEnvelope) itemList() ([]json.RawMessage, bool) {
	if e.Data != nil {
		return e.Data, true
	}

	if e.Items != nil {
		return e.Items, true
	}

	return nil, false
}

// FetchAll drives Get across every page of a collection endpoint and
// returns the items in page-arrival order without deduplication.
//
// Pagination stops when the envelope's total count has been accumulated,
// when a page comes back short of pageSize, or when the page count reaches
// the MaxPages circuit breaker; the breaker case logs a warning and
// returns what was accumulated so a misbehaving endpoint cannot loop the
// scan forever. An empty or absent page also stops pagination; none of
// these conditions is an error.
func (c *Client) FetchAll(ctx context.Context, path string, query url.Values, pageSize int) ([]json.RawMessage, error) {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	var (
		accumulated []json.RawMessage
		total       = -1
	)

	for pageNumber := 1; ; pageNumber++ {
		pageQuery := url.Values{}
		for k, vs := range query {
			pageQuery[k] = vs
		}

		pageQuery.Set("pageSize", strconv.Itoa(pageSize))
		pageQuery.Set("pageNumber", strconv.Itoa(pageNumber))

		body, err := c.Get(ctx, path, pageQuery)
		if err != nil {
			return nil, err
		}

		items, ok := unwrapPage(body, &total)
		if !ok || len(items) == 0 {
			return accumulated, nil
		}

		accumulated = append(accumulated, items...)

		if total >= 0 && len(accumulated) >= total {
			return accumulated, nil
		}

		if len(items) < pageSize {
			// Partial page: last page even without an explicit total.
			return accumulated, nil
		}

		if pageNumber >= c.maxPages {
			c.logger.Warn().
				Str("path", path).
				Int("pages", pageNumber).
				Int("items", len(accumulated)).
				Msg("Pagination hit the page cap; returning partial results")

			return accumulated, nil
		}
	}
}

// unwrapPage extracts the item list from one page body. It understands the
// items-plus-total envelope, a bare array, and a single scalar response
// wrapped as a one-item set. The second return value is false when the
// page holds nothing at all.
func unwrapPage(body json.RawMessage, total *int) ([]json.RawMessage, bool) {
	if len(body) == 0 || string(body) == "null" {
		return nil, false
	}

	var envelope pageEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil {
		if items, ok := envelope.itemList(); ok {
			if envelope.TotalItems != nil {
				*total = *envelope.TotalItems
			}

			return items, true
		}
	}

	var plain []json.RawMessage
	if err := json.Unmarshal(body, &plain); err == nil {
		return plain, true
	}

	return []json.RawMessage{body}, true
}
