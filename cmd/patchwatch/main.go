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

package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/carverauto/patchwatch/pkg/config"
	"github.com/carverauto/patchwatch/pkg/logger"
	"github.com/carverauto/patchwatch/pkg/models"
	"github.com/carverauto/patchwatch/pkg/ncentral"
	"github.com/carverauto/patchwatch/pkg/report"
	"github.com/carverauto/patchwatch/pkg/scope"
)

func main() {
	configPath := flag.String("config", "/etc/patchwatch/patchwatch.json", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Fatal().Err(err).Msg("Scan failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logg logger.Logger) error {
	creds := &ncentral.Credentials{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
	}

	client, err := ncentral.NewClient(creds, logg,
		ncentral.WithMaxRetries(cfg.API.MaxRetries),
		ncentral.WithMaxPages(cfg.API.MaxPages),
		ncentral.WithRateLimit(cfg.API.RequestsPerSecond),
	)
	if err != nil {
		return err
	}

	resolver := scope.NewResolver(client, logg)

	devices, err := resolver.Resolve(ctx, &cfg.Scope)
	if err != nil {
		return err
	}

	aggregator := report.NewAggregator(client, logg, cfg.Report.IncludeHealthy)

	rows, summary, err := aggregator.Scan(ctx, devices)
	if err != nil {
		return err
	}

	// Validated at load time.
	mode, _ := report.ParseStatusFilter(cfg.Report.StatusFilter)
	rows = mode.Apply(rows)

	if cfg.Report.Output == "csv" {
		return writeCSV(os.Stdout, rows)
	}

	return writeJSON(os.Stdout, rows, summary)
}

func writeJSON(w io.Writer, rows []models.ReportRow, summary *models.ScanSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(struct {
		Summary *models.ScanSummary `json:"summary"`
		Rows    []models.ReportRow  `json:"rows"`
	}{Summary: summary, Rows: rows})
}

func writeCSV(w io.Writer, rows []models.ReportRow) error {
	cw := csv.NewWriter(w)

	header := []string{"device_id", "device_name", "customer", "site", "state", "status", "threshold", "last_checked"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range rows {
		lastChecked := ""
		if rows[i].LastChecked != nil {
			lastChecked = rows[i].LastChecked.Format(time.RFC3339)
		}

		record := []string{
			strconv.FormatInt(rows[i].DeviceID, 10),
			rows[i].DeviceName,
			rows[i].CustomerName,
			rows[i].SiteName,
			rows[i].StateStatus,
			rows[i].Status,
			rows[i].Threshold,
			lastChecked,
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	cw.Flush()

	return cw.Error()
}
