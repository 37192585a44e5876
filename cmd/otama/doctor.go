// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Otama Go Contributors

package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"

	"github.com/otama-dev/otama-go/internal/config"
	"github.com/otama-dev/otama-go/internal/native"
	"github.com/otama-dev/otama-go/internal/native/sqlitevec"
	otamaerr "github.com/otama-dev/otama-go/pkg/errors"
	"github.com/otama-dev/otama-go/pkg/health"
	"github.com/otama-dev/otama-go/pkg/otama"
)

// lowDiskBytes is the free-space threshold below which doctor warns.
const lowDiskBytes = 512 * 1024 * 1024

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostics",
		Long:  "Check configuration, engine backends, the engine database and disk space.",
		Args:  cobra.NoArgs,
		RunE:  runDoctor,
	}
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	report := health.NewReport(time.Now())
	report.Add("Binary", health.StatusOK, fmt.Sprintf("otama %s (%s/%s, %s)", version, runtime.GOOS, runtime.GOARCH, runtime.Version()))

	cfgFile := cmdViper(cmd).ConfigFileUsed()
	cfg, err := loadConfig(cmd)
	switch {
	case err != nil:
		report.Add("Config", health.StatusFail, err.Error())
	case cfgFile != "":
		report.Add("Config", health.StatusOK, "loaded from "+cfgFile)
	default:
		report.Add("Config", health.StatusOK, "using defaults (no config file found)")
	}

	report.Add("Backends", health.StatusOK, fmt.Sprintf("%s (default %s)",
		strings.Join(native.Backends(), ", "), native.DefaultBackend()))

	if cfg != nil {
		checkEngine(cmd.Context(), report, cfg)
	}

	if err := printReport(cmd, cfg, report); err != nil {
		return err
	}
	if !report.Healthy() {
		return otamaerr.New(otamaerr.CodeEngineUnknown, "diagnostics failed",
			otamaerr.Field("checks", report.Failed()),
		)
	}
	return nil
}

func checkEngine(ctx context.Context, report *health.Report, cfg *config.Config) {
	path := cfg.Engine.Config
	if _, err := os.Stat(path); err != nil {
		report.Add("Engine Config", health.StatusFail, fmt.Sprintf("%s not found (run 'otama init')", path))
		return
	}

	dataDir := ""
	backend := cfg.Engine.Backend
	if backend == "auto" {
		backend = native.DefaultBackend()
	}
	if backend == native.BackendSQLite {
		engineCfg, err := sqlitevec.LoadConfig(path)
		if err != nil {
			report.Add("Engine Config", health.StatusFail, err.Error())
			return
		}
		dataDir = engineCfg.Driver.DataDir
		report.Add("Engine Config", health.StatusOK, fmt.Sprintf("%s (namespace %s)", path, engineCfg.Namespace))
	} else {
		report.Add("Engine Config", health.StatusOK, path)
	}

	s, err := otama.Open(path, otama.WithBackend(cfg.Engine.Backend))
	if err != nil {
		report.Add("Database", health.StatusFail, "engine failed to open "+path)
		return
	}
	defer func() { _ = s.Close() }()

	n, err := s.Count(ctx)
	switch {
	case err == nil:
		report.Add("Database", health.StatusOK, fmt.Sprintf("%d entries", n))
	case otamaerr.IsNoData(err):
		report.Add("Database", health.StatusWarn, "not created (run 'otama create-db')")
	default:
		report.Add("Database", health.StatusFail, err.Error())
	}

	if dataDir != "" {
		checkDiskSpace(report, dataDir)
	}
}

func checkDiskSpace(report *health.Report, dataDir string) {
	var stat unix.Statfs_t
	if err := unix.Statfs(dataDir, &stat); err != nil {
		report.Add("Disk Space", health.StatusWarn, fmt.Sprintf("unable to check: %s", err))
		return
	}

	avail := stat.Bavail * uint64(stat.Bsize)
	status := health.StatusOK
	if avail < lowDiskBytes {
		status = health.StatusWarn
	}
	report.Add("Disk Space", status, formatBytes(avail)+" available")
}

func printReport(cmd *cobra.Command, cfg *config.Config, report *health.Report) error {
	if cfg == nil {
		cfg = &config.Config{Output: config.OutputConfig{Format: config.FormatText}}
	}
	p := newPrinter(cmd.OutOrStdout(), cfg)
	if cfg.Output.Format == config.FormatJSON {
		return p.json(report)
	}
	for _, c := range report.Checks {
		if err := p.text("%-16s %-5s %s\n", c.Name+":", c.Status, c.Detail); err != nil {
			return err
		}
	}
	return nil
}

// formatBytes formats a byte count as a human-readable string.
func formatBytes(b uint64) string {
	const (
		gb = 1024 * 1024 * 1024
		mb = 1024 * 1024
	)
	switch {
	case b >= gb:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(gb))
	case b >= mb:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(mb))
	default:
		return fmt.Sprintf("%d bytes", b)
	}
}
