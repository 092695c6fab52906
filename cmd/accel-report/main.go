package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"k8s.io/klog/v2"

	"github.com/zrs-products/accel-report/pkg/config"
	"github.com/zrs-products/accel-report/pkg/report"
	"github.com/zrs-products/accel-report/pkg/version"
)

var (
	// ConfigFile is an optional YAML configuration file
	ConfigFile string

	// ReportDir overrides the configured report directory
	ReportDir string

	// TextSummary also writes a plain-text summary
	TextSummary bool
)

func init() {
	flag.StringVar(&ConfigFile, "config", "", "Path to a YAML configuration file")
	flag.StringVar(&ReportDir, "report-dir", "", "Directory to write the report to (overrides config and $"+config.EnvReportDir+")")
	flag.BoolVar(&TextSummary, "text-summary", false, "Also write a plain-text summary next to the JSON report")
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	cfg, err := config.Load(ConfigFile)
	if err != nil {
		klog.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}
	if ReportDir != "" {
		cfg.ReportDir = ReportDir
	}
	if TextSummary {
		cfg.TextSummary = true
	}

	dir, err := cfg.ResolvedReportDir()
	if err != nil {
		klog.Errorf("Invalid report directory: %v", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	klog.V(1).Infof("%s %s (revision %q, %s)", version.Package, version.Version, version.Revision, version.GoVersion)

	writer := report.NewWriter(
		report.WithDeviceOptions(cfg.DeviceOptions()),
		report.WithTextSummary(cfg.TextSummary),
	)
	if _, err := writer.Write(ctx, dir); err != nil {
		klog.Errorf("Failed to write accelerator report: %v", err)
		klog.Flush()
		os.Exit(1)
	}
}
