package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"k8s.io/klog/v2"

	"github.com/zrs-products/accel-report/pkg/config"
	"github.com/zrs-products/accel-report/pkg/detectors"
	"github.com/zrs-products/accel-report/pkg/device"
	"github.com/zrs-products/accel-report/pkg/version"
)

var (
	// ConfigFile is an optional YAML configuration file
	ConfigFile string

	// List prints every backend probe instead of only the selection
	List bool

	// ShowVersion prints the build information and exits
	ShowVersion bool
)

func init() {
	flag.StringVar(&ConfigFile, "config", "", "Path to a YAML configuration file")
	flag.BoolVar(&List, "list", false, "Print the result of every backend probe")
	flag.BoolVar(&ShowVersion, "version", false, "Print version information and exit")
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	if ShowVersion {
		fmt.Printf("%s %s %s %s\n", version.Package, version.Version, version.Revision, version.GoVersion)
		return
	}

	cfg, err := config.Load(ConfigFile)
	if err != nil {
		klog.Errorf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	rt, err := device.Open(cfg.DeviceOptions())
	if err != nil {
		klog.Errorf("Failed to open accelerator runtime: %v", err)
		os.Exit(1)
	}
	defer rt.Close()

	ctx := context.Background()
	if List {
		printDetections(rt.Registry().DetectAll(ctx))
		return
	}
	fmt.Println(rt.Choose(ctx))
}

func printDetections(results []*detectors.DetectionResult) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Detector", "Kind", "Available", "Devices", "Error"})
	table.SetAutoWrapText(false)
	for _, r := range results {
		devices := ""
		if r.HardwareType != nil {
			devices = strconv.Itoa(r.HardwareType.DeviceCount)
		}
		errText := ""
		if r.Error != nil {
			errText = fmt.Sprintf("%s: %v", detectors.Classify(r.Error), r.Error)
		}
		table.Append([]string{r.DetectorName, r.Kind.String(), strconv.FormatBool(r.IsAvailable()), devices, errText})
	}
	table.Render()
}
