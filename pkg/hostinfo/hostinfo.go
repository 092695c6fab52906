// Package hostinfo describes the host platform for diagnostic reports.
package hostinfo

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/shirou/gopsutil/v4/host"
	"k8s.io/klog/v2"
)

// Host is the host section of a diagnostic report.
type Host struct {
	Platform string `json:"platform"`
	Machine  string `json:"machine"`
}

// Collector gathers host information. The zero value is not usable; use
// NewCollector.
type Collector struct {
	info func(ctx context.Context) (*host.InfoStat, error)
	arch func(ctx context.Context) (string, error)
}

// NewCollector returns a collector backed by gopsutil.
func NewCollector() *Collector {
	return &Collector{
		info: host.InfoWithContext,
		arch: func(context.Context) (string, error) { return host.KernelArch() },
	}
}

// Collect never fails. When gopsutil cannot describe the host, the Go
// runtime's GOOS and GOARCH are used instead.
func (c *Collector) Collect(ctx context.Context) Host {
	machine := runtime.GOARCH
	if arch, err := c.arch(ctx); err == nil && arch != "" {
		machine = arch
	} else if err != nil {
		klog.V(2).Infof("Failed to get kernel arch: %v", err)
	}

	info, err := c.info(ctx)
	if err != nil || info == nil {
		klog.V(2).Infof("Failed to get host info: %v", err)
		return Host{Platform: fmt.Sprintf("%s-%s", runtime.GOOS, machine), Machine: machine}
	}

	return Host{Platform: FormatPlatform(info, machine), Machine: machine}
}

// FormatPlatform renders a one-line platform description such as
// "Linux-6.1.0-18-amd64-x86_64-with-debian-12.5" or "macOS-14.2.1-arm64".
func FormatPlatform(info *host.InfoStat, machine string) string {
	switch info.OS {
	case "darwin":
		return joinNonEmpty("macOS", info.PlatformVersion, machine)
	case "windows":
		return joinNonEmpty("Windows", info.PlatformVersion, machine)
	}

	parts := []string{titleCase(info.OS), info.KernelVersion, machine}
	s := joinNonEmpty(parts...)
	if info.Platform != "" {
		s += "-with-" + joinNonEmpty(info.Platform, info.PlatformVersion)
	}
	return s
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func joinNonEmpty(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "-")
}
