// Package metal detects the Apple Metal (MPS) backend.
package metal

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/zrs-products/accel-report/pkg/detectors"
)

const (
	Name   = "apple-metal"
	Vendor = "apple"
)

// MPS needs macOS 12.3 or newer.
const (
	minMajor = 12
	minMinor = 3
)

// sysinfoFunc returns the macOS product version and whether the host is
// Apple Silicon.
type sysinfoFunc func() (productVersion string, appleSilicon bool, err error)

// Detector Apple Metal 检测器
type Detector struct {
	sysinfo sysinfoFunc
}

// NewDetector 创建 Metal 检测器
func NewDetector() *Detector {
	return &Detector{sysinfo: defaultSysinfo}
}

// Name 返回检测器名称
func (d *Detector) Name() string {
	return Name
}

// Kind 返回加速器类型
func (d *Detector) Kind() detectors.Kind {
	return detectors.KindMetal
}

// Detect 检测 Metal Performance Shaders 是否可用
func (d *Detector) Detect(ctx context.Context) (*detectors.HardwareType, error) {
	hwType := &detectors.HardwareType{
		Vendor: Vendor,
		Kind:   detectors.KindMetal,
	}

	if d.sysinfo == nil {
		return hwType, detectors.Unavailable(Name, "Metal requires macOS")
	}

	version, appleSilicon, err := d.sysinfo()
	if err != nil {
		return hwType, detectors.NewQueryError(Name, err)
	}
	hwType.DriverVersion = version

	ok, err := supportsMPS(version, appleSilicon)
	if err != nil {
		return hwType, detectors.NewQueryError(Name, err)
	}
	if !ok {
		return hwType, detectors.Unavailable(Name, fmt.Sprintf("macOS %s (apple silicon: %t) does not support MPS", version, appleSilicon))
	}

	hwType.DeviceCount = 1
	hwType.DriverAvailable = true
	return hwType, nil
}

// Close 无需清理
func (d *Detector) Close() error {
	return nil
}

// supportsMPS reports whether the given macOS version on the given CPU
// family can run MPS.
func supportsMPS(productVersion string, appleSilicon bool) (bool, error) {
	major, minor, err := parseVersion(productVersion)
	if err != nil {
		return false, err
	}
	if !appleSilicon {
		return false, nil
	}
	return major > minMajor || (major == minMajor && minor >= minMinor), nil
}

func parseVersion(v string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(v), ".")
	if len(parts) == 0 || parts[0] == "" {
		return 0, 0, fmt.Errorf("empty macOS product version")
	}

	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid macOS product version %q: %w", v, err)
	}

	minor := 0
	if len(parts) > 1 {
		minor, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, fmt.Errorf("invalid macOS product version %q: %w", v, err)
		}
	}
	return major, minor, nil
}

var _ detectors.Detector = (*Detector)(nil)
