//go:build !linux

package nvidia

import (
	"context"

	"github.com/zrs-products/accel-report/pkg/detectors"
)

// NVMLDetector NVIDIA 检测器（非 Linux 平台始终不可用）
type NVMLDetector struct{}

// Option 配置 NVMLDetector
type Option func(*NVMLDetector)

// WithLibraryPath 非 Linux 平台忽略
func WithLibraryPath(string) Option {
	return func(*NVMLDetector) {}
}

// NewNVMLDetector 创建 NVIDIA 检测器
func NewNVMLDetector(opts ...Option) *NVMLDetector {
	d := &NVMLDetector{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *NVMLDetector) Name() string {
	return Name
}

func (d *NVMLDetector) Kind() detectors.Kind {
	return detectors.KindCUDA
}

func (d *NVMLDetector) Detect(ctx context.Context) (*detectors.HardwareType, error) {
	return &detectors.HardwareType{
		Vendor: Vendor,
		Kind:   detectors.KindCUDA,
	}, detectors.Unavailable(Name, "NVML is only probed on linux")
}

func (d *NVMLDetector) Close() error {
	return nil
}

var _ detectors.Detector = (*NVMLDetector)(nil)
