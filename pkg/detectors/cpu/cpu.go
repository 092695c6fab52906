// Package cpu provides the always-available CPU fallback backend.
package cpu

import (
	"context"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"k8s.io/klog/v2"

	"github.com/zrs-products/accel-report/pkg/detectors"
)

const Name = "cpu"

// Detector CPU 检测器，始终可用
type Detector struct {
	counts func(ctx context.Context, logical bool) (int, error)
	info   func(ctx context.Context) ([]cpu.InfoStat, error)
}

// NewDetector 创建 CPU 检测器
func NewDetector() *Detector {
	return &Detector{
		counts: cpu.CountsWithContext,
		info:   cpu.InfoWithContext,
	}
}

func (d *Detector) Name() string {
	return Name
}

func (d *Detector) Kind() detectors.Kind {
	return detectors.KindCPU
}

// Detect never fails. Core count and model name are best effort.
func (d *Detector) Detect(ctx context.Context) (*detectors.HardwareType, error) {
	hwType := &detectors.HardwareType{
		Vendor:          "generic",
		Kind:            detectors.KindCPU,
		DriverVersion:   runtime.Version(),
		DriverAvailable: true,
		DeviceCount:     runtime.NumCPU(),
	}

	if d.counts != nil {
		if n, err := d.counts(ctx, true); err == nil && n > 0 {
			hwType.DeviceCount = n
		} else if err != nil {
			klog.V(4).Infof("cpu counts: %v", err)
		}
	}

	if d.info != nil {
		if infos, err := d.info(ctx); err == nil && len(infos) > 0 && infos[0].VendorID != "" {
			hwType.Vendor = infos[0].VendorID
		} else if err != nil {
			klog.V(4).Infof("cpu info: %v", err)
		}
	}

	return hwType, nil
}

func (d *Detector) Close() error {
	return nil
}

var _ detectors.Detector = (*Detector)(nil)
