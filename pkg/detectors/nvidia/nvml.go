//go:build linux

package nvidia

import (
	"context"
	"fmt"
	"sync"

	nvinfo "github.com/NVIDIA/go-nvlib/pkg/nvlib/info"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
	"k8s.io/klog/v2"

	"github.com/zrs-products/accel-report/pkg/detectors"
)

// NVMLDetector NVIDIA CUDA 后端检测器
type NVMLDetector struct {
	lib         nvml.Interface
	libraryPath string

	// hasNvml 检查 libnvidia-ml 是否存在，便于测试替换
	hasNvml func() (bool, string)

	mu sync.Mutex
}

// Option 配置 NVMLDetector
type Option func(*NVMLDetector)

// WithNvmlLib 使用指定的 NVML 实现
func WithNvmlLib(lib nvml.Interface) Option {
	return func(d *NVMLDetector) {
		d.lib = lib
	}
}

// WithLibraryPath 指定 libnvidia-ml 的路径
func WithLibraryPath(path string) Option {
	return func(d *NVMLDetector) {
		d.libraryPath = path
	}
}

// NewNVMLDetector 创建 NVIDIA 检测器
func NewNVMLDetector(opts ...Option) *NVMLDetector {
	d := &NVMLDetector{}
	for _, opt := range opts {
		opt(d)
	}

	if d.lib == nil {
		var libOpts []nvml.LibraryOption
		if d.libraryPath != "" {
			libOpts = append(libOpts, nvml.WithLibraryPath(d.libraryPath))
		}
		d.lib = nvml.New(libOpts...)
	}

	if d.hasNvml == nil {
		if d.libraryPath != "" {
			// 显式指定的库路径交给 Init 判断
			d.hasNvml = func() (bool, string) { return true, "" }
		} else {
			info := nvinfo.New(nvinfo.WithNvmlLib(d.lib))
			d.hasNvml = info.HasNvml
		}
	}

	return d
}

// Name 返回检测器名称
func (d *NVMLDetector) Name() string {
	return Name
}

// Kind 返回加速器类型
func (d *NVMLDetector) Kind() detectors.Kind {
	return detectors.KindCUDA
}

// Detect 通过 NVML 检测 CUDA 是否可用
func (d *NVMLDetector) Detect(ctx context.Context) (*detectors.HardwareType, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	hwType := &detectors.HardwareType{
		Vendor: Vendor,
		Kind:   detectors.KindCUDA,
	}

	if ok, msg := d.hasNvml(); !ok {
		return hwType, detectors.Unavailable(Name, fmt.Sprintf("NVML not found: %s", msg))
	}

	ret := d.lib.Init()
	switch ret {
	case nvml.SUCCESS:
	case nvml.ERROR_LIBRARY_NOT_FOUND, nvml.ERROR_DRIVER_NOT_LOADED, nvml.ERROR_NO_PERMISSION:
		return hwType, detectors.Unavailable(Name, nvml.ErrorString(ret))
	default:
		return hwType, detectors.NewQueryError(Name, fmt.Errorf("failed to initialize NVML: %s", nvml.ErrorString(ret)))
	}
	defer func() {
		if ret := d.lib.Shutdown(); ret != nvml.SUCCESS {
			klog.V(2).Infof("NVML shutdown: %s", nvml.ErrorString(ret))
		}
	}()

	driverVersion, ret := d.lib.SystemGetDriverVersion()
	if ret != nvml.SUCCESS {
		return hwType, detectors.NewQueryError(Name, fmt.Errorf("failed to get driver version: %s", nvml.ErrorString(ret)))
	}
	hwType.DriverVersion = driverVersion

	if cudaVersion, ret := d.lib.SystemGetCudaDriverVersion(); ret == nvml.SUCCESS {
		hwType.RuntimeVersion = FormatCUDAVersion(cudaVersion)
	} else {
		klog.V(2).Infof("CUDA driver version unavailable: %s", nvml.ErrorString(ret))
	}

	count, ret := d.lib.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return hwType, detectors.NewQueryError(Name, fmt.Errorf("failed to get device count: %s", nvml.ErrorString(ret)))
	}
	if count == 0 {
		return hwType, detectors.Unavailable(Name, "no CUDA devices")
	}

	hwType.DeviceCount = count
	hwType.DriverAvailable = true
	return hwType, nil
}

// Close NVML 在每次 Detect 后已关闭，这里无需清理
func (d *NVMLDetector) Close() error {
	return nil
}

// Ensure NVMLDetector implements Detector interface
var _ detectors.Detector = (*NVMLDetector)(nil)
