package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/zrs-products/accel-report/pkg/detectors"
)

// MockDetector 模拟加速后端检测器，用于测试
type MockDetector struct {
	config Config

	mu    sync.Mutex
	calls int
}

// Config Mock 检测器配置
type Config struct {
	Name          string
	Kind          detectors.Kind
	Available     bool
	DriverVersion string
	DeviceCount   int

	// DetectErr is returned by Detect as-is when set.
	DetectErr error

	// Panic makes Detect panic with this value when non-empty.
	Panic string
}

// DefaultMockConfig 默认 Mock 配置（模拟一块可用的 CUDA GPU）
var DefaultMockConfig = Config{
	Name:          "cuda-mock",
	Kind:          detectors.KindCUDA,
	Available:     true,
	DriverVersion: "535.129.03",
	DeviceCount:   1,
}

// NewMockDetector 创建 Mock 检测器
func NewMockDetector(config *Config) *MockDetector {
	if config == nil {
		config = &DefaultMockConfig
	}

	c := *config
	if c.Name == "" {
		c.Name = fmt.Sprintf("%s-mock", c.Kind)
	}
	return &MockDetector{config: c}
}

// Available 创建一个可用的 Mock 检测器
func Available(kind detectors.Kind) *MockDetector {
	return NewMockDetector(&Config{Kind: kind, Available: true, DriverVersion: "mock", DeviceCount: 1})
}

// Unavailable 创建一个返回 ErrBackendUnavailable 的 Mock 检测器
func Unavailable(kind detectors.Kind) *MockDetector {
	return NewMockDetector(&Config{
		Kind:      kind,
		DetectErr: detectors.Unavailable(fmt.Sprintf("%s-mock", kind), "not present"),
	})
}

// Failing 创建一个查询失败的 Mock 检测器
func Failing(kind detectors.Kind, err error) *MockDetector {
	return NewMockDetector(&Config{
		Kind:      kind,
		DetectErr: detectors.NewQueryError(fmt.Sprintf("%s-mock", kind), err),
	})
}

// Panicking 创建一个在检测时 panic 的 Mock 检测器
func Panicking(kind detectors.Kind, msg string) *MockDetector {
	return NewMockDetector(&Config{Kind: kind, Panic: msg})
}

// Name 返回检测器名称
func (d *MockDetector) Name() string {
	return d.config.Name
}

// Kind 返回加速器类型
func (d *MockDetector) Kind() detectors.Kind {
	return d.config.Kind
}

// Detect 返回模拟的检测结果
func (d *MockDetector) Detect(ctx context.Context) (*detectors.HardwareType, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()

	if d.config.Panic != "" {
		panic(d.config.Panic)
	}

	hwType := &detectors.HardwareType{
		Vendor:          "mock",
		Kind:            d.config.Kind,
		DriverVersion:   d.config.DriverVersion,
		DriverAvailable: d.config.Available && d.config.DetectErr == nil,
		DeviceCount:     d.config.DeviceCount,
	}
	if d.config.DetectErr != nil {
		return hwType, d.config.DetectErr
	}
	return hwType, nil
}

// Close 关闭检测器（Mock 无需清理）
func (d *MockDetector) Close() error {
	return nil
}

// Calls 返回 Detect 被调用的次数
func (d *MockDetector) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// Ensure MockDetector implements Detector interface
var _ detectors.Detector = (*MockDetector)(nil)
