// Package device selects the accelerator to run on and interrogates the
// compiled-in backends.
package device

import (
	"context"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/zrs-products/accel-report/pkg/detectors"
	"github.com/zrs-products/accel-report/pkg/detectors/cpu"
	"github.com/zrs-products/accel-report/pkg/detectors/metal"
	"github.com/zrs-products/accel-report/pkg/detectors/nvidia"
	"github.com/zrs-products/accel-report/pkg/version"
)

// Options 运行时选项
type Options struct {
	// DisabledBackends 不参与检测的后端，CPU 不能被禁用
	DisabledBackends []detectors.Kind

	// NVMLLibraryPath 指定 libnvidia-ml 路径，为空时使用系统默认
	NVMLLibraryPath string
}

// Runtime 当前进程可用的加速后端集合
type Runtime struct {
	registry *detectors.Registry
	version  string
}

// Status 后端查询结果
type Status struct {
	Version        string
	Selected       detectors.Kind
	MetalAvailable bool
	CUDAAvailable  bool
	CUDAVersion    string
}

// Open 根据选项注册 Metal、CUDA、CPU 检测器
func Open(opts Options) (*Runtime, error) {
	disabled := make(map[detectors.Kind]bool, len(opts.DisabledBackends))
	for _, k := range opts.DisabledBackends {
		if !k.IsValid() {
			return nil, fmt.Errorf("unknown backend %q", k)
		}
		if k == detectors.KindCPU {
			return nil, fmt.Errorf("the cpu backend cannot be disabled")
		}
		disabled[k] = true
	}

	registry := detectors.NewRegistry()
	if !disabled[detectors.KindMetal] {
		registry.Register(metal.NewDetector())
	}
	if !disabled[detectors.KindCUDA] {
		registry.Register(nvidia.NewNVMLDetector(nvidia.WithLibraryPath(opts.NVMLLibraryPath)))
	}
	registry.Register(cpu.NewDetector())

	klog.V(2).Infof("Opened accelerator runtime with %d detector(s)", len(registry.List()))
	return NewRuntime(registry), nil
}

// NewRuntime 使用已有的注册表创建运行时
func NewRuntime(registry *detectors.Registry) *Runtime {
	return &Runtime{
		registry: registry,
		version:  version.Version,
	}
}

// Version 返回运行时版本
func (rt *Runtime) Version() string {
	return rt.version
}

// Registry 返回底层注册表
func (rt *Runtime) Registry() *detectors.Registry {
	return rt.registry
}

// Choose 选择最高优先级的可用设备
func (rt *Runtime) Choose(ctx context.Context) detectors.Kind {
	return Choose(ctx, rt.registry)
}

// Status queries Metal and CUDA availability. A backend that is absent is
// reported as false; a backend whose query fails makes Status return the
// error so that callers can record it.
func (rt *Runtime) Status(ctx context.Context) (*Status, error) {
	status := &Status{Version: rt.version}

	metalAvailable, _, err := rt.available(ctx, detectors.KindMetal)
	if err != nil {
		return nil, err
	}
	cudaAvailable, cudaHW, err := rt.available(ctx, detectors.KindCUDA)
	if err != nil {
		return nil, err
	}

	status.MetalAvailable = metalAvailable
	status.CUDAAvailable = cudaAvailable
	if cudaAvailable && cudaHW != nil {
		status.CUDAVersion = cudaHW.RuntimeVersion
	}

	switch {
	case metalAvailable:
		status.Selected = detectors.KindMetal
	case cudaAvailable:
		status.Selected = detectors.KindCUDA
	default:
		status.Selected = detectors.KindCPU
	}
	return status, nil
}

func (rt *Runtime) available(ctx context.Context, kind detectors.Kind) (bool, *detectors.HardwareType, error) {
	d, ok := rt.registry.ForKind(kind)
	if !ok {
		return false, nil, nil
	}

	hwType, err := rt.registry.Probe(ctx, d)
	switch {
	case err == nil:
		return true, hwType, nil
	case detectors.IsUnavailable(err) && !detectors.IsQueryFailed(err):
		return false, hwType, nil
	default:
		return false, nil, err
	}
}

// Close 关闭所有检测器
func (rt *Runtime) Close() error {
	return rt.registry.Close()
}
