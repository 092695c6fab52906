package device

import (
	"context"

	"k8s.io/klog/v2"

	"github.com/zrs-products/accel-report/pkg/detectors"
)

// Choose returns the highest-priority available accelerator: Metal, then
// CUDA, then CPU. A probe that fails for any reason, including a panic,
// counts as unavailable and is not retried. CPU is returned even when no
// detector for it is registered.
//
// The result is a hint. Creating a context on the chosen device can still
// fail and must be handled by the caller.
func Choose(ctx context.Context, registry *detectors.Registry) detectors.Kind {
	d, err := registry.FindAvailable(ctx)
	if err != nil {
		klog.V(2).Infof("No accelerator available, using %s: %v", detectors.KindCPU, err)
		return detectors.KindCPU
	}
	klog.V(2).Infof("Selected %s via %s", d.Kind(), d.Name())
	return d.Kind()
}
