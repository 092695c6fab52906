package detectors

import (
	"context"
	"fmt"
	"sort"
	"sync"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/klog/v2"
)

// Registry 检测器注册表，按加速器优先级排列
type Registry struct {
	detectors []Detector
	mu        sync.RWMutex
}

// NewRegistry 创建检测器注册表
func NewRegistry() *Registry {
	return &Registry{
		detectors: make([]Detector, 0),
	}
}

// Register 注册检测器，同名检测器会被替换
func (r *Registry) Register(detector Detector) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, d := range r.detectors {
		if d.Name() == detector.Name() {
			r.detectors[i] = detector
			return
		}
	}
	r.detectors = append(r.detectors, detector)
	sort.SliceStable(r.detectors, func(i, j int) bool {
		return r.detectors[i].Kind().Priority() < r.detectors[j].Kind().Priority()
	})
}

// Get 获取指定名称的检测器
func (r *Registry) Get(name string) (Detector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.detectors {
		if d.Name() == name {
			return d, true
		}
	}
	return nil, false
}

// ForKind 获取指定类型的第一个检测器
func (r *Registry) ForKind(kind Kind) (Detector, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.detectors {
		if d.Kind() == kind {
			return d, true
		}
	}
	return nil, false
}

// List 按优先级列出所有已注册的检测器
func (r *Registry) List() []Detector {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Detector, len(r.detectors))
	copy(result, r.detectors)
	return result
}

// Probe runs a single detector. A nil error means the backend is available.
// A panic inside Detect and any error that is neither ErrBackendUnavailable
// nor a *BackendQueryError are reported as a *BackendQueryError.
func (r *Registry) Probe(ctx context.Context, detector Detector) (hwType *HardwareType, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			hwType = nil
			err = NewQueryError(detector.Name(), fmt.Errorf("panic during probe: %v", rec))
		}
		if err != nil && !IsUnavailable(err) && !IsQueryFailed(err) {
			err = NewQueryError(detector.Name(), err)
		}
		if err != nil {
			klog.V(2).Infof("Probe %s: %v", detector.Name(), err)
		}
	}()

	hwType, err = detector.Detect(ctx)
	if err != nil {
		return hwType, err
	}
	if hwType == nil || !hwType.DriverAvailable {
		return hwType, Unavailable(detector.Name(), "driver not available")
	}
	return hwType, nil
}

// DetectAll 使用所有检测器检测后端
func (r *Registry) DetectAll(ctx context.Context) []*DetectionResult {
	detectorList := r.List()

	results := make([]*DetectionResult, 0, len(detectorList))
	for _, detector := range detectorList {
		hwType, err := r.Probe(ctx, detector)
		results = append(results, &DetectionResult{
			DetectorName: detector.Name(),
			Kind:         detector.Kind(),
			HardwareType: hwType,
			Error:        err,
		})
	}
	return results
}

// FindAvailable 按优先级找到第一个可用的检测器
func (r *Registry) FindAvailable(ctx context.Context) (Detector, error) {
	for _, detector := range r.List() {
		if _, err := r.Probe(ctx, detector); err == nil {
			return detector, nil
		}
	}

	return nil, fmt.Errorf("no available accelerator detector found")
}

// Close 关闭所有检测器
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, detector := range r.detectors {
		if err := detector.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", detector.Name(), err))
		}
	}
	return utilerrors.NewAggregate(errs)
}

// DetectionResult 检测结果
type DetectionResult struct {
	DetectorName string
	Kind         Kind
	HardwareType *HardwareType
	Error        error
}

// IsAvailable 检查检测结果是否可用
func (r *DetectionResult) IsAvailable() bool {
	return r.Error == nil && r.HardwareType != nil && r.HardwareType.DriverAvailable
}
