package detectors

import (
	"context"
)

// Detector 加速后端检测器接口
type Detector interface {
	// Name 返回检测器名称
	Name() string

	// Kind 返回检测器对应的加速器类型
	Kind() Kind

	// Detect 检测后端是否可用
	// 后端不存在时返回 ErrBackendUnavailable，查询本身失败时返回 *BackendQueryError
	Detect(ctx context.Context) (*HardwareType, error)

	// Close 关闭检测器，释放资源
	Close() error
}

// HardwareType 后端检测结果
type HardwareType struct {
	Vendor          string // apple, nvidia, generic
	Kind            Kind
	DriverVersion   string // 驱动/系统版本
	RuntimeVersion  string // CUDA driver API 版本等，可能为空
	DriverAvailable bool   // 后端是否可用
	DeviceCount     int
}

// Kind 加速器类型
type Kind string

const (
	KindMetal Kind = "mps"
	KindCUDA  Kind = "cuda"
	KindCPU   Kind = "cpu"
)

// Kinds 按选择优先级排列的全部类型
var Kinds = []Kind{KindMetal, KindCUDA, KindCPU}

// Priority 返回选择优先级，数值越小越优先
func (k Kind) Priority() int {
	switch k {
	case KindMetal:
		return 0
	case KindCUDA:
		return 1
	case KindCPU:
		return 2
	default:
		return 3
	}
}

// IsValid 检查类型是否为已知类型
func (k Kind) IsValid() bool {
	return k.Priority() < 3
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind parses a backend name as used in configuration files.
// "metal" and "nvidia" are accepted as aliases.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "mps", "metal":
		return KindMetal, true
	case "cuda", "nvidia":
		return KindCUDA, true
	case "cpu":
		return KindCPU, true
	}
	return "", false
}
