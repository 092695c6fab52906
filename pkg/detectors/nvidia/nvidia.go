// Package nvidia detects the CUDA backend through NVML.
package nvidia

import "fmt"

const (
	// Name is the detector name used in logs and configuration.
	Name   = "nvidia-nvml"
	Vendor = "nvidia"
)

// FormatCUDAVersion turns the integer returned by
// nvmlSystemGetCudaDriverVersion (e.g. 12040) into "12.4".
func FormatCUDAVersion(v int) string {
	if v <= 0 {
		return ""
	}
	return fmt.Sprintf("%d.%d", v/1000, (v%1000)/10)
}
