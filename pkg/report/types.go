package report

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/zrs-products/accel-report/pkg/hostinfo"
)

const (
	// FileName is the name of the JSON report inside the report directory.
	FileName = "accel-report-py.json"

	// SummaryFileName is the optional plain-text summary.
	SummaryFileName = "accel-report-py.txt"

	// TimestampLayout is ISO-8601 in UTC with microseconds and a literal Z.
	TimestampLayout = "2006-01-02T15:04:05.000000Z"
)

// Report 诊断报告
type Report struct {
	Timestamp string        `json:"timestamp"`
	Host      hostinfo.Host `json:"host"`
	Torch     Runtime       `json:"torch"`
}

// Runtime holds either the backend status or, when interrogation failed,
// only an error message. It marshals to exactly one of the two shapes.
type Runtime struct {
	Status *RuntimeStatus
	Error  string
}

// RuntimeStatus 后端状态
type RuntimeStatus struct {
	Version        string `json:"version"`
	DeviceSelected string `json:"device_selected"`
	MPSAvailable   bool   `json:"mps_available"`
	CUDAAvailable  bool   `json:"cuda_available"`
	CUDAVersion    string `json:"cuda_version,omitempty"`
}

type runtimeError struct {
	Error string `json:"error"`
}

// MarshalJSON implements json.Marshaler.
func (r Runtime) MarshalJSON() ([]byte, error) {
	if r.Status == nil {
		return json.Marshal(runtimeError{Error: r.Error})
	}
	return json.Marshal(r.Status)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Runtime) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	if raw, ok := fields["error"]; ok {
		r.Status = nil
		return json.Unmarshal(raw, &r.Error)
	}

	r.Error = ""
	r.Status = &RuntimeStatus{}
	return json.Unmarshal(data, r.Status)
}

// Failed reports whether backend interrogation failed.
func (r Runtime) Failed() bool {
	return r.Status == nil
}

// Read parses a report previously written by Writer.
func Read(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read report %s: %w", path, err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return &r, nil
}
