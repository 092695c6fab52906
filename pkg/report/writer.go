// Package report writes the accelerator diagnostic report.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"
	"k8s.io/utils/clock"

	"github.com/zrs-products/accel-report/pkg/detectors"
	"github.com/zrs-products/accel-report/pkg/device"
	"github.com/zrs-products/accel-report/pkg/hostinfo"
)

const probeFileName = ".write_test"

// WriteError is returned when the report directory cannot be created or
// written to. Nothing is written when it occurs.
type WriteError struct {
	Op   string
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("report %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Opener opens the accelerator runtime to interrogate.
type Opener func() (*device.Runtime, error)

// HostCollector describes the host.
type HostCollector interface {
	Collect(ctx context.Context) hostinfo.Host
}

// Writer 报告写入器
type Writer struct {
	open        Opener
	host        HostCollector
	clock       clock.PassiveClock
	stdout      io.Writer
	textSummary bool
}

// Option 配置 Writer
type Option func(*Writer)

// WithOpener replaces the runtime opener.
func WithOpener(open Opener) Option {
	return func(w *Writer) {
		w.open = open
	}
}

// WithDeviceOptions opens the runtime with the given options.
func WithDeviceOptions(opts device.Options) Option {
	return WithOpener(func() (*device.Runtime, error) {
		return device.Open(opts)
	})
}

// WithHostCollector replaces the host collector.
func WithHostCollector(c HostCollector) Option {
	return func(w *Writer) {
		w.host = c
	}
}

// WithClock sets the clock used for the report timestamp.
func WithClock(c clock.PassiveClock) Option {
	return func(w *Writer) {
		w.clock = c
	}
}

// WithStdout sets where the report locations are printed.
func WithStdout(out io.Writer) Option {
	return func(w *Writer) {
		w.stdout = out
	}
}

// WithTextSummary enables the plain-text summary next to the JSON report.
func WithTextSummary(enabled bool) Option {
	return func(w *Writer) {
		w.textSummary = enabled
	}
}

// NewWriter 创建报告写入器
func NewWriter(opts ...Option) *Writer {
	w := &Writer{
		open:   func() (*device.Runtime, error) { return device.Open(device.Options{}) },
		host:   hostinfo.NewCollector(),
		clock:  clock.RealClock{},
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write verifies that dir is writable, builds the report and writes it to
// dir/accel-report-py.json, replacing any previous report. It prints the
// directory and the file path, and returns the file path.
//
// Only directory problems are returned as errors. Backend failures end up in
// the report body.
func (w *Writer) Write(ctx context.Context, dir string) (string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", &WriteError{Op: "resolve", Path: dir, Err: err}
	}

	if err := EnsureWritable(absDir); err != nil {
		return "", err
	}

	report := w.Build(ctx)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	path := filepath.Join(absDir, FileName)
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", &WriteError{Op: "write", Path: path, Err: err}
	}
	klog.Infof("Wrote accelerator report to %s", path)

	if w.textSummary {
		summaryPath := filepath.Join(absDir, SummaryFileName)
		if err := writeSummaryFile(summaryPath, report); err != nil {
			klog.Warningf("Failed to write text summary: %v", err)
		}
	}

	fmt.Fprintf(w.stdout, "[ACCEL] Python report dir: %s\n", absDir)
	fmt.Fprintln(w.stdout, path)
	return path, nil
}

// Build assembles the report without touching the filesystem.
func (w *Writer) Build(ctx context.Context) *Report {
	return &Report{
		Timestamp: w.clock.Now().UTC().Format(TimestampLayout),
		Host:      w.host.Collect(ctx),
		Torch:     w.interrogate(ctx),
	}
}

// interrogate never fails: every error, including a panic, is recorded.
func (w *Writer) interrogate(ctx context.Context) (result Runtime) {
	var cause error
	defer func() {
		if r := recover(); r != nil {
			cause = detectors.NewQueryError("runtime", fmt.Errorf("panic: %v", r))
			result = Runtime{Error: errorText(cause)}
		}
		if result.Status == nil {
			klog.Warningf("Accelerator runtime interrogation failed (%s): %s", detectors.Classify(cause), result.Error)
		}
	}()

	rt, err := w.open()
	if err != nil {
		cause = fmt.Errorf("runtime unavailable: %w", err)
		return Runtime{Error: errorText(cause)}
	}
	defer func() {
		if err := rt.Close(); err != nil {
			klog.V(2).Infof("Failed to close accelerator runtime: %v", err)
		}
	}()

	status, err := rt.Status(ctx)
	if err != nil {
		cause = err
		return Runtime{Error: errorText(err)}
	}

	return Runtime{Status: &RuntimeStatus{
		Version:        status.Version,
		DeviceSelected: status.Selected.String(),
		MPSAvailable:   status.MetalAvailable,
		CUDAAvailable:  status.CUDAAvailable,
		CUDAVersion:    status.CUDAVersion,
	}}
}

func errorText(err error) string {
	if s := err.Error(); s != "" {
		return s
	}
	return "unknown error"
}

// EnsureWritable creates dir with mode 0755 if needed, then creates and
// removes an empty probe file in it.
func EnsureWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &WriteError{Op: "create", Path: dir, Err: err}
	}

	info, err := os.Stat(dir)
	if err != nil {
		return &WriteError{Op: "stat", Path: dir, Err: err}
	}
	if !info.IsDir() {
		return &WriteError{Op: "create", Path: dir, Err: errors.New("not a directory")}
	}

	probe := filepath.Join(dir, probeFileName)
	f, err := os.OpenFile(probe, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return &WriteError{Op: "probe", Path: probe, Err: err}
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(probe)
		return &WriteError{Op: "probe", Path: probe, Err: err}
	}
	if err := os.Remove(probe); err != nil {
		return &WriteError{Op: "probe", Path: probe, Err: err}
	}
	return nil
}
