package detectors

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// testMockDetector 用于测试的 Mock 检测器
type testMockDetector struct {
	name            string
	kind            Kind
	driverAvailable bool
	detectErr       error
	panicMsg        string
	closeErr        error
	calls           int
}

func (d *testMockDetector) Name() string {
	return d.name
}

func (d *testMockDetector) Kind() Kind {
	if d.kind == "" {
		return KindCUDA
	}
	return d.kind
}

func (d *testMockDetector) Detect(ctx context.Context) (*HardwareType, error) {
	d.calls++
	if d.panicMsg != "" {
		panic(d.panicMsg)
	}
	if d.detectErr != nil {
		return nil, d.detectErr
	}
	return &HardwareType{
		Vendor:          "test",
		Kind:            d.Kind(),
		DriverAvailable: d.driverAvailable,
		DriverVersion:   "1.0",
	}, nil
}

func (d *testMockDetector) Close() error {
	return d.closeErr
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry should return non-nil")
	}

	if len(r.List()) != 0 {
		t.Errorf("New registry should be empty")
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register(&testMockDetector{name: "test-detector", driverAvailable: true})

	if len(r.List()) != 1 {
		t.Errorf("Registry should have 1 detector")
	}

	// 同名检测器替换而不是追加
	r.Register(&testMockDetector{name: "test-detector", driverAvailable: false})
	if len(r.List()) != 1 {
		t.Errorf("Re-registering should replace, got %d detectors", len(r.List()))
	}
}

func TestRegistry_Get(t *testing.T) {
	r := NewRegistry()
	r.Register(&testMockDetector{name: "test-detector", driverAvailable: true})

	d, ok := r.Get("test-detector")
	if !ok {
		t.Fatal("Should find registered detector")
	}
	if d.Name() != "test-detector" {
		t.Errorf("Expected name 'test-detector', got '%s'", d.Name())
	}

	_, ok = r.Get("nonexistent")
	if ok {
		t.Error("Should not find unregistered detector")
	}
}

func TestRegistry_ListPriorityOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(&testMockDetector{name: "cpu", kind: KindCPU})
	r.Register(&testMockDetector{name: "cuda", kind: KindCUDA})
	r.Register(&testMockDetector{name: "metal", kind: KindMetal})

	list := r.List()
	want := []string{"metal", "cuda", "cpu"}
	if len(list) != len(want) {
		t.Fatalf("Expected %d detectors, got %d", len(want), len(list))
	}
	for i, d := range list {
		if d.Name() != want[i] {
			t.Errorf("List()[%d] = %s, want %s", i, d.Name(), want[i])
		}
	}

	d, ok := r.ForKind(KindCUDA)
	if !ok || d.Name() != "cuda" {
		t.Errorf("ForKind(cuda) = %v, %v", d, ok)
	}
}

func TestRegistry_Probe(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	tests := []struct {
		name      string
		detector  *testMockDetector
		wantClass string
	}{
		{
			name:     "available",
			detector: &testMockDetector{name: "ok", driverAvailable: true},
		},
		{
			name:      "driver not available",
			detector:  &testMockDetector{name: "off"},
			wantClass: ClassUnavailable,
		},
		{
			name:      "unavailable error",
			detector:  &testMockDetector{name: "absent", detectErr: Unavailable("absent", "library not found")},
			wantClass: ClassUnavailable,
		},
		{
			name:      "plain error becomes query failure",
			detector:  &testMockDetector{name: "broken", detectErr: errors.New("driver mismatch")},
			wantClass: ClassQueryFailed,
		},
		{
			name:      "panic becomes query failure",
			detector:  &testMockDetector{name: "panicky", panicMsg: "boom"},
			wantClass: ClassQueryFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Probe(ctx, tt.detector)
			if got := Classify(err); got != tt.wantClass {
				t.Errorf("Classify(Probe()) = %q, want %q (err=%v)", got, tt.wantClass, err)
			}
		})
	}
}

func TestRegistry_ProbePanicMessage(t *testing.T) {
	r := NewRegistry()
	_, err := r.Probe(context.Background(), &testMockDetector{name: "panicky", panicMsg: "nil handle"})
	if err == nil {
		t.Fatal("Expected error from panicking detector")
	}
	if !strings.Contains(err.Error(), "backend query failed: panicky") {
		t.Errorf("Unexpected error message: %v", err)
	}
	if !strings.Contains(err.Error(), "nil handle") {
		t.Errorf("Error should carry the panic value: %v", err)
	}
}

func TestRegistry_FindAvailable(t *testing.T) {
	ctx := context.Background()

	r := NewRegistry()
	r.Register(&testMockDetector{name: "cpu", kind: KindCPU, driverAvailable: true})
	r.Register(&testMockDetector{name: "cuda", kind: KindCUDA, driverAvailable: true})
	r.Register(&testMockDetector{name: "metal", kind: KindMetal, driverAvailable: false})

	d, err := r.FindAvailable(ctx)
	if err != nil {
		t.Fatalf("FindAvailable failed: %v", err)
	}
	if d.Name() != "cuda" {
		t.Errorf("Expected 'cuda' detector, got '%s'", d.Name())
	}

	// 测试无可用检测器
	r2 := NewRegistry()
	r2.Register(&testMockDetector{name: "test", driverAvailable: false})

	if _, err = r2.FindAvailable(ctx); err == nil {
		t.Error("Should return error when no available detector")
	}

	// 测试检测出错
	r3 := NewRegistry()
	r3.Register(&testMockDetector{name: "error", detectErr: errors.New("detect error")})

	if _, err = r3.FindAvailable(ctx); err == nil {
		t.Error("Should return error when detection fails")
	}
}

func TestRegistry_DetectAll(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	r.Register(&testMockDetector{name: "good-detector", kind: KindMetal, driverAvailable: true})
	r.Register(&testMockDetector{name: "unavailable-detector", kind: KindCUDA})
	r.Register(&testMockDetector{name: "error-detector", kind: KindCPU, detectErr: errors.New("detection failed")})

	results := r.DetectAll(ctx)
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	for _, result := range results {
		switch result.DetectorName {
		case "good-detector":
			if !result.IsAvailable() {
				t.Error("good-detector should be available")
			}
		case "unavailable-detector":
			if result.IsAvailable() {
				t.Error("unavailable-detector should not be available")
			}
			if !IsUnavailable(result.Error) {
				t.Errorf("unavailable-detector error = %v", result.Error)
			}
		case "error-detector":
			if result.IsAvailable() {
				t.Error("error-detector should not be available")
			}
			if !IsQueryFailed(result.Error) {
				t.Errorf("error-detector error = %v", result.Error)
			}
		}
	}
}

func TestRegistry_Close(t *testing.T) {
	r := NewRegistry()
	r.Register(&testMockDetector{name: "test", driverAvailable: true})

	if err := r.Close(); err != nil {
		t.Errorf("Close should not error: %v", err)
	}

	r.Register(&testMockDetector{name: "a", closeErr: errors.New("a failed")})
	r.Register(&testMockDetector{name: "b", closeErr: errors.New("b failed")})

	err := r.Close()
	if err == nil {
		t.Fatal("Close should aggregate detector errors")
	}
	if !strings.Contains(err.Error(), "a failed") || !strings.Contains(err.Error(), "b failed") {
		t.Errorf("Aggregated error missing parts: %v", err)
	}
}

func TestDetectionResult_IsAvailable(t *testing.T) {
	tests := []struct {
		name     string
		result   *DetectionResult
		expected bool
	}{
		{
			name: "available",
			result: &DetectionResult{
				HardwareType: &HardwareType{DriverAvailable: true},
			},
			expected: true,
		},
		{
			name: "driver not available",
			result: &DetectionResult{
				HardwareType: &HardwareType{DriverAvailable: false},
			},
			expected: false,
		},
		{
			name: "has error",
			result: &DetectionResult{
				HardwareType: &HardwareType{DriverAvailable: true},
				Error:        errors.New("some error"),
			},
			expected: false,
		},
		{
			name:     "nil hardware type",
			result:   &DetectionResult{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.result.IsAvailable() != tt.expected {
				t.Errorf("IsAvailable() = %v, want %v", tt.result.IsAvailable(), tt.expected)
			}
		})
	}
}

func TestKind(t *testing.T) {
	if !(KindMetal.Priority() < KindCUDA.Priority() && KindCUDA.Priority() < KindCPU.Priority()) {
		t.Error("Expected priority order mps > cuda > cpu")
	}
	if Kind("tpu").IsValid() {
		t.Error("Unknown kind should not be valid")
	}

	for in, want := range map[string]Kind{"metal": KindMetal, "mps": KindMetal, "nvidia": KindCUDA, "cuda": KindCUDA, "cpu": KindCPU} {
		got, ok := ParseKind(in)
		if !ok || got != want {
			t.Errorf("ParseKind(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseKind("rocm"); ok {
		t.Error("ParseKind should reject unknown names")
	}
}

func TestClassify(t *testing.T) {
	if Classify(nil) != "" {
		t.Error("Classify(nil) should be empty")
	}
	if Classify(errors.New("x")) != ClassUnknown {
		t.Error("Plain error should classify as unknown")
	}
	wrapped := NewQueryError("cuda", Unavailable("cuda", "nested"))
	if Classify(wrapped) != ClassQueryFailed {
		t.Error("Query failure takes precedence over a wrapped unavailable error")
	}
}
