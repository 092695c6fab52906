package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/zrs-products/accel-report/pkg/detectors"
)

func TestMockDetector_Default(t *testing.T) {
	detector := NewMockDetector(nil)
	defer detector.Close()

	hwType, err := detector.Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() failed: %v", err)
	}

	if hwType.Kind != detectors.KindCUDA {
		t.Errorf("Expected kind 'cuda', got '%s'", hwType.Kind)
	}
	if !hwType.DriverAvailable {
		t.Error("Expected driver to be available")
	}
	if hwType.DriverVersion == "" {
		t.Error("Expected driver version to be set")
	}
	if detector.Calls() != 1 {
		t.Errorf("Expected 1 call, got %d", detector.Calls())
	}
}

func TestMockDetector_Name(t *testing.T) {
	if got := Available(detectors.KindMetal).Name(); got != "mps-mock" {
		t.Errorf("Expected generated name 'mps-mock', got '%s'", got)
	}
	if got := NewMockDetector(&Config{Name: "custom", Kind: detectors.KindCPU}).Name(); got != "custom" {
		t.Errorf("Expected name 'custom', got '%s'", got)
	}
}

func TestMockDetector_Variants(t *testing.T) {
	ctx := context.Background()

	if _, err := Unavailable(detectors.KindCUDA).Detect(ctx); !detectors.IsUnavailable(err) {
		t.Errorf("Unavailable() should return ErrBackendUnavailable, got %v", err)
	}

	if _, err := Failing(detectors.KindCUDA, errors.New("driver mismatch")).Detect(ctx); !detectors.IsQueryFailed(err) {
		t.Errorf("Failing() should return BackendQueryError, got %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("Panicking() should panic on Detect")
		}
	}()
	_, _ = Panicking(detectors.KindMetal, "boom").Detect(ctx)
}
