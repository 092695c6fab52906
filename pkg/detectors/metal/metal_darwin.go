//go:build darwin

package metal

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

var defaultSysinfo sysinfoFunc = readSysinfo

func readSysinfo() (string, bool, error) {
	version, err := unix.Sysctl("kern.osproductversion")
	if err != nil {
		return "", false, fmt.Errorf("sysctl kern.osproductversion: %w", err)
	}

	if runtime.GOARCH == "arm64" {
		return version, true, nil
	}

	// amd64 binaries under Rosetta still run on Apple Silicon
	arm64, err := unix.SysctlUint32("hw.optional.arm64")
	if err != nil {
		return version, false, nil
	}
	return version, arm64 == 1, nil
}
