//go:build !darwin

package metal

var defaultSysinfo sysinfoFunc
