package report

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// RenderSummary writes a human-readable table of the report.
func RenderSummary(wr io.Writer, r *Report) {
	if r == nil {
		return
	}

	fmt.Fprintf(wr, "[ACCEL REPORT] %s\n", r.Timestamp)
	fmt.Fprintf(wr, "Host: %s (%s)\n\n", r.Host.Platform, r.Host.Machine)

	table := tablewriter.NewWriter(wr)
	table.SetHeader([]string{"Runtime", "Value"})
	table.SetAutoWrapText(false)
	if r.Torch.Failed() {
		table.Append([]string{"Error", r.Torch.Error})
	} else {
		s := r.Torch.Status
		table.Append([]string{"Version", s.Version})
		table.Append([]string{"Device Selected", s.DeviceSelected})
		table.Append([]string{"MPS Available", strconv.FormatBool(s.MPSAvailable)})
		table.Append([]string{"CUDA Available", strconv.FormatBool(s.CUDAAvailable)})
		if s.CUDAVersion != "" {
			table.Append([]string{"CUDA Version", s.CUDAVersion})
		}
	}
	table.Render()
}

func writeSummaryFile(path string, r *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	RenderSummary(f, r)
	return f.Close()
}
