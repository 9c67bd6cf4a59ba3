package verify

import (
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// Report collects verification checks in execution order.
type Report struct {
	Checks []Check
}

func (r *Report) add(c Check) {
	r.Checks = append(r.Checks, c)
}

// Failed returns the number of failed checks.
func (r *Report) Failed() int {
	failed := 0
	for _, c := range r.Checks {
		if !c.Pass {
			failed++
		}
	}
	return failed
}

// AllPassed reports whether every check matched.
func (r *Report) AllPassed() bool {
	return r.Failed() == 0
}

// Render writes the pass/fail table to w.
func (r *Report) Render(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Check", "Source", "Target", "Status"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, c := range r.Checks {
		status := color.GreenString("OK")
		if !c.Pass {
			status = color.RedString("MISMATCH")
		}
		table.Append([]string{c.Name, c.Source, c.Target, status})
	}

	table.Render()
}
