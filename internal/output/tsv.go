// # internal/output/tsv.go
package output

import (
	"fmt"
	"strings"
)

// Report is one row of a run summary.
type Report struct {
	Sample    string
	Status    string
	Signals   int
	Reordered bool
	Output    string
	Error     string
}

type TSVGenerator struct {
	reports []Report
}

func NewTSVGenerator(reports []Report) *TSVGenerator {
	return &TSVGenerator{reports: reports}
}

func (t *TSVGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("Sample\tStatus\tSignals\tReordered\tOutput\tError\n")

	for _, r := range t.reports {
		reordered := "no"
		if r.Reordered {
			reordered = "yes"
		}
		buf.WriteString(fmt.Sprintf("%s\t%s\t%d\t%s\t%s\t%s\n",
			r.Sample, r.Status, r.Signals, reordered, r.Output, r.Error))
	}

	return buf.String(), nil
}
