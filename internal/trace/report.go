package trace

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Report writes a results table to w, one row per replay plus a summary.
//
// Example:
//
//	trace                 ops      peak      heap   util  valid
//	binary-bal.rep     12,000   187,928   304,952  61.6%  yes
//	realloc-bal.rep    14,401   614,784   623,096  98.7%  yes
//	-------------------------------------------------------------
//	total              26,401                      80.1%  2/2
func Report(w io.Writer, results []*Result) {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "%-18s %9s %11s %11s %6s  %s\n", "trace", "ops", "peak", "heap", "util", "valid")

	var (
		ops   int
		util  float64
		valid int
	)
	for _, r := range results {
		mark := "no"
		if r.Valid() {
			mark = "yes"
			valid++
		}
		p.Fprintf(w, "%-18s %9d %11d %11d %5.1f%%  %s\n",
			r.Name, r.Ops, r.PeakLive, r.HeapSize, 100*r.Utilization, mark)
		if r.Err != "" {
			p.Fprintf(w, "    %s\n", r.Err)
		}
		ops += r.Ops
		util += r.Utilization
	}
	if len(results) == 0 {
		return
	}

	p.Fprintf(w, "%s\n", "-------------------------------------------------------------")
	p.Fprintf(w, "%-18s %9d %23s %5.1f%%  %d/%d\n",
		"total", ops, "", 100*util/float64(len(results)), valid, len(results))
}
