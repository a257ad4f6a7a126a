package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/trace"
)

var (
	runCheckEvery int
	runStats      bool
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().IntVar(&runCheckEvery, "check-every", 0, "Run the heap checker every N operations (0: only at the end)")
	cmd.Flags().BoolVar(&runStats, "stats", false, "Print allocator statistics after each trace")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <trace>...",
		Short: "Replay traces and report utilization",
		Long: `The run command replays each trace on a fresh heap, verifies every payload,
and prints a table of operation counts, peak live bytes, final heap size and
utilization.

Example:
  heapctl run traces/*.rep
  heapctl run short1.rep --check-every 100
  heapctl run realloc.rep --mmap --max-heap 67108864 --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(args)
		},
	}
	return cmd
}

func runRun(args []string) error {
	results := make([]*trace.Result, 0, len(args))
	failed := 0

	for _, path := range args {
		printVerbose("Replaying %s\n", path)
		res, err := replayFile(path, &trace.Player{CheckEvery: runCheckEvery})
		if err != nil {
			failed++
		}
		if res != nil {
			results = append(results, res)
		}
	}

	if jsonOut {
		if err := printJSON(results); err != nil {
			return err
		}
	} else if !quiet {
		trace.Report(os.Stdout, results)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d traces failed", failed, len(args))
	}
	return nil
}

// replayFile parses path and plays it on a fresh heap. A parse failure
// yields a Result carrying only the error.
func replayFile(path string, pl *trace.Player) (*trace.Result, error) {
	tr, err := trace.ParseFile(path)
	if err != nil {
		return &trace.Result{Name: path, Err: err.Error()}, err
	}

	p, a, err := newHeap()
	if err != nil {
		return &trace.Result{Name: tr.Name, Err: err.Error()}, err
	}
	defer p.Close()

	res, err := pl.Play(a, tr)
	if runStats && !jsonOut && !quiet {
		printInfo("%s:", tr.Name)
		a.PrintStats(os.Stdout)
	}
	return res, err
}
