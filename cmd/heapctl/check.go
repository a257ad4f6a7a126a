package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/trace"
)

func init() {
	rootCmd.AddCommand(newCheckCmd())
}

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <trace>",
		Short: "Replay a trace with the heap checker after every operation",
		Long: `The check command replays one trace and validates the whole heap after
every operation. On the first violation it prints a block-by-block dump of
the heap and the failing operation.

Example:
  heapctl check short1.rep
  heapctl check realloc.rep --buffer 0`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(args)
		},
	}
	return cmd
}

func runCheck(args []string) error {
	path := args[0]
	printVerbose("Checking %s\n", path)

	pl := &trace.Player{CheckEvery: 1}
	if !quiet && !jsonOut {
		pl.Dump = os.Stdout
	}
	res, err := replayFile(path, pl)

	if jsonOut {
		if jerr := printJSON(res); jerr != nil {
			return jerr
		}
		return err
	}

	if err != nil {
		var oe *trace.OpError
		if errors.As(err, &oe) {
			printInfo("\nFailed at op %d (line %d): %s id %d size %d\n", oe.Index, oe.Op.Line, oe.Op.Kind, oe.Op.ID, oe.Op.Size)
		}
		printInfo("\nResult: ✗ INVALID\n")
		return err
	}

	printInfo("%s: %d ops, %d checks, heap %d bytes, utilization %.1f%%\n",
		res.Name, res.Ops, res.Checks, res.HeapSize, 100*res.Utilization)
	printInfo("\nResult: ✓ VALID\n")
	return nil
}
