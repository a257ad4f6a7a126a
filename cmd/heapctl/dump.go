package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/internal/trace"
	"github.com/joshuapare/heapkit/internal/writer"
)

var (
	dumpOut   string
	dumpHex   bool
	dumpStats bool
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().StringVarP(&dumpOut, "output", "o", "", "Write the final heap image to this file")
	cmd.Flags().BoolVar(&dumpHex, "hex", false, "Print a hex dump of the heap image")
	cmd.Flags().BoolVar(&dumpStats, "stats", false, "Print allocator statistics")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <trace>",
		Short: "Replay a trace and dump the final heap",
		Long: `The dump command replays one trace and prints every block of the final
heap, header and footer tags included. The raw heap image can also be
written to a file or printed as hex.

Example:
  heapctl dump short1.rep
  heapctl dump realloc.rep --stats
  heapctl dump short1.rep -o short1.img`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
	return cmd
}

func runDump(args []string) error {
	path := args[0]
	printVerbose("Replaying %s\n", path)

	tr, err := trace.ParseFile(path)
	if err != nil {
		return err
	}
	p, a, err := newHeap()
	if err != nil {
		return err
	}
	defer p.Close()

	if _, err := (&trace.Player{}).Play(a, tr); err != nil {
		return fmt.Errorf("replay %s: %w", tr.Name, err)
	}

	if !quiet {
		a.Check(os.Stdout, true)
		if dumpStats {
			a.PrintStats(os.Stdout)
		}
		if dumpHex {
			fmt.Fprint(os.Stdout, hex.Dump(a.Bytes()))
		}
	}

	if dumpOut != "" {
		w := &writer.FileWriter{Path: dumpOut}
		if err := w.WriteImage(a.Bytes()); err != nil {
			return fmt.Errorf("write %s: %w", dumpOut, err)
		}
		printInfo("Wrote %d bytes to %s\n", a.HeapSize(), dumpOut)
	}
	return nil
}
