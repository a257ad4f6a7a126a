package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/heapkit/heap"
	"github.com/joshuapare/heapkit/heap/alloc"
	"github.com/joshuapare/heapkit/internal/logger"
)

var (
	// Global flags
	verbose bool
	quiet   bool
	jsonOut bool

	// Heap configuration
	maxHeap   int
	useMmap   bool
	chunkSize int
	buffer    int
)

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Replay allocation traces against the heapkit allocator",
	Long: `heapctl replays malloc-lab style allocation traces (.rep files) against
the heapkit segregated free-list allocator. Every payload is filled with a
pattern and verified before it is freed or resized, and the heap checker can
validate the whole heap as the trace runs.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.Init(logger.Options{Enabled: true, Output: os.Stderr, Level: slog.LevelDebug})
		}
	},
	SilenceUsage: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")

	rootCmd.PersistentFlags().IntVar(&maxHeap, "max-heap", heap.DefaultMaxSize, "Maximum heap size in bytes")
	rootCmd.PersistentFlags().BoolVar(&useMmap, "mmap", false, "Back the heap with an anonymous memory mapping")
	rootCmd.PersistentFlags().IntVar(&chunkSize, "chunk", 4096, "Minimum heap growth in bytes")
	rootCmd.PersistentFlags().IntVar(&buffer, "buffer", 128, "Realloc growth buffer in bytes")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newHeap builds a provider and allocator from the heap flags. The caller
// closes the provider.
func newHeap() (heap.Provider, *alloc.Allocator, error) {
	var (
		p   heap.Provider
		err error
	)
	if useMmap {
		p, err = heap.NewMapped(maxHeap)
		if err != nil {
			return nil, nil, err
		}
	} else {
		p = heap.NewSlice(maxHeap)
	}

	a, err := alloc.New(p,
		alloc.WithChunkSize(chunkSize),
		alloc.WithGrowthBuffer(buffer),
		alloc.WithLogger(logger.L),
	)
	if err != nil {
		_ = p.Close()
		return nil, nil, err
	}
	return p, a, nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
