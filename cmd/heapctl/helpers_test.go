package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshuapare/heapkit/heap"
)

// testTracePath returns the path to a trace under internal/trace/testdata.
func testTracePath(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join("..", "..", "internal", "trace", "testdata", name)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("test trace not found: %s", path)
	}
	return path
}

// resetFlags restores every global flag to its default.
func resetFlags() {
	verbose, quiet, jsonOut = false, false, false
	maxHeap, useMmap, chunkSize, buffer = heap.DefaultMaxSize, false, 4096, 128
	runCheckEvery, runStats = 0, false
	dumpOut, dumpHex, dumpStats = "", false, false
}

// captureOutput captures stdout while running fn. The pipe is drained
// concurrently so large dumps cannot block the writer.
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.String()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	return <-done, fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}
