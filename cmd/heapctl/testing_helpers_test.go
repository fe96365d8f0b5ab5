package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/joshuapare/heapkit/arena"
	"github.com/joshuapare/heapkit/internal/testutil"
)

const shortTrace = testutil.ShortTrace

func writeTrace(t *testing.T, name, body string) string {
	t.Helper()
	return testutil.WriteTrace(t, name, body)
}

// resetFlags restores every global flag to its default.
func resetFlags() {
	verbose, quiet, jsonOut, debugLog = false, false, false, false
	allocatorFlag, strategyFlag, reallocFlag = "implicit", "first", "copy"
	chunkFlag, limitFlag, fileFlag, trackLiveFlag = 0, arena.DefaultLimit, "", false
	replayCheck = false
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan []byte)
	go func() {
		var buf bytes.Buffer
		_, _ = buf.ReadFrom(r)
		done <- buf.Bytes()
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	return string(<-done), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result any
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}
