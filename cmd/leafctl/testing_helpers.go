package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leafkit/leafkit/checkpoint"
	"github.com/leafkit/leafkit/tensor"
)

// testCheckpointPath writes a small mixed-leaf checkpoint and returns its path
func testCheckpointPath(t *testing.T) string {
	t.Helper()
	v := map[string]any{
		"weight": tensor.FromFloat64s([]float64{1, 2, 3, 4, 5, 6}, 2, 3),
		"bias":   (*tensor.Dense)(nil),
		"steps":  1000,
		"name":   "run-7",
	}
	path := filepath.Join(t.TempDir(), "test.lfck")
	if err := checkpoint.SaveFile(path, v); err != nil {
		t.Fatalf("failed to write checkpoint: %v", err)
	}
	return path
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	// Save original stdout
	origStdout := os.Stdout

	// Create a pipe to capture output
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}

	// Redirect stdout to pipe
	os.Stdout = w

	// Run function
	fnErr := fn()

	// Close write end and restore stdout
	w.Close()
	os.Stdout = origStdout

	// Read captured output
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	return buf.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("output is not valid JSON: %v\n%s", err, output)
	}
}

// assertContains checks that output contains each wanted substring
func assertContains(t *testing.T, output string, want []string) {
	t.Helper()
	for _, s := range want {
		if !strings.Contains(output, s) {
			t.Errorf("output missing %q\n%s", s, output)
		}
	}
}

// assertNotContains checks that output contains none of the substrings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, s := range unwanted {
		if strings.Contains(output, s) {
			t.Errorf("output should not contain %q\n%s", s, output)
		}
	}
}
