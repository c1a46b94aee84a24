package main

import (
	"testing"
)

func TestInspectCommand(t *testing.T) {
	tests := []struct {
		name           string
		verbose        bool
		wantJSON       bool
		wantContain    []string
		wantNotContain []string
	}{
		{
			name:    "text output",
			verbose: false,
			wantContain: []string{
				"Version: 1",
				"Leaves: 4",
				"nil",
				"run-7",
				"1000",
				"float64[2 3]",
				"6 elems",
				"1 tensors, 6 params",
			},
			wantNotContain: []string{"Structure:"},
		},
		{
			name:        "verbose shows structure",
			verbose:     true,
			wantContain: []string{"Structure: {"},
		},
		{
			name:     "json output",
			wantJSON: true,
			wantContain: []string{
				`"version": 1`,
				`"kind": "tensor"`,
				`"dtype": "float64"`,
				`"structure"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset flags
			quiet = false
			verbose = tt.verbose
			jsonOut = tt.wantJSON

			path := testCheckpointPath(t)
			output, err := captureOutput(t, func() error {
				return runInspect([]string{path})
			})
			if err != nil {
				t.Fatalf("runInspect() error = %v", err)
			}

			if tt.wantJSON {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
			assertNotContains(t, output, tt.wantNotContain)
		})
	}
}

func TestInspectCommandMissingFile(t *testing.T) {
	quiet = true
	verbose = false
	jsonOut = false

	_, err := captureOutput(t, func() error {
		return runInspect([]string{"no-such-file.lfck"})
	})
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
