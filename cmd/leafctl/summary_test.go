package main

import (
	"testing"
)

func TestSummaryCommand(t *testing.T) {
	tests := []struct {
		name           string
		values         bool
		wantJSON       bool
		wantContain    []string
		wantNotContain []string
	}{
		{
			name: "text output",
			wantContain: []string{
				"[]interface {} len 4",
				"[0]: nil",
				"[1]: string",
				"[3]: float64[2 3] 6 params",
				"1 tensors, 6 params",
			},
			wantNotContain: []string{"run-7"},
		},
		{
			name:   "values shown on request",
			values: true,
			wantContain: []string{
				`[1]: string = "run-7"`,
				"[2]: int = 1000",
				"= [1 2 3 4 5 6]",
			},
		},
		{
			name:     "json output",
			wantJSON: true,
			wantContain: []string{
				`"kind": "slice"`,
				`"kind": "tensor"`,
				`"params": 6`,
				`"tensors": 1`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset flags
			quiet = false
			verbose = false
			jsonOut = tt.wantJSON
			summaryValues = tt.values
			summaryDepth = 0
			summaryElems = 8

			path := testCheckpointPath(t)
			output, err := captureOutput(t, func() error {
				return runSummary([]string{path})
			})
			if err != nil {
				t.Fatalf("runSummary() error = %v", err)
			}

			if tt.wantJSON {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
			assertNotContains(t, output, tt.wantNotContain)
		})
	}
}
