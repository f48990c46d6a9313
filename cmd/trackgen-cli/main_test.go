package main

import "testing"

func TestCheckOutputFlags(t *testing.T) {
	cases := []struct {
		name         string
		renderPrompt bool
		exportSchema bool
		output       string
		wantErr      bool
	}{
		{name: "both flags to stdout", renderPrompt: true, exportSchema: true},
		{name: "prompt to file", renderPrompt: true, output: "out.txt"},
		{name: "schema to file", exportSchema: true, output: "out.json"},
		{name: "both flags one file", renderPrompt: true, exportSchema: true, output: "out.txt", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := checkOutputFlags(tc.renderPrompt, tc.exportSchema, tc.output)
			if tc.wantErr != (err != nil) {
				t.Fatalf("wantErr=%v, got %v", tc.wantErr, err)
			}
		})
	}
}
