package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkoven/pathmc/internal/storage"
)

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		ok   bool
	}{
		{
			"valid",
			"name: demo\npreset: two_state_toy\nstages:\n  - kind: sample\n    steps: 5\n    output: out.db\n",
			true,
		},
		{
			"no stages",
			"name: demo\npreset: two_state_toy\n",
			false,
		},
		{
			"no preset or config",
			"name: demo\nstages:\n  - kind: sample\n    output: out.db\n",
			false,
		},
		{
			"bad kind",
			"name: demo\npreset: two_state_toy\nstages:\n  - kind: anneal\n    output: out.db\n",
			false,
		},
		{
			"missing output",
			"name: demo\npreset: two_state_toy\nstages:\n  - kind: sample\n",
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeScenario(t, tt.body))
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunSampleStage(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "run.db")
	body := "name: smoke\npreset: two_state_toy\nstages:\n" +
		"  - kind: sample\n    steps: 3\n    output: " + out + "\n"

	sc, err := Load(writeScenario(t, body))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	results, err := Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 1 || results[0].Steps != 3 {
		t.Fatalf("results = %+v", results)
	}

	store, err := storage.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer store.Close()
	if store.Len() != 3 {
		t.Errorf("stored steps = %d, want 3", store.Len())
	}
	if _, err := store.Tag(storage.TagInitialConditions); err != nil {
		t.Errorf("final sample set not tagged: %v", err)
	}
}
