package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/imgsweep/internal/canon"
)

// GoldenDir holds golden snapshots, next to the scenarios they belong to.
const GoldenDir = "testdata/scenarios/golden"

// Snapshot returns the canonical JSON snapshot of a scenario result:
// the scenario name, the merged records and any failed surfaces.
func Snapshot(name string, result *Result) ([]byte, error) {
	records := make([]any, len(result.Records))
	for i, r := range result.Records {
		records[i] = map[string]any{
			"index":    r.Index,
			"locator":  r.Locator,
			"width":    r.Width,
			"height":   r.Height,
			"category": string(r.Category),
		}
	}

	snapshot := map[string]any{
		"scenario_name": name,
		"records":       records,
	}
	if len(result.FailedSurfaces) > 0 {
		failed := make([]any, len(result.FailedSurfaces))
		for i, f := range result.FailedSurfaces {
			failed[i] = f
		}
		snapshot["failed_surfaces"] = failed
	}
	return canon.Marshal(snapshot)
}

// RunWithGolden executes a scenario and compares its snapshot against
// GoldenDir/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
