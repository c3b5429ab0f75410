package harness

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/imgsweep/internal/aggregate"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string             // Assertion type for categorization
	Expected string             // Human-readable expected outcome
	Actual   string             // Human-readable actual outcome
	Records  []aggregate.Record // Full inventory for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nInventory:\n")
	for _, r := range e.Records {
		fmt.Fprintf(&buf, "  [%d] %s %s %dx%d\n", r.Index, r.Category, r.Locator, r.Width, r.Height)
	}

	return buf.String()
}

func locatorsOf(records []aggregate.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Locator
	}
	return out
}

func assertRecords(result *Result, a Assertion) error {
	got := locatorsOf(result.Records)
	if slices.Equal(got, a.Locators) {
		return nil
	}
	return &AssertionError{
		Type:     AssertRecords,
		Expected: fmt.Sprintf("%v", a.Locators),
		Actual:   fmt.Sprintf("%v", got),
		Records:  result.Records,
	}
}

func assertRecord(result *Result, a Assertion) error {
	idx := *a.Index
	if idx >= len(result.Records) {
		return &AssertionError{
			Type:     AssertRecord,
			Expected: fmt.Sprintf("record at index %d", idx),
			Actual:   fmt.Sprintf("%d records", len(result.Records)),
			Records:  result.Records,
		}
	}
	r := result.Records[idx]

	var diffs []string
	if a.Locator != "" && r.Locator != a.Locator {
		diffs = append(diffs, fmt.Sprintf("locator %q != %q", r.Locator, a.Locator))
	}
	if a.Width != nil && r.Width != *a.Width {
		diffs = append(diffs, fmt.Sprintf("width %d != %d", r.Width, *a.Width))
	}
	if a.Height != nil && r.Height != *a.Height {
		diffs = append(diffs, fmt.Sprintf("height %d != %d", r.Height, *a.Height))
	}
	if a.Category != "" && string(r.Category) != a.Category {
		diffs = append(diffs, fmt.Sprintf("category %q != %q", r.Category, a.Category))
	}
	if len(diffs) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertRecord,
		Expected: fmt.Sprintf("record %d to match", idx),
		Actual:   strings.Join(diffs, "; "),
		Records:  result.Records,
	}
}

func assertCount(result *Result, a Assertion) error {
	if len(result.Records) == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertCount,
		Expected: fmt.Sprintf("%d records", *a.Count),
		Actual:   fmt.Sprintf("%d records", len(result.Records)),
		Records:  result.Records,
	}
}

func assertAbsent(result *Result, a Assertion) error {
	for _, r := range result.Records {
		if r.Locator == a.Locator {
			return &AssertionError{
				Type:     AssertAbsent,
				Expected: fmt.Sprintf("%s absent", a.Locator),
				Actual:   fmt.Sprintf("present at index %d", r.Index),
				Records:  result.Records,
			}
		}
	}
	return nil
}

// assertOrder checks that locators appear in the given relative order.
// They need not be adjacent.
func assertOrder(result *Result, a Assertion) error {
	got := locatorsOf(result.Records)
	prev := -1
	for _, loc := range a.Locators {
		pos := slices.Index(got, loc)
		if pos < 0 {
			return &AssertionError{
				Type:     AssertOrder,
				Expected: fmt.Sprintf("all locators present: %v", a.Locators),
				Actual:   fmt.Sprintf("missing locator: %s", loc),
				Records:  result.Records,
			}
		}
		if pos <= prev {
			return &AssertionError{
				Type:     AssertOrder,
				Expected: fmt.Sprintf("locators in order: %v", a.Locators),
				Actual:   fmt.Sprintf("%s at index %d is out of order", loc, pos),
				Records:  result.Records,
			}
		}
		prev = pos
	}
	return nil
}

func assertSurfaceFailed(result *Result, a Assertion) error {
	if result.surfaceFailed(*a.Index) {
		return nil
	}
	return &AssertionError{
		Type:     AssertSurfaceFailed,
		Expected: fmt.Sprintf("surface %d to fail", *a.Index),
		Actual:   fmt.Sprintf("failed surfaces: %v", result.FailedSurfaces),
		Records:  result.Records,
	}
}

func assertCatalogCount(result *Result, a Assertion) error {
	if result.Catalog == *a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertCatalogCount,
		Expected: fmt.Sprintf("%d catalog rows", *a.Count),
		Actual:   fmt.Sprintf("%d catalog rows", result.Catalog),
		Records:  result.Records,
	}
}

// EvaluateAssertions runs every assertion and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertRecords:
			err = assertRecords(result, a)
		case AssertRecord:
			err = assertRecord(result, a)
		case AssertCount:
			err = assertCount(result, a)
		case AssertAbsent:
			err = assertAbsent(result, a)
		case AssertOrder:
			err = assertOrder(result, a)
		case AssertSurfaceFailed:
			err = assertSurfaceFailed(result, a)
		case AssertCatalogCount:
			err = assertCatalogCount(result, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}
