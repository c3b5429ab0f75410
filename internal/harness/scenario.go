package harness

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/imgsweep/internal/tree"
)

// Scenario defines a discovery scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// ScanID is the catalog scan ID. Defaults to "test-scan-default".
	ScanID string `yaml:"scan_id,omitempty"`

	// LazyAttributes overrides the engine's lazy-load attribute chain.
	LazyAttributes []string `yaml:"lazy_attributes,omitempty"`

	// PrivateSchemes overrides the rejected private namespaces.
	PrivateSchemes []string `yaml:"private_schemes,omitempty"`

	// Handles are the ephemeral handles live during the walk, keyed by
	// locator.
	Handles map[string]Handle `yaml:"handles,omitempty"`

	// Revoked handles fail to resolve.
	Revoked []string `yaml:"revoked,omitempty"`

	// Surfaces are discovered in order and merged.
	Surfaces []SurfaceSpec `yaml:"surfaces"`

	// Assertions validate the merged inventory.
	Assertions []Assertion `yaml:"assertions"`
}

// Handle is the content behind an ephemeral handle.
type Handle struct {
	MIME string `yaml:"mime,omitempty"`
	// Data is base64.
	Data string `yaml:"data"`
}

// SurfaceSpec is one surface: a location plus a tree.
type SurfaceSpec struct {
	// URL is the surface's own address.
	URL string `yaml:"url"`

	// Base overrides the document base, like a <base href>.
	Base string `yaml:"base,omitempty"`

	// Tree is a fixture tree. Exactly one of Tree and HTML is set.
	Tree *tree.Fixture `yaml:"tree,omitempty"`

	// HTML is a document parsed with the HTML tree adapter.
	HTML string `yaml:"html,omitempty"`
}

// Assertion validates the merged inventory.
type Assertion struct {
	// Type specifies the assertion type:
	// - "records": locators are exactly the inventory, in order
	// - "record": the record at index matches the given fields
	// - "count": the inventory has exactly count records
	// - "absent": locator is not in the inventory
	// - "order": locators appear in this relative order
	// - "surface_failed": surface at index failed as a whole
	// - "catalog_count": the catalog holds exactly count asset rows
	Type string `yaml:"type"`

	Locators []string `yaml:"locators,omitempty"`
	Locator  string   `yaml:"locator,omitempty"`
	Index    *int     `yaml:"index,omitempty"`
	Width    *int     `yaml:"width,omitempty"`
	Height   *int     `yaml:"height,omitempty"`
	Category string   `yaml:"category,omitempty"`
	Count    *int     `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertRecords       = "records"
	AssertRecord        = "record"
	AssertCount         = "count"
	AssertAbsent        = "absent"
	AssertOrder         = "order"
	AssertSurfaceFailed = "surface_failed"
	AssertCatalogCount  = "catalog_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML with strict field checking.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Surfaces) == 0 {
		return fmt.Errorf("surfaces list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, surf := range s.Surfaces {
		if surf.URL == "" {
			return fmt.Errorf("surfaces[%d]: url is required", i)
		}
		if (surf.Tree == nil) == (surf.HTML == "") {
			return fmt.Errorf("surfaces[%d]: exactly one of tree and html is required", i)
		}
	}

	for loc, h := range s.Handles {
		if _, err := base64.StdEncoding.DecodeString(h.Data); err != nil {
			return fmt.Errorf("handles[%s]: data is not base64: %w", loc, err)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, len(s.Surfaces)); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, surfaces int) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertRecords:
		if a.Locators == nil {
			return fmt.Errorf("assertions[%d]: locators is required for records (use [] for none)", index)
		}
	case AssertRecord:
		if a.Index == nil || *a.Index < 0 {
			return fmt.Errorf("assertions[%d]: non-negative index is required for record", index)
		}
	case AssertCount, AssertCatalogCount:
		if a.Count == nil || *a.Count < 0 {
			return fmt.Errorf("assertions[%d]: non-negative count is required for %s", index, a.Type)
		}
	case AssertAbsent:
		if a.Locator == "" {
			return fmt.Errorf("assertions[%d]: locator is required for absent", index)
		}
	case AssertOrder:
		if len(a.Locators) < 2 {
			return fmt.Errorf("assertions[%d]: at least two locators are required for order", index)
		}
	case AssertSurfaceFailed:
		if a.Index == nil || *a.Index < 0 || *a.Index >= surfaces {
			return fmt.Errorf("assertions[%d]: index must name a surface for surface_failed", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
