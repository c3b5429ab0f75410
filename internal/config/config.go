// Package config loads imgsweep settings from an optional CUE file.
//
// The file is unified with an embedded schema (schema.cue) and must be
// concrete. Fields left out keep the defaults from Default; command-line
// flags override both.
//
// Example imgsweep.cue:
//
//	lazyAttributes: ["data-src", "data-original", "data-lazy-src", "data-hi-res"]
//	fetchTimeout:   "15s"
//	maxFrameDepth:  2
//	sort:           "size-desc"
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/imgsweep/internal/canon"
	"github.com/roach88/imgsweep/internal/discovery"
	"github.com/roach88/imgsweep/internal/locator"
)

//go:embed schema.cue
var schemaSrc string

// DefaultFile is looked up in the working directory when no --config flag
// is given.
const DefaultFile = "imgsweep.cue"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds scan, discovery and export settings.
type Config struct {
	LazyAttributes  []string
	PrivateSchemes  []string
	UserAgent       string
	FetchTimeout    time.Duration
	StaggerInterval time.Duration
	MaxFrameDepth   int
	Concurrency     int
	Sort            string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LazyAttributes:  append([]string(nil), discovery.DefaultLazyAttributes...),
		PrivateSchemes:  append([]string(nil), locator.DefaultPrivateSchemes...),
		UserAgent:       "imgsweep/1.0",
		FetchTimeout:    30 * time.Second,
		StaggerInterval: 100 * time.Millisecond,
		MaxFrameDepth:   3,
		Concurrency:     4,
		Sort:            "original",
	}
}

var knownFields = map[string]bool{
	"lazyAttributes":  true,
	"privateSchemes":  true,
	"userAgent":       true,
	"fetchTimeout":    true,
	"staggerInterval": true,
	"maxFrameDepth":   true,
	"concurrency":     true,
	"sort":            true,
}

// Load reads path. An empty path loads DefaultFile when it exists and the
// defaults otherwise; an explicit path must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data, path)
}

// Parse validates CUE source against the schema and overlays it on the
// defaults.
func Parse(data []byte, filename string) (Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue")).LookupPath(cue.ParsePath("#Config"))
	if err := schema.Err(); err != nil {
		return Config{}, fmt.Errorf("compile schema: %w", err)
	}

	user := ctx.CompileBytes(data, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalid, filename, err)
	}
	if err := checkKnownFields(user); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalid, filename, err)
	}

	v := schema.Unify(user)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalid, filename, err)
	}

	// Presence is read from the user value: the unified value also carries
	// the schema's optional fields.
	cfg := Default()
	if err := cfg.overlay(user); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalid, filename, err)
	}
	return cfg, nil
}

func checkKnownFields(v cue.Value) error {
	iter, err := v.Fields()
	if err != nil {
		return fmt.Errorf("configuration must be a struct: %w", err)
	}
	var unknown []string
	for iter.Next() {
		if label := iter.Label(); !knownFields[label] {
			unknown = append(unknown, label)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("unknown fields %v", unknown)
	}
	return nil
}

func (c *Config) overlay(v cue.Value) error {
	if list, ok, err := stringList(v, "lazyAttributes"); err != nil {
		return err
	} else if ok {
		c.LazyAttributes = list
	}
	if list, ok, err := stringList(v, "privateSchemes"); err != nil {
		return err
	} else if ok {
		c.PrivateSchemes = list
	}
	if s, ok, err := stringField(v, "userAgent"); err != nil {
		return err
	} else if ok {
		c.UserAgent = s
	}
	if s, ok, err := stringField(v, "sort"); err != nil {
		return err
	} else if ok {
		c.Sort = s
	}
	if d, ok, err := durationField(v, "fetchTimeout"); err != nil {
		return err
	} else if ok {
		c.FetchTimeout = d
	}
	if d, ok, err := durationField(v, "staggerInterval"); err != nil {
		return err
	} else if ok {
		c.StaggerInterval = d
	}
	if n, ok, err := intField(v, "maxFrameDepth"); err != nil {
		return err
	} else if ok {
		c.MaxFrameDepth = n
	}
	if n, ok, err := intField(v, "concurrency"); err != nil {
		return err
	} else if ok {
		c.Concurrency = n
	}
	return nil
}

func stringField(v cue.Value, path string) (string, bool, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return "", false, nil
	}
	s, err := f.String()
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", path, err)
	}
	return s, true, nil
}

func intField(v cue.Value, path string) (int, bool, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return 0, false, nil
	}
	n, err := f.Int64()
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", path, err)
	}
	return int(n), true, nil
}

func durationField(v cue.Value, path string) (time.Duration, bool, error) {
	s, ok, err := stringField(v, path)
	if err != nil || !ok {
		return 0, ok, err
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", path, err)
	}
	return d, true, nil
}

func stringList(v cue.Value, path string) ([]string, bool, error) {
	f := v.LookupPath(cue.ParsePath(path))
	if !f.Exists() {
		return nil, false, nil
	}
	iter, err := f.List()
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", path, err)
	}
	out := []string{}
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", path, err)
		}
		out = append(out, s)
	}
	return out, true, nil
}

// Fingerprint identifies the settings that influence discovery output.
func (c Config) Fingerprint() (string, error) {
	return canon.ConfigHash(map[string]any{
		"lazy_attributes": c.LazyAttributes,
		"private_schemes": c.PrivateSchemes,
		"max_frame_depth": c.MaxFrameDepth,
	})
}
