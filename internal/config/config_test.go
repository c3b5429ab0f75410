package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOverlaysDefaults(t *testing.T) {
	src := `
lazyAttributes: ["data-hi-res", "data-src"]
fetchTimeout:   "15s"
maxFrameDepth:  1
sort:           "size-desc"
`
	cfg, err := Parse([]byte(src), "imgsweep.cue")
	require.NoError(t, err)

	want := Default()
	want.LazyAttributes = []string{"data-hi-res", "data-src"}
	want.FetchTimeout = 15 * time.Second
	want.MaxFrameDepth = 1
	want.Sort = "size-desc"
	assert.Equal(t, want, cfg)
}

func TestParseEmptyKeepsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""), "empty.cue")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad sort":        `sort: "random"`,
		"bad duration":    `staggerInterval: "soon"`,
		"depth too large": `maxFrameDepth: 99`,
		"zero workers":    `concurrency: 0`,
		"wrong type":      `userAgent: 42`,
		"unknown field":   `colour: "red"`,
		"syntax error":    `sort: [`,
		"bad scheme":      `privateSchemes: ["not a scheme"]`,
		"not concrete":    `maxFrameDepth: int`,
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(src), "bad.cue")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.cue"))
	assert.Error(t, err, "explicit path must exist")

	path := filepath.Join(dir, "imgsweep.cue")
	require.NoError(t, os.WriteFile(path, []byte(`concurrency: 2`), 0644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Concurrency)
}

func TestLoadDefaultFileOptional(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, os.WriteFile(DefaultFile, []byte(`userAgent: "custom/2"`), 0644))
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "custom/2", cfg.UserAgent)
}

func TestFingerprintStable(t *testing.T) {
	a, err := Default().Fingerprint()
	require.NoError(t, err)
	b, err := Default().Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other := Default()
	other.MaxFrameDepth = 0
	c, err := other.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}
