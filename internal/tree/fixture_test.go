package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const fixtureYAML = `
tag: ""
children:
  - tag: DIV
    style: { background-image: 'url("bg.png")' }
    box: { width: 10, height: 20 }
  - tag: x-card
    shadow:
      children:
        - tag: img
          attrs: { src: inner.png }
          natural: { width: 640, height: 480 }
  - tag: canvas
    canvas: { width: 2, height: 2, tainted: true }
  - tag: section
    fail: true
`

func TestFixtureDecodesAndImplementsNode(t *testing.T) {
	var f Fixture
	require.NoError(t, yaml.Unmarshal([]byte(fixtureYAML), &f))

	root := f.Node()
	assert.Equal(t, "", root.Tag())
	assert.Nil(t, root.Shadow())

	kids, err := root.Children()
	require.NoError(t, err)
	require.Len(t, kids, 4)

	assert.Equal(t, "div", kids[0].Tag())
	bg, err := kids[0].ComputedStyle("background-image")
	require.NoError(t, err)
	assert.Equal(t, `url("bg.png")`, bg)
	assert.Equal(t, Size{Width: 10, Height: 20}, kids[0].RenderedSize())

	shadow := kids[1].Shadow()
	require.NotNil(t, shadow)
	inner, err := shadow.Children()
	require.NoError(t, err)
	require.Len(t, inner, 1)
	assert.Equal(t, Size{Width: 640, Height: 480}, inner[0].NaturalSize())

	raster, ok := kids[2].(Raster)
	require.True(t, ok)
	_, err = raster.EncodePNG()
	assert.ErrorIs(t, err, ErrTainted)

	_, err = kids[3].Children()
	assert.ErrorIs(t, err, ErrFixtureFailure)
}

func TestFixtureDefaults(t *testing.T) {
	f := &Fixture{TagName: "p"}
	bg, err := f.ComputedStyle("background-image")
	require.NoError(t, err)
	assert.Equal(t, "none", bg)

	var nilFixture *Fixture
	assert.Nil(t, nilFixture.Node())
}

func TestFixturePanics(t *testing.T) {
	f := &Fixture{TagName: "div", Panic: true}
	assert.Panics(t, func() { _, _ = f.Children() })
}

func TestFindFramesInFixture(t *testing.T) {
	src := `
tag: ""
children:
  - tag: iframe
    attrs: { src: " /one.html " }
  - tag: x-host
    shadow:
      children:
        - tag: iframe
          attrs: { srcdoc: "<p>inline</p>" }
    children:
      - tag: FRAME
        attrs: { src: two.html }
  - tag: section
    fail: true
  - tag: iframe
    attrs: { src: three.html }
`
	var f Fixture
	require.NoError(t, yaml.Unmarshal([]byte(src), &f))

	frames := FindFrames(f.Node())
	assert.Equal(t, []Frame{
		{Src: "/one.html"},
		{SrcDoc: "<p>inline</p>"},
		{Src: "two.html"},
		{Src: "three.html"},
	}, frames)
}

func TestFindFramesNilRoot(t *testing.T) {
	assert.Empty(t, FindFrames(nil))
}
