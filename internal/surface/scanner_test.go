package surface_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/imgsweep/internal/aggregate"
	"github.com/roach88/imgsweep/internal/config"
	"github.com/roach88/imgsweep/internal/discovery"
	"github.com/roach88/imgsweep/internal/surface"
	"github.com/roach88/imgsweep/internal/testutil"
)

func newScanner(t *testing.T, pages map[string]string) (*surface.Scanner, *testutil.StaticLoader) {
	t.Helper()
	loader := testutil.NewStaticLoader(pages)
	logger := testutil.DiscardLogger()
	return &surface.Scanner{
		Loader: loader,
		Engine: discovery.New(nil, discovery.WithLogger(logger)),
		Config: config.Default(),
		IDs:    testutil.NewFixedIDGenerator("scan-1"),
		Logger: logger,
	}, loader
}

func locators(records []aggregate.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Locator
	}
	return out
}

func TestScanRestricted(t *testing.T) {
	for _, target := range []string{"chrome://settings", "edge://flags", "about:blank", "view-source:https://a.test/", "CHROME://version"} {
		t.Run(target, func(t *testing.T) {
			s, loader := newScanner(t, nil)
			_, err := s.Scan(context.Background(), target)
			require.ErrorIs(t, err, surface.ErrRestricted)
			assert.Empty(t, loader.Loads())
			assert.Equal(t, "Cannot scan system restricted pages.", surface.UserMessage(err))
		})
	}
}

func TestScanPrimaryUnavailable(t *testing.T) {
	s, _ := newScanner(t, nil)

	_, err := s.Scan(context.Background(), "https://missing.test/")
	require.ErrorIs(t, err, surface.ErrUnavailable)
	assert.Equal(t, "Could not read the page. Try refreshing it.", surface.UserMessage(err))
}

func TestScanNoImages(t *testing.T) {
	s, _ := newScanner(t, map[string]string{
		"https://a.test/": `<html><body><p>text only</p></body></html>`,
	})

	res, err := s.Scan(context.Background(), "https://a.test/")
	require.ErrorIs(t, err, surface.ErrNoImages)
	require.NotNil(t, res)
	assert.Len(t, res.Surfaces, 1)
	assert.Empty(t, res.Records)
	assert.Equal(t, "No images found.", surface.UserMessage(err))
}

func TestScanFramesAfterPrimary(t *testing.T) {
	s, loader := newScanner(t, map[string]string{
		"https://a.test/dir/index.html": `<html><body>
			<img src="a.png" width="10" height="20">
			<iframe src="frame.html"></iframe>
			<iframe srcdoc='<img src="b.png"><img src="a.png">'></iframe>
		</body></html>`,
		"https://a.test/dir/frame.html": `<html><body>
			<img src="/c.png">
			<img src="a.png">
		</body></html>`,
	})

	res, err := s.Scan(context.Background(), "https://a.test/dir/index.html")
	require.NoError(t, err)

	assert.Equal(t, "scan-1", res.ScanID)
	assert.Equal(t, []string{
		"https://a.test/dir/a.png",
		"https://a.test/c.png",
		"https://a.test/dir/b.png",
	}, locators(res.Records))
	for i, r := range res.Records {
		assert.Equal(t, i, r.Index)
	}
	assert.Equal(t, 10, res.Records[0].Width)
	assert.Equal(t, 20, res.Records[0].Height)

	require.Len(t, res.Surfaces, 3)
	assert.Equal(t, "https://a.test/dir/index.html", res.Surfaces[0].Address)
	assert.Equal(t, 0, res.Surfaces[0].Depth)
	assert.Equal(t, "https://a.test/dir/frame.html", res.Surfaces[1].Address)
	assert.Equal(t, 1, res.Surfaces[1].Depth)
	assert.Equal(t, 2, res.Surfaces[1].Assets)
	assert.Equal(t, "about:srcdoc", res.Surfaces[2].Address)

	assert.Equal(t, []string{"https://a.test/dir/index.html", "https://a.test/dir/frame.html"}, loader.Loads())
}

func TestScanNestedFramesDepthFirst(t *testing.T) {
	s, _ := newScanner(t, map[string]string{
		"https://a.test/":    `<img src="/0.png"><iframe src="/f1"></iframe><iframe src="/f2"></iframe>`,
		"https://a.test/f1":  `<img src="/1.png"><iframe src="/f1a"></iframe>`,
		"https://a.test/f1a": `<img src="/1a.png">`,
		"https://a.test/f2":  `<img src="/2.png">`,
	})

	res, err := s.Scan(context.Background(), "https://a.test/")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"https://a.test/0.png",
		"https://a.test/1.png",
		"https://a.test/1a.png",
		"https://a.test/2.png",
	}, locators(res.Records))
}

func TestScanFrameDepthLimit(t *testing.T) {
	s, loader := newScanner(t, map[string]string{
		"https://a.test/":   `<img src="/0.png"><iframe src="/f1"></iframe>`,
		"https://a.test/f1": `<img src="/1.png"><iframe src="/f2"></iframe>`,
		"https://a.test/f2": `<img src="/2.png">`,
	})
	s.Config.MaxFrameDepth = 1

	res, err := s.Scan(context.Background(), "https://a.test/")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.test/0.png", "https://a.test/1.png"}, locators(res.Records))
	assert.NotContains(t, loader.Loads(), "https://a.test/f2")

	s.Config.MaxFrameDepth = 0
	res, err = s.Scan(context.Background(), "https://a.test/")
	require.NoError(t, err)
	assert.Len(t, res.Surfaces, 1)
}

func TestScanSkipsUnloadableFrames(t *testing.T) {
	s, _ := newScanner(t, map[string]string{
		"https://a.test/": `<img src="/0.png">
			<iframe src="/gone"></iframe>
			<iframe src="javascript:void(0)"></iframe>
			<iframe src="about:blank"></iframe>
			<iframe></iframe>`,
	})

	res, err := s.Scan(context.Background(), "https://a.test/")
	require.NoError(t, err)
	assert.Len(t, res.Surfaces, 1)
	assert.Equal(t, []string{"https://a.test/0.png"}, locators(res.Records))
}

func TestScanKeepsLocalFilesOffNetworkPages(t *testing.T) {
	s, loader := newScanner(t, map[string]string{
		"https://a.test/": `<img src="/0.png">
			<img src="file:///home/u/secret.txt">
			<iframe src="file:///home/u/local.html"></iframe>
			<iframe srcdoc='<iframe src="file:///home/u/local.html"></iframe><img src="file:///home/u/b.png">'></iframe>`,
		"file:///home/u/local.html": `<img src="c.png">`,
	})

	res, err := s.Scan(context.Background(), "https://a.test/")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.test/0.png"}, locators(res.Records))
	require.Len(t, res.Surfaces, 2)
	assert.Equal(t, "about:srcdoc", res.Surfaces[1].Address)
	assert.Equal(t, []string{"https://a.test/"}, loader.Loads())
}

func TestScanLocalFramesOnLocalPages(t *testing.T) {
	s, _ := newScanner(t, map[string]string{
		"file:///site/index.html": `<img src="a.png"><iframe src="file:///site/inner.html"></iframe>`,
		"file:///site/inner.html": `<img src="file:///site/b.png">`,
	})

	res, err := s.Scan(context.Background(), "file:///site/index.html")
	require.NoError(t, err)
	assert.Len(t, res.Surfaces, 2)
	assert.Equal(t, []string{"file:///site/a.png", "file:///site/b.png"}, locators(res.Records))
}

func TestScanSrcdocInheritsParentBase(t *testing.T) {
	s, _ := newScanner(t, map[string]string{
		"https://a.test/page": `<head><base href="https://cdn.test/assets/"></head>
			<body><iframe srcdoc='<img src="x.png">'></iframe></body>`,
	})

	res, err := s.Scan(context.Background(), "https://a.test/page")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.test/assets/x.png"}, locators(res.Records))
}

func TestScanCancelled(t *testing.T) {
	s, _ := newScanner(t, map[string]string{"https://a.test/": `<img src="/0.png">`})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Scan(ctx, "https://a.test/")
	require.Error(t, err)
}

// cancelAfterLoad serves one page and cancels the scan once it is loaded.
type cancelAfterLoad struct {
	cancel context.CancelFunc
}

func (l cancelAfterLoad) Load(_ context.Context, address string) (*surface.Page, error) {
	l.cancel()
	return surface.ParseDocument(address, []byte(`<img src="/0.png">`))
}

func TestScanCancelledDuringDiscovery(t *testing.T) {
	s, _ := newScanner(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Loader = cancelAfterLoad{cancel: cancel}

	res, err := s.Scan(ctx, "https://a.test/")
	require.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, surface.ErrUnavailable)
	assert.Nil(t, res)
}

func TestUUIDv7Generator(t *testing.T) {
	gen := surface.UUIDv7Generator{}
	a, b := gen.Generate(), gen.Generate()

	assert.Len(t, a, 36)
	assert.Equal(t, byte('7'), a[14])
	assert.NotEqual(t, a, b)
}
