package export

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/imgsweep/internal/aggregate"
	"github.com/roach88/imgsweep/internal/discovery"
	"github.com/roach88/imgsweep/internal/locator"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func gifBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewPaletted(image.Rect(0, 0, w, h), color.Palette{color.Black, color.White})
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, img, nil))
	return buf.Bytes()
}

func rec(index int, loc string) aggregate.Record {
	return aggregate.Record{Asset: discovery.Asset{Locator: loc, Category: discovery.CategoryImage}, Index: index}
}

type server struct {
	mu    sync.Mutex
	times []time.Time
	ua    string
}

func newServer(t *testing.T, files map[string][]byte) (*httptest.Server, *server) {
	t.Helper()
	s := &server{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.times = append(s.times, time.Now())
		s.ua = r.Header.Get("User-Agent")
		s.mu.Unlock()

		data, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv, s
}

func TestSaveDataLocator(t *testing.T) {
	dir := t.TempDir()
	r := &Retriever{Dir: dir}
	payload := pngBytes(t, 2, 3)

	path, err := r.Save(context.Background(), 0, rec(0, locator.EncodeDataURL("image/png", payload)))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "image_1.png"), path)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestSaveHTTPKeepsSniffedExtension(t *testing.T) {
	payload := gifBytes(t, 4, 4)
	srv, s := newServer(t, map[string][]byte{"/anim.gif": payload})
	dir := t.TempDir()
	r := &Retriever{Client: srv.Client(), Dir: dir, UserAgent: "imgsweep-test"}

	path, err := r.Save(context.Background(), 4, rec(9, srv.URL+"/anim.gif"))
	require.NoError(t, err)
	assert.Equal(t, "image_5.gif", filepath.Base(path))
	assert.Equal(t, "imgsweep-test", s.ua)
}

func TestSaveConvertPNG(t *testing.T) {
	srv, _ := newServer(t, map[string][]byte{"/anim.gif": gifBytes(t, 4, 5)})
	r := &Retriever{Client: srv.Client(), Dir: t.TempDir(), ConvertPNG: true}

	path, err := r.Save(context.Background(), 0, rec(0, srv.URL+"/anim.gif"))
	require.NoError(t, err)
	assert.Equal(t, "image_1.png", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 4, cfg.Width)
	assert.Equal(t, 5, cfg.Height)
}

func TestSaveConvertRejectsUndecodable(t *testing.T) {
	r := &Retriever{Dir: t.TempDir(), ConvertPNG: true}

	_, err := r.Save(context.Background(), 0, rec(0, "data:image/png;base64,AAAA"))
	require.Error(t, err)
}

func TestFetchErrors(t *testing.T) {
	srv, _ := newServer(t, nil)
	r := &Retriever{Client: srv.Client()}

	_, _, err := r.Fetch(context.Background(), srv.URL+"/missing.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, _, err = r.Fetch(context.Background(), "ftp://a.test/x.png")
	require.ErrorIs(t, err, ErrUnsupportedLocator)

	_, _, err = r.Fetch(context.Background(), "data:image/png;base64,%%%")
	require.Error(t, err)
}

func TestFetchFileLocator(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.png")
	payload := pngBytes(t, 1, 1)
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	data, mime, err := (&Retriever{}).Fetch(context.Background(), "file://"+filepath.ToSlash(path))
	require.NoError(t, err)
	assert.Equal(t, payload, data)
	assert.Equal(t, "image/png", mime)
}

func TestSaveAllContinuesPastFailures(t *testing.T) {
	srv, _ := newServer(t, map[string][]byte{
		"/a.png": pngBytes(t, 1, 1),
		"/c.png": pngBytes(t, 1, 1),
	})
	dir := t.TempDir()
	r := &Retriever{Client: srv.Client(), Dir: dir}

	paths, err := r.SaveAll(context.Background(), []aggregate.Record{
		rec(0, srv.URL+"/a.png"),
		rec(1, srv.URL+"/b.png"),
		rec(2, srv.URL+"/c.png"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
	assert.Equal(t, []string{
		filepath.Join(dir, "image_1.png"),
		filepath.Join(dir, "image_3.png"),
	}, paths)
}

func TestSaveAllStaggers(t *testing.T) {
	payload := pngBytes(t, 1, 1)
	srv, s := newServer(t, map[string][]byte{"/a.png": payload, "/b.png": payload, "/c.png": payload})
	r := &Retriever{Client: srv.Client(), Dir: t.TempDir(), StaggerInterval: 40 * time.Millisecond}

	_, err := r.SaveAll(context.Background(), []aggregate.Record{
		rec(0, srv.URL+"/a.png"),
		rec(1, srv.URL+"/b.png"),
		rec(2, srv.URL+"/c.png"),
	})
	require.NoError(t, err)

	s.mu.Lock()
	defer s.mu.Unlock()
	require.Len(t, s.times, 3)
	assert.GreaterOrEqual(t, s.times[2].Sub(s.times[0]), 70*time.Millisecond)
}

func TestSaveAllCancelled(t *testing.T) {
	r := &Retriever{Dir: t.TempDir(), StaggerInterval: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	paths, err := r.SaveAll(ctx, []aggregate.Record{rec(0, "data:image/png;base64,AAAA")})
	require.Error(t, err)
	assert.Empty(t, paths)
}

func TestRefineAll(t *testing.T) {
	srv, _ := newServer(t, map[string][]byte{"/a.png": pngBytes(t, 7, 9)})
	r := &Retriever{Client: srv.Client()}

	known := rec(0, srv.URL+"/missing.png")
	known.Width, known.Height = 3, 3
	records := []aggregate.Record{
		known,
		rec(1, srv.URL+"/a.png"),
		rec(2, srv.URL+"/missing.png"),
	}

	got := r.RefineAll(context.Background(), records)
	require.Len(t, got, 3)
	assert.Equal(t, known, got[0])
	assert.Equal(t, 7, got[1].Width)
	assert.Equal(t, 9, got[1].Height)
	assert.Equal(t, 1, got[1].Index)
	assert.Equal(t, records[2], got[2])
	assert.Equal(t, 0, records[1].Width)
}
