// Package export retrieves inventory records and writes them to disk.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/roach88/imgsweep/internal/aggregate"
	"github.com/roach88/imgsweep/internal/locator"
	"github.com/roach88/imgsweep/internal/present"
)

// DefaultStaggerInterval spaces bulk retrievals.
const DefaultStaggerInterval = 100 * time.Millisecond

const maxAssetBytes = 64 << 20

// ErrUnsupportedLocator is returned for locators that cannot be retrieved.
var ErrUnsupportedLocator = errors.New("unsupported locator")

// Retriever fetches asset bytes and saves them under Dir.
type Retriever struct {
	Client *http.Client
	Dir    string
	// ConvertPNG re-encodes every saved asset as PNG.
	ConvertPNG bool
	UserAgent  string
	// StaggerInterval is the minimum gap between bulk retrievals. Zero
	// disables pacing.
	StaggerInterval time.Duration
	Logger          *slog.Logger
}

// Fetch returns the bytes behind loc and their media type, if known.
func (r *Retriever) Fetch(ctx context.Context, loc string) ([]byte, string, error) {
	if locator.IsData(loc) {
		mime, data, err := locator.DecodeDataURL(loc)
		if err != nil {
			return nil, "", fmt.Errorf("fetch data locator: %w", err)
		}
		return data, mime, nil
	}

	u, err := url.Parse(loc)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", loc, err)
	}
	switch u.Scheme {
	case "http", "https":
		return r.fetchHTTP(ctx, loc)
	case "file":
		data, err := os.ReadFile(filepath.FromSlash(u.Path))
		if err != nil {
			return nil, "", fmt.Errorf("fetch %s: %w", loc, err)
		}
		return data, http.DetectContentType(data), nil
	default:
		return nil, "", fmt.Errorf("fetch %s: %w", loc, ErrUnsupportedLocator)
	}
}

func (r *Retriever) fetchHTTP(ctx context.Context, loc string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", loc, err)
	}
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}
	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", loc, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("fetch %s: unexpected status %s", loc, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes))
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", loc, err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// Save retrieves rec and writes it as image_<pos+1>.<ext>. It returns the
// written path.
func (r *Retriever) Save(ctx context.Context, pos int, rec aggregate.Record) (string, error) {
	data, _, err := r.Fetch(ctx, rec.Locator)
	if err != nil {
		return "", err
	}

	name := present.Filename(pos, rec.Locator)
	if r.ConvertPNG {
		data, err = ToPNG(data)
		if err != nil {
			return "", fmt.Errorf("convert %s: %w", shorten(rec.Locator), err)
		}
		name = present.FilenameExt(pos, "png")
	}

	if err := os.MkdirAll(r.dir(), 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(r.dir(), name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	r.logger().Debug("asset saved", "path", path, "index", rec.Index, "bytes", len(data))
	return path, nil
}

// SaveAll saves records in order, pacing starts by StaggerInterval. A
// failed record does not stop the batch; failures are joined into the
// returned error. Paths holds the written files, in order.
func (r *Retriever) SaveAll(ctx context.Context, records []aggregate.Record) ([]string, error) {
	limiter := rate.NewLimiter(rate.Inf, 1)
	if r.StaggerInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(r.StaggerInterval), 1)
	}

	var (
		paths []string
		errs  []error
	)
	for pos, rec := range records {
		if err := limiter.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("export: %w", err))
			break
		}
		path, err := r.Save(ctx, pos, rec)
		if err != nil {
			r.logger().Warn("asset not saved", "index", rec.Index, "error", err)
			errs = append(errs, fmt.Errorf("record %d: %w", rec.Index, err))
			continue
		}
		paths = append(paths, path)
	}
	return paths, errors.Join(errs...)
}

// ToPNG decodes data with the registered image decoders and re-encodes it
// as PNG.
func ToPNG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Measure returns the pixel size of encoded image data.
func Measure(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

func (r *Retriever) dir() string {
	if r.Dir == "" {
		return "."
	}
	return r.Dir
}

func (r *Retriever) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func shorten(s string) string {
	if len(s) <= 64 {
		return s
	}
	return strings.TrimSpace(s[:61]) + "..."
}

// RefineAll fills unknown dimensions by fetching and measuring each
// incomplete record. Records that cannot be fetched or decoded are
// returned unchanged.
func (r *Retriever) RefineAll(ctx context.Context, records []aggregate.Record) []aggregate.Record {
	out := make([]aggregate.Record, len(records))
	for i, rec := range records {
		out[i] = rec
		if rec.Width > 0 && rec.Height > 0 {
			continue
		}
		data, _, err := r.Fetch(ctx, rec.Locator)
		if err != nil {
			r.logger().Debug("refine skipped", "index", rec.Index, "error", err)
			continue
		}
		w, h, err := Measure(data)
		if err != nil {
			r.logger().Debug("refine skipped", "index", rec.Index, "error", err)
			continue
		}
		out[i] = present.Refine(rec, w, h)
	}
	return out
}
