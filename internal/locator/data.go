package locator

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotData is returned when decoding a locator that is not data:.
var ErrNotData = errors.New("not an embedded-data locator")

// EncodeDataURL renders bytes as a base64 embedded-data locator.
func EncodeDataURL(mime string, data []byte) string {
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// DecodeDataURL returns the MIME type and payload of a data: locator.
// Both base64 and percent-encoded payloads are supported.
func DecodeDataURL(loc string) (string, []byte, error) {
	if !IsData(loc) {
		return "", nil, ErrNotData
	}
	header, payload, ok := strings.Cut(loc[len("data:"):], ",")
	if !ok {
		return "", nil, fmt.Errorf("data locator has no payload separator")
	}
	params := strings.Split(header, ";")
	mime := strings.TrimSpace(params[0])
	if mime == "" {
		mime = "text/plain"
	}
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}
	if isBase64 {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
		if err != nil {
			return "", nil, fmt.Errorf("decode base64 payload: %w", err)
		}
		return mime, data, nil
	}
	text, err := url.PathUnescape(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode percent-encoded payload: %w", err)
	}
	return mime, []byte(text), nil
}
