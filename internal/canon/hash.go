package canon

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix leaves room for algorithm migration.
const (
	DomainAsset  = "imgsweep/asset/v1"
	DomainConfig = "imgsweep/config/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// AssetID returns the content-addressed identifier of a canonical locator.
// Identity is the locator alone, so two assets with the same locator share
// an ID regardless of size or category.
func AssetID(locator string) (string, error) {
	data, err := Marshal(map[string]any{"locator": locator})
	if err != nil {
		return "", fmt.Errorf("AssetID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainAsset, data), nil
}

// ConfigHash fingerprints an arbitrary canonical-JSON-compatible value.
func ConfigHash(v map[string]any) (string, error) {
	data, err := Marshal(v)
	if err != nil {
		return "", fmt.Errorf("ConfigHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainConfig, data), nil
}
