package surface

import "errors"

// User-facing failures. These are the only errors meant for a human.
var (
	// ErrRestricted: the target is a browser-internal page.
	ErrRestricted = errors.New("restricted target")
	// ErrUnavailable: the primary surface could not be loaded or walked.
	ErrUnavailable = errors.New("discovery unavailable")
	// ErrNoImages: every surface was walked and nothing was found.
	ErrNoImages = errors.New("no images found")
)

// UserMessage returns the end-user text for a scan failure.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrRestricted):
		return "Cannot scan system restricted pages."
	case errors.Is(err, ErrNoImages):
		return "No images found."
	default:
		return "Could not read the page. Try refreshing it."
	}
}

var restrictedPrefixes = []string{
	"chrome://",
	"edge://",
	"about:",
	"view-source:",
	"chrome-extension://",
	"moz-extension://",
}
