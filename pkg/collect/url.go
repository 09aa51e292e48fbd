package collect

import (
	"fmt"
	"net/url"
	"strings"
)

// PostCodeFromURL extracts the post's business key from a share URL,
// e.g. https://host/@user/video/ABC123 -> ABC123. Query strings and
// trailing slashes are ignored.
func PostCodeFromURL(raw string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("parse post url: %w", err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("post url %q has no host", raw)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			return segments[i], nil
		}
	}
	return "", fmt.Errorf("post url %q has no path", raw)
}
