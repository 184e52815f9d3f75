// Package clipboard lets a session start with the URL the operator just copied.
package clipboard

import (
	"net/url"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/pkg/errors"
)

const maxURLLength = 2048

var (
	ErrClipboardRead = errors.New("clipboard could not be read")
	ErrInvalidURL    = errors.New("clipboard does not hold an http:// or https:// URL")
)

// readAll is swapped in tests; the real clipboard needs a desktop session.
var readAll = clipboard.ReadAll

// ParseURL accepts text holding exactly one absolute http(s) URL with a host.
// Surrounding whitespace, quotes and angle brackets are stripped.
func ParseURL(text string) (string, error) {
	text = strings.Trim(strings.TrimSpace(text), `"'<>`)
	if text == "" || len(text) > maxURLLength || strings.ContainsAny(text, " \t\r\n") {
		return "", ErrInvalidURL
	}
	if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
		return "", ErrInvalidURL
	}
	if u, err := url.Parse(text); err != nil || u.Host == "" {
		return "", ErrInvalidURL
	}
	return text, nil
}

// ReadURL returns the URL currently on the clipboard.
func ReadURL() (string, error) {
	text, err := readAll()
	if err != nil {
		return "", errors.Wrap(ErrClipboardRead, err.Error())
	}
	return ParseURL(text)
}
