// Package utils provides the filename, directory and logging helpers shared by
// the fetcher and the CLI.
package utils

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/vfaronov/httpheader"
)

const timestampLayout = "20060102_150405"

// contentTypeExtensions wins over the filetype table for the common types and
// covers the ones it has no entry for.
var contentTypeExtensions = map[string]string{
	"image/png":        "png",
	"image/gif":        "gif",
	"image/webp":       "webp",
	"image/jpeg":       "jpg",
	"image/pjpeg":      "jpg",
	"image/svg+xml":    "svg",
	"image/x-icon":     "ico",
	"text/plain":       "txt",
	"text/html":        "html",
	"text/markdown":    "md",
	"application/json": "json",
	"application/pdf":  "pdf",
}

// ResolvedName is the outcome of filename resolution for one response.
type ResolvedName struct {
	Filename string
	// FromDisposition is true when the server named the file; such names
	// are never re-suffixed from the Content-Type.
	FromDisposition bool
}

// DetermineFilename picks the on-disk name for a download of rawurl whose
// response carried header. It never returns an empty name and never fails.
func DetermineFilename(rawurl string, header http.Header, now time.Time) ResolvedName {
	if name, ok := DispositionFilename(header); ok {
		Debug("Filename from Content-Disposition: %q", name)
		return ResolvedName{Filename: SanitizeFilename(name, now), FromDisposition: true}
	}

	filename := SanitizeFilename(FilenameFromURL(rawurl, now), now)

	ext := ExtensionForContentType(header.Get("Content-Type"))
	if ext != "" {
		current := filepath.Ext(filename)
		if !strings.EqualFold(current, "."+ext) {
			Debug("Correcting extension of %q to .%s from Content-Type", filename, ext)
			filename = strings.TrimSuffix(filename, current) + "." + ext
		}
	}
	return ResolvedName{Filename: filename}
}

// DispositionFilename extracts the filename suggested by Content-Disposition.
// ok reports whether the header named a file at all, even if the name is empty.
// Quoted and filename* forms go through the RFC 6266 parser; an unquoted
// filename= value is taken verbatim up to the next ';' so names with spaces
// survive.
func DispositionFilename(header http.Header) (name string, ok bool) {
	_, parsed, _ := httpheader.ContentDisposition(header)

	raw := header.Get("Content-Disposition")
	idx := strings.LastIndex(raw, "filename=")
	if idx < 0 {
		return parsed, parsed != ""
	}
	value := strings.TrimSpace(raw[idx+len("filename="):])
	if parsed != "" && (strings.HasPrefix(value, `"`) || strings.Contains(raw, "filename*=")) {
		return parsed, true
	}
	if end := strings.Index(value, ";"); end >= 0 {
		value = value[:end]
	}
	return strings.Trim(strings.TrimSpace(value), `"'`), true
}

// FilenameFromURL returns the URL-decoded last path segment when it looks like
// a filename (contains a dot), otherwise a generated image_<timestamp>.jpg.
func FilenameFromURL(rawurl string, now time.Time) string {
	if parsed, err := url.Parse(rawurl); err == nil {
		p := parsed.Path
		if idx := strings.LastIndex(p, "/"); idx >= 0 {
			if segment := p[idx+1:]; strings.Contains(segment, ".") {
				return segment
			}
		}
	}
	return fmt.Sprintf("image_%s.jpg", now.Format(timestampLayout))
}

// SanitizeFilename keeps ASCII letters, digits, space, '-', '_' and '.',
// trims trailing whitespace and replaces a result that is empty or only
// dots and spaces with image_<timestamp>. A bare extension (".png") gets the
// same stem in front of it.
func SanitizeFilename(name string, now time.Time) string {
	clean := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == ' ', r == '-', r == '_', r == '.':
			return r
		}
		return -1
	}, name)
	clean = strings.TrimRight(clean, " ")

	stamp := "image_" + now.Format(timestampLayout)
	if strings.Trim(clean, ". ") == "" {
		return stamp
	}
	// A bare extension such as ".png" would otherwise become a hidden file.
	if strings.HasPrefix(clean, ".") && strings.Count(clean, ".") == 1 {
		return stamp + clean
	}
	return clean
}

// ExtensionForContentType maps a Content-Type value to a bare extension
// ("png"), or "" when the type does not imply one.
func ExtensionForContentType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	contentType = strings.TrimSpace(strings.ToLower(contentType))
	if contentType == "" {
		return ""
	}
	if ext, ok := contentTypeExtensions[contentType]; ok {
		return ext
	}

	// filetype.Types is unordered; walk it in extension order so the answer is
	// stable when two extensions share a MIME type.
	var exts []string
	filetype.Types.Range(func(_, v interface{}) bool {
		if kind, ok := v.(types.Type); ok && kind.MIME.Value == contentType {
			exts = append(exts, kind.Extension)
		}
		return true
	})
	if len(exts) == 0 {
		return ""
	}
	sort.Strings(exts)
	return exts[0]
}

// UniqueFilePath joins dir and filename and, while the path is taken, inserts
// _1, _2, ... before the extension.
func UniqueFilePath(dir, filename string) string {
	path := filepath.Join(dir, filename)
	if !exists(path) {
		return path
	}

	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	if base == "" {
		// ".png" is a dotfile without an extension.
		base, ext = filename, ""
	}
	for counter := 1; ; counter++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, counter, ext))
		if !exists(candidate) {
			return candidate
		}
	}
}

// exists matches the usual "path exists" check: any stat error counts as free,
// so an unreadable directory cannot trap UniqueFilePath in a loop.
func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
