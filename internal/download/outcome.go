package download

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/url"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// Status is the coarse result of one fetch.
type Status int

const (
	StatusSaved Status = iota
	StatusFailed
	// StatusCancelled means the operator declined a non-image download.
	StatusCancelled
	// StatusInterrupted means the process context ended mid-fetch.
	StatusInterrupted
)

func (s Status) String() string {
	switch s {
	case StatusSaved:
		return "saved"
	case StatusFailed:
		return "failed"
	case StatusCancelled:
		return "cancelled"
	case StatusInterrupted:
		return "interrupted"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Category tags why a fetch failed.
type Category int

const (
	CategoryNone Category = iota
	CategoryNetwork
	CategoryHTTPStatus
	CategoryTimeout
	CategoryTooManyRedirects
	CategoryFilesystem
	CategoryUnknown
)

func (c Category) String() string {
	switch c {
	case CategoryNone:
		return "none"
	case CategoryNetwork:
		return "network"
	case CategoryHTTPStatus:
		return "http_status"
	case CategoryTimeout:
		return "timeout"
	case CategoryTooManyRedirects:
		return "too_many_redirects"
	case CategoryFilesystem:
		return "filesystem"
	case CategoryUnknown:
		return "unknown"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// Outcome describes what one Fetch did. Only StatusSaved is a success.
type Outcome struct {
	ID       string
	URL      string
	Host     string
	Status   Status
	Category Category
	Err      error

	Filename string
	Path     string // absolute
	Size     int64
	// Partial is set when a failure left a partially written file at Path.
	// Such files are kept on disk.
	Partial bool
}

// OK reports whether the image was saved.
func (o Outcome) OK() bool {
	return o.Status == StatusSaved
}

// HTTPStatusError is the failure for a non-2xx response.
type HTTPStatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s for url: %s", e.Status, e.URL)
}

// filesystemError marks an error raised while creating or writing the file.
type filesystemError struct{ err error }

func (e *filesystemError) Error() string { return e.err.Error() }
func (e *filesystemError) Unwrap() error { return e.err }

func fsError(err error, msg string) error {
	return &filesystemError{err: errors.Wrap(err, msg)}
}

// Classify maps an error from any fetch stage to its Category.
func Classify(err error) Category {
	if err == nil {
		return CategoryNone
	}

	var fsErr *filesystemError
	if errors.As(err, &fsErr) {
		return CategoryFilesystem
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return CategoryHTTPStatus
	}
	if errors.Is(err, ErrTooManyRedirects) {
		return CategoryTooManyRedirects
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CategoryTimeout
	}
	if netErr != nil || errors.Is(err, io.ErrUnexpectedEOF) {
		return CategoryNetwork
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return CategoryNetwork
	}
	return CategoryUnknown
}

// WriteReport prints the operator-facing summary of o.
func WriteReport(w io.Writer, o Outcome) {
	switch o.Status {
	case StatusSaved:
		fmt.Fprintf(w, "✅ Successfully saved: %s (%d bytes, %s)\n", o.Filename, o.Size, humanize.Bytes(uint64(o.Size)))
		fmt.Fprintf(w, "📁 Location: %s\n", o.Path)
		return
	case StatusCancelled:
		fmt.Fprintln(w, "Download cancelled.")
		return
	case StatusInterrupted:
		fmt.Fprintln(w, "Download interrupted.")
	case StatusFailed:
		switch o.Category {
		case CategoryNetwork:
			fmt.Fprintf(w, "❌ Network error: %v\n", o.Err)
		case CategoryHTTPStatus:
			fmt.Fprintf(w, "❌ HTTP error: %v\n", o.Err)
		case CategoryTimeout:
			fmt.Fprintln(w, "❌ Request timed out")
		case CategoryTooManyRedirects:
			fmt.Fprintln(w, "❌ Too many redirects")
		case CategoryFilesystem:
			fmt.Fprintf(w, "❌ File system error: %v\n", o.Err)
		default:
			fmt.Fprintf(w, "❌ Unexpected error: %v\n", o.Err)
		}
	}
	if o.Partial {
		fmt.Fprintf(w, "⚠️  Partial file left at: %s\n", o.Path)
	}
}
