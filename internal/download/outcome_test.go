package download

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Category
	}{
		{"nil", nil, CategoryNone},
		{"filesystem", fsError(os.ErrPermission, "create file failed"), CategoryFilesystem},
		{"http status", errors.Wrap(&HTTPStatusError{StatusCode: 500, Status: "500 Internal Server Error"}, "get"), CategoryHTTPStatus},
		{"redirects", &url.Error{Op: "Get", URL: "http://x", Err: errors.Wrap(ErrTooManyRedirects, "stopped")}, CategoryTooManyRedirects},
		{"deadline", errors.Wrap(context.DeadlineExceeded, "request failed"), CategoryTimeout},
		{"net timeout", &url.Error{Op: "Get", URL: "http://x", Err: timeoutErr{}}, CategoryTimeout},
		{"dial refused", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, CategoryNetwork},
		{"truncated body", errors.Wrap(io.ErrUnexpectedEOF, "reading response body"), CategoryNetwork},
		{"other", errors.New("boom"), CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.err))
		})
	}
}

func TestWriteReport(t *testing.T) {
	tests := []struct {
		name     string
		outcome  Outcome
		contains []string
	}{
		{
			name:     "saved",
			outcome:  Outcome{Status: StatusSaved, Filename: "cat.png", Path: "/tmp/Fetched_Images/cat.png", Size: 2048},
			contains: []string{"✅ Successfully saved: cat.png (2048 bytes, 2.0 kB)", "📁 Location: /tmp/Fetched_Images/cat.png"},
		},
		{
			name:     "cancelled",
			outcome:  Outcome{Status: StatusCancelled},
			contains: []string{"Download cancelled."},
		},
		{
			name:     "interrupted",
			outcome:  Outcome{Status: StatusInterrupted},
			contains: []string{"Download interrupted."},
		},
		{
			name:     "network",
			outcome:  Outcome{Status: StatusFailed, Category: CategoryNetwork, Err: errors.New("connection refused")},
			contains: []string{"❌ Network error: connection refused"},
		},
		{
			name:     "http",
			outcome:  Outcome{Status: StatusFailed, Category: CategoryHTTPStatus, Err: &HTTPStatusError{Status: "404 Not Found", URL: "http://x/a.png"}},
			contains: []string{"❌ HTTP error: 404 Not Found for url: http://x/a.png"},
		},
		{
			name:     "timeout",
			outcome:  Outcome{Status: StatusFailed, Category: CategoryTimeout},
			contains: []string{"❌ Request timed out"},
		},
		{
			name:     "redirects",
			outcome:  Outcome{Status: StatusFailed, Category: CategoryTooManyRedirects},
			contains: []string{"❌ Too many redirects"},
		},
		{
			name:     "filesystem",
			outcome:  Outcome{Status: StatusFailed, Category: CategoryFilesystem, Err: errors.New("disk full")},
			contains: []string{"❌ File system error: disk full"},
		},
		{
			name:     "unknown",
			outcome:  Outcome{Status: StatusFailed, Category: CategoryUnknown, Err: errors.New("boom")},
			contains: []string{"❌ Unexpected error: boom"},
		},
		{
			name:     "partial",
			outcome:  Outcome{Status: StatusFailed, Category: CategoryNetwork, Err: io.ErrUnexpectedEOF, Path: "/tmp/cut.png", Partial: true},
			contains: []string{"❌ Network error", "⚠️  Partial file left at: /tmp/cut.png"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			WriteReport(&buf, tt.outcome)
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestStatusAndCategoryStrings(t *testing.T) {
	assert.Equal(t, "saved", StatusSaved.String())
	assert.Equal(t, "interrupted", StatusInterrupted.String())
	assert.Equal(t, "too_many_redirects", CategoryTooManyRedirects.String())
	assert.Equal(t, "category(42)", Category(42).String())
}

func TestMaxRedirectPolicy(t *testing.T) {
	policy := maxRedirectPolicy(2)
	assert.NoError(t, policy.Apply(nil, make([]*http.Request, 2)))

	err := policy.Apply(nil, make([]*http.Request, 3))
	assert.True(t, errors.Is(err, ErrTooManyRedirects))
}
