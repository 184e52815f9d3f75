package download

import (
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/quic-go/quic-go/http3"

	"github.com/Hilla44/Ubuntu-Requests/internal/config"
	"github.com/Hilla44/Ubuntu-Requests/internal/utils"
)

// ErrTooManyRedirects is returned by the redirect policy once the configured
// limit is exceeded.
var ErrTooManyRedirects = errors.New("too many redirects")

// NewHTTPClient builds the resty client every fetch goes through: browser
// User-Agent, total timeout, bounded redirects, raw (streamed) bodies.
// The returned closer releases an HTTP/3 transport when one is in use.
func NewHTTPClient(opts *config.Options) (*resty.Client, io.Closer) {
	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetDoNotParseResponse(true).
		SetLogger(utils.RestyLogger{}).
		SetRedirectPolicy(maxRedirectPolicy(opts.MaxRedirects))

	var closer io.Closer = nopCloser{}
	if opts.HTTP3 {
		tr := &http3.RoundTripper{}
		client.SetTransport(tr)
		closer = tr
	}
	return client, closer
}

func maxRedirectPolicy(limit int) resty.RedirectPolicy {
	return resty.RedirectPolicyFunc(func(req *http.Request, via []*http.Request) error {
		if len(via) > limit {
			return errors.Wrapf(ErrTooManyRedirects, "stopped after %d redirects", limit)
		}
		return nil
	})
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
