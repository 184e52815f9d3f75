// Package download fetches one image per call: GET, optional confirmation for
// non-image content, collision-free file creation and a streamed write.
package download

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"

	"github.com/Hilla44/Ubuntu-Requests/internal/config"
	"github.com/Hilla44/Ubuntu-Requests/internal/utils"
)

const (
	lockRetryDelay    = 50 * time.Millisecond
	maxCreateAttempts = 5
)

// Fetcher downloads URLs into the destination directory of its options.
type Fetcher struct {
	client  *resty.Client
	opts    *config.Options
	confirm Confirmer
	out     io.Writer
	now     func() time.Time
}

// NewFetcher wires a fetcher. A nil confirm declines every non-image download.
func NewFetcher(client *resty.Client, opts *config.Options, confirm Confirmer, out io.Writer) *Fetcher {
	if confirm == nil {
		confirm = Always(false)
	}
	if out == nil {
		out = io.Discard
	}
	return &Fetcher{
		client:  client,
		opts:    opts,
		confirm: confirm,
		out:     out,
		now:     time.Now,
	}
}

// SetClock replaces the time source used for generated filenames.
func (f *Fetcher) SetClock(now func() time.Time) {
	f.now = now
}

// Fetch downloads rawURL, prints progress and the final report, and returns
// the outcome. It never panics on network or disk failures.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) Outcome {
	o := Outcome{
		ID:   uuid.NewString(),
		URL:  rawURL,
		Host: displayHost(rawURL),
	}
	start := time.Now()
	utils.Debug("[%s] fetch %s", o.ID, rawURL)

	f.fetch(ctx, &o)

	if o.Status != StatusSaved && ctx.Err() != nil && errors.Is(ctx.Err(), context.Canceled) {
		o.Status = StatusInterrupted
		o.Category = CategoryNone
	}
	utils.Debug("[%s] %s (category=%s) in %v: %v", o.ID, o.Status, o.Category, time.Since(start), o.Err)
	WriteReport(f.out, o)
	return o
}

func (f *Fetcher) fetch(ctx context.Context, o *Outcome) {
	fmt.Fprintf(f.out, "🌐 Connecting to %s...\n", o.Host)

	resp, err := f.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(o.URL)
	if err != nil {
		f.fail(o, errors.Wrap(err, "request failed"))
		return
	}
	body := resp.RawBody()
	if body == nil {
		body = http.NoBody
	}
	defer body.Close()

	if !resp.IsSuccess() {
		f.fail(o, &HTTPStatusError{StatusCode: resp.StatusCode(), Status: resp.Status(), URL: o.URL})
		return
	}

	header := resp.Header()
	contentType := header.Get("Content-Type")
	if !isImageContentType(contentType) {
		fmt.Fprintln(f.out, "⚠️  Warning: The URL doesn't seem to point to an image file")
		if !f.confirm.Confirm(ctx, "Do you want to continue anyway? (y/N): ") {
			o.Status = StatusCancelled
			return
		}
	}

	resolved := utils.DetermineFilename(o.URL, header, f.now())
	file, path, err := f.create(ctx, resolved.Filename)
	if err != nil {
		f.fail(o, err)
		return
	}
	o.Path = utils.EnsureAbsPath(path)
	o.Filename = filepath.Base(path)
	utils.Debug("[%s] destination %s (disposition=%t)", o.ID, o.Path, resolved.FromDisposition)

	fmt.Fprintf(f.out, "📥 Downloading: %s\n", o.Filename)
	var contentLength int64 = -1
	if resp.RawResponse != nil {
		contentLength = resp.RawResponse.ContentLength
	}
	_, err = f.stream(file, body, o.Filename, contentLength)
	if cerr := file.Close(); err == nil && cerr != nil {
		err = fsError(cerr, "close file ["+path+"] failed")
	}
	if err != nil {
		// The partially written file stays where it is.
		o.Partial = true
		f.fail(o, err)
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		f.fail(o, fsError(err, "stat file ["+path+"] failed"))
		return
	}
	o.Size = info.Size()
	o.Status = StatusSaved
}

func (f *Fetcher) fail(o *Outcome, err error) {
	o.Status = StatusFailed
	o.Err = err
	o.Category = Classify(err)
}

// create resolves a free path for filename and creates it exclusively, holding
// the cross-process lock so concurrent instances pick distinct names.
func (f *Fetcher) create(ctx context.Context, filename string) (*os.File, string, error) {
	unlock := f.lock(ctx)
	defer unlock()

	var lastErr error
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		path := utils.UniqueFilePath(f.opts.Destination, filename)
		file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			return file, path, nil
		}
		lastErr = fsError(err, "create file ["+path+"] failed")
		if !errors.Is(err, fs.ErrExist) {
			break
		}
	}
	return nil, "", lastErr
}

func (f *Fetcher) lock(ctx context.Context) (unlock func()) {
	noop := func() {}
	if f.opts.LockPath == "" {
		return noop
	}
	if err := os.MkdirAll(filepath.Dir(f.opts.LockPath), utils.DefaultDirPermissions); err != nil {
		utils.Debug("lock directory unavailable, continuing unlocked: %v", err)
		return noop
	}
	fl := flock.New(f.opts.LockPath)
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		utils.Debug("could not take %s, continuing unlocked: %v", f.opts.LockPath, err)
		return noop
	}
	return func() {
		if err := fl.Unlock(); err != nil {
			utils.Debug("unlock %s: %v", f.opts.LockPath, err)
		}
	}
}

// stream copies body to dst in ChunkSize pieces, skipping empty reads. Read
// failures keep their network cause; write failures are tagged filesystem.
func (f *Fetcher) stream(dst io.Writer, body io.Reader, name string, size int64) (int64, error) {
	var bar *progressbar.ProgressBar
	if f.opts.Progress {
		bar = progressbar.NewOptions64(size,
			progressbar.OptionSetWriter(f.out),
			progressbar.OptionSetDescription(name),
			progressbar.OptionShowBytes(true),
			progressbar.OptionClearOnFinish(),
		)
		defer func() { _ = bar.Finish() }()
	}

	buf := make([]byte, f.opts.ChunkSize)
	var written int64
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return written, fsError(werr, "write failed")
			}
			written += int64(n)
			if bar != nil {
				_ = bar.Add(n)
			}
		}
		if rerr == io.EOF {
			return written, nil
		}
		if rerr != nil {
			return written, errors.Wrap(rerr, "reading response body")
		}
	}
}

func isImageContentType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

func displayHost(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		return u.Host
	}
	return rawURL
}
