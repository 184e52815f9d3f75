package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hilla44/Ubuntu-Requests/internal/download"
)

type fakeFetcher struct {
	mu    sync.Mutex
	urls  []string
	fetch func(ctx context.Context, rawURL string) download.Outcome
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string) download.Outcome {
	f.mu.Lock()
	f.urls = append(f.urls, rawURL)
	f.mu.Unlock()
	if f.fetch != nil {
		return f.fetch(ctx, rawURL)
	}
	return download.Outcome{URL: rawURL, Status: download.StatusSaved}
}

func (f *fakeFetcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.urls...)
}

func runSession(t *testing.T, ctx context.Context, input io.Reader, fetcher Fetcher) string {
	t.Helper()
	var out bytes.Buffer
	session := NewSession(NewPrompter(input, &out), fetcher, &out)

	done := make(chan struct{})
	go func() {
		defer close(done)
		session.Run(ctx)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("session did not terminate")
	}
	return out.String()
}

func TestSessionQuitWithoutFetching(t *testing.T) {
	for _, word := range []string{"quit", "EXIT", "  q  "} {
		t.Run(word, func(t *testing.T) {
			fetcher := &fakeFetcher{}
			out := runSession(t, context.Background(), strings.NewReader(word+"\n"), fetcher)

			assert.Empty(t, fetcher.calls())
			assert.Contains(t, out, "Enter image URL (or 'quit' to exit): ")
			assert.Contains(t, out, "Thank you for using Image Fetcher!")
		})
	}
}

func TestSessionRejectsBadInput(t *testing.T) {
	fetcher := &fakeFetcher{}
	out := runSession(t, context.Background(), strings.NewReader("\n   \nnot-a-url\nftp://x/y.png\nquit\n"), fetcher)

	assert.Empty(t, fetcher.calls())
	assert.Equal(t, 2, strings.Count(out, "Please enter a valid URL"))
	assert.Equal(t, 2, strings.Count(out, "URL must start with http:// or https://"))
}

func TestSessionFetchesThenQuits(t *testing.T) {
	fetcher := &fakeFetcher{}
	out := runSession(t, context.Background(),
		strings.NewReader("  https://example.com/cat.png  \nhttp://example.com/dog.jpg\nQ\n"), fetcher)

	assert.Equal(t, []string{"https://example.com/cat.png", "http://example.com/dog.jpg"}, fetcher.calls())
	assert.Equal(t, 3, strings.Count(out, strings.Repeat("-", 30)))
}

func TestSessionEndsOnEOF(t *testing.T) {
	fetcher := &fakeFetcher{}
	out := runSession(t, context.Background(), strings.NewReader("https://example.com/cat.png"), fetcher)

	assert.Len(t, fetcher.calls(), 1)
	assert.Contains(t, out, "Thank you for using Image Fetcher!")
	assert.NotContains(t, out, "Unexpected error")
}

func TestSessionInterruptedAtPrompt(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	fetcher := &fakeFetcher{}
	out := runSession(t, ctx, pr, fetcher)

	assert.Empty(t, fetcher.calls())
	assert.Contains(t, out, "Operation cancelled by user. Goodbye!")
}

func TestSessionInterruptedDuringFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fetcher := &fakeFetcher{fetch: func(ctx context.Context, rawURL string) download.Outcome {
		cancel()
		return download.Outcome{URL: rawURL, Status: download.StatusInterrupted}
	}}
	out := runSession(t, ctx, strings.NewReader("https://example.com/a.png\nhttps://example.com/b.png\n"), fetcher)

	assert.Len(t, fetcher.calls(), 1)
	assert.Contains(t, out, "Operation cancelled by user. Goodbye!")
}

func TestSessionRecoversFromPanic(t *testing.T) {
	first := true
	fetcher := &fakeFetcher{fetch: func(ctx context.Context, rawURL string) download.Outcome {
		if first {
			first = false
			panic("kaboom")
		}
		return download.Outcome{URL: rawURL, Status: download.StatusSaved}
	}}
	out := runSession(t, context.Background(),
		strings.NewReader("https://example.com/a.png\nhttps://example.com/b.png\nquit\n"), fetcher)

	assert.Len(t, fetcher.calls(), 2)
	assert.Contains(t, out, "Unexpected error in main loop: kaboom")
	assert.Contains(t, out, "Thank you for using Image Fetcher!")
}

func TestSessionSurvivesOverlongLine(t *testing.T) {
	long := "https://example.com/" + strings.Repeat("a", 70000) + ".png"
	input := long + "\nhttps://example.com/ok.png\nquit\n"

	fetcher := &fakeFetcher{}
	out := runSession(t, context.Background(), strings.NewReader(input), fetcher)

	assert.Equal(t, []string{"https://example.com/ok.png"}, fetcher.calls())
	assert.Contains(t, out, "Input longer than 65536 bytes ignored")
	assert.NotContains(t, out, "Unexpected error")
	assert.Equal(t, 1, strings.Count(out, "Thank you for using Image Fetcher!"))
}

func TestInterpretInput(t *testing.T) {
	tests := []struct {
		line string
		kind inputKind
		text string
	}{
		{"quit", inputQuit, "quit"},
		{" Exit ", inputQuit, "Exit"},
		{"Q", inputQuit, "Q"},
		{"", inputEmpty, ""},
		{"\t ", inputEmpty, ""},
		{"www.example.com/a.png", inputBadScheme, "www.example.com/a.png"},
		{"HTTP://example.com/a.png", inputBadScheme, "HTTP://example.com/a.png"},
		{"http://example.com/a.png", inputURL, "http://example.com/a.png"},
		{" https://example.com/a.png ", inputURL, "https://example.com/a.png"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			kind, text := interpretInput(tt.line)
			assert.Equal(t, tt.kind, kind)
			assert.Equal(t, tt.text, text)
		})
	}
}

func TestPrompterConfirm(t *testing.T) {
	tests := []struct {
		answer string
		want   bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  Y  \n", true},
		{"n\n", false},
		{"\n", false},
		{"sure\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.answer), func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(strings.NewReader(tt.answer), &out)
			assert.Equal(t, tt.want, p.Confirm(context.Background(), "Do you want to continue anyway? (y/N): "))
			assert.Equal(t, "Do you want to continue anyway? (y/N): ", out.String())
		})
	}
}

func TestPrompterReadLineSequence(t *testing.T) {
	p := NewPrompter(strings.NewReader("one\ntwo\n"), io.Discard)
	ctx := context.Background()

	line, err := p.ReadLine(ctx, "> ")
	require.NoError(t, err)
	assert.Equal(t, "one", line)

	line, err = p.ReadLine(ctx, "> ")
	require.NoError(t, err)
	assert.Equal(t, "two", line)

	_, err = p.ReadLine(ctx, "> ")
	assert.ErrorIs(t, err, io.EOF)
}

func TestPrompterLineEndings(t *testing.T) {
	long := strings.Repeat("x", maxLineLength+1)
	p := NewPrompter(strings.NewReader("crlf\r\n"+long+"\n\nlast"), io.Discard)
	ctx := context.Background()

	line, err := p.ReadLine(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "crlf", line)

	_, err = p.ReadLine(ctx, "")
	assert.ErrorIs(t, err, ErrLineTooLong)

	line, err = p.ReadLine(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, line)

	line, err = p.ReadLine(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "last", line)

	_, err = p.ReadLine(ctx, "")
	assert.ErrorIs(t, err, io.EOF)
}

func TestPrompterAcceptsLineAtLimit(t *testing.T) {
	exact := strings.Repeat("y", maxLineLength)
	p := NewPrompter(strings.NewReader(exact+"\r\n"), io.Discard)

	line, err := p.ReadLine(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, line, maxLineLength)
}
