package cli

import (
	"context"
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/pkg/errors"

	"github.com/Hilla44/Ubuntu-Requests/internal/download"
	"github.com/Hilla44/Ubuntu-Requests/internal/utils"
)

// Fetcher is what the session hands validated URLs to.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) download.Outcome
}

type inputKind int

const (
	inputURL inputKind = iota
	inputQuit
	inputEmpty
	inputBadScheme
)

// interpretInput classifies one prompt line; the returned string is the
// trimmed input.
func interpretInput(line string) (inputKind, string) {
	text := strings.TrimSpace(line)
	switch strings.ToLower(text) {
	case "quit", "exit", "q":
		return inputQuit, text
	case "":
		return inputEmpty, text
	}
	if !strings.HasPrefix(text, "http://") && !strings.HasPrefix(text, "https://") {
		return inputBadScheme, text
	}
	return inputURL, text
}

// Session is the read-fetch loop. It ends on quit, end of input or
// cancellation of the context passed to Run.
type Session struct {
	prompter *Prompter
	fetcher  Fetcher
	out      io.Writer
}

func NewSession(prompter *Prompter, fetcher Fetcher, out io.Writer) *Session {
	return &Session{prompter: prompter, fetcher: fetcher, out: out}
}

// Run loops until the session terminates.
func (s *Session) Run(ctx context.Context) {
	for {
		fmt.Fprintln(s.out, "\n"+strings.Repeat("-", 30))
		if done := s.step(ctx); done {
			return
		}
	}
}

// step runs one prompt/handle cycle. A panic inside it is reported and the
// loop keeps going.
func (s *Session) step(ctx context.Context) (done bool) {
	defer func() {
		if r := recover(); r != nil {
			utils.Debug("panic in main loop: %v\n%s", r, debug.Stack())
			fmt.Fprintf(s.out, "❌ Unexpected error in main loop: %v\n", r)
			done = ctx.Err() != nil
		}
	}()

	line, err := s.prompter.ReadLine(ctx, "Enter image URL (or 'quit' to exit): ")
	if err != nil {
		if ctx.Err() != nil {
			s.interrupted()
			return true
		}
		if errors.Is(err, ErrLineTooLong) {
			fmt.Fprintf(s.out, "⚠️  Input longer than %d bytes ignored\n", maxLineLength)
			return false
		}
		if err != io.EOF {
			fmt.Fprintf(s.out, "\n❌ Unexpected error in main loop: %v\n", err)
		}
		fmt.Fprintln(s.out, "\n👋 Thank you for using Image Fetcher!")
		return true
	}

	return s.Handle(ctx, line)
}

// Handle acts on one line of input and reports whether the session is over.
func (s *Session) Handle(ctx context.Context, line string) (done bool) {
	kind, text := interpretInput(line)
	switch kind {
	case inputQuit:
		fmt.Fprintln(s.out, "👋 Thank you for using Image Fetcher!")
		return true
	case inputEmpty:
		fmt.Fprintln(s.out, "⚠️  Please enter a valid URL")
		return false
	case inputBadScheme:
		fmt.Fprintln(s.out, "⚠️  URL must start with http:// or https://")
		return false
	}

	s.fetcher.Fetch(ctx, text)
	if ctx.Err() != nil {
		s.interrupted()
		return true
	}
	return false
}

func (s *Session) interrupted() {
	fmt.Fprintln(s.out, "\n\n👋 Operation cancelled by user. Goodbye!")
}
