package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// maxLineLength bounds one line of operator input; longer lines are dropped.
const maxLineLength = 64 * 1024

// ErrLineTooLong is returned by ReadLine for a line over maxLineLength. The
// prompter stays usable afterwards.
var ErrLineTooLong = errors.New("input line too long")

type inputLine struct {
	text    string
	tooLong bool
}

// Prompter reads operator input line by line. A single goroutine owns the
// reader so a pending prompt can be abandoned when ctx is cancelled.
type Prompter struct {
	in  io.Reader
	out io.Writer

	startOnce sync.Once
	lines     chan inputLine
	mu        sync.Mutex
	err       error
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		in:    in,
		out:   out,
		lines: make(chan inputLine, 1),
	}
}

func (p *Prompter) start() {
	p.startOnce.Do(func() {
		go func() {
			defer close(p.lines)
			r := bufio.NewReader(p.in)
			for {
				line, err := readLine(r)
				if err != nil {
					if err != io.EOF {
						p.mu.Lock()
						p.err = err
						p.mu.Unlock()
					}
					return
				}
				p.lines <- line
			}
		}()
	})
}

// readLine returns the next line without its terminator. Bytes past
// maxLineLength are discarded as they arrive. A final unterminated line is
// returned before io.EOF.
func readLine(r *bufio.Reader) (inputLine, error) {
	var buf []byte
	var line inputLine
	read := false
	for {
		chunk, err := r.ReadSlice('\n')
		read = read || len(chunk) > 0
		if !line.tooLong {
			buf = append(buf, chunk...)
			if len(buf) > maxLineLength+2 {
				line.tooLong = true
				buf = nil
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil && (err != io.EOF || !read) {
			return inputLine{}, err
		}
		line.text = strings.TrimRight(string(buf), "\r\n")
		if len(line.text) > maxLineLength {
			line.tooLong = true
			line.text = ""
		}
		return line, nil
	}
}

// ReadLine prints prompt and waits for the next line. It returns ctx.Err()
// when cancelled, ErrLineTooLong for an oversized line and io.EOF (or the
// read error) when input ends.
func (p *Prompter) ReadLine(ctx context.Context, prompt string) (string, error) {
	p.start()
	fmt.Fprint(p.out, prompt)

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			p.mu.Lock()
			defer p.mu.Unlock()
			if p.err != nil {
				return "", p.err
			}
			return "", io.EOF
		}
		if line.tooLong {
			return "", ErrLineTooLong
		}
		return line.text, nil
	}
}

// Confirm asks question and accepts "y" or "yes" in any case. Everything
// else, including end of input, is a no.
func (p *Prompter) Confirm(ctx context.Context, question string) bool {
	answer, err := p.ReadLine(ctx, question)
	if err != nil {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
