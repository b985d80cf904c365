// Package prompt runs the interactive terminal form.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/starford/quill/internal/models"
)

// ContentTerminator ends multi-line content input when typed alone on a line.
const ContentTerminator = "."

// Adder appends a note. *noteservice.Service satisfies it.
type Adder interface {
	AddNote(ctx context.Context, d models.Draft) (*models.Note, error)
}

// Form reads drafts from in and writes prompts and feedback to out.
type Form struct {
	in  *bufio.Reader
	out io.Writer
	svc Adder

	startOnce sync.Once
	lines     chan readResult
}

type readResult struct {
	s   string
	err error
}

// New creates a terminal form.
func New(in io.Reader, out io.Writer, svc Adder) *Form {
	return &Form{in: bufio.NewReader(in), out: out, svc: svc}
}

// Run collects and submits entries until input ends or ctx is cancelled.
// It returns the number of notes added. A failed submit is reported and
// the form starts over; it does not stop the session. Cancelling ctx
// abandons the entry being typed and returns ctx.Err().
func (f *Form) Run(ctx context.Context) (int, error) {
	added := 0
	for {
		if err := ctx.Err(); err != nil {
			return added, err
		}
		d, err := f.ReadDraft(ctx)
		if errors.Is(err, io.EOF) {
			return added, nil
		}
		if err != nil {
			return added, err
		}
		note, err := f.svc.AddNote(ctx, d)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return added, ctxErr
			}
			fmt.Fprintf(f.out, "Failed to insert note: %v\n\n", err)
			continue
		}
		added++
		fmt.Fprintf(f.out, "Note added successfully! (id %d)\n\n", note.ID)
	}
}

// ReadDraft prompts for one entry. It returns io.EOF if input ends before
// the title is entered; later fields treat EOF as end of that field.
func (f *Form) ReadDraft(ctx context.Context) (models.Draft, error) {
	var d models.Draft

	title, err := f.line(ctx, "Title: ")
	if err != nil {
		return d, err
	}
	d.Title = title

	fmt.Fprintf(f.out, "Content (end with a line containing only %q):\n", ContentTerminator)
	content, err := f.block(ctx)
	if err != nil && !errors.Is(err, io.EOF) {
		return d, err
	}
	d.Content = content

	if d.Keywords, err = f.line(ctx, "Keywords (comma-separated): "); err != nil && !errors.Is(err, io.EOF) {
		return d, err
	}
	if d.Category, err = f.line(ctx, "Category: "); err != nil && !errors.Is(err, io.EOF) {
		return d, err
	}
	return d, nil
}

// next returns the next raw line. The read itself happens on a single
// background goroutine so a cancelled ctx does not wait for input.
func (f *Form) next(ctx context.Context) (string, error) {
	f.startOnce.Do(func() {
		f.lines = make(chan readResult)
		go func() {
			defer close(f.lines)
			for {
				s, err := f.in.ReadString('\n')
				f.lines <- readResult{s: s, err: err}
				if err != nil {
					return
				}
			}
		}()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-f.lines:
		if !ok {
			return "", io.EOF
		}
		return r.s, r.err
	}
}

// line prints label and reads one line without its line ending.
func (f *Form) line(ctx context.Context, label string) (string, error) {
	fmt.Fprint(f.out, label)
	s, err := f.next(ctx)
	if err != nil && (!errors.Is(err, io.EOF) || s == "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// block reads lines up to the terminator or EOF and joins them with "\n".
func (f *Form) block(ctx context.Context) (string, error) {
	var lines []string
	for {
		s, err := f.next(ctx)
		if s != "" || err == nil {
			l := strings.TrimRight(s, "\r\n")
			if l == ContentTerminator {
				return strings.Join(lines, "\n"), nil
			}
			lines = append(lines, l)
		}
		if err != nil {
			return strings.Join(lines, "\n"), err
		}
	}
}
