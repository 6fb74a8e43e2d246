package handler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/pesio-ai/be-crm-cli/internal/validation"
	apperrors "github.com/pesio-ai/be-crm-cli/pkg/errors"
)

// Prompter asks for missing command input on a line-oriented reader.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int // terminal file descriptor, -1 when in is not a terminal
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{in: bufio.NewReader(in), out: out, fd: -1}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
	}
	return p
}

// Ask prompts for label until v accepts the answer.
func (p *Prompter) Ask(label string, v validation.Validator) (string, error) {
	for {
		fmt.Fprintf(p.out, "%s: ", label)
		answer, err := p.readLine()
		if err != nil {
			return "", err
		}
		answer = strings.TrimSpace(answer)
		if err := v(answer); err != nil {
			fmt.Fprintf(p.out, "Invalid input: %v\n", err)
			continue
		}
		return answer, nil
	}
}

// Secret is Ask without echo when reading from a terminal.
func (p *Prompter) Secret(label string, v validation.Validator) (string, error) {
	if p.fd < 0 {
		return p.Ask(label, v)
	}
	for {
		fmt.Fprintf(p.out, "%s: ", label)
		raw, err := term.ReadPassword(p.fd)
		fmt.Fprintln(p.out)
		if err != nil {
			return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to read password")
		}
		if err := v(string(raw)); err != nil {
			fmt.Fprintf(p.out, "Invalid input: %v\n", err)
			continue
		}
		return string(raw), nil
	}
}

// Confirm asks a yes/no question. Anything but y or yes means no.
func (p *Prompter) Confirm(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		err = nil
	}
	if errors.Is(err, io.EOF) {
		return "", apperrors.InvalidInput("input ended before a value was given")
	}
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrCodeInternal, "failed to read input")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
