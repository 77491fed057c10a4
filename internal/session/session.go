// Package session holds the interactive terminal session used by the CLI
// commands. A Session is created once per command and passed explicitly.
package session

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
)

// ErrAborted is returned when the user interrupts a prompt.
var ErrAborted = errors.New("aborted by user")

// LineReader reads one line of input after showing a prompt.
// *readline.Instance satisfies it.
type LineReader interface {
	SetPrompt(prompt string)
	Readline() (string, error)
	Close() error
}

// Session asks questions on a terminal
type Session struct {
	rl  LineReader
	out io.Writer
}

// New creates a session reading from stdin and writing to stdout
func New() (*Session, error) {
	rl, err := readline.NewEx(&readline.Config{
		InterruptPrompt: "^C",
		EOFPrompt:       "",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open terminal: %w", err)
	}
	return NewWithReader(rl, os.Stdout), nil
}

// NewWithReader creates a session over an existing reader
func NewWithReader(rl LineReader, out io.Writer) *Session {
	return &Session{rl: rl, out: out}
}

// Printf writes formatted output
func (s *Session) Printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// Println writes a line of output
func (s *Session) Println(args ...any) {
	fmt.Fprintln(s.out, args...)
}

// readLine prompts and returns the trimmed answer. End of input yields an
// empty answer so callers fall back to their default.
func (s *Session) readLine(prompt string) (string, error) {
	s.rl.SetPrompt(prompt)
	line, err := s.rl.Readline()
	switch {
	case errors.Is(err, readline.ErrInterrupt):
		return "", ErrAborted
	case errors.Is(err, io.EOF):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// Ask asks a free-form question, returning def for an empty answer
func (s *Session) Ask(query, def string) (string, error) {
	answer, err := s.readLine(fmt.Sprintf("%s (%s): ", query, def))
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// AskYesNo asks a yes/no question, returning def for an empty answer
func (s *Session) AskYesNo(query string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	answer, err := s.readLine(fmt.Sprintf("%s (%s): ", query, hint))
	if err != nil {
		return false, err
	}
	if answer == "" {
		return def, nil
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// AskChoice lists options and returns the index of the chosen one. Empty or
// out-of-range answers select defaultIndex.
func (s *Session) AskChoice(query string, options []string, defaultIndex int) (int, error) {
	s.Println(query)
	for i, option := range options {
		marker := ""
		if i == defaultIndex {
			marker = " (default)"
		}
		s.Printf("  %d. %s%s\n", i+1, option, marker)
	}

	answer, err := s.readLine(fmt.Sprintf("Choose an option (1-%d): ", len(options)))
	if err != nil {
		return 0, err
	}
	choice, err := strconv.Atoi(answer)
	if err != nil || choice < 1 || choice > len(options) {
		return defaultIndex, nil
	}
	return choice - 1, nil
}

// Close releases the terminal
func (s *Session) Close() error {
	if s.rl == nil {
		return nil
	}
	return s.rl.Close()
}
