package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrAborted is returned when the user ends input before answering
var ErrAborted = errors.New("input aborted")

// Prompter collects answers from the user. Password must not echo.
type Prompter interface {
	Password(prompt string) ([]byte, error)
	Input(prompt string) (string, error)
}

// TerminalPrompter reads answers from a terminal or a pipe
type TerminalPrompter struct {
	in     *os.File
	reader *bufio.Reader
	out    io.Writer
}

// NewTerminalPrompter reads from in and writes prompts to out
func NewTerminalPrompter(in *os.File, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		in:     in,
		reader: bufio.NewReader(in),
		out:    out,
	}
}

// Password prompts for a password without echoing to the terminal. Piped
// input is read one line at a time.
func (p *TerminalPrompter) Password(prompt string) ([]byte, error) {
	fmt.Fprint(p.out, prompt)

	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		line, err := p.readLine()
		if err != nil {
			return nil, err
		}
		return []byte(line), nil
	}

	password, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	return password, nil
}

// Input prompts for a line of regular input
func (p *TerminalPrompter) Input(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)

	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *TerminalPrompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrAborted
		}
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// promptConfirm asks a yes/no question
func promptConfirm(p Prompter, prompt string, defaultYes bool) (bool, error) {
	suffix := " [y/N]: "
	if defaultYes {
		suffix = " [Y/n]: "
	}

	input, err := p.Input(prompt + suffix)
	if err != nil {
		return false, err
	}

	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return defaultYes, nil
	}

	return input == "y" || input == "yes", nil
}

// promptChoice lists choices with numbers and returns the selected one. A
// blank answer returns ok == false.
func promptChoice(p Prompter, out io.Writer, prompt string, choices []string) (string, bool, error) {
	fmt.Fprintln(out, prompt)
	for i, choice := range choices {
		fmt.Fprintf(out, "  %d) %s\n", i+1, choice)
	}

	for {
		input, err := p.Input(fmt.Sprintf("Enter choice (1-%d, blank to cancel): ", len(choices)))
		if err != nil {
			return "", false, err
		}
		if input == "" {
			return "", false, nil
		}

		if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(choices) {
			return choices[n-1], true, nil
		}

		for _, choice := range choices {
			if strings.EqualFold(choice, input) {
				return choice, true, nil
			}
		}

		fmt.Fprintf(out, "Invalid choice: %s\n", input)
	}
}

// newPasswordPrompter asks for a password twice. It satisfies
// vault.InitPrompter for the master password.
type newPasswordPrompter struct {
	p   Prompter
	out io.Writer
	max int
}

func (n newPasswordPrompter) PromptNewPassword(attempt int) ([]byte, []byte, error) {
	if attempt > 1 {
		fmt.Fprintf(n.out, "Passwords did not match or were empty, try again (attempt %d of %d).\n", attempt, n.max)
	}

	password, err := n.p.Password("New master password: ")
	if err != nil {
		return nil, nil, err
	}
	confirmation, err := n.p.Password("Confirm master password: ")
	if err != nil {
		return nil, nil, err
	}
	return password, confirmation, nil
}
