package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// PasswordEnv is read when no --password flag is given.
const PasswordEnv = "PIPE_PASSWORD"

// ErrPasswordRequired is returned when no password source is available.
var ErrPasswordRequired = errors.New("password required: use --password, " + PasswordEnv + " or run in a terminal")

// PasswordPrompt resolves a password from the flag, the environment, or a
// hidden terminal prompt, in that order.
type PasswordPrompt struct {
	In     *os.File
	Out    io.Writer
	Lookup func(string) (string, bool)
}

// NewPasswordPrompt reads from Stdin and prompts on Stderr.
func NewPasswordPrompt() *PasswordPrompt {
	return &PasswordPrompt{In: os.Stdin, Out: os.Stderr, Lookup: os.LookupEnv}
}

// Resolve returns flagValue when set. label names the secret in the prompt.
func (p *PasswordPrompt) Resolve(flagValue, label string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if p.Lookup != nil {
		if v, ok := p.Lookup(PasswordEnv); ok && v != "" {
			return v, nil
		}
	}
	if p.In == nil || !term.IsTerminal(int(p.In.Fd())) {
		return "", ErrPasswordRequired
	}

	fmt.Fprintf(p.Out, "%s: ", label)
	b, err := term.ReadPassword(int(p.In.Fd()))
	fmt.Fprintln(p.Out)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	if len(b) == 0 {
		return "", ErrPasswordRequired
	}
	return string(b), nil
}
