package jewgo

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jewgo/jewgo/internal/domain"
	"golang.org/x/term"
)

// AuthFlow prompts for email and password and logs in against the API
type AuthFlow struct {
	logger *slog.Logger
	in     io.Reader
	out    io.Writer
	// readPassword reads a line without echo
	readPassword func() (string, error)
}

// NewAuthFlow creates a login flow on the process terminal
func NewAuthFlow(logger *slog.Logger) *AuthFlow {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthFlow{
		logger: logger,
		in:     os.Stdin,
		out:    os.Stdout,
		readPassword: func() (string, error) {
			b, err := term.ReadPassword(int(os.Stdin.Fd()))
			return string(b), err
		},
	}
}

// Run prompts for credentials (email may be prefilled) and returns the
// session on success.
func (f *AuthFlow) Run(ctx context.Context, serverURL, email string) (*domain.AuthResult, error) {
	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, "Jewgo Sign In")
	fmt.Fprintln(f.out, "━━━━━━━━━━━━━")

	reader := bufio.NewReader(f.in)
	if email == "" {
		fmt.Fprint(f.out, "Email: ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return nil, fmt.Errorf("failed to read email: %w", err)
		}
		email = strings.TrimSpace(line)
	} else {
		fmt.Fprintf(f.out, "Email: %s\n", email)
	}

	fmt.Fprint(f.out, "Password: ")
	password, err := f.readPassword()
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Fprintln(f.out)

	fmt.Fprintln(f.out, "Signing in...")
	result, err := NewClient(serverURL, "", f.logger).Login(ctx, email, password)
	if err != nil {
		f.logger.Error("login failed", "error", err, "email", email)
		return nil, err
	}

	fmt.Fprintln(f.out, "Signed in!")
	return result, nil
}
