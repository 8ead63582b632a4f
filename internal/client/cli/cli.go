// Package cli implements the interactive command-line client.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/iudanet/authkeeper/internal/client/api"
)

// Cli dispatches commands against the API client.
type Cli struct {
	apiClient *api.Client
}

// New creates a CLI over the given API client.
func New(apiClient *api.Client) *Cli {
	return &Cli{apiClient: apiClient}
}

// readInput reads one trimmed line from stdin.
func readInput(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// readPassword reads a password from stdin without echoing it.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	fd := int(os.Stdin.Fd())
	pwBytes, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pwBytes), nil
}

// PrintUsage writes the command summary to stderr.
func PrintUsage() {
	fmt.Fprintln(os.Stderr, `Usage: authkeeper-client [flags] <command>

Commands:
  register         Create a new account
  login            Log in; the session is kept for later commands
  logout           Destroy the current session
  profile          Show the email attached to the current session
  reset-password   Request a password-reset token
  update-password  Redeem a reset token and set a new password
  whoami           Resolve identity via HTTP Basic auth

Flags:
  -server <url>    Server base URL (default http://localhost:8080)
  -db <path>       Session store file (default ~/.authkeeper/session.db)
  -version         Show version information`)
}
