package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iudanet/authkeeper/internal/client/api"
	"github.com/iudanet/authkeeper/internal/client/cli"
	"github.com/iudanet/authkeeper/internal/client/session"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "Server base URL")
	dbPath := flag.String("db", defaultSessionPath(), "Session store file path")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = cli.PrintUsage
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) < 1 {
		cli.PrintUsage()
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o700); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// Sessions are stored on disk because each command is its own process:
	// a login must still be there when the next command runs.
	sessions, err := session.New(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = sessions.Close()
	}()

	apiClient, err := api.NewClientWithSessions(*serverURL, sessions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	c := cli.New(apiClient)
	c.Run(context.Background(), args[0])
}

// defaultSessionPath puts the session store under the user's home directory,
// falling back to the working directory when home cannot be resolved.
func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".authkeeper-session.db"
	}
	return filepath.Join(home, ".authkeeper", "session.db")
}

func printVersion() {
	fmt.Printf("Authkeeper Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
