package cli

import (
	"context"
	"fmt"
	"os"
)

// Run executes one command and exits the process on failure.
func (c *Cli) Run(ctx context.Context, command string) {
	var err error

	switch command {
	case "register":
		err = c.runRegister(ctx)
	case "login":
		err = c.runLogin(ctx)
	case "logout":
		err = c.runLogout(ctx)
	case "profile":
		err = c.runProfile(ctx)
	case "reset-password":
		err = c.runResetPassword(ctx)
	case "update-password":
		err = c.runUpdatePassword(ctx)
	case "whoami":
		err = c.runWhoami(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		PrintUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (c *Cli) runRegister(ctx context.Context) error {
	email, err := readInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	resp, err := c.apiClient.Register(ctx, email, password)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", resp.Email, resp.Message)
	return nil
}

func (c *Cli) runLogin(ctx context.Context) error {
	email, err := readInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	resp, err := c.apiClient.Login(ctx, email, password)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", resp.Email, resp.Message)
	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.apiClient.Logout(ctx); err != nil {
		return err
	}

	fmt.Println("logged out")
	return nil
}

func (c *Cli) runProfile(ctx context.Context) error {
	resp, err := c.apiClient.Profile(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Email: %s\n", resp.Email)
	return nil
}

func (c *Cli) runResetPassword(ctx context.Context) error {
	email, err := readInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	resp, err := c.apiClient.RequestReset(ctx, email)
	if err != nil {
		return err
	}

	fmt.Printf("Reset token for %s: %s\n", resp.Email, resp.ResetToken)
	return nil
}

func (c *Cli) runUpdatePassword(ctx context.Context) error {
	email, err := readInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	token, err := readInput("Reset token: ")
	if err != nil {
		return fmt.Errorf("failed to read reset token: %w", err)
	}

	password, err := readPassword("New password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	resp, err := c.apiClient.UpdatePassword(ctx, email, token, password)
	if err != nil {
		return err
	}

	fmt.Printf("%s: %s\n", resp.Email, resp.Message)
	return nil
}

func (c *Cli) runWhoami(ctx context.Context) error {
	email, err := readInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	resp, err := c.apiClient.Me(ctx, email, password)
	if err != nil {
		return err
	}

	fmt.Printf("User #%d <%s>\n", resp.ID, resp.Email)
	return nil
}
