package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rohankatakam/devpairs/internal/config"
	"github.com/rohankatakam/devpairs/internal/github"
)

var skipVerify bool

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save a GitHub token in the OS keychain",
	Long: `Prompt for a GitHub personal access token, check it against the API and
store it in the OS keychain. Later commands pick it up automatically unless
--token or GITHUB_TOKEN is set.

A token with read access to public repositories is enough; private
repositories need the repo scope.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the GitHub token from the OS keychain",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show which GitHub account the current token belongs to",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "store the token without checking it against GitHub")
}

func runLogin(cmd *cobra.Command, args []string) error {
	km := config.NewKeyringManager(logger)
	if !km.IsAvailable() {
		return fmt.Errorf("OS keychain not available; set GITHUB_TOKEN instead")
	}

	fmt.Fprint(cmd.OutOrStdout(), "GitHub token: ")
	token, err := readSecret()
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		return fmt.Errorf("no token entered")
	}

	if !skipVerify {
		user, err := lookupUser(cmd.Context(), token)
		if err != nil {
			return fmt.Errorf("token rejected: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Token belongs to %s\n", user.Login)
	}

	if err := km.SetGitHubToken(token); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Token saved to keychain")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	km := config.NewKeyringManager(logger)
	if err := km.DeleteGitHubToken(); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✓ Token removed from keychain")
	if os.Getenv("GITHUB_TOKEN") != "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Note: GITHUB_TOKEN is still set in your environment")
	}
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	km := config.NewKeyringManager(logger)
	token, source := km.ResolveToken("", cfg)
	out := cmd.OutOrStdout()

	if token == "" {
		fmt.Fprintln(out, "⚠️  No GitHub token configured (requests are anonymous and heavily rate limited)")
		fmt.Fprintln(out, "Run 'devpairs login' or set GITHUB_TOKEN")
		return nil
	}

	user, err := lookupUser(cmd.Context(), token)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Login:   %s\n", user.Login)
	if user.Name != "" {
		fmt.Fprintf(out, "Name:    %s\n", user.Name)
	}
	fmt.Fprintf(out, "Token:   %s\n", config.MaskToken(token))
	fmt.Fprintf(out, "Source:  %s\n", source)
	return nil
}

func lookupUser(ctx context.Context, token string) (*github.User, error) {
	client, err := github.NewClient(github.Options{
		Token:     token,
		RateLimit: cfg.GitHub.RateLimit,
		BaseURL:   cfg.GitHub.BaseURL,
	}, logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return client.AuthenticatedUser(ctx)
}

// readSecret reads a token from the terminal without echoing, or a line
// from stdin when input is piped
func readSecret() (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		bytes, err := term.ReadPassword(fd)
		fmt.Println() // New line after password input
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(bytes)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
