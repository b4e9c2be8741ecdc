package main

import (
	"fmt"
	"time"

	"drive-harvest/internal/sources/google/auth"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Google Drive credentials",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Run the interactive OAuth flow and cache a token",
	Long: `Run the interactive OAuth flow: open the printed URL in a browser, grant
access, and paste the authorization code back. The token is cached on disk
for future runs.

Service-account credentials authenticate directly and never need a login.`,
	RunE: runAuthLoginCommand,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the configured credentials and cached token",
	RunE:  runAuthStatusCommand,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
}

func runAuthLoginCommand(cmd *cobra.Command, args []string) error {
	if err := auth.Login(); err != nil {
		return err
	}

	fmt.Println("Login successful; token cached")

	return nil
}

func runAuthStatusCommand(cmd *cobra.Command, args []string) error {
	status, err := auth.GetStatus()
	if err != nil {
		return err
	}

	fmt.Printf("Credentials: %s (%s)\n", status.CredentialsPath, status.CredentialKind)

	if status.CredentialKind == auth.CredentialServiceAccount {
		fmt.Println("Token: not needed for service accounts")

		return nil
	}

	if !status.HasToken {
		fmt.Printf("Token: none cached at %s; run 'drive-harvest auth login'\n", status.TokenPath)

		return nil
	}

	fmt.Printf("Token: %s (expires %s)\n", status.TokenPath, status.TokenExpiry.Format(time.RFC3339))

	return nil
}
