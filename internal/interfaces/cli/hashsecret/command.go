// Package hashsecret implements the helper command that hashes a client
// secret for the oauth.clients configuration section.
package hashsecret

import (
	"fmt"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"openadr/internal/infrastructure/auth"
)

func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-secret",
		Short: "Hash a client secret for the configuration file",
		Long:  `Reads a client secret from the terminal and prints the bcrypt hash to store as secret_hash in oauth.clients.`,
		RunE:  run,
	}
}

func run(cmd *cobra.Command, args []string) error {
	fmt.Print("client secret: ")
	secret, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("failed to read secret: %w", err)
	}
	if len(secret) == 0 {
		return fmt.Errorf("secret must not be empty")
	}

	hash, err := auth.HashSecret(string(secret))
	if err != nil {
		return err
	}
	fmt.Println(hash)
	return nil
}
