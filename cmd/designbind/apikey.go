package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var apikeyCmd = &cobra.Command{
	Use:   "apikey",
	Short: "API key commands",
}

var apikeyHashCmd = &cobra.Command{
	Use:   "hash <key>",
	Short: "Print a bcrypt hash of an API key",
	Long:  `Print a bcrypt hash suitable for the server.api_key_hash config field, so the plain key never lands on disk.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runAPIKeyHash,
}

func init() {
	apikeyCmd.AddCommand(apikeyHashCmd)
}

func runAPIKeyHash(cmd *cobra.Command, args []string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash key: %w", err)
	}

	fmt.Println(string(hash))
	return nil
}
