package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// userSetPasswordCmd represents the user set-password command
var userSetPasswordCmd = &cobra.Command{
	Use:   "set-password <username>",
	Short: "Set a user's password",
	Long: `Set the password of an existing user.

The new value replaces the stored credential. The default storage is a
bcrypt hash; use --encrypt to store an encrypted value instead.

Example:
  idmctl user set-password jdoe --password s3cret`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		username := args[0]
		password, _ := cmd.Flags().GetString("password")
		resource, _ := cmd.Flags().GetString("resource")
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		if password == "" {
			fmt.Fprintln(os.Stderr, "--password is required")
			os.Exit(1)
		}

		if err := setPassword(username, password, resource, encrypt); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to set password for %s: %v\n", username, err)
			os.Exit(1)
		}
		fmt.Printf("Password updated for %s\n", username)
	},
}

func init() {
	userCmd.AddCommand(userSetPasswordCmd)

	userSetPasswordCmd.Flags().StringP("password", "p", "", "new password for the user")
	userSetPasswordCmd.Flags().StringP("resource", "r", "managed/user", "resource the user lives on")
	userSetPasswordCmd.Flags().Bool("encrypt", false, "store the password encrypted instead of hashed")
}

func setPassword(username, password, resource string, encrypt bool) error {
	users, err := connectUserStore()
	if err != nil {
		return err
	}

	credential, err := storedCredential(password, encrypt)
	if err != nil {
		return err
	}

	return users.UpdateProperties(context.Background(), resource, username, map[string]interface{}{
		"password": credential,
	})
}
