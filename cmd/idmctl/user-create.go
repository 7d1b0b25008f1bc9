package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// userCreateCmd represents the user create command
var userCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a user in the repository",
	Long: `Create a user object in the repository.

The user is stored on the managed/user resource by default, with the
password held as a bcrypt hash. Use --encrypt to store an encrypted value
instead (requires IDM_DATA_KEY).

Example:
  idmctl user create jdoe --password changeit
  idmctl user create probe --resource internal/user --roles openidm-reg`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		username := args[0]
		password, _ := cmd.Flags().GetString("password")
		resource, _ := cmd.Flags().GetString("resource")
		roles, _ := cmd.Flags().GetStringSlice("roles")
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		if password == "" {
			fmt.Fprintln(os.Stderr, "--password is required")
			os.Exit(1)
		}

		if err := createUser(username, password, resource, roles, encrypt); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create user %s: %v\n", username, err)
			os.Exit(1)
		}
		fmt.Printf("Created %s on %s\n", username, resource)
	},
}

func init() {
	userCmd.AddCommand(userCreateCmd)

	userCreateCmd.Flags().StringP("password", "p", "", "password for the new user")
	userCreateCmd.Flags().StringP("resource", "r", "managed/user", "resource to create the user on")
	userCreateCmd.Flags().StringSlice("roles", []string{"openidm-authorized"}, "roles granted to the user")
	userCreateCmd.Flags().Bool("encrypt", false, "store the password encrypted instead of hashed")
}

func createUser(username, password, resource string, roles []string, encrypt bool) error {
	users, err := connectUserStore()
	if err != nil {
		return err
	}

	credential, err := storedCredential(password, encrypt)
	if err != nil {
		return err
	}

	properties := map[string]interface{}{
		"username": username,
		"password": credential,
		"roles":    roles,
	}
	return users.Create(context.Background(), resource, username, properties)
}
