package main

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"idm-in-go/pkg/crypto"
	"idm-in-go/pkg/db"
	"idm-in-go/pkg/server/store"
	storegorm "idm-in-go/pkg/server/store/gorm"
)

// userCmd represents the user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage repository users",
	Long:  `Manage user objects in the repository.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'user' requires a subcommand (create, set-password)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
}

// connectUserStore opens the repository for the user subcommands.
func connectUserStore() (store.UserStore, error) {
	database, err := db.Connect(db.Config{})
	if err != nil {
		return nil, err
	}
	return storegorm.NewUserStore(database), nil
}

// storedCredential prepares a password value for storage. The default is a
// bcrypt hash; with encrypt set the value becomes a crypto wrapper, which
// the authentication modules decrypt before comparing.
func storedCredential(password string, encrypt bool) (interface{}, error) {
	if !encrypt {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		return string(hash), nil
	}

	dataKeyB64, ok := os.LookupEnv("IDM_DATA_KEY")
	if !ok {
		return nil, fmt.Errorf("IDM_DATA_KEY environment variable is required to encrypt credentials")
	}
	dataKey, err := base64.StdEncoding.DecodeString(dataKeyB64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode IDM_DATA_KEY: %w", err)
	}

	svc, err := crypto.NewService(dataKey)
	if err != nil {
		return nil, err
	}
	return svc.EncryptField(password)
}
