package main

import (
	"encoding/base64"
	"fmt"

	"github.com/spf13/cobra"

	"idm-in-go/pkg/crypto"
)

// dataKeyGenerateCmd represents the data-key generate command
var dataKeyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a data encryption key",
	Long: `
Generate a data encryption key

Use this command to generate a new Base64-encoded 256 bit data encryption key. Once generated, this key should be placed into the environment of
the IDM server. It will be used to encrypt sensitive object properties stored in the repository, and to sign session tokens unless a separate
IDM_SESSION_KEY is configured.

Example:

$ export IDM_DATA_KEY="$(idmctl data-key generate)"
`,
	Run: func(cmd *cobra.Command, args []string) {
		bytes, _ := crypto.RandomBytes(crypto.KeySize)
		fmt.Printf("%s", base64.StdEncoding.Strict().EncodeToString(bytes))
	},
}

func init() {
	dataKeyCmd.AddCommand(dataKeyGenerateCmd)
}
