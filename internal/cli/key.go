package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"leadhunt-engine/internal/secrets"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the search API key in the OS keychain",
}

var keySetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store the key (read from stdin when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) == 1 {
			key = args[0]
		} else {
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil && line == "" {
				return err
			}
			key = strings.TrimSpace(line)
		}
		if err := secrets.SetSearchAPIKey(key); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "stored")
		return nil
	},
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the key",
	RunE: func(cmd *cobra.Command, args []string) error {
		return secrets.DeleteSearchAPIKey()
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyDeleteCmd)
	rootCmd.AddCommand(keyCmd)
}
