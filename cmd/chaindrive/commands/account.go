package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the keystore stored on Drive",
	}
	cmd.AddCommand(accountGenerateCmd(), accountRetrieveCmd())
	return cmd
}

func accountGenerateCmd() *cobra.Command {
	var label string
	var showPhrase bool
	return withFlags(&cobra.Command{
		Use:         "generate",
		Short:       "Create an account and save its keystore to Drive",
		Annotations: map[string]string{needsKeystore: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := wire.CLISession(cfg)
			acc, err := wire.Accounts.Generate(cmd.Context(), sess, label)
			if err != nil {
				return err
			}
			fmt.Printf("Account created.\nAddress: %s\n", acc.Address)
			if showPhrase {
				fmt.Printf("Recovery phrase: %s\n", acc.RecoveryPhrase)
			}
			sess.ClearRecoveryPhrase()

			f, err := wire.Accounts.Persist(cmd.Context(), sess)
			if err != nil {
				return err
			}
			fmt.Printf("Keystore saved to Drive as %s (%s)\n", f.Name, f.ID)
			return nil
		},
	}, func(c *cobra.Command) {
		c.Flags().StringVar(&label, "label", "", "account name stored in the keystore")
		c.Flags().BoolVar(&showPhrase, "show-phrase", false, "print the recovery phrase once")
	})
}

func accountRetrieveCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "retrieve",
		Short:       "Load the newest keystore from Drive",
		Annotations: map[string]string{needsKeystore: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			acc, err := wire.Accounts.Retrieve(cmd.Context(), wire.CLISession(cfg))
			if err != nil {
				return err
			}
			fmt.Printf("Address: %s\n", acc.Address)
			if acc.Meta.Name != "" {
				fmt.Printf("Name: %s\n", acc.Meta.Name)
			}
			return nil
		},
	}
}

func withFlags(cmd *cobra.Command, add func(*cobra.Command)) *cobra.Command {
	add(cmd)
	return cmd
}
