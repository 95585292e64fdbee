package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"chaindrive/internal/session"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Send test transactions",
	}
	cmd.AddCommand(txSubmitCmd())
	return cmd
}

func txSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "submit",
		Short:       "Send the configured transfer from the account stored on Drive",
		Annotations: map[string]string{needsKeystore: ""},
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := wire.CLISession(cfg)
			if _, err := wire.Accounts.Retrieve(cmd.Context(), sess); err != nil {
				return err
			}

			events, cancel := sess.Subscribe()
			done := make(chan struct{})
			go func() {
				defer close(done)
				for ev := range events {
					if ev.Kind == session.EventTxState {
						fmt.Printf("... %s\n", ev.TxState)
					}
				}
			}()

			res, err := wire.Transactions.Submit(cmd.Context(), sess)
			cancel()
			<-done
			if err != nil {
				return err
			}
			fmt.Printf("Status: %s\n", res.Status)
			if res.TxHash != "" {
				fmt.Printf("Extrinsic: %s\n", res.TxHash)
			}
			if res.BlockHash != "" {
				fmt.Printf("Block: %s\n", res.BlockHash)
			}
			for _, e := range res.Events {
				fmt.Printf("  %s.%s %s\n", e.Section, e.Method, e.DataSummary)
			}
			if !res.Succeeded() {
				return fmt.Errorf("transaction failed: %s", res.Error)
			}
			return nil
		},
	}
}
