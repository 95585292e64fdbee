package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"chaindrive/internal/app"
	"chaindrive/internal/logging"
)

// needsKeystore marks commands that open or seal keystore documents.
const needsKeystore = "keystore"

var (
	configDir string
	cfg       app.Config
	wire      *app.Wire
	log       *zap.Logger

	endpoint   string
	token      string
	passphrase string
	logLevel   string
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cobra.Command{
		Use:           "chaindrive",
		Short:         "Substrate test accounts backed up to Google Drive",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = app.LoadConfig(configDir); err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("endpoint") {
				cfg.ChainEndpoint = endpoint
			}
			if flags.Changed("token") {
				cfg.AccessToken = token
			}
			if flags.Changed("passphrase") {
				cfg.KeystorePassphrase = passphrase
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if _, ok := cmd.Annotations[needsKeystore]; ok && cfg.KeystorePassphrase == "" {
				if cfg.KeystorePassphrase, err = promptPassphrase(); err != nil {
					return err
				}
			}

			if log, err = logging.New(cfg.LogLevel, cfg.LogDevelopment); err != nil {
				return err
			}
			wire, err = app.NewWire(cfg, log)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory holding .env files")
	root.PersistentFlags().StringVar(&endpoint, "endpoint", "", "chain websocket endpoint")
	root.PersistentFlags().StringVar(&token, "token", "", "Google OAuth access token with the Drive scope")
	root.PersistentFlags().StringVarP(&passphrase, "passphrase", "p", "", "keystore passphrase")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd(), accountCmd(), txCmd(), filesCmd())
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func promptPassphrase() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("passphrase required (-p or CHAINDRIVE_KEYSTORE_PASSPHRASE)")
	}
	fmt.Fprint(os.Stderr, "Keystore passphrase: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
