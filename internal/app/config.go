package app

import (
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"chaindrive/internal/chain"
	"chaindrive/internal/domain"
	"chaindrive/internal/services/transaction"
)

// Defaults for the public Westend test network.
const (
	DefaultChainEndpoint = "wss://westend-rpc.polkadot.io"
	DefaultRecipient     = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	DefaultAmount        = "1000000000"
	DefaultHTTPAddr      = ":8080"
	DefaultSS58Network   = 42
)

const envPrefix = "CHAINDRIVE_"

// Config holds runtime wiring options for building the app.
type Config struct {
	Env string // selects .env.<Env>, e.g. "development"

	HTTPAddr     string
	AppURL       string
	SessionKey   []byte // hex in the environment; random when empty
	SecureCookie bool

	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string
	// AccessToken lets the CLI use Drive without the browser flow.
	AccessToken string

	DriveFolderID       string
	KeystorePassphrase  string
	AllowLegacyKeystore bool

	ChainEndpoint string
	TransferCall  string
	Recipient     domain.Address
	Amount        *big.Int
	SS58Network   uint16
	TxTimeout     time.Duration

	LogLevel       string
	LogDevelopment bool
}

// LoadConfig reads .env.<CHAINDRIVE_ENV> and .env from dir, then applies
// CHAINDRIVE_* variables from the process environment, which win.
func LoadConfig(dir string) (Config, error) {
	vals := map[string]string{}
	env := os.Getenv(envPrefix + "ENV")
	files := []string{filepath.Join(dir, ".env")}
	if env != "" {
		files = append(files, filepath.Join(dir, ".env."+env))
	}
	for _, f := range files {
		m, err := godotenv.Read(f)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return Config{}, fmt.Errorf("read %s: %w", f, err)
		}
		for k, v := range m {
			vals[k] = v
		}
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok && strings.HasPrefix(k, envPrefix) {
			vals[k] = v
		}
	}
	return parse(env, vals)
}

func parse(env string, vals map[string]string) (Config, error) {
	get := func(key, def string) string {
		if v, ok := vals[envPrefix+key]; ok && v != "" {
			return v
		}
		return def
	}
	var errs []error
	boolean := func(key string, def bool) bool {
		v := get(key, "")
		if v == "" {
			return def
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, key, err))
		}
		return b
	}

	cfg := Config{
		Env:                 env,
		HTTPAddr:            get("HTTP_ADDR", DefaultHTTPAddr),
		AppURL:              get("APP_URL", "/"),
		SecureCookie:        boolean("SECURE_COOKIE", false),
		GoogleClientID:      get("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret:  get("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectURL:    get("OAUTH_REDIRECT_URL", "http://localhost:8080/auth/callback"),
		AccessToken:         get("ACCESS_TOKEN", ""),
		DriveFolderID:       get("DRIVE_FOLDER_ID", ""),
		KeystorePassphrase:  get("KEYSTORE_PASSPHRASE", ""),
		AllowLegacyKeystore: boolean("ALLOW_LEGACY_KEYSTORE", true),
		ChainEndpoint:       get("CHAIN_ENDPOINT", DefaultChainEndpoint),
		TransferCall:        get("TRANSFER_CALL", chain.DefaultTransferCall),
		Recipient:           domain.Address(get("RECIPIENT", DefaultRecipient)),
		LogLevel:            get("LOG_LEVEL", "info"),
		LogDevelopment:      boolean("LOG_DEVELOPMENT", env == "development"),
	}

	if key := get("SESSION_KEY", ""); key != "" {
		b, err := hex.DecodeString(key)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%sSESSION_KEY: %w", envPrefix, err))
		case len(b) != 32 && len(b) != 64:
			errs = append(errs, fmt.Errorf("%sSESSION_KEY must be 32 or 64 bytes, got %d", envPrefix, len(b)))
		default:
			cfg.SessionKey = b
		}
	}

	amount, ok := new(big.Int).SetString(get("AMOUNT", DefaultAmount), 10)
	if !ok || amount.Sign() <= 0 {
		errs = append(errs, fmt.Errorf("%sAMOUNT must be a positive integer", envPrefix))
	}
	cfg.Amount = amount

	network, err := strconv.ParseUint(get("SS58_NETWORK", strconv.Itoa(DefaultSS58Network)), 10, 16)
	if err != nil {
		errs = append(errs, fmt.Errorf("%sSS58_NETWORK: %w", envPrefix, err))
	}
	cfg.SS58Network = uint16(network)

	timeout, err := time.ParseDuration(get("TX_TIMEOUT", transaction.DefaultTimeout.String()))
	if err != nil || timeout <= 0 {
		errs = append(errs, fmt.Errorf("%sTX_TIMEOUT must be a positive duration", envPrefix))
	}
	cfg.TxTimeout = timeout

	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
