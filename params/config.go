package params

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/samber/mo"
	"github.com/shopspring/decimal"

	"github.com/uhyunpark/hyperarb/pkg/crypto"
)

var ErrConfig = errors.New("invalid config")

type Account struct {
	WalletAddress string
	// PrivateKey signs every order. It is never logged.
	PrivateKey   string
	VaultAddress string // optional: trade on behalf of a vault
}

type Exchange struct {
	BaseURL string
	// Source is the agent source: "a" for mainnet, "b" for testnet.
	Source       string
	ExpiryWindow time.Duration
}

type Strategy struct {
	PollInterval time.Duration
	MinTradeUSD  decimal.Decimal
	// SlippageBps is how far past the mark an Ioc limit is placed.
	SlippageBps int
	DryRun      bool
}

type Node struct {
	APIAddr     string
	LogFile     string
	LogLevel    string
	NonceDBPath string
}

type Config struct {
	Account  Account
	Exchange Exchange
	Strategy Strategy
	Node     Node
}

func Default() Config {
	return Config{
		Exchange: Exchange{
			BaseURL:      "https://api.hyperliquid.xyz",
			Source:       crypto.SourceMainnet,
			ExpiryWindow: 10 * time.Second,
		},
		Strategy: Strategy{
			PollInterval: 10 * time.Second,
			MinTradeUSD:  decimal.NewFromInt(11),
			SlippageBps:  100,
		},
		Node: Node{
			APIAddr:     ":8080",
			LogFile:     "data/arb.log",
			LogLevel:    "info",
			NonceDBPath: "data/nonce",
		},
	}
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) Config {
	cfg := Default()

	// Try to load .env file (optional - won't fail if not exists)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load() // loads .env from current directory
	}

	cfg.Account.WalletAddress = getEnv("WALLET_ADDRESS", "")
	cfg.Account.PrivateKey = getEnv("PRIVATE_KEY", "")
	cfg.Account.VaultAddress = getEnv("VAULT_ADDRESS", "")

	cfg.Exchange.BaseURL = getEnv("HL_BASE_URL", cfg.Exchange.BaseURL)
	cfg.Exchange.Source = getEnv("SIGNATURE_SOURCE", cfg.Exchange.Source)
	if ms, ok := getEnvInt("EXPIRY_WINDOW_MS"); ok {
		cfg.Exchange.ExpiryWindow = time.Duration(ms) * time.Millisecond
	}

	if ms, ok := getEnvInt("POLL_INTERVAL_MS"); ok {
		cfg.Strategy.PollInterval = time.Duration(ms) * time.Millisecond
	}
	if v := os.Getenv("MIN_TRADE_USD"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			cfg.Strategy.MinTradeUSD = d
		}
	}
	if bps, ok := getEnvInt("SLIPPAGE_BPS"); ok {
		cfg.Strategy.SlippageBps = bps
	}
	if dry := os.Getenv("DRY_RUN"); dry != "" {
		cfg.Strategy.DryRun = dry == "true" || dry == "1"
	}

	cfg.Node.APIAddr = getEnv("API_ADDR", cfg.Node.APIAddr)
	cfg.Node.LogFile = getEnv("LOG_FILE", cfg.Node.LogFile)
	cfg.Node.LogLevel = getEnv("LOG_LEVEL", cfg.Node.LogLevel)
	cfg.Node.NonceDBPath = getEnv("NONCE_DB_PATH", cfg.Node.NonceDBPath)

	return cfg
}

// Validate checks everything the bot needs before it signs anything.
func (c Config) Validate() error {
	var errs []error

	if c.Account.WalletAddress == "" {
		errs = append(errs, errors.New("WALLET_ADDRESS must be set"))
	} else if err := crypto.ValidateAddress(c.Account.WalletAddress); err != nil {
		errs = append(errs, fmt.Errorf("WALLET_ADDRESS: %w", err))
	}
	if c.Account.PrivateKey == "" {
		errs = append(errs, errors.New("PRIVATE_KEY must be set"))
	} else if _, err := crypto.AddressFromKeyHex(c.Account.PrivateKey); err != nil {
		errs = append(errs, fmt.Errorf("PRIVATE_KEY: %w", err))
	}
	if c.Account.VaultAddress != "" {
		if err := crypto.ValidateAddress(c.Account.VaultAddress); err != nil {
			errs = append(errs, fmt.Errorf("VAULT_ADDRESS: %w", err))
		}
	}

	if c.Exchange.Source != crypto.SourceMainnet && c.Exchange.Source != crypto.SourceTestnet {
		errs = append(errs, fmt.Errorf("SIGNATURE_SOURCE must be %q or %q, got %q", crypto.SourceMainnet, crypto.SourceTestnet, c.Exchange.Source))
	}
	if !strings.HasPrefix(c.Exchange.BaseURL, "http://") && !strings.HasPrefix(c.Exchange.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("HL_BASE_URL must be an http(s) url, got %q", c.Exchange.BaseURL))
	}
	if c.Exchange.ExpiryWindow <= 0 {
		errs = append(errs, errors.New("EXPIRY_WINDOW_MS must be positive"))
	}
	if c.Strategy.PollInterval <= 0 {
		errs = append(errs, errors.New("POLL_INTERVAL_MS must be positive"))
	}
	if !c.Strategy.MinTradeUSD.IsPositive() {
		errs = append(errs, errors.New("MIN_TRADE_USD must be positive"))
	}
	if c.Strategy.SlippageBps < 0 || c.Strategy.SlippageBps >= 10000 {
		errs = append(errs, fmt.Errorf("SLIPPAGE_BPS must be in [0, 10000), got %d", c.Strategy.SlippageBps))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrConfig, errors.Join(errs...))
	}
	return nil
}

// Wallet returns the configured wallet. Call Validate first.
func (c Config) Wallet() common.Address {
	return common.HexToAddress(c.Account.WalletAddress)
}

// Vault returns the vault address if one is configured.
func (c Config) Vault() mo.Option[common.Address] {
	if c.Account.VaultAddress == "" {
		return mo.None[common.Address]()
	}
	return mo.Some(common.HexToAddress(c.Account.VaultAddress))
}

// Slippage returns SlippageBps as a fraction.
func (c Config) Slippage() float64 {
	return float64(c.Strategy.SlippageBps) / 10000
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
