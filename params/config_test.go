package params

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/uhyunpark/hyperarb/pkg/crypto"
)

const (
	testKeyHex  = "0x0123456789012345678901234567890123456789012345678901234567890123"
	testAddress = "0x14791697260E4c9A71f18484C9f997B308e59325"
)

var envKeys = []string{
	"WALLET_ADDRESS", "PRIVATE_KEY", "VAULT_ADDRESS", "HL_BASE_URL", "SIGNATURE_SOURCE",
	"EXPIRY_WINDOW_MS", "POLL_INTERVAL_MS", "MIN_TRADE_USD", "SLIPPAGE_BPS", "DRY_RUN",
	"API_ADDR", "LOG_FILE", "LOG_LEVEL", "NONCE_DB_PATH",
}

// clearEnv blanks every key so a developer's shell cannot leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func validConfig() Config {
	cfg := Default()
	cfg.Account.WalletAddress = testAddress
	cfg.Account.PrivateKey = testKeyHex
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Exchange.BaseURL != "https://api.hyperliquid.xyz" {
		t.Errorf("base url = %s", cfg.Exchange.BaseURL)
	}
	if cfg.Strategy.PollInterval != 10*time.Second || cfg.Exchange.ExpiryWindow != 10*time.Second {
		t.Errorf("poll/expiry = %v/%v, want 10s/10s", cfg.Strategy.PollInterval, cfg.Exchange.ExpiryWindow)
	}
	if cfg.Strategy.MinTradeUSD.String() != "11" {
		t.Errorf("min trade = %s, want 11", cfg.Strategy.MinTradeUSD)
	}
	if cfg.Slippage() != 0.01 {
		t.Errorf("slippage = %v, want 0.01", cfg.Slippage())
	}
	if cfg.Exchange.Source != crypto.SourceMainnet {
		t.Errorf("source = %s, want mainnet", cfg.Exchange.Source)
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	// Empty values do not count as set, so godotenv may fill them from the file.
	for _, k := range envKeys {
		os.Unsetenv(k)
	}

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	content := strings.Join([]string{
		"WALLET_ADDRESS=" + testAddress,
		"PRIVATE_KEY=" + testKeyHex,
		"POLL_INTERVAL_MS=2500",
		"MIN_TRADE_USD=12.5",
		"SLIPPAGE_BPS=50",
		"DRY_RUN=true",
		"SIGNATURE_SOURCE=b",
	}, "\n")
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write env: %v", err)
	}
	t.Cleanup(func() {
		for _, k := range envKeys {
			os.Unsetenv(k)
		}
	})

	// Environment wins over the file.
	t.Setenv("SLIPPAGE_BPS", "25")

	cfg := LoadFromEnv(envPath)
	if cfg.Account.WalletAddress != testAddress {
		t.Errorf("wallet = %s, want %s", cfg.Account.WalletAddress, testAddress)
	}
	if cfg.Strategy.PollInterval != 2500*time.Millisecond {
		t.Errorf("poll = %v, want 2.5s", cfg.Strategy.PollInterval)
	}
	if cfg.Strategy.MinTradeUSD.String() != "12.5" {
		t.Errorf("min trade = %s, want 12.5", cfg.Strategy.MinTradeUSD)
	}
	if cfg.Strategy.SlippageBps != 25 {
		t.Errorf("slippage bps = %d, want 25", cfg.Strategy.SlippageBps)
	}
	if !cfg.Strategy.DryRun || cfg.Exchange.Source != crypto.SourceTestnet {
		t.Errorf("dry run/source = %v/%s, want true/b", cfg.Strategy.DryRun, cfg.Exchange.Source)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"missing wallet", func(c *Config) { c.Account.WalletAddress = "" }, "WALLET_ADDRESS must be set"},
		{"bad checksum", func(c *Config) { c.Account.WalletAddress = "0x14791697260e4c9A71f18484C9f997B308e59325" }, "checksum"},
		{"missing key", func(c *Config) { c.Account.PrivateKey = "" }, "PRIVATE_KEY must be set"},
		{"short key", func(c *Config) { c.Account.PrivateKey = "0xabc" }, "PRIVATE_KEY"},
		{"bad vault", func(c *Config) { c.Account.VaultAddress = "0x12" }, "VAULT_ADDRESS"},
		{"bad source", func(c *Config) { c.Exchange.Source = "c" }, "SIGNATURE_SOURCE"},
		{"bad url", func(c *Config) { c.Exchange.BaseURL = "api.hyperliquid.xyz" }, "HL_BASE_URL"},
		{"zero poll", func(c *Config) { c.Strategy.PollInterval = 0 }, "POLL_INTERVAL_MS"},
		{"bad slippage", func(c *Config) { c.Strategy.SlippageBps = 10000 }, "SLIPPAGE_BPS"},
	}

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrConfig) {
				t.Fatalf("err = %v, want %v", err, ErrConfig)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %v, want mention of %q", err, tt.wantMsg)
			}
		})
	}
}

func TestValidateDoesNotLeakKey(t *testing.T) {
	cfg := validConfig()
	cfg.Account.PrivateKey = "0x" + strings.Repeat("zz", 32)
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), cfg.Account.PrivateKey) {
		t.Errorf("error leaks private key: %v", err)
	}
}

func TestVaultAndWallet(t *testing.T) {
	cfg := validConfig()
	if cfg.Vault().IsPresent() {
		t.Error("vault should be absent")
	}
	cfg.Account.VaultAddress = "0x1111111111111111111111111111111111111111"
	v, ok := cfg.Vault().Get()
	if !ok || v != common.HexToAddress(cfg.Account.VaultAddress) {
		t.Errorf("vault = %s, want %s", v.Hex(), cfg.Account.VaultAddress)
	}
	if cfg.Wallet().Hex() != testAddress {
		t.Errorf("wallet = %s, want %s", cfg.Wallet().Hex(), testAddress)
	}
}
