package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	RPCUrl          string
	JupiterBaseURL  string
	TokenListURL    string
	WalletKey       string
	BarkMint        string
	SlippageBps     int
	RefreshInterval time.Duration
	Debounce        time.Duration
	QuoteMaxAge     time.Duration
	ConfirmTimeout  time.Duration
	PollInterval    time.Duration
	Commitment      string
	SkipPreflight   bool
	HistoryFile     string
}

var globalConfig *Config

// Load reads configuration from environment variables and config file
func Load() (*Config, error) {
	viper.SetConfigName(".blink-swap")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(".")

	// Set default values
	viper.SetDefault("rpc_url", "https://api.mainnet-beta.solana.com")
	viper.SetDefault("jupiter_base_url", "https://quote-api.jup.ag")
	viper.SetDefault("token_list_url", "")
	viper.SetDefault("bark_mint", "2NTvEssJ2i998V2cMGT4Fy3JhyFnAzHFonDo9dbAkVrg")
	viper.SetDefault("slippage_bps", 50)
	viper.SetDefault("refresh_interval", "30s")
	viper.SetDefault("debounce", "250ms")
	viper.SetDefault("quote_max_age", "60s")
	viper.SetDefault("confirm_timeout", "30s")
	viper.SetDefault("poll_interval", "2s")
	viper.SetDefault("commitment", "confirmed")
	viper.SetDefault("skip_preflight", false)
	viper.SetDefault("history_file", "")

	// Read from environment variables
	viper.SetEnvPrefix("BLINK_SWAP")
	viper.AutomaticEnv()

	// Read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		RPCUrl:          viper.GetString("rpc_url"),
		JupiterBaseURL:  viper.GetString("jupiter_base_url"),
		TokenListURL:    viper.GetString("token_list_url"),
		WalletKey:       viper.GetString("wallet_private_key"),
		BarkMint:        viper.GetString("bark_mint"),
		SlippageBps:     viper.GetInt("slippage_bps"),
		RefreshInterval: viper.GetDuration("refresh_interval"),
		Debounce:        viper.GetDuration("debounce"),
		QuoteMaxAge:     viper.GetDuration("quote_max_age"),
		ConfirmTimeout:  viper.GetDuration("confirm_timeout"),
		PollInterval:    viper.GetDuration("poll_interval"),
		Commitment:      viper.GetString("commitment"),
		SkipPreflight:   viper.GetBool("skip_preflight"),
		HistoryFile:     viper.GetString("history_file"),
	}

	globalConfig = cfg
	return cfg, nil
}

// RequireWallet validates that a signing key is configured.
func (c *Config) RequireWallet() error {
	if c.WalletKey == "" {
		return fmt.Errorf("wallet key not found. Please set BLINK_SWAP_WALLET_PRIVATE_KEY or add wallet_private_key to a .blink-swap.yaml config file")
	}
	return nil
}

// Get returns the global configuration
func Get() *Config {
	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		return cfg
	}
	return globalConfig
}

// Set updates the global configuration
func Set(cfg *Config) {
	globalConfig = cfg
}
