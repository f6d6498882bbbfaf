package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"walletscope/internal/domain"
)

type Config struct {
	DatabaseURL string
	RedisURL    string
	HTTPAddr    string
	APIKey      string

	EVMRPCURL       string
	AlchemyAPIKey   string
	AlchemyBaseURL  string
	BlockstreamURL  string
	HiroURL         string
	MagicEdenURL    string
	OrdinalsContent string

	RelayTimeoutSecs  int
	TokenScanPerMin   int
	PortfolioCacheTTL int
	RefreshSecs       int
	WatchAddresses    []string
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisURL:      os.Getenv("REDIS_URL"),
		APIKey:        os.Getenv("API_KEY"),
		AlchemyAPIKey: os.Getenv("ALCHEMY_API_KEY"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set, snapshot persistence disabled")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.AlchemyAPIKey == "" {
		log.Println("Warning: ALCHEMY_API_KEY not set, EVM NFT discovery disabled")
	}

	cfg.HTTPAddr = strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.EVMRPCURL = strings.TrimSpace(os.Getenv("EVM_RPC_URL"))
	if cfg.EVMRPCURL == "" {
		cfg.EVMRPCURL = "https://cloudflare-eth.com"
	}

	cfg.AlchemyBaseURL = strings.TrimSpace(os.Getenv("ALCHEMY_BASE_URL"))
	if cfg.AlchemyBaseURL == "" {
		cfg.AlchemyBaseURL = "https://eth-mainnet.g.alchemy.com"
	}

	cfg.BlockstreamURL = strings.TrimSpace(os.Getenv("BLOCKSTREAM_URL"))
	if cfg.BlockstreamURL == "" {
		cfg.BlockstreamURL = "https://blockstream.info/api"
	}

	cfg.HiroURL = strings.TrimSpace(os.Getenv("HIRO_URL"))
	if cfg.HiroURL == "" {
		cfg.HiroURL = "https://api.hiro.so"
	}

	cfg.MagicEdenURL = strings.TrimSpace(os.Getenv("MAGICEDEN_URL"))
	if cfg.MagicEdenURL == "" {
		cfg.MagicEdenURL = "https://api-mainnet.magiceden.dev"
	}

	cfg.OrdinalsContent = strings.TrimSpace(os.Getenv("ORDINALS_CONTENT_URL"))
	if cfg.OrdinalsContent == "" {
		cfg.OrdinalsContent = "https://ordinals.com/content"
	}

	cfg.RelayTimeoutSecs = 10
	if v := strings.TrimSpace(os.Getenv("RELAY_TIMEOUT_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RelayTimeoutSecs = n
		}
	}

	cfg.TokenScanPerMin = 60
	if v := strings.TrimSpace(os.Getenv("TOKEN_SCAN_PER_MIN")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TokenScanPerMin = n
		}
	}

	cfg.PortfolioCacheTTL = 60
	if v := strings.TrimSpace(os.Getenv("PORTFOLIO_CACHE_TTL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PortfolioCacheTTL = n
		}
	}

	cfg.RefreshSecs = 300
	if v := strings.TrimSpace(os.Getenv("PORTFOLIO_REFRESH_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RefreshSecs = n
		}
	}

	if v := strings.TrimSpace(os.Getenv("WATCH_ADDRESSES")); v != "" {
		for _, addr := range strings.Split(v, ",") {
			addr = strings.TrimSpace(addr)
			if addr != "" {
				cfg.WatchAddresses = append(cfg.WatchAddresses, addr)
			}
		}
	}

	return cfg
}

// Chains returns the descriptors of the chains this deployment serves.
// Descriptors are read-only; handlers receive them by value.
func Chains() []domain.ChainDescriptor {
	return []domain.ChainDescriptor{
		{
			Name:           "ethereum",
			Symbol:         "ETH",
			Decimals:       18,
			AddressFamily:  domain.AddressFamilyEVM,
			SupportsTokens: true,
			SupportsNFTs:   true,
		},
		{
			Name:             "bitcoin",
			Symbol:           "BTC",
			Decimals:         8,
			AddressFamily:    domain.AddressFamilyBTC,
			SupportsOrdinals: true,
		},
	}
}

// ERC20Tokens is the fixed contract list scanned for fungible balances.
func ERC20Tokens() []domain.TokenConfig {
	return []domain.TokenConfig{
		{ContractAddress: "0xdAC17F958D2ee523a2206206994597C13D831ec7", Symbol: "USDT", Name: "Tether USD", Decimals: 6},
		{ContractAddress: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Symbol: "USDC", Name: "USD Coin", Decimals: 6},
		{ContractAddress: "0x6B175474E89094C44Da98b954EedeAC495271d0F", Symbol: "DAI", Name: "Dai Stablecoin", Decimals: 18},
		{ContractAddress: "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599", Symbol: "WBTC", Name: "Wrapped BTC", Decimals: 8},
		{ContractAddress: "0x7f39C581F595B53c5cb19bD0b3f8dA6c935E2Ca0", Symbol: "wstETH", Name: "Wrapped stETH", Decimals: 18},
		{ContractAddress: "0x514910771AF9Ca656af840dff83E8264EcF986CA", Symbol: "LINK", Name: "ChainLink Token", Decimals: 18},
		{ContractAddress: "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984", Symbol: "UNI", Name: "Uniswap", Decimals: 18},
	}
}
