package domain

import (
	"fmt"
	"time"
)

type AssetType string

const (
	AssetNative  AssetType = "native"
	AssetToken   AssetType = "token"
	AssetNFT     AssetType = "nft"
	AssetOrdinal AssetType = "ordinal"
)

// Asset is the normalized unit of output for every chain. Values are
// immutable once constructed; a refresh produces a new Asset.
type Asset struct {
	ID            string    `json:"id"`
	Type          AssetType `json:"type"`
	Chain         string    `json:"chain"`
	WalletAddress string    `json:"wallet_address"`
	Name          string    `json:"name"`
	Symbol        string    `json:"symbol"`
	Decimals      int       `json:"decimals"`

	// Balance is an exact integer string in the asset's smallest unit.
	// BalanceFormatted is derived by dividing by 10^Decimals and is never
	// authoritative.
	Balance          string `json:"balance"`
	BalanceFormatted string `json:"balance_formatted"`

	ContractAddress string `json:"contract_address,omitempty"`
	TokenStandard   string `json:"token_standard,omitempty"`

	TokenID        string  `json:"token_id,omitempty"`
	ImageURL       string  `json:"image_url,omitempty"`
	CollectionName string  `json:"collection_name,omitempty"`
	FloorPrice     float64 `json:"floor_price,omitempty"`

	InscriptionID     string `json:"inscription_id,omitempty"`
	InscriptionNumber int64  `json:"inscription_number,omitempty"`
	ContentType       string `json:"content_type,omitempty"`
	ContentURL        string `json:"content_url,omitempty"`

	LastUpdated time.Time `json:"last_updated"`
}

// AssetID derives the globally unique id for an asset from its chain, owning
// wallet, and sub-identifier. The derivation is deterministic so repeated
// fetches of unchanged state produce identical ids.
func AssetID(chain, wallet, subID string) string {
	return fmt.Sprintf("%s-%s-%s", chain, wallet, subID)
}

type AddressFormat string

const (
	FormatEVMHex     AddressFormat = "evm-hex"
	FormatBTCLegacy  AddressFormat = "btc-legacy"
	FormatBTCSegwit  AddressFormat = "btc-segwit"
	FormatBTCTaproot AddressFormat = "btc-taproot"
	FormatUnknown    AddressFormat = "unknown"
	AddressFamilyEVM               = "evm"
	AddressFamilyBTC               = "bitcoin"
)

// ChainDescriptor describes one supported chain. Owned by configuration,
// never mutated by handlers.
type ChainDescriptor struct {
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	Decimals      int    `json:"decimals"`
	AddressFamily string `json:"address_family"`

	SupportsTokens   bool `json:"supports_tokens"`
	SupportsNFTs     bool `json:"supports_nfts"`
	SupportsOrdinals bool `json:"supports_ordinals"`
}

// TokenConfig is one configured fungible-token contract to scan on an EVM chain.
type TokenConfig struct {
	ContractAddress string `json:"contract_address"`
	Symbol          string `json:"symbol"`
	Name            string `json:"name"`
	Decimals        int    `json:"decimals"`
}

// FetchError is a non-fatal error note attached to a partial result.
type FetchError struct {
	Chain   string `json:"chain"`
	Scope   string `json:"scope"`
	Message string `json:"message"`
}

func (e FetchError) Error() string {
	return fmt.Sprintf("%s/%s: %s", e.Chain, e.Scope, e.Message)
}

const (
	ScopeNative   = "native"
	ScopeTokens   = "tokens"
	ScopeNFTs     = "nfts"
	ScopeBalance  = "balance"
	ScopeOrdinals = "ordinals"
	ScopeChain    = "chain"
)

// ChainResult is the outcome of one chain handler call: whatever assets were
// recovered plus notes for the sub-fetches that failed.
type ChainResult struct {
	Chain  string       `json:"chain"`
	Assets []Asset      `json:"assets"`
	Errors []FetchError `json:"errors,omitempty"`
}

// Portfolio is the merged view across all enabled chains and wallets.
type Portfolio struct {
	Assets      []Asset      `json:"assets"`
	Errors      []FetchError `json:"errors,omitempty"`
	TotalAssets int          `json:"total_assets"`
	LastUpdated time.Time    `json:"last_updated"`
}

// PortfolioSnapshot is a persisted point-in-time record of one wallet's
// holdings on one chain.
type PortfolioSnapshot struct {
	ID            int64     `json:"id"`
	WalletAddress string    `json:"wallet_address"`
	Chain         string    `json:"chain"`
	AssetCount    int       `json:"asset_count"`
	NativeBalance string    `json:"native_balance"`
	AssetsJSON    string    `json:"assets_json"`
	FetchedAt     time.Time `json:"fetched_at"`
}
