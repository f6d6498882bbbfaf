package chain

import (
	"context"
	"fmt"
	"log"
	"math/big"
	"sync"
	"time"

	"walletscope/internal/address"
	"walletscope/internal/domain"
	"walletscope/internal/provider"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RPCClient is the JSON-RPC surface the EVM handler needs.
type RPCClient interface {
	GetBalance(ctx context.Context, addr string) (*big.Int, error)
	ERC20BalanceOf(ctx context.Context, contract, holder string) (*big.Int, error)
}

// NFTProvider is the capability-gated non-fungible lookup.
type NFTProvider interface {
	Enabled() bool
	FetchOwnedNFTs(ctx context.Context, owner string) ([]provider.OwnedNFT, error)
}

// EVMHandler discovers native, fungible-token, and NFT holdings of an
// account-model address. Configuration is injected and immutable.
type EVMHandler struct {
	desc   domain.ChainDescriptor
	tokens []domain.TokenConfig
	rpc    RPCClient
	nfts   NFTProvider
	tracer trace.Tracer
}

func NewEVMHandler(tracer trace.Tracer, desc domain.ChainDescriptor, tokens []domain.TokenConfig, rpc RPCClient, nfts NFTProvider) *EVMHandler {
	return &EVMHandler{
		desc:   desc,
		tokens: tokens,
		rpc:    rpc,
		nfts:   nfts,
		tracer: tracer,
	}
}

func (h *EVMHandler) Descriptor() domain.ChainDescriptor { return h.desc }

func (h *EVMHandler) Accepts(addr string) bool {
	return address.ClassifyEVM(addr).Valid
}

// GetNativeBalance reads the base-unit balance and scales it by the chain's
// fixed decimals.
func (h *EVMHandler) GetNativeBalance(ctx context.Context, addr string) (domain.Asset, error) {
	ctx, span := h.tracer.Start(ctx, "evm-handler.native-balance")
	defer span.End()

	wei, err := h.rpc.GetBalance(ctx, addr)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("native balance for %s: %w", addr, err)
	}

	return domain.Asset{
		ID:               domain.AssetID(h.desc.Name, addr, "native"),
		Type:             domain.AssetNative,
		Chain:            h.desc.Name,
		WalletAddress:    addr,
		Name:             h.desc.Name,
		Symbol:           h.desc.Symbol,
		Decimals:         h.desc.Decimals,
		Balance:          wei.String(),
		BalanceFormatted: provider.FormatUnits(wei, h.desc.Decimals),
		LastUpdated:      time.Now().UTC(),
	}, nil
}

// GetTokenBalances scans the configured contract list. One bad contract must
// not suppress the others: per-token failures are logged and recorded as
// error notes without aborting the scan, and only strictly positive balances
// are emitted.
func (h *EVMHandler) GetTokenBalances(ctx context.Context, addr string) ([]domain.Asset, []domain.FetchError) {
	ctx, span := h.tracer.Start(ctx, "evm-handler.token-balances")
	defer span.End()
	span.SetAttributes(attribute.Int("token_count", len(h.tokens)))

	var assets []domain.Asset
	var failures []domain.FetchError
	for _, tok := range h.tokens {
		raw, err := h.rpc.ERC20BalanceOf(ctx, tok.ContractAddress, addr)
		if err != nil {
			log.Printf("token balance %s (%s) for %s failed: %v", tok.Symbol, tok.ContractAddress, addr, err)
			failures = append(failures, domain.FetchError{
				Chain: h.desc.Name, Scope: domain.ScopeTokens,
				Message: fmt.Sprintf("token %s (%s): %v", tok.Symbol, tok.ContractAddress, err),
			})
			continue
		}
		if raw.Sign() <= 0 {
			continue
		}
		assets = append(assets, domain.Asset{
			ID:               domain.AssetID(h.desc.Name, addr, tok.ContractAddress),
			Type:             domain.AssetToken,
			Chain:            h.desc.Name,
			WalletAddress:    addr,
			Name:             tok.Name,
			Symbol:           tok.Symbol,
			Decimals:         tok.Decimals,
			Balance:          raw.String(),
			BalanceFormatted: provider.FormatUnits(raw, tok.Decimals),
			ContractAddress:  tok.ContractAddress,
			TokenStandard:    "ERC20",
			LastUpdated:      time.Now().UTC(),
		})
	}
	return assets, failures
}

// GetNFTs fetches owned NFTs. Without a configured provider key the result
// is an empty success: feature unavailable, not feature failed.
func (h *EVMHandler) GetNFTs(ctx context.Context, addr string) ([]domain.Asset, error) {
	ctx, span := h.tracer.Start(ctx, "evm-handler.nfts")
	defer span.End()

	if h.nfts == nil || !h.nfts.Enabled() {
		return nil, nil
	}

	owned, err := h.nfts.FetchOwnedNFTs(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("nfts for %s: %w", addr, err)
	}

	assets := make([]domain.Asset, 0, len(owned))
	for _, nft := range owned {
		name := nft.Name
		if name == "" {
			name = fmt.Sprintf("%s #%s", nft.CollectionName, nft.TokenID)
		}
		assets = append(assets, domain.Asset{
			ID:               domain.AssetID(h.desc.Name, addr, nft.ContractAddress+"-"+nft.TokenID),
			Type:             domain.AssetNFT,
			Chain:            h.desc.Name,
			WalletAddress:    addr,
			Name:             name,
			Symbol:           nft.Symbol,
			Balance:          "1",
			BalanceFormatted: "1",
			ContractAddress:  nft.ContractAddress,
			TokenStandard:    nft.TokenStandard,
			TokenID:          nft.TokenID,
			ImageURL:         nft.ImageURL,
			CollectionName:   nft.CollectionName,
			FloorPrice:       nft.FloorPrice,
			LastUpdated:      time.Now().UTC(),
		})
	}
	return assets, nil
}

// GetAllAssets runs the three sub-fetches concurrently and concatenates
// whatever succeeded in fixed (native, tokens, nfts) order.
func (h *EVMHandler) GetAllAssets(ctx context.Context, addr string) domain.ChainResult {
	ctx, span := h.tracer.Start(ctx, "evm-handler.all-assets")
	defer span.End()
	span.SetAttributes(attribute.String("address", addr))

	result := domain.ChainResult{Chain: h.desc.Name}
	if !h.Accepts(addr) {
		result.Errors = append(result.Errors, domain.FetchError{
			Chain: h.desc.Name, Scope: domain.ScopeChain,
			Message: fmt.Sprintf("invalid address %q", addr),
		})
		return result
	}

	var (
		wg        sync.WaitGroup
		native    domain.Asset
		nativeOK  bool
		nativeErr error
		tokens    []domain.Asset
		tokenErrs []domain.FetchError
		nfts      []domain.Asset
		nftsErr   error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		a, err := h.GetNativeBalance(ctx, addr)
		if err != nil {
			nativeErr = err
			return
		}
		native, nativeOK = a, true
	}()
	go func() {
		defer wg.Done()
		tokens, tokenErrs = h.GetTokenBalances(ctx, addr)
	}()
	go func() {
		defer wg.Done()
		nfts, nftsErr = h.GetNFTs(ctx, addr)
	}()
	wg.Wait()

	if nativeOK {
		result.Assets = append(result.Assets, native)
	} else if nativeErr != nil {
		result.Errors = append(result.Errors, domain.FetchError{
			Chain: h.desc.Name, Scope: domain.ScopeNative, Message: nativeErr.Error(),
		})
	}
	result.Assets = append(result.Assets, tokens...)
	result.Errors = append(result.Errors, tokenErrs...)
	if nftsErr != nil {
		result.Errors = append(result.Errors, domain.FetchError{
			Chain: h.desc.Name, Scope: domain.ScopeNFTs, Message: nftsErr.Error(),
		})
	} else {
		result.Assets = append(result.Assets, nfts...)
	}
	return result
}
