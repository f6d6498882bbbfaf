package chain

import (
	"context"
	"fmt"
	"sync"
	"time"

	"walletscope/internal/address"
	"walletscope/internal/domain"
	"walletscope/internal/ordinals"
	"walletscope/internal/provider"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// UTXOClient is the address-summary surface the Bitcoin handler needs.
type UTXOClient interface {
	FetchAddressSummary(ctx context.Context, addr string) (*provider.AddressSummary, error)
}

// OrdinalResolver resolves the inscriptions an address holds.
type OrdinalResolver interface {
	Resolve(ctx context.Context, addr string) ([]ordinals.Inscription, error)
}

// BitcoinHandler discovers the native balance and inscription holdings of a
// UTXO-model address.
type BitcoinHandler struct {
	desc     domain.ChainDescriptor
	utxo     UTXOClient
	resolver OrdinalResolver
	tracer   trace.Tracer
}

func NewBitcoinHandler(tracer trace.Tracer, desc domain.ChainDescriptor, utxo UTXOClient, resolver OrdinalResolver) *BitcoinHandler {
	return &BitcoinHandler{
		desc:     desc,
		utxo:     utxo,
		resolver: resolver,
		tracer:   tracer,
	}
}

func (h *BitcoinHandler) Descriptor() domain.ChainDescriptor { return h.desc }

func (h *BitcoinHandler) Accepts(addr string) bool {
	return address.ClassifyBitcoin(addr).Valid
}

// GetBalance computes the confirmed balance as funded-output-sum minus
// spent-output-sum in satoshis. Invalid addresses are rejected before any
// network call.
func (h *BitcoinHandler) GetBalance(ctx context.Context, addr string) (domain.Asset, error) {
	ctx, span := h.tracer.Start(ctx, "btc-handler.balance")
	defer span.End()

	if !h.Accepts(addr) {
		return domain.Asset{}, fmt.Errorf("invalid bitcoin address %q", addr)
	}

	summary, err := h.utxo.FetchAddressSummary(ctx, addr)
	if err != nil {
		return domain.Asset{}, fmt.Errorf("balance for %s: %w", addr, err)
	}

	sats := summary.BalanceSats()
	return domain.Asset{
		ID:               domain.AssetID(h.desc.Name, addr, "native"),
		Type:             domain.AssetNative,
		Chain:            h.desc.Name,
		WalletAddress:    addr,
		Name:             h.desc.Name,
		Symbol:           h.desc.Symbol,
		Decimals:         h.desc.Decimals,
		Balance:          sats.String(),
		BalanceFormatted: provider.FormatUnitsFixed(sats, h.desc.Decimals),
		LastUpdated:      time.Now().UTC(),
	}, nil
}

// GetOrdinals resolves inscriptions and normalizes them to ordinal assets.
func (h *BitcoinHandler) GetOrdinals(ctx context.Context, addr string) ([]domain.Asset, error) {
	ctx, span := h.tracer.Start(ctx, "btc-handler.ordinals")
	defer span.End()

	resolved, err := h.resolver.Resolve(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("ordinals for %s: %w", addr, err)
	}

	assets := make([]domain.Asset, 0, len(resolved))
	for _, ins := range resolved {
		assets = append(assets, domain.Asset{
			ID:                domain.AssetID(h.desc.Name, addr, ins.ID),
			Type:              domain.AssetOrdinal,
			Chain:             h.desc.Name,
			WalletAddress:     addr,
			Name:              ins.Name,
			Symbol:            "ORD",
			Balance:           "1",
			BalanceFormatted:  "1",
			CollectionName:    ins.Collection,
			InscriptionID:     ins.ID,
			InscriptionNumber: ins.Number,
			ContentType:       ins.ContentType,
			ContentURL:        ins.ContentURL,
			LastUpdated:       time.Now().UTC(),
		})
	}
	return assets, nil
}

// GetAllAssets fetches balance and ordinals concurrently and concatenates in
// fixed (balance, ordinals) order, tolerating partial failure.
func (h *BitcoinHandler) GetAllAssets(ctx context.Context, addr string) domain.ChainResult {
	ctx, span := h.tracer.Start(ctx, "btc-handler.all-assets")
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
		wg         sync.WaitGroup
		balance    domain.Asset
		balanceOK  bool
		balanceErr error
		ords       []domain.Asset
		ordsErr    error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		a, err := h.GetBalance(ctx, addr)
		if err != nil {
			balanceErr = err
			return
		}
		balance, balanceOK = a, true
	}()
	go func() {
		defer wg.Done()
		ords, ordsErr = h.GetOrdinals(ctx, addr)
	}()
	wg.Wait()

	if balanceOK {
		result.Assets = append(result.Assets, balance)
	} else if balanceErr != nil {
		result.Errors = append(result.Errors, domain.FetchError{
			Chain: h.desc.Name, Scope: domain.ScopeBalance, Message: balanceErr.Error(),
		})
	}
	if ordsErr != nil {
		result.Errors = append(result.Errors, domain.FetchError{
			Chain: h.desc.Name, Scope: domain.ScopeOrdinals, Message: ordsErr.Error(),
		})
	} else {
		result.Assets = append(result.Assets, ords...)
	}
	return result
}
