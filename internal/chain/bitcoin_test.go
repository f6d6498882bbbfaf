package chain

import (
	"context"
	"errors"
	"testing"

	"walletscope/internal/domain"
	"walletscope/internal/ordinals"
	"walletscope/internal/provider"
)

const testBTCAddr = "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4"

func btcDescriptor() domain.ChainDescriptor {
	return domain.ChainDescriptor{
		Name: "bitcoin", Symbol: "BTC", Decimals: 8,
		AddressFamily: domain.AddressFamilyBTC, SupportsOrdinals: true,
	}
}

type mockUTXO struct {
	summary *provider.AddressSummary
	err     error
	calls   int
}

func (m *mockUTXO) FetchAddressSummary(ctx context.Context, addr string) (*provider.AddressSummary, error) {
	m.calls++
	return m.summary, m.err
}

type mockResolver struct {
	inscriptions []ordinals.Inscription
	err          error
}

func (m *mockResolver) Resolve(ctx context.Context, addr string) ([]ordinals.Inscription, error) {
	return m.inscriptions, m.err
}

func TestBitcoinBalanceFundedMinusSpent(t *testing.T) {
	t.Parallel()

	utxo := &mockUTXO{summary: &provider.AddressSummary{
		Address: testBTCAddr, FundedSats: 150000000, SpentSats: 50000000,
	}}
	h := NewBitcoinHandler(testTracer, btcDescriptor(), utxo, &mockResolver{})

	asset, err := h.GetBalance(context.Background(), testBTCAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if asset.Balance != "100000000" {
		t.Fatalf("expected 100000000 sats, got %s", asset.Balance)
	}
	if asset.BalanceFormatted != "1.00000000" {
		t.Fatalf("expected 1.00000000, got %s", asset.BalanceFormatted)
	}
}

func TestBitcoinBalanceRejectsInvalidAddress(t *testing.T) {
	t.Parallel()

	utxo := &mockUTXO{}
	h := NewBitcoinHandler(testTracer, btcDescriptor(), utxo, &mockResolver{})

	if _, err := h.GetBalance(context.Background(), "definitely-not-btc"); err == nil {
		t.Fatal("expected validation error")
	}
	if utxo.calls != 0 {
		t.Fatal("invalid address must be rejected before any network call")
	}
}

func TestBitcoinOrdinalsMapped(t *testing.T) {
	t.Parallel()

	resolver := &mockResolver{inscriptions: []ordinals.Inscription{{
		ID: "aa11i0", Number: 101, ContentType: "image/png",
		Name: "Inscriptions #101", Collection: "Inscriptions",
		Kind: ordinals.KindStandard, ContentURL: "/api/content/aa11i0",
	}}}
	h := NewBitcoinHandler(testTracer, btcDescriptor(), &mockUTXO{}, resolver)

	assets, err := h.GetOrdinals(context.Background(), testBTCAddr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("expected 1 ordinal asset, got %d", len(assets))
	}
	a := assets[0]
	if a.Type != domain.AssetOrdinal || a.InscriptionID != "aa11i0" || a.InscriptionNumber != 101 {
		t.Fatalf("unexpected ordinal asset: %+v", a)
	}
	if a.ContentURL != "/api/content/aa11i0" {
		t.Fatalf("unexpected content url: %s", a.ContentURL)
	}
	if a.ID != "bitcoin-"+testBTCAddr+"-aa11i0" {
		t.Fatalf("unexpected id: %s", a.ID)
	}
}

func TestBitcoinGetAllAssetsPartialFailure(t *testing.T) {
	t.Parallel()

	utxo := &mockUTXO{summary: &provider.AddressSummary{FundedSats: 100, SpentSats: 0}}
	resolver := &mockResolver{err: errors.New("all sources failed")}
	h := NewBitcoinHandler(testTracer, btcDescriptor(), utxo, resolver)

	result := h.GetAllAssets(context.Background(), testBTCAddr)
	if len(result.Assets) != 1 || result.Assets[0].Type != domain.AssetNative {
		t.Fatalf("balance should survive ordinal failure: %+v", result.Assets)
	}
	if len(result.Errors) != 1 || result.Errors[0].Scope != domain.ScopeOrdinals {
		t.Fatalf("expected ordinals error note, got %+v", result.Errors)
	}
}

func TestBitcoinGetAllAssetsOrder(t *testing.T) {
	t.Parallel()

	utxo := &mockUTXO{summary: &provider.AddressSummary{FundedSats: 100, SpentSats: 0}}
	resolver := &mockResolver{inscriptions: []ordinals.Inscription{{ID: "aa11i0", Number: 1}}}
	h := NewBitcoinHandler(testTracer, btcDescriptor(), utxo, resolver)

	result := h.GetAllAssets(context.Background(), testBTCAddr)
	if len(result.Assets) != 2 {
		t.Fatalf("expected balance+ordinal, got %d", len(result.Assets))
	}
	if result.Assets[0].Type != domain.AssetNative || result.Assets[1].Type != domain.AssetOrdinal {
		t.Fatalf("fixed (balance, ordinals) order violated: %+v", result.Assets)
	}
}

func TestBitcoinEmptyOrdinalsIsNotAnError(t *testing.T) {
	t.Parallel()

	utxo := &mockUTXO{summary: &provider.AddressSummary{}}
	h := NewBitcoinHandler(testTracer, btcDescriptor(), utxo, &mockResolver{})

	result := h.GetAllAssets(context.Background(), testBTCAddr)
	if len(result.Errors) != 0 {
		t.Fatalf("holding no inscriptions must not produce error notes: %+v", result.Errors)
	}
}
