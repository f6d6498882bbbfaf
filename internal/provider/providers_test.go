package provider

import (
	"bytes"
	"context"
	"io"
	"math/big"
	"net/http"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

var testTracer = trace.NewNoopTracerProvider().Tracer("test")

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func TestEVMRPCClientGetBalance(t *testing.T) {
	t.Parallel()

	c := NewEVMRPCClient(testTracer, "https://example.com", 600)
	c.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		raw, _ := io.ReadAll(req.Body)
		if !strings.Contains(string(raw), `"eth_getBalance"`) {
			t.Fatalf("unexpected rpc body: %s", raw)
		}
		return jsonResponse(http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":"0xde0b6b3a7640000"}`), nil
	})}

	wei, err := c.GetBalance(context.Background(), "0xd8da6bf26964af9d7eed9e03e53415d37aa96045")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if wei.String() != "1000000000000000000" {
		t.Fatalf("expected 1 ether in wei, got %s", wei)
	}
}

func TestEVMRPCClientRPCError(t *testing.T) {
	t.Parallel()

	c := NewEVMRPCClient(testTracer, "https://example.com", 600)
	c.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"jsonrpc":"2.0","id":1,"error":{"code":-32000,"message":"header not found"}}`), nil
	})}

	if _, err := c.GetBalance(context.Background(), "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"); err == nil {
		t.Fatal("expected rpc error")
	}
}

func TestEVMRPCClientERC20BalanceOf(t *testing.T) {
	t.Parallel()

	c := NewEVMRPCClient(testTracer, "https://example.com", 600)
	c.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		raw, _ := io.ReadAll(req.Body)
		body := string(raw)
		if !strings.Contains(body, `"eth_call"`) {
			t.Fatalf("expected eth_call, got: %s", body)
		}
		if !strings.Contains(body, "0x70a08231000000000000000000000000d8da6bf26964af9d7eed9e03e53415d37aa96045") {
			t.Fatalf("unexpected calldata: %s", body)
		}
		return jsonResponse(http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":"0x16e360"}`), nil
	})}

	n, err := c.ERC20BalanceOf(context.Background(),
		"0xdAC17F958D2ee523a2206206994597C13D831ec7",
		"0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.String() != "1500000" {
		t.Fatalf("expected 1500000, got %s", n)
	}
}

func TestEncodeBalanceOfRejectsBadAddress(t *testing.T) {
	t.Parallel()

	if _, err := encodeBalanceOf("0x1234"); err == nil {
		t.Fatal("expected error for short address")
	}
	if _, err := encodeBalanceOf("0xzzda6bf26964af9d7eed9e03e53415d37aa96045"); err == nil {
		t.Fatal("expected error for non-hex address")
	}
}

func TestBlockstreamFetchAddressSummary(t *testing.T) {
	t.Parallel()

	c := NewBlockstreamClient(testTracer, "https://example.com")
	c.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/address/bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		body := `{"address":"bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4","chain_stats":{"funded_txo_sum":150000000,"spent_txo_sum":50000000,"tx_count":12}}`
		return jsonResponse(http.StatusOK, body), nil
	})}

	sum, err := c.FetchAddressSummary(context.Background(), "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.BalanceSats().Cmp(big.NewInt(100000000)) != 0 {
		t.Fatalf("expected 100000000 sats, got %s", sum.BalanceSats())
	}
	if FormatUnitsFixed(sum.BalanceSats(), 8) != "1.00000000" {
		t.Fatalf("unexpected formatted balance: %s", FormatUnitsFixed(sum.BalanceSats(), 8))
	}
}

func TestBlockstreamErrorStatus(t *testing.T) {
	t.Parallel()

	c := NewBlockstreamClient(testTracer, "https://example.com")
	c.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadGateway, "upstream down"), nil
	})}

	if _, err := c.FetchAddressSummary(context.Background(), "bc1qxyz"); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestAlchemyDisabledWithoutKey(t *testing.T) {
	t.Parallel()

	p := NewAlchemyNFTProvider(testTracer, "https://example.com", "")
	if p.Enabled() {
		t.Fatal("provider should be disabled without key")
	}
	if _, err := p.FetchOwnedNFTs(context.Background(), "0xabc"); err == nil {
		t.Fatal("fetch on disabled provider should error")
	}
}

func TestAlchemyFetchOwnedNFTs(t *testing.T) {
	t.Parallel()

	p := NewAlchemyNFTProvider(testTracer, "https://example.com", "test-key")
	p.client = &http.Client{Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if !strings.HasPrefix(req.URL.Path, "/nft/v3/test-key/getNFTsForOwner") {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if req.URL.Query().Get("owner") != "0xd8da6bf26964af9d7eed9e03e53415d37aa96045" {
			t.Fatalf("unexpected owner: %s", req.URL.Query().Get("owner"))
		}
		body := `{"ownedNfts":[{"contract":{"address":"0xbc4ca0eda7647a8ab7c2061c2e118a18a936f13d","name":"BoredApeYachtClub","symbol":"BAYC","tokenType":"ERC721","openSeaMetadata":{"collectionName":"Bored Ape Yacht Club","floorPrice":12.5}},"tokenId":"42","name":"Ape #42","image":{"cachedUrl":"https://img.example/42.png"}}],"totalCount":1}`
		return jsonResponse(http.StatusOK, body), nil
	})}

	nfts, err := p.FetchOwnedNFTs(context.Background(), "0xd8da6bf26964af9d7eed9e03e53415d37aa96045")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(nfts) != 1 {
		t.Fatalf("expected 1 nft, got %d", len(nfts))
	}
	nft := nfts[0]
	if nft.TokenID != "42" || nft.TokenStandard != "ERC721" || nft.CollectionName != "Bored Ape Yacht Club" {
		t.Fatalf("unexpected nft: %+v", nft)
	}
	if nft.FloorPrice != 12.5 || nft.ImageURL != "https://img.example/42.png" {
		t.Fatalf("unexpected nft metadata: %+v", nft)
	}
}

func TestFormatUnits(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw      string
		decimals int
		want     string
	}{
		{"1500000", 6, "1.5"},
		{"1000000000000000000", 18, "1"},
		{"0", 8, "0"},
		{"1", 18, "0.000000000000000001"},
		{"-2500000", 6, "-2.5"},
		{"7", 0, "7"},
	}
	for _, tc := range cases {
		n, _ := new(big.Int).SetString(tc.raw, 10)
		if got := FormatUnits(n, tc.decimals); got != tc.want {
			t.Errorf("FormatUnits(%s, %d) = %s, want %s", tc.raw, tc.decimals, got, tc.want)
		}
	}
}

func TestFormatUnitsFixed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw      string
		decimals int
		want     string
	}{
		{"100000000", 8, "1.00000000"},
		{"123456789", 8, "1.23456789"},
		{"1", 8, "0.00000001"},
		{"0", 8, "0.00000000"},
	}
	for _, tc := range cases {
		n, _ := new(big.Int).SetString(tc.raw, 10)
		if got := FormatUnitsFixed(n, tc.decimals); got != tc.want {
			t.Errorf("FormatUnitsFixed(%s, %d) = %s, want %s", tc.raw, tc.decimals, got, tc.want)
		}
	}
}
