package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const defaultBlockstreamURL = "https://blockstream.info/api"

// AddressSummary is the UTXO accounting for one Bitcoin address in satoshis.
type AddressSummary struct {
	Address    string
	FundedSats int64
	SpentSats  int64
	TxCount    int64
}

// BalanceSats is funded-output-sum minus spent-output-sum.
func (s AddressSummary) BalanceSats() *big.Int {
	return big.NewInt(s.FundedSats - s.SpentSats)
}

// BlockstreamClient queries a Blockstream-compatible Esplora API for
// confirmed UTXO totals of an address.
type BlockstreamClient struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewBlockstreamClient(tracer trace.Tracer, baseURL string) *BlockstreamClient {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultBlockstreamURL
	}
	return &BlockstreamClient{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
	}
}

func (c *BlockstreamClient) FetchAddressSummary(ctx context.Context, addr string) (*AddressSummary, error) {
	ctx, span := c.tracer.Start(ctx, "blockstream.fetch-address")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/address/"+addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("blockstream error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Address    string `json:"address"`
		ChainStats struct {
			FundedTxoSum int64 `json:"funded_txo_sum"`
			SpentTxoSum  int64 `json:"spent_txo_sum"`
			TxCount      int64 `json:"tx_count"`
		} `json:"chain_stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode blockstream payload: %w", err)
	}

	return &AddressSummary{
		Address:    addr,
		FundedSats: payload.ChainStats.FundedTxoSum,
		SpentSats:  payload.ChainStats.SpentTxoSum,
		TxCount:    payload.ChainStats.TxCount,
	}, nil
}
