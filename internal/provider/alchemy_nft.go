package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const defaultAlchemyNFTURL = "https://eth-mainnet.g.alchemy.com"

// OwnedNFT is one non-fungible token returned by the NFT provider, already
// flattened out of the provider's nested response shape.
type OwnedNFT struct {
	ContractAddress string
	TokenID         string
	Name            string
	Symbol          string
	TokenStandard   string
	ImageURL        string
	CollectionName  string
	FloorPrice      float64
}

// AlchemyNFTProvider fetches NFTs owned by an address through the Alchemy
// NFT API. The feature is capability-gated: without an API key the provider
// reports itself disabled and callers degrade to an empty successful result.
type AlchemyNFTProvider struct {
	client  *http.Client
	baseURL string
	apiKey  string
	tracer  trace.Tracer
}

func NewAlchemyNFTProvider(tracer trace.Tracer, baseURL, apiKey string) *AlchemyNFTProvider {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultAlchemyNFTURL
	}
	return &AlchemyNFTProvider{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  strings.TrimSpace(apiKey),
		tracer:  tracer,
	}
}

// Enabled reports whether an API key is configured.
func (p *AlchemyNFTProvider) Enabled() bool {
	return p.apiKey != ""
}

// FetchOwnedNFTs returns the NFTs owned by the address. Calling this on a
// disabled provider is an error; callers check Enabled first.
func (p *AlchemyNFTProvider) FetchOwnedNFTs(ctx context.Context, owner string) ([]OwnedNFT, error) {
	ctx, span := p.tracer.Start(ctx, "alchemy-nft.fetch-owned")
	defer span.End()

	if !p.Enabled() {
		return nil, fmt.Errorf("alchemy api key not configured")
	}

	u := fmt.Sprintf("%s/nft/v3/%s/getNFTsForOwner?owner=%s&withMetadata=true&pageSize=100",
		p.baseURL, p.apiKey, url.QueryEscape(owner))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("alchemy error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		OwnedNFTs []struct {
			Contract struct {
				Address         string `json:"address"`
				Name            string `json:"name"`
				Symbol          string `json:"symbol"`
				TokenType       string `json:"tokenType"`
				OpenSeaMetadata struct {
					CollectionName string  `json:"collectionName"`
					FloorPrice     float64 `json:"floorPrice"`
				} `json:"openSeaMetadata"`
			} `json:"contract"`
			TokenID string `json:"tokenId"`
			Name    string `json:"name"`
			Image   struct {
				CachedURL   string `json:"cachedUrl"`
				OriginalURL string `json:"originalUrl"`
			} `json:"image"`
		} `json:"ownedNfts"`
		TotalCount int `json:"totalCount"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode alchemy payload: %w", err)
	}

	nfts := make([]OwnedNFT, 0, len(payload.OwnedNFTs))
	for _, raw := range payload.OwnedNFTs {
		image := raw.Image.CachedURL
		if image == "" {
			image = raw.Image.OriginalURL
		}
		collection := raw.Contract.OpenSeaMetadata.CollectionName
		if collection == "" {
			collection = raw.Contract.Name
		}
		nfts = append(nfts, OwnedNFT{
			ContractAddress: raw.Contract.Address,
			TokenID:         raw.TokenID,
			Name:            raw.Name,
			Symbol:          raw.Contract.Symbol,
			TokenStandard:   raw.Contract.TokenType,
			ImageURL:        image,
			CollectionName:  collection,
			FloorPrice:      raw.Contract.OpenSeaMetadata.FloorPrice,
		})
	}
	return nfts, nil
}
