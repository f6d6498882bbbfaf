package ordinals

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

const defaultMagicEdenURL = "https://api-mainnet.magiceden.dev"

// MagicEdenSource queries the Magic Eden marketplace API for ordinals owned
// by an address. It is the fallback behind Hiro; its listings carry richer
// collection metadata but cover fewer inscriptions.
type MagicEdenSource struct {
	client  *http.Client
	baseURL string
	tracer  trace.Tracer
}

func NewMagicEdenSource(tracer trace.Tracer, baseURL string) *MagicEdenSource {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = defaultMagicEdenURL
	}
	return &MagicEdenSource{
		client:  &http.Client{Timeout: 20 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		tracer:  tracer,
	}
}

func (s *MagicEdenSource) Name() string { return "magiceden" }

func (s *MagicEdenSource) FetchInscriptions(ctx context.Context, address string) ([]RawInscription, error) {
	ctx, span := s.tracer.Start(ctx, "ordinals.magiceden.fetch")
	defer span.End()

	u := fmt.Sprintf("%s/v2/ord/btc/tokens?ownerAddress=%s&limit=60", s.baseURL, url.QueryEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("magiceden error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Tokens []struct {
			ID                string `json:"id"`
			InscriptionNumber int64  `json:"inscriptionNumber"`
			ContentType       string `json:"contentType"`
			DisplayName       string `json:"displayName"`
			Collection        struct {
				Symbol string `json:"symbol"`
				Name   string `json:"name"`
			} `json:"collection"`
			Meta struct {
				Name string `json:"name"`
			} `json:"meta"`
		} `json:"tokens"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode magiceden payload: %w", err)
	}

	out := make([]RawInscription, 0, len(payload.Tokens))
	for _, tok := range payload.Tokens {
		title := tok.Meta.Name
		if title == "" {
			title = tok.DisplayName
		}
		if title == "" {
			title = tok.Collection.Name
		}
		out = append(out, RawInscription{
			ID:           tok.ID,
			Number:       tok.InscriptionNumber,
			ContentType:  tok.ContentType,
			Title:        title,
			CollectionID: tok.Collection.Symbol,
		})
	}
	return out, nil
}
